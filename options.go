// Copyright ©2012 The bíogo.bam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hts

import "go.uber.org/zap"

// defaultCacheSize mirrors bamnostic.BgzfReader's max_cache default.
const defaultCacheSize = 128

// Option configures Open.
type Option func(*config)

type config struct {
	cacheSize        int
	logger           *zap.Logger
	strictTruncation bool
	requireIndex     bool
	indexPath        string
}

func newConfig() *config {
	return &config{
		cacheSize: defaultCacheSize,
		logger:    zap.NewNop(),
	}
}

// WithCacheSize sets the bounded block cache's capacity. capacity must be
// positive.
func WithCacheSize(capacity int) Option {
	return func(cfg *config) { cfg.cacheSize = capacity }
}

// WithLogger overrides the no-op default structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(cfg *config) { cfg.logger = l }
}

// WithStrictTruncation promotes a missing trailing BGZF EOF marker from a
// logged warning to a fatal error at Open.
func WithStrictTruncation() Option {
	return func(cfg *config) { cfg.strictTruncation = true }
}

// WithRequireIndex promotes a missing companion index from a logged
// warning (random access simply unavailable) to a fatal error at Open.
func WithRequireIndex() Option {
	return func(cfg *config) { cfg.requireIndex = true }
}

// WithIndexPath overrides the default sibling "<path>.bai" companion
// index location.
func WithIndexPath(path string) Option {
	return func(cfg *config) { cfg.indexPath = path }
}
