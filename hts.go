// Copyright ©2012 The bíogo.bam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hts

import (
	"fmt"
	"os"

	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/exp/mmap"

	"github.com/balanur/hts/bai"
	"github.com/balanur/hts/bam"
	"github.com/balanur/hts/bgzf"
	"github.com/balanur/hts/internal/ioutil"
)

// File is the public facade over a BAM file opened for random-access
// reading: a Cursor backed by a memory-mapped file, a decoded header, a
// record reader, and (if present) a companion binning index.
//
// A File is not safe for concurrent use; open independent Files over
// independent file descriptors for concurrent access.
type File struct {
	path string

	mm  *mmap.ReaderAt
	src *ioutil.ReaderAtSeeker

	cu     *bgzf.Cursor
	header *bam.Header
	reader *bam.Reader
	index  *bai.Index

	logger *zap.Logger

	closed atomic.Bool
}

// Open opens path for random-access BAM reading, performing the header
// bootstrap, a truncation check, and an attempt to load the companion
// index.
func Open(path string, opts ...Option) (*File, error) {
	cfg := newConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	mm, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("hts: opening %s: %w", path, err)
	}
	src := ioutil.NewReaderAtSeeker(mm, int64(mm.Len()))

	cache, err := bgzf.NewLRUCache(cfg.cacheSize)
	if err != nil {
		mm.Close()
		return nil, err
	}

	cursorOpts := []bgzf.Option{bgzf.WithCache(cache), bgzf.WithLogger(cfg.logger)}
	if cfg.strictTruncation {
		cursorOpts = append(cursorOpts, bgzf.WithStrictTruncation())
	}
	cu := bgzf.NewCursor(src, cursorOpts...)

	if err := cu.CheckEOF(src.Size(), src); err != nil {
		mm.Close()
		return nil, err
	}

	header, err := bam.ReadHeader(cu)
	if err != nil {
		mm.Close()
		return nil, err
	}

	f := &File{
		path:   path,
		mm:     mm,
		src:    src,
		cu:     cu,
		header: header,
		reader: bam.NewReader(cu, header.Header),
		logger: cfg.logger,
	}

	idx, err := loadIndex(path, cfg)
	if err != nil {
		mm.Close()
		return nil, err
	}
	f.index = idx

	return f, nil
}

func loadIndex(bamPath string, cfg *config) (*bai.Index, error) {
	indexPath := cfg.indexPath
	if indexPath == "" {
		indexPath = bamPath + ".bai"
	}
	fh, err := os.Open(indexPath)
	if err != nil {
		if cfg.requireIndex {
			return nil, fmt.Errorf("hts: required index %s: %w", indexPath, err)
		}
		cfg.logger.Warn("no companion index found; random access disabled", zap.String("path", indexPath))
		return nil, nil
	}
	defer fh.Close()

	idx, err := bai.ReadFrom(fh)
	if err != nil {
		return nil, fmt.Errorf("hts: reading index %s: %w", indexPath, err)
	}
	return idx, nil
}

// Header returns the decoded BAM header.
func (f *File) Header() *bam.Header { return f.header }

// HasIndex reports whether a companion index was loaded.
func (f *File) HasIndex() bool { return f.index != nil }

// Close closes the File's memory-mapped backing file. It is idempotent.
func (f *File) Close() error {
	if !f.closed.CAS(false, true) {
		return nil
	}
	return f.mm.Close()
}
