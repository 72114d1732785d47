// Copyright ©2012 The bíogo.bam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bgzf

import (
	"bytes"
	"fmt"
	"io"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/balanur/hts/internal/htserr"
)

// state is the Cursor's position in its UNLOADED/LOADED/EOF state machine.
type state int

const (
	stateUnloaded state = iota
	stateLoaded
	stateEOF
)

// Cursor is a single-threaded, cooperative reader over a BGZF stream: it
// materializes one block at a time into an optional Cache and serves Read
// out of that block's payload, advancing to the next block only when the
// current one is exhausted. Unlike the concurrent read-ahead reader this
// package is descended from, a Cursor never decompresses a block it has
// not been asked to read — blocks are never decompressed ahead of the
// read that needs them.
type Cursor struct {
	src io.ReadSeeker

	cache  Cache
	logger *zap.Logger

	strictTruncation bool

	state state

	// coffset is the physical offset of the block currently loaded (or,
	// in the UNLOADED state, the offset load will next read from).
	coffset int64
	payload []byte
	rawLen  int
	within  int

	closed atomic.Bool
}

// Option configures a Cursor.
type Option func(*Cursor)

// WithCache attaches a Cache that load consults before decompressing and
// populates after decompressing.
func WithCache(c Cache) Option {
	return func(cu *Cursor) { cu.cache = c }
}

// WithLogger overrides the Cursor's no-op default logger.
func WithLogger(l *zap.Logger) Option {
	return func(cu *Cursor) { cu.logger = l }
}

// WithStrictTruncation makes CheckEOF return ErrTruncated instead of only
// logging a warning when the stream's trailing EOF marker is missing.
func WithStrictTruncation() Option {
	return func(cu *Cursor) { cu.strictTruncation = true }
}

// NewCursor constructs a Cursor reading blocks from src, starting
// positioned at the stream's first block (virtual offset 0/0).
func NewCursor(src io.ReadSeeker, opts ...Option) *Cursor {
	cu := &Cursor{
		src:    src,
		logger: zap.NewNop(),
		state:  stateUnloaded,
	}
	for _, opt := range opts {
		opt(cu)
	}
	return cu
}

// Tell returns the Cursor's current virtual offset.
func (cu *Cursor) Tell() Offset {
	return Offset{File: cu.coffset, Block: uint16(cu.within)}
}

// load materializes the block at cu.coffset, consulting the Cache first
// and decoding from cu.src on a miss. It transitions the Cursor to LOADED
// on success or EOF if the stream ends cleanly at cu.coffset.
func (cu *Cursor) load() error {
	if cu.cache != nil {
		if payload, rawLen, ok := cu.cache.Get(cu.coffset); ok {
			cu.payload, cu.rawLen = payload, rawLen
			cu.state = stateLoaded
			return nil
		}
	}

	if _, err := cu.src.Seek(cu.coffset, io.SeekStart); err != nil {
		return fmt.Errorf("bgzf: seek to block at %d: %w", cu.coffset, err)
	}

	rawLen, payload, err := decodeBlock(cu.src)
	if err != nil {
		if err == io.EOF {
			cu.state = stateEOF
			cu.payload = nil
			cu.rawLen = 0
			return nil
		}
		return err
	}

	cu.payload, cu.rawLen = payload, rawLen
	cu.state = stateLoaded
	if cu.cache != nil {
		cu.cache.Put(cu.coffset, payload, rawLen)
	}
	cu.logger.Debug("loaded bgzf block",
		zap.Int64("coffset", cu.coffset),
		zap.Int("rawLen", rawLen),
		zap.Int("payloadLen", len(payload)))
	return nil
}

// ensureLoaded loads the block at the current physical offset if the
// Cursor has not yet loaded anything at this position.
func (cu *Cursor) ensureLoaded() error {
	if cu.state == stateUnloaded {
		return cu.load()
	}
	return nil
}

// Seek repositions the Cursor to a virtual offset. within must not exceed
// the length of the payload the target block decompresses to; Seek loads
// the target block first and returns ErrDomain when it does.
func (cu *Cursor) Seek(off Offset) error {
	if cu.coffset != off.File || cu.state == stateUnloaded {
		cu.coffset = off.File
		cu.state = stateUnloaded
		if err := cu.load(); err != nil {
			return err
		}
	}
	cu.within = int(off.Block)
	if cu.within > len(cu.payload) {
		return fmt.Errorf("bgzf: %w: within-block offset %d exceeds payload length %d at block %d",
			htserr.ErrDomain, cu.within, len(cu.payload), cu.coffset)
	}
	return nil
}

// Read implements io.Reader, lazily advancing across block boundaries.
// Reading at EOF returns (0, io.EOF).
func (cu *Cursor) Read(p []byte) (int, error) {
	if err := cu.ensureLoaded(); err != nil {
		return 0, err
	}
	if cu.state == stateEOF {
		return 0, io.EOF
	}

	total := 0
	for total < len(p) {
		if cu.within >= len(cu.payload) {
			if err := cu.advanceBlock(); err != nil {
				if err == io.EOF {
					if total > 0 {
						return total, nil
					}
					return 0, io.EOF
				}
				return total, err
			}
			if cu.state == stateEOF {
				if total > 0 {
					return total, nil
				}
				return 0, io.EOF
			}
		}
		n := copy(p[total:], cu.payload[cu.within:])
		cu.within += n
		total += n
	}
	return total, nil
}

// advanceBlock moves the Cursor to the block immediately following the
// one currently loaded and loads it.
func (cu *Cursor) advanceBlock() error {
	cu.coffset += int64(cu.rawLen)
	cu.within = 0
	cu.state = stateUnloaded
	if err := cu.load(); err != nil {
		return err
	}
	if cu.state == stateEOF {
		return io.EOF
	}
	return nil
}

// RawBlock returns the verbatim on-disk bytes (header, compressed
// payload, and trailer) of the block starting at coffset, without
// disturbing the Cursor's current read position. It is used to capture a
// BAM header's first block for verbatim reproduction by a writer.
func (cu *Cursor) RawBlock(coffset int64) ([]byte, error) {
	if _, err := cu.src.Seek(coffset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("bgzf: seek to block at %d: %w", coffset, err)
	}
	rawLen, _, err := decodeBlock(cu.src)
	if err != nil {
		return nil, err
	}
	raw := make([]byte, rawLen)
	if _, err := cu.src.Seek(coffset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("bgzf: seek to block at %d: %w", coffset, err)
	}
	if _, err := io.ReadFull(cu.src, raw); err != nil {
		return nil, err
	}
	// Restore the underlying source's position: load always seeks
	// explicitly before reading, so leaving src elsewhere is harmless, but
	// resetting it here keeps behavior predictable for callers sharing src.
	if _, err := cu.src.Seek(cu.coffset, io.SeekStart); err != nil {
		return nil, err
	}
	return raw, nil
}

// CheckEOF reads the final 28 bytes available from an io.ReaderAt backing
// the same stream and reports whether they match the canonical BGZF EOF
// marker. When strictTruncation is set, a mismatch is returned as
// ErrTruncated; otherwise it is only logged as a warning and nil is
// returned, mirroring bamnostic's default-permissive truncation check.
func (cu *Cursor) CheckEOF(size int64, ra io.ReaderAt) error {
	if size < int64(len(eofMarker)) {
		return cu.truncationResult(fmt.Errorf("bgzf: %w: stream shorter than eof marker", htserr.ErrTruncated))
	}
	tail := make([]byte, len(eofMarker))
	if _, err := ra.ReadAt(tail, size-int64(len(eofMarker))); err != nil {
		return cu.truncationResult(fmt.Errorf("bgzf: %w: reading trailing bytes: %v", htserr.ErrTruncated, err))
	}
	if !bytes.Equal(tail, eofMarker) {
		return cu.truncationResult(fmt.Errorf("bgzf: %w: trailing bytes do not match eof marker", htserr.ErrTruncated))
	}
	return nil
}

func (cu *Cursor) truncationResult(err error) error {
	if cu.strictTruncation {
		return err
	}
	cu.logger.Warn("bgzf stream missing trailing eof marker", zap.Error(err))
	return nil
}

// Close marks the Cursor closed. It is idempotent: a second call returns
// nil without effect.
func (cu *Cursor) Close() error {
	if !cu.closed.CAS(false, true) {
		return nil
	}
	if c, ok := cu.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
