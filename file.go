// Copyright ©2012 The bíogo.bam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hts

import (
	"errors"
	"fmt"
	"io"

	"github.com/balanur/hts/bam"
	"github.com/balanur/hts/sam"
)

// Fetch returns an Iterator over the records for the 0-based half-open
// interval [start, stop) on the named reference, as bam.Fetch yields
// them. It requires a loaded companion index.
func (f *File) Fetch(refName string, start, stop int32) (*bam.Iterator, error) {
	tid, ok := f.header.GetTID(refName)
	if !ok {
		return nil, fmt.Errorf("hts: reference %q: %w", refName, ErrReferenceNotFound)
	}
	region, err := bam.NewRegion(f.header.Header, tid, start, stop)
	if err != nil {
		return nil, err
	}
	return f.fetchRegion(region)
}

// FetchString returns an Iterator over the records overlapping a region
// expressed as "name", "name:start", or "name:start-stop", with start
// and stop given 1-based and inclusive.
func (f *File) FetchString(region string) (*bam.Iterator, error) {
	r, err := bam.ParseRegion(f.header.Header, region)
	if err != nil {
		return nil, err
	}
	return f.fetchRegion(r)
}

func (f *File) fetchRegion(region bam.Region) (*bam.Iterator, error) {
	if f.index == nil {
		return nil, ErrNoRandomAccess
	}
	return bam.Fetch(f.reader, f.index, region)
}

// FetchUntilEOF returns an Iterator yielding every remaining record from
// the File's current position, bypassing region bound checks.
func (f *File) FetchUntilEOF() *bam.Iterator {
	return bam.FetchUntilEOF(f.reader)
}

// Count iterates the records Fetch yields for [start, stop) on refName
// and returns the number matching filter.
func (f *File) Count(refName string, start, stop int32, filter bam.Filter) (int, error) {
	tid, ok := f.header.GetTID(refName)
	if !ok {
		return 0, fmt.Errorf("hts: reference %q: %w", refName, ErrReferenceNotFound)
	}
	region, err := bam.NewRegion(f.header.Header, tid, start, stop)
	if err != nil {
		return 0, err
	}
	if f.index == nil {
		return 0, ErrNoRandomAccess
	}
	return bam.Count(f.reader, f.index, region, filter)
}

// IndexStat is one reference's entry in GetIndexStats' result: the
// mapped and unmapped read counts the index recorded for it, plus their
// sum for convenience.
type IndexStat struct {
	Mapped   uint64
	Unmapped uint64
}

// Total returns Mapped+Unmapped.
func (s IndexStat) Total() uint64 { return s.Mapped + s.Unmapped }

// GetIndexStats returns, per reference in header order, the mapped and
// unmapped read counts recorded by the companion index. It requires a
// loaded index.
func (f *File) GetIndexStats() ([]IndexStat, error) {
	if f.index == nil {
		return nil, ErrNoRandomAccess
	}
	refs := f.header.References()
	stats := make([]IndexStat, len(refs))
	for tid := range refs {
		rs, ok := f.index.ReferenceStats(tid)
		if !ok {
			continue
		}
		stats[tid] = IndexStat{Mapped: rs.Mapped, Unmapped: rs.Unmapped}
	}
	return stats, nil
}

// UnplacedUnmapped returns the index's global count of reads with no
// reported coordinate at all, distinct from any single reference's
// unmapped count.
func (f *File) UnplacedUnmapped() (uint64, error) {
	if f.index == nil {
		return 0, ErrNoRandomAccess
	}
	return f.index.Unmapped(), nil
}

// Head returns the first n records of the file without disturbing the
// caller's cursor position. When multipleIterators is true, an
// independent File is opened over the same path with its own Cursor and
// Cache, since a Cursor is not safe for concurrent use; when false, the
// caller's cursor is saved, rewound to the start of the record stream
// (the virtual offset recorded when the header was read), read from, and
// restored.
func (f *File) Head(n int, multipleIterators bool) ([]*sam.Record, error) {
	if n < 0 {
		return nil, fmt.Errorf("hts: %w: negative n", ErrDomain)
	}

	if multipleIterators {
		other, err := Open(f.path, WithCacheSize(1), WithLogger(f.logger))
		if err != nil {
			return nil, err
		}
		defer other.Close()
		return readN(other.reader, n)
	}

	saved := f.cu.Tell()
	if err := f.cu.Seek(bam.HeaderEndOffset(f.header)); err != nil {
		return nil, err
	}
	recs, err := readN(f.reader, n)
	if seekErr := f.cu.Seek(saved); seekErr != nil && err == nil {
		err = seekErr
	}
	return recs, err
}

func readN(r *bam.Reader, n int) ([]*sam.Record, error) {
	recs := make([]*sam.Record, 0, n)
	for i := 0; i < n; i++ {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return recs, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
