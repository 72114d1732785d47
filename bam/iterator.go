// Copyright ©2012 The bíogo.bam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bam

import (
	"fmt"
	"io"

	"github.com/balanur/hts/bgzf"
	"github.com/balanur/hts/internal/htserr"
	"github.com/balanur/hts/sam"
)

// Index is the binning-index collaborator the query engine consults to
// find the earliest virtual offset that could hold a record overlapping
// a queried region. Implemented by *bai.Index.
type Index interface {
	Query(tid int, start, stop int32) (bgzf.Offset, bool)
}

// FilterKind tags the three built-in counting filters accepted by Count.
type FilterKind int

const (
	// Nofilter counts every yielded record.
	Nofilter FilterKind = iota
	// All excludes records matching sam.FilterAll (unmapped, secondary,
	// QC-fail, duplicate).
	All
	// Custom counts iff the supplied predicate returns true.
	Custom
)

// Filter is the tagged variant {Nofilter, All, Custom(fn)} dispatched by
// Count. Constructing one with an unknown Kind or a nil Fn for Custom is
// rejected by NewFilter rather than discovered per-record.
type Filter struct {
	Kind FilterKind
	Fn   func(*sam.Record) bool
}

// NewFilter validates and builds a Filter.
func NewFilter(kind FilterKind, fn func(*sam.Record) bool) (Filter, error) {
	switch kind {
	case Nofilter, All:
		return Filter{Kind: kind}, nil
	case Custom:
		if fn == nil {
			return Filter{}, fmt.Errorf("bam: %w: Custom filter requires a non-nil predicate", htserr.ErrDomain)
		}
		return Filter{Kind: Custom, Fn: fn}, nil
	default:
		return Filter{}, fmt.Errorf("bam: %w: unknown filter kind %d", htserr.ErrDomain, kind)
	}
}

func (f Filter) matches(rec *sam.Record) bool {
	switch f.Kind {
	case Nofilter:
		return true
	case All:
		return !rec.Flags.Any(sam.FilterAll)
	case Custom:
		return f.Fn(rec)
	}
	return false
}

// Iterator is the lazy, stateful, non-restartable producer of records
// for a Region (see Fetch), or of every remaining record when untilEOF is
// set. Consuming it via Next to exhaustion or abandoning it mid-iteration
// both leave no background resource alive. Iterator has no Close method
// and never closes the underlying Reader.
type Iterator struct {
	r    *Reader
	tid  int
	stop int32

	untilEOF bool

	rec  *sam.Record
	err  error
	done bool
}

// Fetch returns an Iterator over the records in r for region, using idx
// to locate the earliest candidate virtual offset. From there it yields
// records on region.Tid until one has Pos > region.Stop; records are not
// tested against region.Start, so records ending before Start that lie
// past the candidate offset, and a record at Pos == Stop, are yielded
// too. If idx reports no candidate chunk, the returned Iterator yields
// nothing.
func Fetch(r *Reader, idx Index, region Region) (*Iterator, error) {
	if idx == nil {
		return nil, fmt.Errorf("bam: %w", htserr.ErrNoRandomAccess)
	}

	first, ok := idx.Query(region.Tid, region.Start, region.Stop)
	if !ok {
		return &Iterator{r: r, done: true}, nil
	}
	if err := r.cu.Seek(first); err != nil {
		return nil, err
	}
	return &Iterator{r: r, tid: region.Tid, stop: region.Stop}, nil
}

// FetchUntilEOF returns an Iterator that yields every record from r's
// current position to the end of the stream, bypassing region bounds
// checks entirely.
func FetchUntilEOF(r *Reader) *Iterator {
	return &Iterator{r: r, untilEOF: true}
}

// Next advances the Iterator. It returns false when iteration has ended,
// either because the underlying stream reached EOF, a record fell
// outside the queried region, or an error occurred; Error distinguishes
// the last case from the other two.
func (it *Iterator) Next() bool {
	if it.done {
		return false
	}
	rec, err := it.r.Read()
	if err != nil {
		if err != io.EOF {
			it.err = err
		}
		it.done = true
		return false
	}
	if !it.untilEOF {
		if rec.RefID != int32(it.tid) {
			it.done = true
			return false
		}
		if rec.Pos > it.stop {
			it.done = true
			return false
		}
	}
	it.rec = rec
	return true
}

// Error returns the first non-EOF error encountered during iteration, or
// nil if iteration ended by exhaustion or by leaving the queried region.
func (it *Iterator) Error() error { return it.err }

// Record returns the record produced by the most recent successful Next.
func (it *Iterator) Record() *sam.Record { return it.rec }

// Count iterates the records Fetch yields for region and returns the
// number matching filter; Count(r, idx, region, Nofilter-filter) equals the
// number of records Fetch would yield.
func Count(r *Reader, idx Index, region Region, filter Filter) (int, error) {
	it, err := Fetch(r, idx, region)
	if err != nil {
		return 0, err
	}
	n := 0
	for it.Next() {
		if filter.matches(it.Record()) {
			n++
		}
	}
	return n, it.Error()
}
