// Copyright ©2012 The bíogo.bam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bam

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/balanur/hts/internal/htserr"
	"github.com/balanur/hts/sam"
)

// Region is a resolved, 0-based half-open genomic interval: reads whose
// alignment position falls in [Start, Stop) against reference Tid are
// candidates for the query engine.
type Region struct {
	Tid   int
	Start int32
	Stop  int32
}

// ParseRegion resolves a region string of the form "name", "name:start",
// or "name:start-stop" (colon or tab separators both accepted) against h,
// converting the string form's 1-based inclusive coordinates to the
// internal 0-based half-open convention. An open-ended stop defaults to
// the reference's declared length.
func ParseRegion(h *sam.Header, s string) (Region, error) {
	s = strings.Map(func(r rune) rune {
		if r == '\t' {
			return ':'
		}
		return r
	}, s)

	parts := strings.SplitN(s, ":", 2)
	name := parts[0]
	if name == "" {
		return Region{}, fmt.Errorf("bam: %w: empty reference name in region %q", htserr.ErrDomain, s)
	}

	tid, ok := h.GetTID(name)
	if !ok {
		return Region{}, fmt.Errorf("bam: %w: reference %q", htserr.ErrReferenceNotFound, name)
	}
	refLen := h.References()[tid].Len

	if len(parts) == 1 {
		return NewRegion(h, tid, 0, refLen)
	}

	coords := strings.SplitN(parts[1], "-", 2)
	start1, err := strconv.ParseInt(coords[0], 10, 32)
	if err != nil {
		return Region{}, fmt.Errorf("bam: %w: malformed start in region %q: %v", htserr.ErrDomain, s, err)
	}
	if start1 < 1 {
		return Region{}, fmt.Errorf("bam: %w: region start %d in %q is not a positive 1-based coordinate", htserr.ErrDomain, start1, s)
	}

	stop := refLen
	if len(coords) == 2 {
		stop1, err := strconv.ParseInt(coords[1], 10, 32)
		if err != nil {
			return Region{}, fmt.Errorf("bam: %w: malformed stop in region %q: %v", htserr.ErrDomain, s, err)
		}
		stop = int32(stop1) // 1-based inclusive stop == 0-based exclusive stop
	}

	return NewRegion(h, tid, int32(start1)-1, stop)
}

// NewRegion builds and validates a Region from a pre-resolved tid and
// 0-based half-open [start, stop) bounds.
func NewRegion(h *sam.Header, tid int, start, stop int32) (Region, error) {
	if !h.IsValidTID(tid) {
		return Region{}, fmt.Errorf("bam: %w: reference id %d", htserr.ErrReferenceNotFound, tid)
	}
	refLen := h.References()[tid].Len
	if start < 0 {
		return Region{}, fmt.Errorf("bam: %w: region start %d is negative", htserr.ErrDomain, start)
	}
	if start > refLen {
		return Region{}, fmt.Errorf("bam: %w: region start %d out of bounds (reference length %d)", htserr.ErrDomain, start, refLen)
	}
	if start > stop {
		return Region{}, fmt.Errorf("bam: %w: region start %d > stop %d", htserr.ErrDomain, start, stop)
	}
	return Region{Tid: tid, Start: start, Stop: stop}, nil
}
