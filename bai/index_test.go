// Copyright ©2012 The bíogo.bam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bai

import (
	"bytes"
	"testing"

	check "gopkg.in/check.v1"

	"github.com/balanur/hts/bgzf"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

func mustOffset(c *check.C, coffset int64, uoffset int) bgzf.Offset {
	off, err := bgzf.MakeOffset(coffset, uoffset)
	c.Assert(err, check.IsNil)
	return off
}

func (s *S) TestWriteThenReadRoundTrip(c *check.C) {
	begin := mustOffset(c, 0, 0)
	end := mustOffset(c, 100, 10)

	idx := &Index{
		refs: []refIndex{
			{
				bins: []bin{
					{id: reg2bin(0, 200), chunks: []bgzf.Chunk{{Begin: begin, End: end}}},
				},
				intervals: []bgzf.Offset{begin},
				stats:     &ReferenceStats{Mapped: 1446, Unmapped: 18},
			},
		},
		noCoor: 42,
	}

	var buf bytes.Buffer
	c.Assert(WriteTo(&buf, idx), check.IsNil)

	got, err := ReadFrom(&buf)
	c.Assert(err, check.IsNil)
	c.Check(len(got.refs), check.Equals, 1)
	c.Check(len(got.refs[0].bins), check.Equals, 1)
	c.Check(got.refs[0].bins[0].id, check.Equals, idx.refs[0].bins[0].id)
	c.Check(got.refs[0].bins[0].chunks[0].Begin, check.Equals, begin)
	c.Check(got.refs[0].bins[0].chunks[0].End, check.Equals, end)
	c.Check(*got.refs[0].stats, check.Equals, ReferenceStats{Mapped: 1446, Unmapped: 18})
	c.Check(got.noCoor, check.Equals, uint64(42))
}

func (s *S) TestQueryFindsOverlappingChunk(c *check.C) {
	begin := mustOffset(c, 1000, 0)
	end := mustOffset(c, 2000, 0)
	idx := &Index{
		refs: []refIndex{
			{
				bins: []bin{
					{id: reg2bin(0, 100), chunks: []bgzf.Chunk{{Begin: begin, End: end}}},
				},
				intervals: []bgzf.Offset{{}},
			},
		},
	}

	off, ok := idx.Query(0, 10, 50)
	c.Assert(ok, check.Equals, true)
	c.Check(off, check.Equals, begin)
}

func (s *S) TestQueryReportsAbsentWhenNoBinOverlaps(c *check.C) {
	idx := &Index{refs: []refIndex{{}}}
	_, ok := idx.Query(0, 10, 50)
	c.Check(ok, check.Equals, false)
}

func (s *S) TestQueryOutOfRangeTid(c *check.C) {
	idx := &Index{refs: []refIndex{{}}}
	_, ok := idx.Query(5, 0, 10)
	c.Check(ok, check.Equals, false)
}

func (s *S) TestReg2BinSmallIntervalHitsFinestBin(c *check.C) {
	// A small interval wholly within one 16kbp window hits the finest bin.
	c.Check(reg2bin(100, 200), check.Equals, uint32(4681))
	c.Check(reg2bin(0, 1<<14-1), check.Not(check.Equals), uint32(0))
}
