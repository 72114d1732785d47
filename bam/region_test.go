// Copyright ©2012 The bíogo.bam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bam

import (
	"testing"

	check "gopkg.in/check.v1"

	"github.com/balanur/hts/sam"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

func testHeader() *sam.Header {
	return sam.NewHeader("", []sam.Reference{
		{Name: "chr1", Len: 1575},
		{Name: "chr2", Len: 1584},
	})
}

func (s *S) TestParseRegionNameOnly(c *check.C) {
	r, err := ParseRegion(testHeader(), "chr2")
	c.Assert(err, check.IsNil)
	c.Check(r, check.Equals, Region{Tid: 1, Start: 0, Stop: 1584})
}

func (s *S) TestParseRegionNameStart(c *check.C) {
	r, err := ParseRegion(testHeader(), "chr1:10")
	c.Assert(err, check.IsNil)
	c.Check(r, check.Equals, Region{Tid: 0, Start: 9, Stop: 1575})
}

func (s *S) TestParseRegionNameStartStop(c *check.C) {
	r, err := ParseRegion(testHeader(), "chr1:1-100")
	c.Assert(err, check.IsNil)
	c.Check(r, check.Equals, Region{Tid: 0, Start: 0, Stop: 100})
}

func (s *S) TestParseRegionTabSeparator(c *check.C) {
	r, err := ParseRegion(testHeader(), "chr1\t1-100")
	c.Assert(err, check.IsNil)
	c.Check(r, check.Equals, Region{Tid: 0, Start: 0, Stop: 100})
}

func (s *S) TestParseRegionUnknownReference(c *check.C) {
	_, err := ParseRegion(testHeader(), "chr10:1-10")
	c.Assert(err, check.NotNil)
}

func (s *S) TestNewRegionOutOfBounds(c *check.C) {
	_, err := NewRegion(testHeader(), 0, 1700, 1701)
	c.Assert(err, check.NotNil)
}

func (s *S) TestNewRegionStartAfterStop(c *check.C) {
	_, err := NewRegion(testHeader(), 0, 100, 10)
	c.Assert(err, check.NotNil)
}
