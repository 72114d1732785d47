// Copyright ©2012 The bíogo.bam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bgzf

import (
	"bytes"
	"io"
	"testing"

	check "gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

func roundTrip(c *check.C, payload []byte) []byte {
	var buf bytes.Buffer
	n, err := encodeBlock(&buf, payload)
	c.Assert(err, check.IsNil)
	rawLen, got, err := decodeBlock(&buf)
	c.Assert(err, check.IsNil)
	c.Check(rawLen, check.Equals, n)
	c.Check(bytes.Equal(got, payload), check.Equals, true)
	return got
}

func (s *S) TestEncodeDecodeRoundTrip(c *check.C) {
	for _, payload := range [][]byte{
		nil,
		[]byte("a"),
		bytes.Repeat([]byte("acgtACGT"), 4096),
	} {
		roundTrip(c, payload)
	}
}

func (s *S) TestEOFMarkerIsWellFormedBlock(c *check.C) {
	r := bytes.NewReader(eofMarker)
	rawLen, payload, err := decodeBlock(r)
	c.Assert(err, check.IsNil)
	c.Check(rawLen, check.Equals, len(eofMarker))
	c.Check(payload, check.DeepEquals, []byte{})
}

func (s *S) TestDecodeBlockRejectsBadMagic(c *check.C) {
	bad := append([]byte{}, eofMarker...)
	bad[0] = 0x00
	_, _, err := decodeBlock(bytes.NewReader(bad))
	c.Assert(err, check.NotNil)
}

func (s *S) TestDecodeBlockRejectsBadCRC(c *check.C) {
	var buf bytes.Buffer
	_, err := encodeBlock(&buf, []byte("hello, bgzf"))
	c.Assert(err, check.IsNil)
	corrupted := buf.Bytes()
	corrupted[len(corrupted)-8] ^= 0xff // flip a byte inside the CRC32 trailer
	_, _, err = decodeBlock(bytes.NewReader(corrupted))
	c.Assert(err, check.NotNil)
}

func (s *S) TestOffsetCombinedSplitRoundTrip(c *check.C) {
	off, err := MakeOffset(1<<40, 1<<10)
	c.Assert(err, check.IsNil)
	vo := off.Combined()
	c.Check(SplitOffset(vo), check.Equals, off)
}

func (s *S) TestMakeOffsetRejectsOutOfRange(c *check.C) {
	_, err := MakeOffset(-1, 0)
	c.Assert(err, check.NotNil)
	_, err = MakeOffset(0, 1<<16)
	c.Assert(err, check.NotNil)
}

func (s *S) TestOffsetLess(c *check.C) {
	a := Offset{File: 0, Block: 10}
	b := Offset{File: 0, Block: 20}
	c.Check(a.Less(b), check.Equals, true)
	c.Check(b.Less(a), check.Equals, false)
}

func (s *S) TestLRUCacheEvictsLeastRecentlyUsed(c *check.C) {
	cache, err := NewLRUCache(2)
	c.Assert(err, check.IsNil)

	cache.Put(0, []byte("a"), 10)
	cache.Put(10, []byte("b"), 10)
	_, _, ok := cache.Get(0) // touch 0, making 10 the least recently used
	c.Assert(ok, check.Equals, true)

	cache.Put(20, []byte("c"), 10)
	c.Check(cache.Len(), check.Equals, 2)

	_, _, ok = cache.Get(10)
	c.Check(ok, check.Equals, false)
	_, _, ok = cache.Get(0)
	c.Check(ok, check.Equals, true)
	_, _, ok = cache.Get(20)
	c.Check(ok, check.Equals, true)
}

func (s *S) TestNewLRUCacheRejectsNonPositiveCapacity(c *check.C) {
	_, err := NewLRUCache(0)
	c.Assert(err, check.NotNil)
}

func (s *S) TestCursorReadAcrossBlockBoundary(c *check.C) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	_, err := w.Write(bytes.Repeat([]byte("x"), MaxBlockSize))
	c.Assert(err, check.IsNil)
	_, err = w.Write([]byte("tail"))
	c.Assert(err, check.IsNil)
	c.Assert(w.Close(), check.IsNil)

	cu := NewCursor(bytes.NewReader(buf.Bytes()))
	got := make([]byte, MaxBlockSize+4)
	n, err := io.ReadFull(cu, got)
	c.Assert(err, check.IsNil)
	c.Check(n, check.Equals, len(got))
	c.Check(string(got[MaxBlockSize:]), check.Equals, "tail")
}

func (s *S) TestCursorReadReturnsEOFAtStreamEnd(c *check.C) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	_, err := w.Write([]byte("short"))
	c.Assert(err, check.IsNil)
	c.Assert(w.Close(), check.IsNil)

	cu := NewCursor(bytes.NewReader(buf.Bytes()))
	got := make([]byte, 5)
	n, err := cu.Read(got)
	c.Assert(err, check.IsNil)
	c.Check(string(got[:n]), check.Equals, "short")

	_, err = cu.Read(got)
	c.Check(err, check.Equals, io.EOF)
}
