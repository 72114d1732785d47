// Copyright ©2012 The bíogo.bam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bam

import (
	"bytes"
	"encoding/binary"

	check "gopkg.in/check.v1"

	"github.com/balanur/hts/bgzf"
)

// buildFixture assembles a minimal well-formed BGZF-wrapped BAM stream
// with one reference ("chr1", length 100) and one unmapped-flagged
// record named "r1" with an empty CIGAR, for exercising the header
// bootstrap and record reader together.
func buildFixture() []byte {
	var logical bytes.Buffer
	logical.WriteString("BAM\x01")

	samText := []byte("@HD\tVN:1.6\n")
	writeInt32(&logical, int32(len(samText)))
	logical.Write(samText)

	writeInt32(&logical, 1) // n_ref
	name := []byte("chr1\x00")
	writeInt32(&logical, int32(len(name)))
	logical.Write(name)
	writeInt32(&logical, 100) // l_ref

	// One record: refID=0, pos=5, l_read_name=3 ("r1\0"), mapq=0, bin=0,
	// n_cigar_op=0, flag=4 (unmapped), l_seq=0, next_refID=-1, next_pos=-1,
	// tlen=0, read_name="r1\0", no cigar, no seq/qual, no aux.
	var rec bytes.Buffer
	writeInt32(&rec, 0)  // refID
	writeInt32(&rec, 5)  // pos
	rec.WriteByte(3)     // l_read_name
	rec.WriteByte(0)     // mapq
	writeUint16(&rec, 0) // bin
	writeUint16(&rec, 0) // n_cigar_op
	writeUint16(&rec, 4) // flag = unmapped
	writeInt32(&rec, 0)  // l_seq
	writeInt32(&rec, -1) // next_refID
	writeInt32(&rec, -1) // next_pos
	writeInt32(&rec, 0)  // tlen
	rec.WriteString("r1\x00")

	writeInt32(&logical, int32(rec.Len()))
	logical.Write(rec.Bytes())

	var out bytes.Buffer
	w := bgzf.NewWriter(&out)
	w.Write(logical.Bytes())
	w.Close()
	return out.Bytes()
}

func writeInt32(buf *bytes.Buffer, v int32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	buf.Write(b[:])
}

func writeUint16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func (s *S) TestReadHeaderAndRecord(c *check.C) {
	data := buildFixture()
	cu := bgzf.NewCursor(bytes.NewReader(data))

	h, err := ReadHeader(cu)
	c.Assert(err, check.IsNil)
	c.Check(len(h.References()), check.Equals, 1)
	c.Check(h.References()[0].Name, check.Equals, "chr1")
	c.Check(h.References()[0].Len, check.Equals, int32(100))
	c.Check(len(h.RawFirstBlock()) > 0, check.Equals, true)

	r := NewReader(cu, h.Header)
	rec, err := r.Read()
	c.Assert(err, check.IsNil)
	c.Check(rec.Name, check.Equals, "r1")
	c.Check(rec.Pos, check.Equals, int32(5))
	c.Check(rec.Flags.Has(0x4), check.Equals, true)

	_, err = r.Read()
	c.Check(err, check.NotNil) // io.EOF at stream end
}
