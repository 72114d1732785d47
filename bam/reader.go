// Copyright ©2012 The bíogo.bam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bam implements the BAM header bootstrap and record reader: the
// magic check, embedded SAM text, reference table, and the fixed plus
// variable-length fields of individual alignment records.
package bam

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/balanur/hts/bgzf"
	"github.com/balanur/hts/internal/htserr"
	"github.com/balanur/hts/sam"
)

var bamMagic = [4]byte{'B', 'A', 'M', 1}

// Omit controls how much of a record Reader.Read decodes, trading
// decode cost for completeness.
type Omit int

const (
	// None decodes every field of a record.
	None Omit = iota
	// AuxTags skips decoding the auxiliary tag block.
	AuxTags
	// AllVariableLengthData skips sequence, quality, and auxiliary data,
	// decoding only the fixed-width fields, read name, and CIGAR.
	AllVariableLengthData
)

// Reader decodes BAM records from a bgzf.Cursor positioned just past the
// header, as built by ReadHeader.
type Reader struct {
	cu   *bgzf.Cursor
	h    *sam.Header
	c    *bgzf.Chunk
	omit Omit

	lastChunk bgzf.Chunk
	buf       [4]byte
}

// NewReader wraps cu, which must already be positioned at the start of
// the record stream (immediately after ReadHeader has consumed the
// header), as the record source for h.
func NewReader(cu *bgzf.Cursor, h *sam.Header) *Reader {
	return &Reader{cu: cu, h: h}
}

// Header returns the Header this Reader's records are relative to.
func (r *Reader) Header() *sam.Header { return r.h }

// SetOmit configures how much of each record Read decodes.
func (r *Reader) SetOmit(o Omit) { r.omit = o }

// SetChunk limits reading to the span of c, seeking the underlying
// Cursor to c.Begin. Passing nil removes any limit.
func (r *Reader) SetChunk(c *bgzf.Chunk) error {
	if c != nil {
		if err := r.cu.Seek(c.Begin); err != nil {
			return err
		}
	}
	r.c = c
	return nil
}

// LastChunk returns the Chunk spanned by the most recent successful Read.
func (r *Reader) LastChunk() bgzf.Chunk { return r.lastChunk }

// Close closes the underlying Cursor.
func (r *Reader) Close() error { return r.cu.Close() }

func vOffset(o bgzf.Offset) uint64 { return o.Combined() }

// Read decodes and returns the next record in the stream, honoring any
// Chunk limit set by SetChunk and the field omission level set by
// SetOmit.
func (r *Reader) Read() (*sam.Record, error) {
	if r.c != nil && vOffset(r.cu.Tell()) >= vOffset(r.c.End) {
		return nil, io.EOF
	}

	body, err := r.readRecordBody()
	if err != nil {
		return nil, err
	}

	b := &fieldBuffer{data: body}
	var rec sam.Record

	refID := b.readInt32()
	rec.Pos = b.readInt32()
	nLen := b.readUint8()
	rec.MapQ = byte(b.readUint8())
	rec.Bin = b.readUint16()
	nCigar := b.readUint16()
	rec.Flags = sam.Flags(b.readUint16())
	lSeq := int32(b.readUint32())
	rec.NextRefID = b.readInt32()
	rec.NextPos = b.readInt32()
	rec.TempLen = b.readInt32()

	rec.Name = string(b.bytes(int(nLen) - 1))
	b.discard(1)

	rec.Cigar = readCigarOps(b.bytes(int(nCigar) * 4))

	if r.omit >= AllVariableLengthData {
		if err := r.resolveRefs(&rec, refID); err != nil {
			return nil, err
		}
		return &rec, nil
	}

	rec.Seq = decodeSeq(b.bytes(int(lSeq+1) >> 1), int(lSeq))
	rec.Qual = b.bytes(int(lSeq))

	if r.omit >= AuxTags {
		if err := r.resolveRefs(&rec, refID); err != nil {
			return nil, err
		}
		return &rec, nil
	}

	aux, err := parseAux(b.bytes(b.len()))
	if err != nil {
		return nil, err
	}
	rec.Aux = aux

	if err := r.resolveRefs(&rec, refID); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Reader) resolveRefs(rec *sam.Record, refID int32) error {
	rec.RefID = refID
	nrefs := int32(len(r.h.References()))
	if refID != -1 && (refID < -1 || refID >= nrefs) {
		return fmt.Errorf("bam: %w: record reference id %d out of range", htserr.ErrDomain, refID)
	}
	if rec.NextRefID != -1 && (rec.NextRefID < -1 || rec.NextRefID >= nrefs) {
		return fmt.Errorf("bam: %w: record mate reference id %d out of range", htserr.ErrDomain, rec.NextRefID)
	}
	return nil
}

// readRecordBody reads the 4-byte block_size prefix and then the record
// body of that many bytes, recording the Chunk the read spanned.
func (r *Reader) readRecordBody() ([]byte, error) {
	start := r.cu.Tell()

	n, err := io.ReadFull(r.cu, r.buf[:4])
	if err != nil {
		if err == io.ErrUnexpectedEOF || n == 0 {
			return nil, io.EOF
		}
		return nil, err
	}
	size := int32(binary.LittleEndian.Uint32(r.buf[:4]))
	if size < 0 {
		return nil, fmt.Errorf("bam: %w: negative record block_size %d", htserr.ErrDomain, size)
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(r.cu, body); err != nil {
		return nil, fmt.Errorf("bam: truncated record: %w", err)
	}

	r.lastChunk = bgzf.Chunk{Begin: start, End: r.cu.Tell()}
	return body, nil
}

// readCigarOps decodes a run of packed 4-byte CIGAR operations; len(cb)
// must be a multiple of 4.
func readCigarOps(cb []byte) []sam.CigarOp {
	ops := make([]sam.CigarOp, len(cb)/4)
	for i := range ops {
		v := binary.LittleEndian.Uint32(cb[i*4 : i*4+4])
		ops[i] = sam.CigarOp{Len: int32(v >> 4), Type: sam.CigarOpType(v & 0xf)}
	}
	return ops
}

var seqNibbles = [...]byte{'=', 'A', 'C', 'M', 'G', 'R', 'S', 'V', 'T', 'W', 'Y', 'H', 'K', 'D', 'B', 'N'}

// decodeSeq unpacks BAM's 4-bit-per-base sequence encoding into one byte
// per base, ASCII-encoded.
func decodeSeq(packed []byte, lSeq int) []byte {
	seq := make([]byte, lSeq)
	for i := 0; i < lSeq; i++ {
		b := packed[i/2]
		var nibble byte
		if i%2 == 0 {
			nibble = b >> 4
		} else {
			nibble = b & 0xf
		}
		seq[i] = seqNibbles[nibble]
	}
	return seq
}

// auxValueWidth maps an aux field's type byte to the fixed width of its
// value, or -1 for variable-width types (Z, H, B) handled specially.
var auxValueWidth = map[byte]int{
	'A': 1, 'c': 1, 'C': 1,
	's': 2, 'S': 2,
	'i': 4, 'I': 4,
	'f': 4,
	'Z': -1, 'H': -1, 'B': -1,
}

// parseAux decodes the variable-length auxiliary tag block trailing a
// record into a slice of sam.Aux.
func parseAux(data []byte) ([]sam.Aux, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var aux []sam.Aux
	i := 0
	for i+3 <= len(data) {
		tag := [2]byte{data[i], data[i+1]}
		typ := data[i+2]
		i += 3

		width, known := auxValueWidth[typ]
		if !known {
			return nil, fmt.Errorf("bam: %w: unrecognised aux type %q", htserr.ErrMalformedBlock, typ)
		}

		var value interface{}
		switch {
		case typ == 'A':
			value = data[i]
			i++
		case typ == 'c':
			value = int8(data[i])
			i++
		case typ == 'C':
			value = data[i]
			i++
		case typ == 's':
			value = int16(binary.LittleEndian.Uint16(data[i : i+2]))
			i += 2
		case typ == 'S':
			value = binary.LittleEndian.Uint16(data[i : i+2])
			i += 2
		case typ == 'i':
			value = int32(binary.LittleEndian.Uint32(data[i : i+4]))
			i += 4
		case typ == 'I':
			value = binary.LittleEndian.Uint32(data[i : i+4])
			i += 4
		case typ == 'f':
			value = math.Float32frombits(binary.LittleEndian.Uint32(data[i : i+4]))
			i += 4
		case typ == 'Z' || typ == 'H':
			end := bytes.IndexByte(data[i:], 0)
			if end < 0 {
				return nil, fmt.Errorf("bam: %w: unterminated %c-type aux value", htserr.ErrMalformedBlock, typ)
			}
			value = string(data[i : i+end])
			i += end + 1
		case typ == 'B':
			if i >= len(data) {
				return nil, fmt.Errorf("bam: %w: truncated B-type aux value", htserr.ErrMalformedBlock)
			}
			sub := data[i]
			i++
			count := int32(binary.LittleEndian.Uint32(data[i : i+4]))
			i += 4
			subWidth, known := auxValueWidth[sub]
			if !known || subWidth < 0 {
				return nil, fmt.Errorf("bam: %w: invalid B-type element %q", htserr.ErrMalformedBlock, sub)
			}
			n := int(count) * subWidth
			value = append([]byte(nil), data[i:i+n]...)
			i += n
		default:
			_ = width
		}

		aux = append(aux, sam.Aux{Tag: tag, Type: typ, Value: value})
	}
	return aux, nil
}

