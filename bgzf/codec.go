// Copyright ©2012 The bíogo.bam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bgzf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/balanur/hts/internal/htserr"
)

// MaxBlockSize is the largest permissible BGZF block, compressed or
// uncompressed: ISIZE and the deflated payload must each fit in the field
// widths the format allots them.
const MaxBlockSize = 0x10000

const (
	blockMetaHeaderLen = 12 // ID1,ID2,CM,FLG,MTIME(4),XFL,OS,XLEN
	blockTrailerLen    = 8  // CRC32(4) + ISIZE(4)
	bgzfFixedOverhead  = 19 // 12-byte header + 8-byte trailer - 1 (BSIZE is total length - 1); see BSIZE arithmetic below
)

var bgzfSubfieldID = [2]byte{0x42, 0x43} // "BC"

// eofMarker is the fixed 28-byte empty BGZF block that terminates a
// well-formed BAM/BGZF stream. It is written verbatim by Writer.Close and
// compared verbatim by truncation checks.
var eofMarker = []byte{
	0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0xff, 0x06, 0x00,
	0x42, 0x43, 0x02, 0x00, 0x1b, 0x00, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
}

// EOFMarker returns a copy of the fixed 28-byte BGZF EOF block.
func EOFMarker() []byte {
	m := make([]byte, len(eofMarker))
	copy(m, eofMarker)
	return m
}

// decodeBlock reads exactly one BGZF block from r, validating the fixed
// header, BC extra subfield, and trailing CRC32/ISIZE, and returns the
// block's total on-disk length (BSIZE+1) together with its inflated
// payload. An io.EOF returned by the very first read of the header means
// the stream ended cleanly at a block boundary; the caller (Cursor.load)
// treats that as entry into the EOF state rather than a fatal error. A
// header cut short is returned as io.ErrUnexpectedEOF.
func decodeBlock(r io.Reader) (rawLen int, payload []byte, err error) {
	var hdr [blockMetaHeaderLen]byte
	if _, err = io.ReadFull(r, hdr[:]); err != nil {
		return 0, nil, err
	}
	if hdr[0] != 0x1f || hdr[1] != 0x8b {
		return 0, nil, fmt.Errorf("bgzf: %w: bad ID1/ID2 %#x %#x", htserr.ErrMalformedBlock, hdr[0], hdr[1])
	}
	if hdr[2] != 8 {
		return 0, nil, fmt.Errorf("bgzf: %w: CM %d, want 8", htserr.ErrMalformedBlock, hdr[2])
	}
	if hdr[3] != 4 {
		return 0, nil, fmt.Errorf("bgzf: %w: FLG %d, want FEXTRA(4)", htserr.ErrMalformedBlock, hdr[3])
	}
	xlen := int(binary.LittleEndian.Uint16(hdr[10:12]))

	extra := make([]byte, xlen)
	if _, err = io.ReadFull(r, extra); err != nil {
		return 0, nil, unexpectedEOF(err)
	}
	bsize, ok := bsizeFromExtra(extra)
	if !ok {
		return 0, nil, fmt.Errorf("bgzf: %w: no BC subfield in XLEN=%d extra", htserr.ErrMalformedBlock, xlen)
	}

	// d = BSIZE - XLEN - 19: the block is BSIZE+1 bytes long, of which the
	// 12-byte fixed header, the XLEN bytes of extra field, and the 8-byte
	// CRC32/ISIZE trailer are not compressed payload; 12 + 8 - 1 = 19.
	d := int(bsize) - xlen - 19
	if d < 0 {
		return 0, nil, fmt.Errorf("bgzf: %w: derived compressed length %d < 0", htserr.ErrMalformedBlock, d)
	}

	compressed := make([]byte, d)
	if _, err = io.ReadFull(r, compressed); err != nil {
		return 0, nil, unexpectedEOF(err)
	}

	zr := flate.NewReader(bytes.NewReader(compressed))
	payload, err = io.ReadAll(zr)
	zr.Close()
	if err != nil {
		return 0, nil, fmt.Errorf("bgzf: %w: inflate: %v", htserr.ErrMalformedBlock, err)
	}

	var tail [blockTrailerLen]byte
	if _, err = io.ReadFull(r, tail[:]); err != nil {
		return 0, nil, unexpectedEOF(err)
	}
	wantCRC := binary.LittleEndian.Uint32(tail[0:4])
	wantISIZE := binary.LittleEndian.Uint32(tail[4:8])

	if got := crc32.ChecksumIEEE(payload); got != wantCRC {
		return 0, nil, fmt.Errorf("bgzf: %w: crc32 %#x, want %#x", htserr.ErrIntegrity, got, wantCRC)
	}
	if int(wantISIZE) != len(payload) {
		return 0, nil, fmt.Errorf("bgzf: %w: isize %d, want %d", htserr.ErrIntegrity, len(payload), wantISIZE)
	}

	return int(bsize) + 1, payload, nil
}

// bsizeFromExtra scans a gzip EXTRA field for the BGZF "BC" subfield and
// returns its 16-bit value (the BSIZE field, i.e. total block length - 1).
func bsizeFromExtra(extra []byte) (uint16, bool) {
	for i := 0; i+4 <= len(extra); {
		si1, si2 := extra[i], extra[i+1]
		slen := int(binary.LittleEndian.Uint16(extra[i+2 : i+4]))
		if i+4+slen > len(extra) {
			return 0, false
		}
		if si1 == bgzfSubfieldID[0] && si2 == bgzfSubfieldID[1] && slen == 2 {
			return binary.LittleEndian.Uint16(extra[i+4 : i+6]), true
		}
		i += 4 + slen
	}
	return 0, false
}

// encodeBlock deflates block (which must be at most MaxBlockSize bytes) and
// writes it to w as a single well-formed BGZF block, returning the number
// of bytes written. An empty block encodes to the 28-byte EOF marker.
func encodeBlock(w io.Writer, block []byte) (int, error) {
	if len(block) > MaxBlockSize {
		return 0, fmt.Errorf("bgzf: %w: block of %d bytes exceeds MaxBlockSize", htserr.ErrDomain, len(block))
	}

	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return 0, err
	}
	if _, err := fw.Write(block); err != nil {
		return 0, err
	}
	if err := fw.Close(); err != nil {
		return 0, err
	}
	compressed := buf.Bytes()

	bsize := len(compressed) + 25
	if bsize > 0xffff {
		return 0, fmt.Errorf("bgzf: %w: compressed block of %d bytes too large to address", htserr.ErrDomain, bsize)
	}

	out := make([]byte, 0, bsize+1)
	out = append(out, 0x1f, 0x8b, 8, 4)
	out = append(out, 0, 0, 0, 0) // MTIME
	out = append(out, 0, 0xff)   // XFL, OS
	out = append(out, 6, 0)      // XLEN = 6
	out = append(out, bgzfSubfieldID[0], bgzfSubfieldID[1])
	out = append(out, 2, 0) // SLEN = 2
	bsizeBuf := make([]byte, 2)
	binary.LittleEndian.PutUint16(bsizeBuf, uint16(bsize))
	out = append(out, bsizeBuf...)
	out = append(out, compressed...)

	var trailer [8]byte
	binary.LittleEndian.PutUint32(trailer[0:4], crc32.ChecksumIEEE(block))
	binary.LittleEndian.PutUint32(trailer[4:8], uint32(len(block)))
	out = append(out, trailer[:]...)

	return w.Write(out)
}

// unexpectedEOF normalizes a short read inside a block (after the block has
// already been identified as starting, i.e. past the first header byte)
// into a malformed-block error rather than a bare EOF, since a clean
// stream boundary can only occur before any bytes of a block are read.
func unexpectedEOF(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("bgzf: %w: truncated block: %v", htserr.ErrMalformedBlock, io.ErrUnexpectedEOF)
	}
	return err
}
