// Copyright ©2012 The bíogo.bam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bam

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/balanur/hts/bgzf"
	"github.com/balanur/hts/internal/htserr"
	"github.com/balanur/hts/sam"
)

// Header is a decoded BAM header: the parsed sam.Header, the virtual
// offset in the BGZF stream where alignment records begin, and
// a verbatim copy of the first BGZF block for callers that need to
// reproduce the header exactly (e.g. when writing a derived file),
// matching bamnostic's BAMheader._header_block capture.
type Header struct {
	*sam.Header

	// RecordStreamStart is the virtual offset immediately following the
	// reference table, i.e. the position of the first alignment record.
	RecordStreamStart uint64

	rawFirstBlock []byte
}

// RawFirstBlock returns the verbatim on-disk bytes of the BGZF block that
// the header began in.
func (h *Header) RawFirstBlock() []byte { return h.rawFirstBlock }

// ReadHeader decodes the BAM header bootstrap from cu: the "BAM\1" magic,
// the length-prefixed embedded SAM text, and the reference table. On
// return cu is positioned at the start of the record stream.
func ReadHeader(cu *bgzf.Cursor) (*Header, error) {
	raw, err := cu.RawBlock(cu.Tell().File)
	if err != nil {
		return nil, fmt.Errorf("bam: capturing header block: %w", err)
	}

	var magic [4]byte
	if _, err := io.ReadFull(cu, magic[:]); err != nil {
		return nil, fmt.Errorf("bam: reading magic: %w", err)
	}
	if magic != bamMagic {
		return nil, fmt.Errorf("bam: %w: magic %q", htserr.ErrNotBAM, magic[:])
	}

	lText, err := readInt32(cu)
	if err != nil {
		return nil, fmt.Errorf("bam: reading l_text: %w", err)
	}
	if lText < 0 {
		return nil, fmt.Errorf("bam: %w: negative l_text %d", htserr.ErrMalformedBlock, lText)
	}
	text := make([]byte, lText)
	if _, err := io.ReadFull(cu, text); err != nil {
		return nil, fmt.Errorf("bam: reading SAM text: %w", err)
	}

	nRef, err := readInt32(cu)
	if err != nil {
		return nil, fmt.Errorf("bam: reading n_ref: %w", err)
	}
	if nRef < 0 {
		return nil, fmt.Errorf("bam: %w: negative n_ref %d", htserr.ErrMalformedBlock, nRef)
	}

	refs := make([]sam.Reference, nRef)
	for i := int32(0); i < nRef; i++ {
		lName, err := readInt32(cu)
		if err != nil {
			return nil, fmt.Errorf("bam: reading l_name for reference %d: %w", i, err)
		}
		if lName <= 0 {
			return nil, fmt.Errorf("bam: %w: non-positive l_name %d for reference %d", htserr.ErrMalformedBlock, lName, i)
		}
		name := make([]byte, lName)
		if _, err := io.ReadFull(cu, name); err != nil {
			return nil, fmt.Errorf("bam: reading name for reference %d: %w", i, err)
		}
		lRef, err := readInt32(cu)
		if err != nil {
			return nil, fmt.Errorf("bam: reading l_ref for reference %d: %w", i, err)
		}
		// name is NUL-terminated; drop the terminator.
		refs[i] = sam.Reference{Name: string(name[:lName-1]), Len: lRef}
	}

	h := &Header{
		Header:            sam.NewHeader(string(text), refs),
		RecordStreamStart: cu.Tell().Combined(),
		rawFirstBlock:     raw,
	}
	return h, nil
}

// HeaderEndOffset returns the virtual offset of the start of the record
// stream, i.e. the position a cursor must seek to in order to read the
// first alignment record without re-parsing the header.
func HeaderEndOffset(h *Header) bgzf.Offset {
	return bgzf.SplitOffset(h.RecordStreamStart)
}

func readInt32(r io.Reader) (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(buf[:])), nil
}
