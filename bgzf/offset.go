// Copyright ©2012 The bíogo.bam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bgzf

import (
	"fmt"

	"github.com/balanur/hts/internal/htserr"
)

// maxCoffset and maxUoffset bound the two halves of a virtual offset: a
// block's physical start must fit in 48 bits and an intra-block byte
// position must fit in 16 bits.
const (
	maxCoffset = 1 << 48
	maxUoffset = 1 << 16
)

// Offset is a BGZF virtual offset: the composite of a block's physical
// start position in the compressed stream (File) and a byte position
// within that block's inflated payload (Block).
type Offset struct {
	File  int64
	Block uint16
}

// Chunk is a half-open region of a BGZF stream expressed as a pair of
// virtual offsets.
type Chunk struct {
	Begin Offset
	End   Offset
}

// MakeOffset composes a virtual offset from a physical block offset and an
// intra-block byte offset. It is the only fallible constructor: coffset
// must fit in 48 bits and uoffset in 16, matching the bit layout of the
// packed 64-bit virtual offset used on the wire (by the BAI/CSI index and
// by make_virtual_offset in the reference implementation).
func MakeOffset(coffset int64, uoffset int) (Offset, error) {
	if coffset < 0 || coffset >= maxCoffset {
		return Offset{}, fmt.Errorf("bgzf: %w: coffset %d out of range", htserr.ErrDomain, coffset)
	}
	if uoffset < 0 || uoffset >= maxUoffset {
		return Offset{}, fmt.Errorf("bgzf: %w: uoffset %d out of range", htserr.ErrDomain, uoffset)
	}
	return Offset{File: coffset, Block: uint16(uoffset)}, nil
}

// Combined packs the offset into the 64-bit virtual offset used on the
// wire: vo = coffset<<16 | uoffset.
func (o Offset) Combined() uint64 {
	return uint64(o.File)<<16 | uint64(o.Block)
}

// SplitOffset is the inverse of Combined: it unpacks a 64-bit virtual
// offset into its physical and intra-block halves. It is defined for
// every uint64 value, even ones MakeOffset would reject.
func SplitOffset(vo uint64) Offset {
	return Offset{File: int64(vo >> 16), Block: uint16(vo & 0xffff)}
}

// Less reports whether o sorts before other under virtual-offset order.
func (o Offset) Less(other Offset) bool {
	return o.Combined() < other.Combined()
}

// String renders the offset as coffset/uoffset, matching samtools' usual
// virtual offset debug formatting.
func (o Offset) String() string {
	return fmt.Sprintf("%d/%d", o.File, o.Block)
}
