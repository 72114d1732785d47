// Copyright ©2012 The bíogo.bam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bam

import "encoding/binary"

// fieldBuffer is a lightweight cursor over an already-read record body,
// used to decode its fixed and variable-length fields in order.
type fieldBuffer struct {
	off  int
	data []byte
}

func (b *fieldBuffer) bytes(n int) []byte {
	s := b.off
	b.off += n
	return b.data[s:b.off]
}

func (b *fieldBuffer) len() int { return len(b.data) - b.off }

func (b *fieldBuffer) discard(n int) { b.off += n }

func (b *fieldBuffer) readUint8() uint8 {
	b.off++
	return b.data[b.off-1]
}

func (b *fieldBuffer) readUint16() uint16 {
	return binary.LittleEndian.Uint16(b.bytes(2))
}

func (b *fieldBuffer) readInt32() int32 {
	return int32(binary.LittleEndian.Uint32(b.bytes(4)))
}

func (b *fieldBuffer) readUint32() uint32 {
	return binary.LittleEndian.Uint32(b.bytes(4))
}
