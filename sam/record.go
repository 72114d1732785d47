// Copyright ©2012 The bíogo.bam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import "fmt"

// CigarOpType is one of the nine CIGAR operation kinds BAM encodes in the
// low 4 bits of a packed CIGAR operation.
type CigarOpType byte

const (
	CigarMatch CigarOpType = iota
	CigarInsertion
	CigarDeletion
	CigarSkip
	CigarSoftClip
	CigarHardClip
	CigarPad
	CigarEqual
	CigarMismatch
)

var cigarOpNames = [...]byte{'M', 'I', 'D', 'N', 'S', 'H', 'P', '=', 'X'}

// CigarOp is one packed CIGAR operation: a run length and an operation
// kind.
type CigarOp struct {
	Len  int32
	Type CigarOpType
}

// String renders the operation in SAM text form, e.g. "36M".
func (op CigarOp) String() string {
	if int(op.Type) >= len(cigarOpNames) {
		return fmt.Sprintf("%d?", op.Len)
	}
	return fmt.Sprintf("%d%c", op.Len, cigarOpNames[op.Type])
}

// Aux is one decoded BAM auxiliary (tag) field.
type Aux struct {
	Tag   [2]byte
	Type  byte
	Value interface{}
}

// Record is a decoded BAM alignment record: reference id, position, and
// flags needed for query filtering, plus the remaining fixed and
// variable-length fields a caller inspecting fetch/count results needs.
type Record struct {
	RefID     int32
	Pos       int32
	MapQ      byte
	Bin       uint16
	Flags     Flags
	NextRefID int32
	NextPos   int32
	TempLen   int32

	Name  string
	Cigar []CigarOp
	Seq   []byte
	Qual  []byte
	Aux   []Aux
}

// End returns the reference coordinate one past the last base the
// record's CIGAR operations consume from the reference, i.e. the
// half-open interval [Pos, End) the record occupies.
func (r *Record) End() int32 {
	end := r.Pos
	for _, op := range r.Cigar {
		switch op.Type {
		case CigarMatch, CigarDeletion, CigarSkip, CigarEqual, CigarMismatch:
			end += op.Len
		}
	}
	return end
}
