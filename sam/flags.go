// Copyright ©2012 The bíogo.bam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sam holds the value types shared by the bam and bai packages:
// the parsed header, the reference table, record flags, and the decoded
// fields of an individual alignment record.
package sam

// Flags is the bitmask stored in a BAM record's FLAG field.
type Flags uint16

const (
	Paired        Flags = 1 << iota // template has multiple segments
	ProperPair                      // each segment properly aligned
	Unmapped                        // segment unmapped
	MateUnmapped                    // next segment unmapped
	Reverse                         // sequence reverse complemented
	MateReverse                     // next segment reverse complemented
	Read1                           // first segment in template
	Read2                           // last segment in template
	Secondary                       // secondary alignment
	QCFail                          // not passing filters
	Duplicate                       // PCR or optical duplicate
	Supplementary                   // supplementary alignment
)

// FilterNone passes every record; it is the "nofilter" option of the
// query engine.
const FilterNone = Flags(0)

// FilterAll is the default exclusion mask applied by the query engine's
// "all" filter: unmapped, secondary, QC-fail, and duplicate records are
// skipped, matching bamnostic's fixed 0x704 mask.
const FilterAll Flags = Unmapped | Secondary | QCFail | Duplicate

// Has reports whether all bits of mask are set in f.
func (f Flags) Has(mask Flags) bool { return f&mask == mask }

// Any reports whether any bit of mask is set in f.
func (f Flags) Any(mask Flags) bool { return f&mask != 0 }
