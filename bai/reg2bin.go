// Copyright ©2012 The bíogo.bam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bai implements the classic samtools BAI companion index: the
// two-level binning structure plus linear index that the query engine
// consults to resolve a genomic region to a virtual offset.
package bai

const (
	minShift = 14 // linear index window: 2^14 = 16kbp
	depth    = 5  // five levels of binning

	// pseudoBin is the fixed bin id samtools reserves for per-reference
	// mapped/unmapped statistics; it is one more than the number of real
	// bins (37449, ids 0..37448).
	pseudoBin = 37450 // 0x924a
)

// reg2bin returns the smallest bin fully containing the half-open
// interval [beg, end), following the fixed five-level binning scheme
// samtools defines for minShift=14, depth=5.
func reg2bin(beg, end int32) uint32 {
	end--
	if beg>>14 == end>>14 {
		return uint32(((1<<15)-1)/7) + uint32(beg>>14)
	}
	if beg>>17 == end>>17 {
		return uint32(((1<<12)-1)/7) + uint32(beg>>17)
	}
	if beg>>20 == end>>20 {
		return uint32(((1<<9)-1)/7) + uint32(beg>>20)
	}
	if beg>>23 == end>>23 {
		return uint32(((1<<6)-1)/7) + uint32(beg>>23)
	}
	if beg>>26 == end>>26 {
		return uint32(((1<<3)-1)/7) + uint32(beg>>26)
	}
	return 0
}

// reg2bins returns every bin id that could contain a record overlapping
// [beg, end), across all five binning levels.
func reg2bins(beg, end int32) []uint32 {
	end--
	bins := make([]uint32, 0, 24)
	bins = append(bins, 0)
	for k := 1 + (beg >> 26); k <= 1+(end>>26); k++ {
		bins = append(bins, uint32(k))
	}
	for k := 9 + (beg >> 23); k <= 9+(end>>23); k++ {
		bins = append(bins, uint32(k))
	}
	for k := 73 + (beg >> 20); k <= 73+(end>>20); k++ {
		bins = append(bins, uint32(k))
	}
	for k := 585 + (beg >> 17); k <= 585+(end>>17); k++ {
		bins = append(bins, uint32(k))
	}
	for k := 4681 + (beg >> 14); k <= 4681+(end>>14); k++ {
		bins = append(bins, uint32(k))
	}
	return bins
}
