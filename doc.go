// Copyright ©2012 The bíogo.bam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hts provides a random-access reader for BAM, the block-gzip
// (BGZF) alignment container format. It composes the virtual-offset
// addressing scheme, block codec, and bounded block cache of the bgzf
// package with the header and record decoding of the bam package and the
// companion binning index of the bai package to answer region queries
// ("fetch", "count") against a genomic interval.
package hts
