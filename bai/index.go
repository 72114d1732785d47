// Copyright ©2012 The bíogo.bam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bai

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/balanur/hts/bgzf"
	"github.com/balanur/hts/internal/htserr"
)

var baiMagic = [4]byte{'B', 'A', 'I', 1}

// ReferenceStats holds the per-reference mapped/unmapped read counts
// samtools stores in the index's pseudo-bin.
type ReferenceStats struct {
	Mapped   uint64
	Unmapped uint64
}

type bin struct {
	id     uint32
	chunks []bgzf.Chunk
}

type refIndex struct {
	bins      []bin
	intervals []bgzf.Offset
	stats     *ReferenceStats
}

// Index is a decoded BAI companion index: per-reference bins and a linear
// index, plus the global count of reads with no coordinate at all.
type Index struct {
	refs   []refIndex
	noCoor uint64
}

// ReadFrom decodes a BAI index from r.
func ReadFrom(r io.Reader) (*Index, error) {
	br := bufio.NewReader(r)

	var magic [4]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return nil, fmt.Errorf("bai: reading magic: %w", err)
	}
	if magic != baiMagic {
		return nil, fmt.Errorf("bai: %w: bad magic %q", htserr.ErrMalformedBlock, magic[:])
	}

	nRef, err := readInt32(br)
	if err != nil {
		return nil, fmt.Errorf("bai: reading n_ref: %w", err)
	}
	if nRef < 0 {
		return nil, fmt.Errorf("bai: %w: negative n_ref %d", htserr.ErrMalformedBlock, nRef)
	}

	idx := &Index{refs: make([]refIndex, nRef)}
	for i := int32(0); i < nRef; i++ {
		ri, err := readRefIndex(br)
		if err != nil {
			return nil, fmt.Errorf("bai: reading reference %d: %w", i, err)
		}
		idx.refs[i] = ri
	}

	// n_no_coor is optional: absent in some writers' output.
	noCoor, err := readUint64(br)
	if err == nil {
		idx.noCoor = noCoor
	} else if err != io.EOF {
		return nil, fmt.Errorf("bai: reading n_no_coor: %w", err)
	}

	return idx, nil
}

func readRefIndex(r io.Reader) (refIndex, error) {
	nBin, err := readInt32(r)
	if err != nil {
		return refIndex{}, fmt.Errorf("reading n_bin: %w", err)
	}
	if nBin < 0 {
		return refIndex{}, fmt.Errorf("%w: negative n_bin %d", htserr.ErrMalformedBlock, nBin)
	}

	ri := refIndex{}
	for b := int32(0); b < nBin; b++ {
		id, err := readUint32(r)
		if err != nil {
			return refIndex{}, fmt.Errorf("reading bin id: %w", err)
		}
		nChunk, err := readInt32(r)
		if err != nil {
			return refIndex{}, fmt.Errorf("reading n_chunk: %w", err)
		}
		if nChunk < 0 {
			return refIndex{}, fmt.Errorf("%w: negative n_chunk %d", htserr.ErrMalformedBlock, nChunk)
		}

		if id == pseudoBin {
			// samtools stores, in order: (unused chunk), then a chunk
			// whose begin/end pack n_mapped/n_unmapped.
			chunks := make([]bgzf.Chunk, nChunk)
			for c := int32(0); c < nChunk; c++ {
				beg, err := readUint64(r)
				if err != nil {
					return refIndex{}, fmt.Errorf("reading pseudo-bin chunk begin: %w", err)
				}
				end, err := readUint64(r)
				if err != nil {
					return refIndex{}, fmt.Errorf("reading pseudo-bin chunk end: %w", err)
				}
				chunks[c] = bgzf.Chunk{Begin: bgzf.SplitOffset(beg), End: bgzf.SplitOffset(end)}
			}
			if len(chunks) == 2 {
				ri.stats = &ReferenceStats{
					Mapped:   chunks[1].Begin.Combined(),
					Unmapped: chunks[1].End.Combined(),
				}
			}
			continue
		}

		chunks := make([]bgzf.Chunk, nChunk)
		for c := int32(0); c < nChunk; c++ {
			beg, err := readUint64(r)
			if err != nil {
				return refIndex{}, fmt.Errorf("reading chunk begin: %w", err)
			}
			end, err := readUint64(r)
			if err != nil {
				return refIndex{}, fmt.Errorf("reading chunk end: %w", err)
			}
			chunks[c] = bgzf.Chunk{Begin: bgzf.SplitOffset(beg), End: bgzf.SplitOffset(end)}
		}
		ri.bins = append(ri.bins, bin{id: id, chunks: chunks})
	}

	nIntv, err := readInt32(r)
	if err != nil {
		return refIndex{}, fmt.Errorf("reading n_intv: %w", err)
	}
	if nIntv < 0 {
		return refIndex{}, fmt.Errorf("%w: negative n_intv %d", htserr.ErrMalformedBlock, nIntv)
	}
	ri.intervals = make([]bgzf.Offset, nIntv)
	for i := int32(0); i < nIntv; i++ {
		vo, err := readUint64(r)
		if err != nil {
			return refIndex{}, fmt.Errorf("reading linear index entry %d: %w", i, err)
		}
		ri.intervals[i] = bgzf.SplitOffset(vo)
	}

	return ri, nil
}

// WriteTo encodes idx to w in BAI binary format.
func WriteTo(w io.Writer, idx *Index) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(baiMagic[:]); err != nil {
		return err
	}
	if err := writeInt32(bw, int32(len(idx.refs))); err != nil {
		return err
	}
	for _, ri := range idx.refs {
		if err := writeRefIndex(bw, ri); err != nil {
			return err
		}
	}
	if err := writeUint64(bw, idx.noCoor); err != nil {
		return err
	}
	return bw.Flush()
}

func writeRefIndex(w io.Writer, ri refIndex) error {
	nBin := len(ri.bins)
	if ri.stats != nil {
		nBin++
	}
	if err := writeInt32(w, int32(nBin)); err != nil {
		return err
	}
	for _, b := range ri.bins {
		if err := writeUint32(w, b.id); err != nil {
			return err
		}
		if err := writeInt32(w, int32(len(b.chunks))); err != nil {
			return err
		}
		for _, ch := range b.chunks {
			if err := writeUint64(w, ch.Begin.Combined()); err != nil {
				return err
			}
			if err := writeUint64(w, ch.End.Combined()); err != nil {
				return err
			}
		}
	}
	if ri.stats != nil {
		if err := writeUint32(w, pseudoBin); err != nil {
			return err
		}
		if err := writeInt32(w, 2); err != nil {
			return err
		}
		if err := writeUint64(w, 0); err != nil {
			return err
		}
		if err := writeUint64(w, 0); err != nil {
			return err
		}
		if err := writeUint64(w, ri.stats.Mapped); err != nil {
			return err
		}
		if err := writeUint64(w, ri.stats.Unmapped); err != nil {
			return err
		}
	}
	if err := writeInt32(w, int32(len(ri.intervals))); err != nil {
		return err
	}
	for _, off := range ri.intervals {
		if err := writeUint64(w, off.Combined()); err != nil {
			return err
		}
	}
	return nil
}

// Query returns the earliest virtual offset whose chunk could contain a
// record overlapping the half-open interval [start, stop) on reference
// tid, consulting both the bin list and the linear index's coarse lower
// bound.
func (idx *Index) Query(tid int, start, stop int32) (bgzf.Offset, bool) {
	if tid < 0 || tid >= len(idx.refs) {
		return bgzf.Offset{}, false
	}
	ri := idx.refs[tid]

	want := make(map[uint32]bool)
	for _, id := range reg2bins(start, stop) {
		want[id] = true
	}

	var candidates []bgzf.Offset
	for _, b := range ri.bins {
		if !want[b.id] {
			continue
		}
		for _, ch := range b.chunks {
			candidates = append(candidates, ch.Begin)
		}
	}
	if len(candidates) == 0 {
		return bgzf.Offset{}, false
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Less(candidates[j]) })
	first := candidates[0]

	// The linear index gives a coarse lower bound on the virtual offset
	// of any record starting at or after `start`; use it to skip chunks
	// that cannot contain overlapping records when available.
	win := int(start) >> minShift
	if win < len(ri.intervals) {
		if lo := ri.intervals[win]; first.Less(lo) {
			first = lo
		}
	}

	return first, true
}

// ReferenceStats returns the mapped/unmapped counts recorded for tid, if
// the index carries per-reference statistics.
func (idx *Index) ReferenceStats(tid int) (ReferenceStats, bool) {
	if tid < 0 || tid >= len(idx.refs) || idx.refs[tid].stats == nil {
		return ReferenceStats{}, false
	}
	return *idx.refs[tid].stats, true
}

// Unmapped returns the global count of reads with no reported coordinate
// at all (distinct from per-reference unmapped counts).
func (idx *Index) Unmapped() uint64 { return idx.noCoor }

func readInt32(r io.Reader) (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(buf[:])), nil
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func readUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func writeInt32(w io.Writer, v int32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	_, err := w.Write(buf[:])
	return err
}

func writeUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func writeUint64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}
