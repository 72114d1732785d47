// Copyright ©2012 The bíogo.bam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import "fmt"

// Reference describes one entry of a BAM reference table: a contig name
// and its length in bases.
type Reference struct {
	Name string
	Len  int32
}

// Header is the decoded BAM header bootstrap: the embedded SAM text plus
// the binary reference table that follows it.
type Header struct {
	// Text is the embedded SAM header text, byte-for-byte as stored.
	Text string

	refs   []Reference
	byName map[string]int
}

// NewHeader builds a Header from SAM text and a reference table, indexing
// the table by name for GetTID/GetReferenceName lookups.
func NewHeader(text string, refs []Reference) *Header {
	h := &Header{Text: text, refs: refs, byName: make(map[string]int, len(refs))}
	for i, r := range refs {
		h.byName[r.Name] = i
	}
	return h
}

// References returns the reference table in on-disk order.
func (h *Header) References() []Reference { return h.refs }

// IsValidTID reports whether tid indexes a reference in the table.
func (h *Header) IsValidTID(tid int) bool {
	return tid >= 0 && tid < len(h.refs)
}

// GetReferenceName returns the name of the reference at tid.
func (h *Header) GetReferenceName(tid int) (string, error) {
	if !h.IsValidTID(tid) {
		return "", fmt.Errorf("sam: reference id %d out of range [0,%d)", tid, len(h.refs))
	}
	return h.refs[tid].Name, nil
}

// GetTID returns the reference id for name, or false if name is absent
// from the table.
func (h *Header) GetTID(name string) (int, bool) {
	tid, ok := h.byName[name]
	return tid, ok
}
