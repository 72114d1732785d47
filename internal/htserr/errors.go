// Package htserr defines the sentinel error values shared by every package
// in this module. They are collected in one place so that bgzf, bam, and
// bai can all wrap the same underlying value and callers can test outcomes
// with errors.Is regardless of which layer produced the error.
package htserr

import "errors"

var (
	// ErrMalformedBlock means a BGZF block's fixed header, extra field, or
	// derived compressed length did not match the format contract.
	ErrMalformedBlock = errors.New("hts: malformed bgzf block")

	// ErrIntegrity means a decoded block's CRC32 or ISIZE did not match
	// the trailer recorded alongside the compressed payload.
	ErrIntegrity = errors.New("hts: bgzf integrity check failed")

	// ErrNotBAM means the BAM magic was absent at the start of the
	// decompressed stream.
	ErrNotBAM = errors.New("hts: not a bam file")

	// ErrDomain covers invalid arguments: negative read sizes, malformed
	// regions, out-of-range virtual offsets, non-positive cache capacity.
	ErrDomain = errors.New("hts: invalid argument")

	// ErrNoRandomAccess means a region query was attempted without a
	// loaded binning index.
	ErrNoRandomAccess = errors.New("hts: random access disabled")

	// ErrReferenceNotFound means a named or numbered reference is absent
	// from the BAM header's reference table.
	ErrReferenceNotFound = errors.New("hts: reference not found")

	// ErrTruncated means the BGZF EOF marker was not found where expected.
	ErrTruncated = errors.New("hts: truncated bgzf stream")
)
