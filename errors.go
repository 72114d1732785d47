// Copyright ©2012 The bíogo.bam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hts

import "github.com/balanur/hts/internal/htserr"

// Sentinel errors, re-exported from internal/htserr so callers can test
// outcomes with errors.Is without importing an internal package.
var (
	ErrMalformedBlock    = htserr.ErrMalformedBlock
	ErrIntegrity         = htserr.ErrIntegrity
	ErrNotBAM            = htserr.ErrNotBAM
	ErrDomain            = htserr.ErrDomain
	ErrNoRandomAccess    = htserr.ErrNoRandomAccess
	ErrReferenceNotFound = htserr.ErrReferenceNotFound
	ErrTruncated         = htserr.ErrTruncated
)
