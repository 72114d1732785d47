// Copyright ©2012 The bíogo.bam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bam_test

import (
	"bytes"
	"fmt"
	"io"

	"github.com/balanur/hts/bam"
	"github.com/balanur/hts/bgzf"
)

// This example shows the low-level sequence Open performs at the
// hts package level: wrap a source in a bgzf.Cursor, read the header
// bootstrap, then decode records from the reader positioned just past it.
func Example() {
	var src io.ReadSeeker // a real file or bytes.Reader in practice
	src = bytes.NewReader(nil)

	cu := bgzf.NewCursor(src)
	h, err := bam.ReadHeader(cu)
	if err != nil {
		fmt.Println("not a bam stream")
		return
	}

	r := bam.NewReader(cu, h.Header)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Println("read error:", err)
			return
		}
		fmt.Println(rec.Name)
	}
}
