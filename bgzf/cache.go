// Copyright ©2012 The bíogo.bam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bgzf

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/balanur/hts/internal/htserr"
)

// block is the unit stored in a Cache: a decompressed payload keyed by the
// physical (compressed) offset its block started at, plus the raw
// (on-disk, compressed) length of that block so a Cursor can compute the
// offset of the next block without re-reading the header.
type block struct {
	base    int64
	payload []byte
	rawLen  int
}

// Cache stores decompressed BGZF blocks keyed by the physical offset of
// their first byte in the compressed stream.
type Cache interface {
	// Get returns the cached block starting at base, if present.
	Get(base int64) (payload []byte, rawLen int, ok bool)
	// Put inserts or refreshes the block starting at base.
	Put(base int64, payload []byte, rawLen int)
	// Len reports the number of blocks currently cached.
	Len() int
}

// lru is a fixed-capacity, strict least-recently-used Cache: inserting
// beyond capacity evicts the least recently touched entry, and both Get
// and Put count as a touch.
type lru struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	index    map[int64]*list.Element
}

// NewLRUCache builds a Cache holding at most capacity blocks. capacity must
// be positive, mirroring bamnostic.BgzfReader's max_cache>=1 requirement.
func NewLRUCache(capacity int) (Cache, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("bgzf: %w: cache capacity %d must be positive", htserr.ErrDomain, capacity)
	}
	return &lru{
		capacity: capacity,
		ll:       list.New(),
		index:    make(map[int64]*list.Element, capacity),
	}, nil
}

func (c *lru) Get(base int64) (payload []byte, rawLen int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, found := c.index[base]
	if !found {
		return nil, 0, false
	}
	c.ll.MoveToFront(e)
	b := e.Value.(*block)
	return b.payload, b.rawLen, true
}

func (c *lru) Put(base int64, payload []byte, rawLen int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, found := c.index[base]; found {
		c.ll.MoveToFront(e)
		e.Value.(*block).payload = payload
		e.Value.(*block).rawLen = rawLen
		return
	}

	e := c.ll.PushFront(&block{base: base, payload: payload, rawLen: rawLen})
	c.index[base] = e

	for c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		if oldest == nil {
			break
		}
		c.ll.Remove(oldest)
		delete(c.index, oldest.Value.(*block).base)
	}
}

func (c *lru) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
