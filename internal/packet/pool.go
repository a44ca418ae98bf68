// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package packet

import (
	"math/bits"
	"sync"
)

const (
	minBucketShift = 6  // 64 B
	maxBucketShift = 16 // 64 KiB, holds any frame
	numBuckets     = maxBucketShift - minBucketShift + 1
)

// FramePool hands out frame buffers from power of two size buckets.
type FramePool struct {
	pools [numBuckets]sync.Pool
}

// NewFramePool creates a FramePool.
func NewFramePool() *FramePool {
	fp := &FramePool{}
	for i := range fp.pools {
		size := 1 << (minBucketShift + i)
		fp.pools[i].New = func() any {
			buf := make([]byte, size)
			return &buf
		}
	}
	return fp
}

// Get returns a slice of exactly n bytes.
func (fp *FramePool) Get(n int) []byte {
	idx := bucketFor(n)
	if idx >= numBuckets {
		return make([]byte, n)
	}
	bp := fp.pools[idx].Get().(*[]byte)
	return (*bp)[:n]
}

// Put returns a slice obtained from Get. Slices of any other capacity are dropped.
func (fp *FramePool) Put(buf []byte) {
	c := cap(buf)
	if c == 0 || c&(c-1) != 0 {
		return
	}
	idx := bits.Len(uint(c)) - 1 - minBucketShift
	if idx < 0 || idx >= numBuckets {
		return
	}
	buf = buf[:c]
	fp.pools[idx].Put(&buf)
}

func bucketFor(n int) int {
	if n <= 1<<minBucketShift {
		return 0
	}
	return bits.Len(uint(n-1)) - minBucketShift
}
