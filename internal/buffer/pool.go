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

package buffer

import (
	"time"

	gods "github.com/Workiva/go-datastructures/queue"
)

// ChunkSize is the size of every chunk handed out by a Pool.
const ChunkSize = 8 * 1024

// DefaultPoolSize is the number of idle chunks kept by the default pool.
const DefaultPoolSize = 1024

// pollTimeout makes a Get that loses the race for the last idle chunk fall
// back to allocation instead of spinning.
const pollTimeout = time.Nanosecond

var defaultPool = NewPool(DefaultPoolSize)

// Pool recycles fixed size chunks. Chunks returned while the pool is full
// are left to the garbage collector.
type Pool struct {
	ring *gods.RingBuffer
}

// NewPool creates a Pool keeping at most capacity idle chunks. The capacity
// is rounded up to a power of two.
func NewPool(capacity int) *Pool {
	if capacity < 1 {
		capacity = 1
	}
	return &Pool{ring: gods.NewRingBuffer(uint64(capacity))}
}

// Get returns a chunk of ChunkSize bytes.
func (p *Pool) Get() []byte {
	if p.ring.Len() > 0 {
		if item, err := p.ring.Poll(pollTimeout); err == nil {
			return item.([]byte)
		}
	}
	return make([]byte, ChunkSize)
}

// Put returns a chunk to the pool.
func (p *Pool) Put(chunk []byte) {
	if cap(chunk) != ChunkSize {
		return
	}
	_, _ = p.ring.Offer(chunk[:ChunkSize])
}

// Len returns the number of idle chunks.
func (p *Pool) Len() int {
	return int(p.ring.Len())
}

// Cap returns the maximum number of idle chunks.
func (p *Pool) Cap() int {
	return int(p.ring.Cap())
}
