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
	"io"
)

// Circular is a FIFO byte buffer made of pooled chunks. Bytes are appended
// at the tail and consumed from the head; a chunk goes back to the pool as
// soon as it has been consumed.
//
// Circular is not safe for concurrent use, except that the slice returned by
// Front stays valid while other bytes are appended.
type Circular struct {
	pool   *Pool
	chunks [][]byte
	head   int
	tail   int
	size   int
}

var _ io.ReadWriter = (*Circular)(nil)

// New creates an empty Circular drawing its chunks from pool. A nil pool
// selects the shared default pool.
func New(pool *Pool) *Circular {
	if pool == nil {
		pool = defaultPool
	}
	return &Circular{pool: pool}
}

// Len returns the number of unread bytes.
func (c *Circular) Len() int {
	return c.size
}

// Write appends p. It never fails.
func (c *Circular) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		space := c.Reserve()
		n := copy(space, p[written:])
		c.Commit(n)
		written += n
	}
	return written, nil
}

// Reserve returns the free space at the tail, adding a chunk when the tail
// is full. Callers fill a prefix of it and report the count with Commit.
func (c *Circular) Reserve() []byte {
	if len(c.chunks) == 0 || c.tail == ChunkSize {
		c.chunks = append(c.chunks, c.pool.Get())
		c.tail = 0
	}
	return c.chunks[len(c.chunks)-1][c.tail:]
}

// Commit marks n bytes of the last reserved space as written.
func (c *Circular) Commit(n int) {
	c.tail += n
	c.size += n
}

// Front returns the unread bytes of the head chunk without consuming them.
func (c *Circular) Front() []byte {
	if c.size == 0 {
		return nil
	}
	if len(c.chunks) == 1 {
		return c.chunks[0][c.head:c.tail]
	}
	return c.chunks[0][c.head:]
}

// Peek copies up to len(p) unread bytes into p without consuming them.
func (c *Circular) Peek(p []byte) int {
	copied := 0
	head := c.head
	for i := 0; i < len(c.chunks) && copied < len(p) && copied < c.size; i++ {
		end := ChunkSize
		if i == len(c.chunks)-1 {
			end = c.tail
		}
		copied += copy(p[copied:], c.chunks[i][head:end])
		head = 0
	}
	return min(copied, c.size)
}

// Read consumes up to len(p) bytes. It returns io.EOF when the buffer is empty.
func (c *Circular) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if c.size == 0 {
		return 0, io.EOF
	}
	n := c.Peek(p)
	c.Discard(n)
	return n, nil
}

// Discard consumes up to n bytes and returns the count consumed.
func (c *Circular) Discard(n int) int {
	n = min(n, c.size)
	left := n
	for left > 0 {
		front := c.Front()
		step := min(left, len(front))
		c.head += step
		c.size -= step
		left -= step
		if c.head == ChunkSize || (len(c.chunks) == 1 && c.head == c.tail) {
			c.popChunk()
		}
	}
	return n
}

// Reset drops every unread byte and returns all chunks to the pool.
func (c *Circular) Reset() {
	for _, chunk := range c.chunks {
		c.pool.Put(chunk)
	}
	clear(c.chunks)
	c.chunks = c.chunks[:0]
	c.head, c.tail, c.size = 0, 0, 0
}

func (c *Circular) popChunk() {
	c.pool.Put(c.chunks[0])
	c.chunks[0] = nil
	c.chunks = c.chunks[1:]
	c.head = 0
	if len(c.chunks) == 0 {
		c.chunks = nil
		c.tail = 0
	}
}
