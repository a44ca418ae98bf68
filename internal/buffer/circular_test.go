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
	"bytes"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pattern(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i % 251)
	}
	return out
}

func TestCircular(t *testing.T) {
	t.Run("With write and read across chunks", func(t *testing.T) {
		buf := New(NewPool(8))
		data := pattern(3*ChunkSize + 17)

		n, err := buf.Write(data)
		require.NoError(t, err)
		assert.Equal(t, len(data), n)
		assert.Equal(t, len(data), buf.Len())

		out, err := io.ReadAll(buf)
		require.NoError(t, err)
		assert.Equal(t, data, out)
		assert.Zero(t, buf.Len())
	})
	t.Run("With peek", func(t *testing.T) {
		buf := New(NewPool(8))
		data := pattern(ChunkSize + 10)
		_, _ = buf.Write(data)

		// peek straddling the chunk boundary
		buf.Discard(ChunkSize - 2)
		head := make([]byte, 4)
		assert.Equal(t, 4, buf.Peek(head))
		assert.Equal(t, data[ChunkSize-2:ChunkSize+2], head)
		assert.Equal(t, 12, buf.Len())

		large := make([]byte, 100)
		assert.Equal(t, 12, buf.Peek(large))
		assert.Equal(t, data[ChunkSize-2:], large[:12])
	})
	t.Run("With front and discard", func(t *testing.T) {
		buf := New(NewPool(8))
		data := pattern(ChunkSize + 100)
		_, _ = buf.Write(data)

		front := buf.Front()
		assert.Len(t, front, ChunkSize)
		assert.Equal(t, ChunkSize, buf.Discard(len(front)))

		front = buf.Front()
		assert.Equal(t, data[ChunkSize:], front)
		assert.Equal(t, 100, buf.Discard(1000))
		assert.Nil(t, buf.Front())
	})
	t.Run("With reserve and commit", func(t *testing.T) {
		buf := New(NewPool(8))
		space := buf.Reserve()
		assert.Len(t, space, ChunkSize)
		copy(space, "hello")
		buf.Commit(5)

		space = buf.Reserve()
		assert.Len(t, space, ChunkSize-5)

		out := make([]byte, 5)
		n, err := buf.Read(out)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(out[:n]))

		_, err = buf.Read(out)
		assert.ErrorIs(t, err, io.EOF)
	})
	t.Run("With chunks recycled", func(t *testing.T) {
		pool := NewPool(4)
		buf := New(pool)
		_, _ = buf.Write(pattern(2 * ChunkSize))
		assert.Zero(t, pool.Len())

		buf.Discard(2 * ChunkSize)
		assert.Equal(t, 2, pool.Len())

		_, _ = buf.Write(pattern(10))
		assert.Equal(t, 1, pool.Len())

		buf.Reset()
		assert.Zero(t, buf.Len())
		assert.Equal(t, 2, pool.Len())
	})
	t.Run("With interleaved traffic", func(t *testing.T) {
		buf := New(nil)
		var expected bytes.Buffer
		var actual bytes.Buffer
		chunk := make([]byte, 777)
		for i := range 100 {
			data := pattern(100 + i*37)
			_, _ = buf.Write(data)
			expected.Write(data)
			n, _ := buf.Read(chunk)
			actual.Write(chunk[:n])
		}
		rest, err := io.ReadAll(buf)
		require.NoError(t, err)
		actual.Write(rest)
		assert.Equal(t, expected.Bytes(), actual.Bytes())
	})
}

func TestPool(t *testing.T) {
	pool := NewPool(2)
	assert.Equal(t, 2, pool.Cap())

	a, b, c := pool.Get(), pool.Get(), pool.Get()
	assert.Len(t, a, ChunkSize)
	pool.Put(a)
	pool.Put(b)
	// the pool is full, the chunk is dropped
	pool.Put(c)
	assert.Equal(t, 2, pool.Len())

	// foreign slices are ignored
	pool.Put(make([]byte, 10))
	assert.Equal(t, 2, pool.Len())
}

func TestPoolContention(t *testing.T) {
	pool := NewPool(1)
	pool.Put(make([]byte, ChunkSize))

	// only one caller can take the idle chunk, the others allocate
	const callers = 32
	chunks := make([][]byte, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			chunks[i] = pool.Get()
		}()
	}
	wg.Wait()

	for _, chunk := range chunks {
		assert.Len(t, chunk, ChunkSize)
	}
	assert.Zero(t, pool.Len())
}
