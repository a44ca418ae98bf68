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

package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMpsc(t *testing.T) {
	t.Run("With Push/Pop", func(t *testing.T) {
		q := NewMpsc[int]()
		require.True(t, q.IsEmpty())
		_, ok := q.Pop()
		require.False(t, ok)

		for i := range 10 {
			q.Push(i)
		}
		assert.EqualValues(t, 10, q.Len())

		for i := range 10 {
			value, ok := q.Pop()
			require.True(t, ok)
			assert.Equal(t, i, value)
		}
		assert.True(t, q.IsEmpty())
		assert.Zero(t, q.Len())
	})
	t.Run("With notify", func(t *testing.T) {
		q := NewMpsc[string]()
		q.Push("a")
		q.Push("b")

		select {
		case <-q.Notify():
		default:
			t.Fatal("expected a signal")
		}

		// pushes collapse into a single signal
		select {
		case <-q.Notify():
			t.Fatal("expected no more signal")
		default:
		}

		var got []string
		assert.Equal(t, 2, q.Drain(func(s string) { got = append(got, s) }))
		assert.Equal(t, []string{"a", "b"}, got)
	})
	t.Run("With concurrent producers", func(t *testing.T) {
		const (
			producers = 8
			perWriter = 1000
		)
		q := NewMpsc[[2]int]()
		var wg sync.WaitGroup
		for p := range producers {
			wg.Add(1)
			go func(p int) {
				defer wg.Done()
				for i := range perWriter {
					q.Push([2]int{p, i})
				}
			}(p)
		}
		wg.Wait()

		last := make([]int, producers)
		for i := range last {
			last[i] = -1
		}
		count := q.Drain(func(v [2]int) {
			// per producer order is preserved
			assert.Equal(t, last[v[0]]+1, v[1])
			last[v[0]] = v[1]
		})
		assert.Equal(t, producers*perWriter, count)
	})
}
