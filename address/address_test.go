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

package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActorID(t *testing.T) {
	t.Run("With pack and unpack", func(t *testing.T) {
		id := New(7, 123456789)
		packed := id.Pack()
		actual := Unpack(packed)
		assert.Equal(t, id, actual)
		assert.EqualValues(t, 7, actual.Process())
		assert.EqualValues(t, 123456789, actual.Instance())
	})
	t.Run("With instance truncated to 48 bits", func(t *testing.T) {
		id := New(1, MaxInstance+5)
		assert.EqualValues(t, 4, id.Instance())
	})
	t.Run("With value equality", func(t *testing.T) {
		a := New(2, 10)
		b := New(2, 10)
		c := New(3, 10)
		assert.True(t, a.Equals(b))
		assert.False(t, a.Equals(c))

		m := map[ActorID]int{a: 1}
		assert.Equal(t, 1, m[b])
	})
	t.Run("With zero value", func(t *testing.T) {
		assert.True(t, NoActor.IsZero())
		assert.False(t, New(0, 1).IsZero())
		assert.Zero(t, NoActor.Pack())
	})
	t.Run("With max process", func(t *testing.T) {
		id := New(65535, MaxInstance)
		assert.Equal(t, id, Unpack(id.Pack()))
	})
}

func TestParse(t *testing.T) {
	t.Run("With valid text", func(t *testing.T) {
		id := New(12, 9876)
		parsed, err := Parse(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
		assert.Equal(t, "12:9876", id.String())
	})
	t.Run("With invalid text", func(t *testing.T) {
		for _, text := range []string{"", "12", "a:1", "1:b", "70000:1", "1:281474976710656"} {
			_, err := Parse(text)
			require.Error(t, err, text)
			assert.ErrorIs(t, err, ErrInvalidActorID)
		}
	})
}
