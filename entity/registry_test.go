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

package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/actorwire/address"
	gerrors "github.com/tochemey/actorwire/errors"
)

type player struct {
	Base
	name string
}

func newPlayer(id address.ActorID, name string) *player {
	return &player{Base: NewBase(id, Ordered), name: name}
}

func TestRegistry(t *testing.T) {
	t.Run("With add and lookup", func(t *testing.T) {
		registry := NewRegistry(3)
		id := registry.NewID()
		assert.EqualValues(t, 3, id.Process())
		assert.EqualValues(t, 1, id.Instance())

		alice := newPlayer(id, "alice")
		require.NoError(t, registry.Add(alice))
		assert.Equal(t, 1, registry.Len())

		ref, ok := registry.Lookup(id)
		require.True(t, ok)
		assert.Same(t, alice, ref.Entity)
		assert.Equal(t, Ordered, ref.Entity.MailboxPolicy())
		assert.True(t, registry.Valid(ref))

		_, ok = registry.Lookup(registry.NewID())
		assert.False(t, ok)
	})
	t.Run("With duplicate id", func(t *testing.T) {
		registry := NewRegistry(1)
		id := registry.NewID()
		require.NoError(t, registry.Add(newPlayer(id, "a")))
		err := registry.Add(newPlayer(id, "b"))
		require.ErrorIs(t, err, gerrors.ErrEntityExists)
	})
	t.Run("With id reused after removal", func(t *testing.T) {
		registry := NewRegistry(1)
		id := address.New(1, 500)
		require.NoError(t, registry.Add(newPlayer(id, "old")))

		stale, ok := registry.Lookup(id)
		require.True(t, ok)

		assert.True(t, registry.Remove(id))
		assert.False(t, registry.Remove(id))
		assert.False(t, registry.Valid(stale))

		require.NoError(t, registry.Add(newPlayer(id, "new")))
		assert.False(t, registry.Valid(stale))

		fresh, ok := registry.Lookup(id)
		require.True(t, ok)
		assert.True(t, registry.Valid(fresh))
		assert.Greater(t, fresh.Generation(), stale.Generation())
		assert.Equal(t, "new", fresh.Entity.(*player).name)
	})
	t.Run("With range", func(t *testing.T) {
		registry := NewRegistry(1)
		for range 5 {
			require.NoError(t, registry.Add(newPlayer(registry.NewID(), "p")))
		}
		seen := 0
		registry.Range(func(Entity) bool {
			seen++
			return seen < 3
		})
		assert.Equal(t, 3, seen)
		assert.False(t, registry.Valid(Ref{}))
	})
}

func TestPolicy(t *testing.T) {
	assert.Equal(t, "Ordered", Ordered.String())
	assert.Equal(t, "Unordered", Unordered.String())
	base := NewBase(address.New(1, 1), Unordered)
	assert.Equal(t, Unordered, base.MailboxPolicy())
}
