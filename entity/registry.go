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
	"fmt"
	"sync"

	"go.uber.org/atomic"

	"github.com/tochemey/actorwire/address"
	gerrors "github.com/tochemey/actorwire/errors"
)

// Ref is the result of a Lookup. It pins the registration it was taken
// from, so that a caller suspended in between can tell whether the id has
// been removed or reused since.
type Ref struct {
	Entity     Entity
	generation uint64
}

// Generation returns the registration number the Ref was taken from.
func (r Ref) Generation() uint64 {
	return r.generation
}

type registration struct {
	entity     Entity
	generation uint64
}

// Registry maps actor ids to live entities.
type Registry struct {
	process     uint16
	mu          sync.RWMutex
	entries     map[address.ActorID]registration
	generations *atomic.Uint64
	instances   *atomic.Uint64
}

// NewRegistry creates a Registry minting ids for the given process.
func NewRegistry(process uint16) *Registry {
	return &Registry{
		process:     process,
		entries:     make(map[address.ActorID]registration),
		generations: atomic.NewUint64(0),
		instances:   atomic.NewUint64(0),
	}
}

// NewID returns an unused id of the local process.
func (r *Registry) NewID() address.ActorID {
	return address.New(r.process, r.instances.Inc()&address.MaxInstance)
}

// Add registers entity under its id.
func (r *Registry) Add(entity Entity) error {
	id := entity.ID()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; ok {
		return fmt.Errorf("actor=(%s): %w", id, gerrors.ErrEntityExists)
	}
	r.entries[id] = registration{entity: entity, generation: r.generations.Inc()}
	return nil
}

// Remove unregisters id. It reports whether an entity was removed.
func (r *Registry) Remove(id address.ActorID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[id]
	delete(r.entries, id)
	return ok
}

// Lookup returns the entity registered under id.
func (r *Registry) Lookup(id address.ActorID) (Ref, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.entries[id]
	if !ok {
		return Ref{}, false
	}
	return Ref{Entity: reg.entity, generation: reg.generation}, true
}

// Valid reports whether ref still designates the current registration of
// its id.
func (r *Registry) Valid(ref Ref) bool {
	if ref.Entity == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.entries[ref.Entity.ID()]
	return ok && reg.generation == ref.generation
}

// Len returns the number of registered entities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Range calls fn for every entity until fn returns false.
func (r *Registry) Range(fn func(Entity) bool) {
	r.mu.RLock()
	entities := make([]Entity, 0, len(r.entries))
	for _, reg := range r.entries {
		entities = append(entities, reg.entity)
	}
	r.mu.RUnlock()

	for _, entity := range entities {
		if !fn(entity) {
			return
		}
	}
}
