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

// Package address provides the canonical representation of an actor
// identifier.
//
// An ActorID identifies a single routable entity and is made of two parts:
//
//   - Process: the fiber/process that owns the entity
//   - Instance: a process-locally unique instance number (48 bits)
//
// On the wire an ActorID is carried as a single big-endian uint64 produced by
// [ActorID.Pack]. The canonical textual representation is:
//
//	<process>:<instance>
//
// ActorID is an immutable value type; two identifiers are equal when both
// parts are equal, which makes it usable as a map key and as a Mailbox Lock key.
package address

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// InstanceBits is the number of low-order bits reserved for the instance part.
	InstanceBits = 48
	// MaxInstance is the largest instance number that fits on the wire.
	MaxInstance uint64 = 1<<InstanceBits - 1
)

// NoActor is the zero ActorID. Outer (client-facing) traffic carries no actor
// id and is delivered with NoActor as destination.
var NoActor = ActorID{}

// ActorID is the composite address of a routable entity.
type ActorID struct {
	process  uint16
	instance uint64
}

// New creates an ActorID. The instance is truncated to [InstanceBits] bits.
func New(process uint16, instance uint64) ActorID {
	return ActorID{
		process:  process,
		instance: instance & MaxInstance,
	}
}

// Unpack rebuilds an ActorID from its packed wire form.
func Unpack(packed uint64) ActorID {
	return ActorID{
		process:  uint16(packed >> InstanceBits),
		instance: packed & MaxInstance,
	}
}

// Parse parses the textual form produced by [ActorID.String].
func Parse(text string) (ActorID, error) {
	process, instance, ok := strings.Cut(strings.TrimSpace(text), ":")
	if !ok {
		return NoActor, fmt.Errorf("actor id=(%s): %w", text, ErrInvalidActorID)
	}

	p, err := strconv.ParseUint(process, 10, 16)
	if err != nil {
		return NoActor, fmt.Errorf("actor id=(%s): %w", text, ErrInvalidActorID)
	}

	i, err := strconv.ParseUint(instance, 10, 64)
	if err != nil || i > MaxInstance {
		return NoActor, fmt.Errorf("actor id=(%s): %w", text, ErrInvalidActorID)
	}

	return New(uint16(p), i), nil
}

// Process returns the owning process/fiber identifier.
func (x ActorID) Process() uint16 {
	return x.process
}

// Instance returns the process-local instance number.
func (x ActorID) Instance() uint64 {
	return x.instance
}

// Pack returns the uint64 representation carried on the wire.
func (x ActorID) Pack() uint64 {
	return uint64(x.process)<<InstanceBits | x.instance
}

// IsZero reports whether x is [NoActor].
func (x ActorID) IsZero() bool {
	return x == NoActor
}

// Equals is a convenience for value comparison.
func (x ActorID) Equals(other ActorID) bool {
	return x == other
}

// String returns the canonical textual representation.
func (x ActorID) String() string {
	return strconv.FormatUint(uint64(x.process), 10) + ":" + strconv.FormatUint(x.instance, 10)
}
