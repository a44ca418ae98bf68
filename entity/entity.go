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
	"github.com/tochemey/actorwire/address"
)

// Policy is the mailbox policy of an entity.
type Policy int

const (
	// Ordered entities handle one message at a time, in arrival order.
	Ordered Policy = iota
	// Unordered entities handle messages concurrently: every frame runs on
	// its own goroutine, so handlers of the same entity may run in parallel
	// and must guard the entity state themselves.
	Unordered
)

// String returns the policy name.
func (p Policy) String() string {
	if p == Unordered {
		return "Unordered"
	}
	return "Ordered"
}

// Entity is an addressable receiver of routed messages.
type Entity interface {
	// ID returns the address of the entity.
	ID() address.ActorID
	// MailboxPolicy tells the dispatcher how to serialize deliveries.
	MailboxPolicy() Policy
}

// Base is an embeddable Entity implementation.
type Base struct {
	id     address.ActorID
	policy Policy
}

var _ Entity = (*Base)(nil)

// NewBase creates a Base with the given id and policy.
func NewBase(id address.ActorID, policy Policy) Base {
	return Base{id: id, policy: policy}
}

// ID implements Entity.
func (b *Base) ID() address.ActorID {
	return b.id
}

// MailboxPolicy implements Entity.
func (b *Base) MailboxPolicy() Policy {
	return b.policy
}
