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

package mailbox

import (
	"context"
	"encoding/binary"
	"sync"
	"time"

	"github.com/zeebo/xxh3"
	"go.uber.org/atomic"

	gerrors "github.com/tochemey/actorwire/errors"
	"github.com/tochemey/actorwire/log"
	"github.com/tochemey/actorwire/scheduler"
)

// Domain separates independent key spaces sharing one Locker.
type Domain uint16

// DomainMailbox is the domain used to serialize deliveries to an entity.
const DomainMailbox Domain = 1

const (
	shardCount = 64
	// maxFreeQueues bounds the recycled queue objects kept per shard.
	maxFreeQueues = 256
)

type lockKey struct {
	domain Domain
	key    uint64
}

const (
	ticketWaiting int32 = iota
	ticketGranted
	ticketExpired
	ticketAbandoned
)

type grant struct {
	lock *Lock
	err  error
}

// Ticket is a reserved place in a lock queue.
type Ticket struct {
	locker *Locker
	key    lockKey
	state  int32 // guarded by the shard mutex
	timer  scheduler.Handle
	grants chan grant
}

type waitQueue struct {
	held    bool
	level   uint64
	waiters []*Ticket
}

func (q *waitQueue) reset() {
	q.held = false
	q.level = 0
	clear(q.waiters)
	q.waiters = q.waiters[:0]
}

type shard struct {
	mu     sync.Mutex
	queues map[lockKey]*waitQueue
	free   []*waitQueue
}

func (s *shard) acquireQueue() *waitQueue {
	if n := len(s.free); n > 0 {
		q := s.free[n-1]
		s.free[n-1] = nil
		s.free = s.free[:n-1]
		return q
	}
	return &waitQueue{waiters: make([]*Ticket, 0, 4)}
}

func (s *shard) releaseQueue(key lockKey, q *waitQueue) {
	delete(s.queues, key)
	if len(s.free) < maxFreeQueues {
		q.reset()
		s.free = append(s.free, q)
	}
}

// Locker grants exclusive access per (domain, key) in request order.
//
// At most one Lock is held per key. Waiters are granted in the order their
// tickets were reserved. A waiter that times out or is canceled leaves the
// queue without disturbing the others, and a queue left with no holder and
// no waiter is discarded.
type Locker struct {
	shards    [shardCount]*shard
	timer     scheduler.Timer
	logger    log.Logger
	warnLevel int
}

// NewLocker creates a Locker. timer arms the wait timeouts; a nil timer
// disables them.
func NewLocker(timer scheduler.Timer, opts ...Option) *Locker {
	locker := &Locker{
		timer:  timer,
		logger: log.DefaultLogger,
	}

	for i := range locker.shards {
		locker.shards[i] = &shard{queues: make(map[lockKey]*waitQueue)}
	}

	for _, opt := range opts {
		opt.Apply(locker)
	}
	return locker
}

// Acquire waits for the lock of (domain, key). A positive timeout fails the
// wait with ErrLockTimeout; ctx cancellation fails it with ErrLockCanceled.
func (l *Locker) Acquire(ctx context.Context, domain Domain, key uint64, timeout time.Duration) (*Lock, error) {
	return l.Reserve(domain, key, timeout).Wait(ctx)
}

// Reserve takes a place in the queue of (domain, key) without blocking.
// The order of Reserve calls is the order in which the lock is granted.
func (l *Locker) Reserve(domain Domain, key uint64, timeout time.Duration) *Ticket {
	lk := lockKey{domain: domain, key: key}
	ticket := &Ticket{locker: l, key: lk, grants: make(chan grant, 1)}
	s := l.shardOf(lk)

	s.mu.Lock()
	q, ok := s.queues[lk]
	if !ok {
		q = s.acquireQueue()
		s.queues[lk] = q
	}

	if !q.held {
		q.held = true
		q.level++
		ticket.state = ticketGranted
		ticket.grants <- grant{lock: newLock(l, lk, q.level)}
		s.mu.Unlock()
		return ticket
	}

	q.waiters = append(q.waiters, ticket)
	depth := len(q.waiters)
	s.mu.Unlock()

	if l.warnLevel > 0 && depth >= l.warnLevel && depth%l.warnLevel == 0 {
		l.logger.Warnf("mailbox lock (domain=%d, key=%d) has %d waiters", domain, key, depth)
	}

	if timeout > 0 && l.timer != nil {
		handle, err := l.timer.Once(timeout, func() { l.expire(ticket) })
		if err != nil {
			l.logger.Warnf("failed to arm mailbox lock timeout: %v", err)
			l.fail(ticket, err)
			return ticket
		}

		s.mu.Lock()
		ticket.timer = handle
		s.mu.Unlock()
	}
	return ticket
}

// Wait suspends the caller until the ticket is granted, times out or ctx ends.
func (t *Ticket) Wait(ctx context.Context) (*Lock, error) {
	select {
	case g := <-t.grants:
		return g.lock, g.err
	case <-ctx.Done():
	}

	if t.locker.abandon(t) {
		return nil, gerrors.ErrLockCanceled
	}

	// the ticket was settled while ctx ended
	g := <-t.grants
	if g.lock != nil {
		g.lock.Release()
	}
	return nil, gerrors.ErrLockCanceled
}

// Len returns the number of live lock queues.
func (l *Locker) Len() int {
	total := 0
	for _, s := range l.shards {
		s.mu.Lock()
		total += len(s.queues)
		s.mu.Unlock()
	}
	return total
}

// Depth returns the number of tickets still waiting on (domain, key).
func (l *Locker) Depth(domain Domain, key uint64) int {
	lk := lockKey{domain: domain, key: key}
	s := l.shardOf(lk)

	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.queues[lk]
	if !ok {
		return 0
	}

	depth := 0
	for _, ticket := range q.waiters {
		if ticket.state == ticketWaiting {
			depth++
		}
	}
	return depth
}

func (l *Locker) shardOf(lk lockKey) *shard {
	var buf [10]byte
	binary.BigEndian.PutUint16(buf[:2], uint16(lk.domain))
	binary.BigEndian.PutUint64(buf[2:], lk.key)
	return l.shards[xxh3.Hash(buf[:])&(shardCount-1)]
}

func (l *Locker) expire(ticket *Ticket) {
	l.settle(ticket, ticketExpired, gerrors.ErrLockTimeout)
}

func (l *Locker) fail(ticket *Ticket, err error) {
	l.settle(ticket, ticketExpired, err)
}

func (l *Locker) settle(ticket *Ticket, state int32, err error) {
	s := l.shardOf(ticket.key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if ticket.state != ticketWaiting {
		return
	}
	ticket.state = state
	l.prune(s, ticket.key)
	ticket.grants <- grant{err: err}
}

func (l *Locker) abandon(ticket *Ticket) bool {
	s := l.shardOf(ticket.key)
	s.mu.Lock()
	if ticket.state != ticketWaiting {
		s.mu.Unlock()
		return false
	}
	ticket.state = ticketAbandoned
	handle := ticket.timer
	l.prune(s, ticket.key)
	s.mu.Unlock()

	l.cancelTimer(handle)
	return true
}

// prune drops settled tickets from the head of the queue.
func (l *Locker) prune(s *shard, lk lockKey) {
	q, ok := s.queues[lk]
	if !ok {
		return
	}
	i := 0
	for i < len(q.waiters) && q.waiters[i].state != ticketWaiting {
		i++
	}
	if i > 0 {
		q.waiters = append(q.waiters[:0], q.waiters[i:]...)
	}
}

func (l *Locker) release(lk lockKey) {
	s := l.shardOf(lk)
	s.mu.Lock()
	q, ok := s.queues[lk]
	if !ok {
		s.mu.Unlock()
		return
	}

	for len(q.waiters) > 0 {
		next := q.waiters[0]
		q.waiters[0] = nil
		q.waiters = q.waiters[1:]
		if next.state != ticketWaiting {
			continue
		}

		next.state = ticketGranted
		q.level++
		handle := next.timer
		next.grants <- grant{lock: newLock(l, lk, q.level)}
		s.mu.Unlock()

		l.cancelTimer(handle)
		return
	}

	s.releaseQueue(lk, q)
	s.mu.Unlock()
}

func (l *Locker) cancelTimer(handle scheduler.Handle) {
	if handle != scheduler.NoHandle && l.timer != nil {
		l.timer.Cancel(handle)
	}
}

// Lock is a granted mailbox lock.
type Lock struct {
	locker   *Locker
	key      lockKey
	level    uint64
	released *atomic.Bool
}

func newLock(locker *Locker, key lockKey, level uint64) *Lock {
	return &Lock{locker: locker, key: key, level: level, released: atomic.NewBool(false)}
}

// Release hands the lock to the next waiter. Only the first call has an effect.
func (x *Lock) Release() {
	if x.released.CompareAndSwap(false, true) {
		x.locker.release(x.key)
	}
}

// Level returns the grant sequence number of the lock within its queue.
// It is meant for diagnostics only.
func (x *Lock) Level() uint64 {
	return x.level
}

// Domain returns the lock domain.
func (x *Lock) Domain() Domain {
	return x.key.domain
}

// Key returns the lock key.
func (x *Lock) Key() uint64 {
	return x.key.key
}
