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
	"sync/atomic"
)

type node[T any] struct {
	value T
	next  atomic.Pointer[node[T]]
}

// Mpsc is an unbounded multi-producer single-consumer FIFO queue.
//
// Any number of goroutines may Push. Pop and Drain must only be called by
// one consumer goroutine at a time. Every Push raises the Notify signal so
// a consumer can sleep until work arrives.
// reference: https://concurrencyfreaks.blogspot.com/2014/04/multi-producer-single-consumer-queue.html
type Mpsc[T any] struct {
	head   atomic.Pointer[node[T]]
	tail   *node[T]
	length atomic.Int64
	notify chan struct{}
}

// NewMpsc creates an empty queue.
func NewMpsc[T any]() *Mpsc[T] {
	stub := new(node[T])
	q := &Mpsc[T]{tail: stub, notify: make(chan struct{}, 1)}
	q.head.Store(stub)
	return q
}

// Push appends value. It is safe for concurrent use.
func (q *Mpsc[T]) Push(value T) {
	n := &node[T]{value: value}
	previous := q.head.Swap(n)
	previous.next.Store(n)
	q.length.Add(1)

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Pop removes the oldest value. It returns false when the queue is empty.
func (q *Mpsc[T]) Pop() (T, bool) {
	var zero T
	next := q.tail.next.Load()
	if next == nil {
		return zero, false
	}

	q.tail = next
	value := next.value
	next.value = zero
	q.length.Add(-1)
	return value, true
}

// Drain pops every value currently queued and passes it to fn, in order.
// It returns the number of values drained.
func (q *Mpsc[T]) Drain(fn func(T)) int {
	count := 0
	for {
		value, ok := q.Pop()
		if !ok {
			return count
		}
		fn(value)
		count++
	}
}

// Notify returns a channel receiving a signal after pushes. Several pushes
// may collapse into one signal.
func (q *Mpsc[T]) Notify() <-chan struct{} {
	return q.notify
}

// Len returns the number of queued values.
func (q *Mpsc[T]) Len() int64 {
	return q.length.Load()
}

// IsEmpty reports whether the queue holds no value. Consumer side only.
func (q *Mpsc[T]) IsEmpty() bool {
	return q.tail.next.Load() == nil
}
