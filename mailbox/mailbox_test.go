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
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"go.uber.org/goleak"

	gerrors "github.com/tochemey/actorwire/errors"
	"github.com/tochemey/actorwire/log"
	"github.com/tochemey/actorwire/scheduler"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newLocker(t *testing.T, opts ...Option) *Locker {
	t.Helper()
	ctx := context.Background()
	timer := scheduler.New(scheduler.WithLogger(log.DiscardLogger))
	timer.Start(ctx)
	t.Cleanup(func() { timer.Stop(ctx) })
	return NewLocker(timer, append([]Option{WithLogger(log.DiscardLogger)}, opts...)...)
}

func TestLocker(t *testing.T) {
	t.Run("With free lock", func(t *testing.T) {
		locker := newLocker(t)
		lock, err := locker.Acquire(context.Background(), DomainMailbox, 42, time.Second)
		require.NoError(t, err)
		require.NotNil(t, lock)
		assert.EqualValues(t, 1, lock.Level())
		assert.Equal(t, DomainMailbox, lock.Domain())
		assert.EqualValues(t, 42, lock.Key())
		assert.Equal(t, 1, locker.Len())

		lock.Release()
		assert.Zero(t, locker.Len())
		// releasing twice has no effect
		lock.Release()
		assert.Zero(t, locker.Len())
	})
	t.Run("With FIFO grant order", func(t *testing.T) {
		locker := newLocker(t)
		ctx := context.Background()

		holder, err := locker.Acquire(ctx, DomainMailbox, 1, time.Second)
		require.NoError(t, err)

		const count = 20
		tickets := make([]*Ticket, count)
		for i := range count {
			tickets[i] = locker.Reserve(DomainMailbox, 1, 5*time.Second)
		}
		assert.Equal(t, count, locker.Depth(DomainMailbox, 1))

		var (
			mu    sync.Mutex
			order []int
			wg    sync.WaitGroup
		)
		// start the waiters in reverse to show that reservation order wins
		for i := count - 1; i >= 0; i-- {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				lock, err := tickets[i].Wait(ctx)
				if err != nil {
					return
				}
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				lock.Release()
			}(i)
		}

		holder.Release()
		wg.Wait()

		expected := make([]int, count)
		for i := range expected {
			expected[i] = i
		}
		assert.Equal(t, expected, order)
		assert.Zero(t, locker.Len())
	})
	t.Run("With at most one holder", func(t *testing.T) {
		locker := newLocker(t)
		ctx := context.Background()

		var (
			inside  = atomic.NewInt32(0)
			maxSeen = atomic.NewInt32(0)
			wg      sync.WaitGroup
		)
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				lock, err := locker.Acquire(ctx, DomainMailbox, 7, 5*time.Second)
				if !assert.NoError(t, err) {
					return
				}
				current := inside.Inc()
				for {
					seen := maxSeen.Load()
					if current <= seen || maxSeen.CompareAndSwap(seen, current) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				inside.Dec()
				lock.Release()
			}()
		}
		wg.Wait()
		assert.EqualValues(t, 1, maxSeen.Load())
		assert.Zero(t, locker.Len())
	})
	t.Run("With independent keys", func(t *testing.T) {
		locker := newLocker(t)
		ctx := context.Background()

		first, err := locker.Acquire(ctx, DomainMailbox, 1, time.Second)
		require.NoError(t, err)
		second, err := locker.Acquire(ctx, DomainMailbox, 2, time.Second)
		require.NoError(t, err)
		other, err := locker.Acquire(ctx, Domain(2), 1, time.Second)
		require.NoError(t, err)
		assert.Equal(t, 3, locker.Len())

		first.Release()
		second.Release()
		other.Release()
		assert.Zero(t, locker.Len())
	})
	t.Run("With timeout", func(t *testing.T) {
		locker := newLocker(t)
		ctx := context.Background()

		holder, err := locker.Acquire(ctx, DomainMailbox, 9, time.Second)
		require.NoError(t, err)

		timedOut := locker.Reserve(DomainMailbox, 9, 30*time.Millisecond)
		patient := locker.Reserve(DomainMailbox, 9, 5*time.Second)

		lock, err := timedOut.Wait(ctx)
		require.ErrorIs(t, err, gerrors.ErrLockTimeout)
		assert.Nil(t, lock)
		assert.Equal(t, 1, locker.Depth(DomainMailbox, 9))

		holder.Release()
		lock, err = patient.Wait(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 2, lock.Level())
		lock.Release()
		assert.Zero(t, locker.Len())
	})
	t.Run("With context canceled", func(t *testing.T) {
		locker := newLocker(t)
		holder, err := locker.Acquire(context.Background(), DomainMailbox, 3, time.Second)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		lock, err := locker.Acquire(ctx, DomainMailbox, 3, time.Minute)
		require.ErrorIs(t, err, gerrors.ErrLockCanceled)
		assert.Nil(t, lock)
		assert.Zero(t, locker.Depth(DomainMailbox, 3))

		holder.Release()
		assert.Zero(t, locker.Len())
	})
	t.Run("With canceled waiter skipped", func(t *testing.T) {
		locker := newLocker(t)
		ctx := context.Background()
		holder, err := locker.Acquire(ctx, DomainMailbox, 5, time.Second)
		require.NoError(t, err)

		canceledCtx, cancel := context.WithCancel(ctx)
		abandoned := locker.Reserve(DomainMailbox, 5, time.Minute)
		next := locker.Reserve(DomainMailbox, 5, time.Minute)
		cancel()
		_, err = abandoned.Wait(canceledCtx)
		require.ErrorIs(t, err, gerrors.ErrLockCanceled)

		holder.Release()
		lock, err := next.Wait(ctx)
		require.NoError(t, err)
		lock.Release()
		assert.Zero(t, locker.Len())
	})
	t.Run("With no timeout", func(t *testing.T) {
		locker := NewLocker(nil, WithLogger(log.DiscardLogger))
		ctx := context.Background()
		holder, err := locker.Acquire(ctx, DomainMailbox, 5, 0)
		require.NoError(t, err)

		done := make(chan struct{})
		go func() {
			defer close(done)
			lock, err := locker.Acquire(ctx, DomainMailbox, 5, time.Millisecond)
			if assert.NoError(t, err) {
				lock.Release()
			}
		}()

		require.Eventually(t, func() bool { return locker.Depth(DomainMailbox, 5) == 1 }, time.Second, time.Millisecond)
		holder.Release()
		<-done
		assert.Zero(t, locker.Len())
	})
	t.Run("With timer not started", func(t *testing.T) {
		timer := scheduler.New(scheduler.WithLogger(log.DiscardLogger))
		locker := NewLocker(timer, WithLogger(log.DiscardLogger))
		ctx := context.Background()

		holder, err := locker.Acquire(ctx, DomainMailbox, 6, time.Second)
		require.NoError(t, err)
		_, err = locker.Acquire(ctx, DomainMailbox, 6, time.Second)
		require.ErrorIs(t, err, gerrors.ErrSchedulerNotStarted)
		holder.Release()
		assert.Zero(t, locker.Len())
	})
	t.Run("With warn level", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		locker := newLocker(t, WithWarnLevel(2), WithLogger(log.NewZap(log.WarningLevel, buffer)))
		ctx := context.Background()

		holder, err := locker.Acquire(ctx, DomainMailbox, 8, time.Second)
		require.NoError(t, err)
		first := locker.Reserve(DomainMailbox, 8, time.Second)
		second := locker.Reserve(DomainMailbox, 8, time.Second)
		assert.Contains(t, buffer.String(), "has 2 waiters")

		holder.Release()
		lock, err := first.Wait(ctx)
		require.NoError(t, err)
		lock.Release()
		lock, err = second.Wait(ctx)
		require.NoError(t, err)
		lock.Release()
		assert.Zero(t, locker.Len())
	})
}
