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

package scheduler

import (
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
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newStartedScheduler(t *testing.T, opts ...Option) *Scheduler {
	t.Helper()
	ctx := context.Background()
	scheduler := New(append([]Option{WithLogger(log.DiscardLogger)}, opts...)...)
	scheduler.Start(ctx)
	require.True(t, scheduler.IsStarted())
	t.Cleanup(func() { scheduler.Stop(ctx) })
	return scheduler
}

func TestScheduler(t *testing.T) {
	t.Run("With scheduler not started", func(t *testing.T) {
		scheduler := New(WithLogger(log.DiscardLogger))
		_, err := scheduler.Once(time.Millisecond, func() {})
		require.ErrorIs(t, err, gerrors.ErrSchedulerNotStarted)
		err = scheduler.After(context.Background(), time.Millisecond)
		require.ErrorIs(t, err, gerrors.ErrSchedulerNotStarted)
		scheduler.Stop(context.Background())
	})
	t.Run("With once timer", func(t *testing.T) {
		scheduler := newStartedScheduler(t)
		fired := make(chan struct{})
		handle, err := scheduler.Once(10*time.Millisecond, func() { close(fired) })
		require.NoError(t, err)
		require.NotEqual(t, NoHandle, handle)

		kind, ok := scheduler.Kind(handle)
		require.True(t, ok)
		assert.Equal(t, OnceTimer, kind)

		select {
		case <-fired:
		case <-time.After(time.Second):
			t.Fatal("timer did not fire")
		}

		require.Eventually(t, func() bool { return scheduler.Len() == 0 }, time.Second, 5*time.Millisecond)
		assert.False(t, scheduler.Cancel(handle))
	})
	t.Run("With canceled once timer", func(t *testing.T) {
		scheduler := newStartedScheduler(t)
		fired := atomic.NewBool(false)
		handle, err := scheduler.Once(100*time.Millisecond, func() { fired.Store(true) })
		require.NoError(t, err)

		assert.True(t, scheduler.Cancel(handle))
		assert.False(t, scheduler.Cancel(handle))
		assert.Zero(t, scheduler.Len())

		time.Sleep(200 * time.Millisecond)
		assert.False(t, fired.Load())
	})
	t.Run("With independent timeouts", func(t *testing.T) {
		scheduler := newStartedScheduler(t)
		var (
			mu    sync.Mutex
			order []int
		)
		record := func(i int) func() {
			return func() {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
			}
		}

		_, err := scheduler.Once(150*time.Millisecond, record(2))
		require.NoError(t, err)
		_, err = scheduler.Once(30*time.Millisecond, record(1))
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(order) == 2
		}, 2*time.Second, 10*time.Millisecond)
		assert.Equal(t, []int{1, 2}, order)
	})
	t.Run("With after", func(t *testing.T) {
		scheduler := newStartedScheduler(t)
		start := time.Now()
		require.NoError(t, scheduler.After(context.Background(), 30*time.Millisecond))
		assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	})
	t.Run("With after and context canceled", func(t *testing.T) {
		scheduler := newStartedScheduler(t)
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		err := scheduler.After(ctx, time.Minute)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Zero(t, scheduler.Len())
	})
	t.Run("With canceled waiter", func(t *testing.T) {
		scheduler := newStartedScheduler(t)
		waiter, err := scheduler.Await(time.Minute)
		require.NoError(t, err)

		kind, ok := scheduler.Kind(waiter.Handle())
		require.True(t, ok)
		assert.Equal(t, OnceWaitTimer, kind)

		require.True(t, scheduler.Cancel(waiter.Handle()))
		require.ErrorIs(t, waiter.Wait(context.Background()), gerrors.ErrTimerCanceled)
	})
	t.Run("With waiter canceled by stop", func(t *testing.T) {
		ctx := context.Background()
		scheduler := New(WithLogger(log.DiscardLogger))
		scheduler.Start(ctx)
		waiter, err := scheduler.Await(time.Minute)
		require.NoError(t, err)

		scheduler.Stop(ctx)
		require.ErrorIs(t, waiter.Wait(ctx), gerrors.ErrTimerCanceled)
		assert.False(t, scheduler.IsStarted())
	})
	t.Run("With repeated timer", func(t *testing.T) {
		scheduler := newStartedScheduler(t)
		count := atomic.NewInt32(0)
		handle, err := scheduler.Every(10*time.Millisecond, func() { count.Inc() })
		require.NoError(t, err)

		kind, ok := scheduler.Kind(handle)
		require.True(t, ok)
		assert.Equal(t, RepeatedTimer, kind)

		require.Eventually(t, func() bool { return count.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
		require.True(t, scheduler.Cancel(handle))

		time.Sleep(30 * time.Millisecond)
		snapshot := count.Load()
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, snapshot, count.Load())
	})
	t.Run("With repeated timer and executor", func(t *testing.T) {
		tasks := make(chan func(), 16)
		scheduler := newStartedScheduler(t, WithExecutor(func(fn func()) { tasks <- fn }))

		ran := atomic.NewBool(false)
		handle, err := scheduler.Every(10*time.Millisecond, func() { ran.Store(true) })
		require.NoError(t, err)

		select {
		case task := <-tasks:
			assert.False(t, ran.Load())
			task()
			assert.True(t, ran.Load())
		case <-time.After(time.Second):
			t.Fatal("executor was not used")
		}
		require.True(t, scheduler.Cancel(handle))
	})
	t.Run("With invalid interval", func(t *testing.T) {
		scheduler := newStartedScheduler(t)
		_, err := scheduler.Every(0, func() {})
		require.ErrorIs(t, err, gerrors.ErrInvalidInterval)
	})
	t.Run("With kind names", func(t *testing.T) {
		assert.Equal(t, "OnceTimer", OnceTimer.String())
		assert.Equal(t, "OnceWaitTimer", OnceWaitTimer.String())
		assert.Equal(t, "RepeatedTimer", RepeatedTimer.String())
		assert.Equal(t, "Unknown", Kind(9).String())
	})
}
