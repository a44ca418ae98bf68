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
	"time"

	"github.com/google/uuid"
	"github.com/reugn/go-quartz/job"
	quartzlogger "github.com/reugn/go-quartz/logger"
	"github.com/reugn/go-quartz/quartz"
	"go.uber.org/atomic"

	gerrors "github.com/tochemey/actorwire/errors"
	"github.com/tochemey/actorwire/log"
)

// Handle identifies a scheduled timer action.
type Handle string

// NoHandle is the zero Handle.
const NoHandle Handle = ""

// Kind is the type of a timer action.
type Kind int

const (
	// OnceTimer runs a callback once after a delay.
	OnceTimer Kind = iota
	// OnceWaitTimer wakes a waiting caller once after a delay.
	OnceWaitTimer
	// RepeatedTimer runs a callback at a fixed interval until canceled.
	RepeatedTimer
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case OnceTimer:
		return "OnceTimer"
	case OnceWaitTimer:
		return "OnceWaitTimer"
	case RepeatedTimer:
		return "RepeatedTimer"
	default:
		return "Unknown"
	}
}

// Timer is the part of the Scheduler consumed by components that only need
// one-shot timeouts.
type Timer interface {
	Once(delay time.Duration, fn func()) (Handle, error)
	Cancel(handle Handle) bool
}

const (
	statePending int32 = iota
	stateFired
	stateCanceled
)

// outdatedThreshold keeps quartz from dropping jobs whose fire time has
// already passed when the scheduler loop picks them up.
const outdatedThreshold = 24 * time.Hour

type timerAction struct {
	kind  Kind
	key   *quartz.JobKey
	state *atomic.Int32
	fn    func()
	done  chan error
}

// Scheduler is the timer service. It runs one-shot callbacks, wakes waiting
// callers and runs repeated callbacks. It is safe for concurrent use.
type Scheduler struct {
	mu       sync.Mutex
	quartz   quartz.Scheduler
	started  *atomic.Bool
	actions  map[Handle]*timerAction
	executor func(func())
	logger   log.Logger
}

var _ Timer = (*Scheduler)(nil)

// New creates a Scheduler. It must be started before use.
func New(opts ...Option) *Scheduler {
	quartzScheduler, _ := quartz.NewStdScheduler(
		quartz.WithLogger(quartzlogger.NewSimpleLogger(nil, quartzlogger.LevelOff)),
		quartz.WithOutdatedThreshold(outdatedThreshold))

	scheduler := &Scheduler{
		quartz:   quartzScheduler,
		started:  atomic.NewBool(false),
		actions:  make(map[Handle]*timerAction),
		executor: func(fn func()) { fn() },
		logger:   log.DefaultLogger,
	}

	for _, opt := range opts {
		opt.Apply(scheduler)
	}
	return scheduler
}

// Start starts the scheduler
func (x *Scheduler) Start(ctx context.Context) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.started.Load() {
		return
	}

	x.logger.Debug("starting timer service...")
	x.quartz.Start(ctx)
	x.started.Store(x.quartz.IsStarted())
	x.logger.Debug("timer service started")
}

// Stop cancels every pending action and stops the scheduler. Waiters blocked
// in After or Waiter.Wait receive ErrTimerCanceled.
func (x *Scheduler) Stop(ctx context.Context) {
	x.mu.Lock()
	if !x.started.Load() {
		x.mu.Unlock()
		return
	}

	x.started.Store(false)
	actions := x.actions
	x.actions = make(map[Handle]*timerAction)
	x.mu.Unlock()

	for _, action := range actions {
		if action.state.CompareAndSwap(statePending, stateCanceled) && action.done != nil {
			action.done <- gerrors.ErrTimerCanceled
		}
	}

	_ = x.quartz.Clear()
	x.quartz.Stop()
	x.quartz.Wait(ctx)
	x.logger.Debug("timer service stopped")
}

// IsStarted reports whether the scheduler accepts new actions.
func (x *Scheduler) IsStarted() bool {
	return x.started.Load()
}

// Once runs fn once after delay on a scheduler goroutine.
func (x *Scheduler) Once(delay time.Duration, fn func()) (Handle, error) {
	action := &timerAction{kind: OnceTimer, fn: fn}
	return x.schedule(action, quartz.NewRunOnceTrigger(clampDelay(delay)))
}

// Every runs fn every interval through the executor until canceled.
func (x *Scheduler) Every(interval time.Duration, fn func()) (Handle, error) {
	if interval <= 0 {
		return NoHandle, gerrors.ErrInvalidInterval
	}
	action := &timerAction{kind: RepeatedTimer, fn: fn}
	return x.schedule(action, quartz.NewSimpleTrigger(interval))
}

// Waiter is a pending OnceWaitTimer.
type Waiter struct {
	handle    Handle
	done      chan error
	scheduler *Scheduler
}

// Handle returns the handle that cancels the waiter.
func (w *Waiter) Handle() Handle {
	return w.handle
}

// Wait blocks until the delay elapses, the waiter is canceled or ctx ends.
// When ctx ends first the timer is canceled.
func (w *Waiter) Wait(ctx context.Context) error {
	select {
	case err := <-w.done:
		return err
	case <-ctx.Done():
		w.scheduler.Cancel(w.handle)
		return ctx.Err()
	}
}

// Await schedules a OnceWaitTimer and returns its Waiter.
func (x *Scheduler) Await(delay time.Duration) (*Waiter, error) {
	action := &timerAction{kind: OnceWaitTimer, done: make(chan error, 1)}
	handle, err := x.schedule(action, quartz.NewRunOnceTrigger(clampDelay(delay)))
	if err != nil {
		return nil, err
	}
	return &Waiter{handle: handle, done: action.done, scheduler: x}, nil
}

// After suspends the caller for delay. It returns nil when the delay
// elapsed, ErrTimerCanceled when the scheduler stopped and ctx.Err() when
// ctx ended first.
func (x *Scheduler) After(ctx context.Context, delay time.Duration) error {
	waiter, err := x.Await(delay)
	if err != nil {
		return err
	}
	return waiter.Wait(ctx)
}

// Cancel removes a pending action. It returns false when the handle is
// unknown, already fired or already canceled.
func (x *Scheduler) Cancel(handle Handle) bool {
	x.mu.Lock()
	action, ok := x.actions[handle]
	if !ok {
		x.mu.Unlock()
		return false
	}
	delete(x.actions, handle)
	x.mu.Unlock()

	if !action.state.CompareAndSwap(statePending, stateCanceled) {
		return false
	}

	if err := x.quartz.DeleteJob(action.key); err != nil {
		x.logger.Debugf("timer (%s) already left the queue: %v", handle, err)
	}

	if action.done != nil {
		action.done <- gerrors.ErrTimerCanceled
	}
	return true
}

// Kind returns the kind of a pending action.
func (x *Scheduler) Kind(handle Handle) (Kind, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	action, ok := x.actions[handle]
	if !ok {
		return 0, false
	}
	return action.kind, true
}

// Len returns the number of pending actions.
func (x *Scheduler) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.actions)
}

func (x *Scheduler) schedule(action *timerAction, trigger quartz.Trigger) (Handle, error) {
	handle := Handle(uuid.NewString())
	action.key = quartz.NewJobKey(string(handle))
	action.state = atomic.NewInt32(statePending)

	x.mu.Lock()
	if !x.started.Load() {
		x.mu.Unlock()
		return NoHandle, gerrors.ErrSchedulerNotStarted
	}
	x.actions[handle] = action
	x.mu.Unlock()

	fn := job.NewFunctionJob[bool](func(context.Context) (bool, error) {
		x.fire(handle, action)
		return true, nil
	})

	if err := x.quartz.ScheduleJob(quartz.NewJobDetail(fn, action.key), trigger); err != nil {
		x.mu.Lock()
		delete(x.actions, handle)
		x.mu.Unlock()
		return NoHandle, err
	}
	return handle, nil
}

func (x *Scheduler) fire(handle Handle, action *timerAction) {
	if action.kind == RepeatedTimer {
		if action.state.Load() == statePending {
			x.executor(action.fn)
		}
		return
	}

	if !action.state.CompareAndSwap(statePending, stateFired) {
		return
	}

	x.mu.Lock()
	delete(x.actions, handle)
	x.mu.Unlock()

	if action.done != nil {
		action.done <- nil
		return
	}
	action.fn()
}

func clampDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	return delay
}
