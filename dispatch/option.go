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

package dispatch

import (
	"time"

	"github.com/tochemey/actorwire/log"
	"github.com/tochemey/actorwire/mailbox"
	"github.com/tochemey/actorwire/scheduler"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a Dispatcher.
	Apply(dispatcher *Dispatcher)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(dispatcher *Dispatcher)

// Apply applies the Dispatcher's option
func (f OptionFunc) Apply(dispatcher *Dispatcher) {
	f(dispatcher)
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(dispatcher *Dispatcher) {
		dispatcher.logger = logger
	})
}

// WithTimer sets the timer driving request timeouts.
func WithTimer(timer scheduler.Timer) Option {
	return OptionFunc(func(dispatcher *Dispatcher) {
		dispatcher.timer = timer
	})
}

// WithLocker sets the mailbox locker serializing ordered entities.
func WithLocker(locker *mailbox.Locker) Option {
	return OptionFunc(func(dispatcher *Dispatcher) {
		dispatcher.locker = locker
	})
}

// WithRequestTimeout sets how long Call waits for a Response. Zero
// disables the timeout.
func WithRequestTimeout(timeout time.Duration) Option {
	return OptionFunc(func(dispatcher *Dispatcher) {
		dispatcher.requestTimeout = timeout
	})
}

// WithLockTimeout sets how long a frame waits for the mailbox of its
// destination. Zero disables the timeout.
func WithLockTimeout(timeout time.Duration) Option {
	return OptionFunc(func(dispatcher *Dispatcher) {
		dispatcher.lockTimeout = timeout
	})
}
