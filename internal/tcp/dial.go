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

package tcp

import (
	"context"
	"net"
	"time"

	"github.com/flowchartsman/retry"
)

// Dialer opens outbound connections, retrying failed attempts with an
// exponential backoff.
type Dialer struct {
	dialer       net.Dialer
	attempts     int
	initialDelay time.Duration
	maxDelay     time.Duration
}

// DialerOption configures a Dialer.
type DialerOption func(*Dialer)

// WithDialTimeout bounds a single connection attempt.
func WithDialTimeout(timeout time.Duration) DialerOption {
	return func(d *Dialer) { d.dialer.Timeout = timeout }
}

// WithAttempts sets the number of connection attempts.
func WithAttempts(attempts int) DialerOption {
	return func(d *Dialer) {
		if attempts > 0 {
			d.attempts = attempts
		}
	}
}

// WithBackoff sets the delay bounds between attempts.
func WithBackoff(initial, max time.Duration) DialerOption {
	return func(d *Dialer) {
		d.initialDelay = initial
		d.maxDelay = max
	}
}

// NewDialer creates a Dialer. Defaults: 3 attempts, 5s per attempt,
// backoff between 100ms and 2s.
func NewDialer(opts ...DialerOption) *Dialer {
	d := &Dialer{
		dialer: net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 15 * time.Second,
		},
		attempts:     3,
		initialDelay: 100 * time.Millisecond,
		maxDelay:     2 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dial connects to address.
func (d *Dialer) Dial(ctx context.Context, address string) (net.Conn, error) {
	var conn net.Conn
	retrier := retry.NewRetrier(d.attempts, d.initialDelay, d.maxDelay)
	err := retrier.RunContext(ctx, func(ctx context.Context) error {
		c, err := d.dialer.DialContext(ctx, "tcp", address)
		if err != nil {
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	Configure(conn)
	return conn, nil
}

// Wrap applies wrappers to conn in order. conn is closed on failure.
func Wrap(conn net.Conn, wrappers ...ConnWrapper) (net.Conn, error) {
	for _, wrapper := range wrappers {
		wrapped, err := wrapper.Wrap(conn)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		conn = wrapped
	}
	return conn, nil
}
