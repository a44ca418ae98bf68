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

package ticker

import (
	"sync"
	"time"
)

// Ticker delivers ticks at a fixed interval. A tick is dropped when the
// receiver is still busy with the previous one, so a slow owner loop never
// accumulates a backlog of ticks.
type Ticker struct {
	ticks    chan time.Time
	interval time.Duration

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// New creates a Ticker firing every interval. It panics when interval is
// not positive.
func New(interval time.Duration) *Ticker {
	if interval <= 0 {
		panic("ticker interval must be greater than zero")
	}
	return &Ticker{
		ticks:    make(chan time.Time),
		interval: interval,
	}
}

// C returns the channel the ticks are delivered on.
func (t *Ticker) C() <-chan time.Time {
	return t.ticks
}

// Start starts delivering ticks. It is a no-op on a running ticker.
func (t *Ticker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}

	t.running = true
	t.stop = make(chan struct{})
	t.wg.Add(1)
	go t.run(t.stop)
}

// Stop stops the ticker and waits for its goroutine to exit. No tick is
// delivered after Stop returns.
func (t *Ticker) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	close(t.stop)
	t.mu.Unlock()

	t.wg.Wait()
}

// Running reports whether the ticker delivers ticks.
func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *Ticker) run(stop <-chan struct{}) {
	defer t.wg.Done()

	clock := time.NewTicker(t.interval)
	defer clock.Stop()

	for {
		select {
		case now := <-clock.C:
			select {
			case t.ticks <- now:
			default:
			}
		case <-stop:
			return
		}
	}
}
