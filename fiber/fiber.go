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

package fiber

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/multierr"

	"github.com/tochemey/actorwire/config"
	"github.com/tochemey/actorwire/dispatch"
	"github.com/tochemey/actorwire/entity"
	gerrors "github.com/tochemey/actorwire/errors"
	"github.com/tochemey/actorwire/internal/packet"
	"github.com/tochemey/actorwire/internal/queue"
	"github.com/tochemey/actorwire/internal/tcp"
	"github.com/tochemey/actorwire/internal/ticker"
	"github.com/tochemey/actorwire/log"
	"github.com/tochemey/actorwire/mailbox"
	"github.com/tochemey/actorwire/message"
	"github.com/tochemey/actorwire/scheduler"
	"github.com/tochemey/actorwire/transport"
)

// Fiber is the owner context of a process. It wires the timer service,
// the mailbox locker, the entity registry, the transport and the
// dispatcher, and runs the owner loop: transport events, posted tasks and
// repeated timers all execute on that single goroutine. Message handlers do
// not: the dispatcher runs each frame on its own goroutine, serialized per
// entity only for the Ordered policy.
type Fiber struct {
	config        *config.Config
	logger        log.Logger
	meterProvider metric.MeterProvider

	timer      *scheduler.Scheduler
	locker     *mailbox.Locker
	registry   *entity.Registry
	transport  *transport.Service
	dispatcher *dispatch.Dispatcher

	tasks   *queue.Mpsc[func()]
	started atomic.Bool
	stopped atomic.Bool
	stop    chan struct{}
	done    chan struct{}
}

// New builds a Fiber from cfg. table lists the opcodes spoken by the
// process and routes binds them to handlers.
func New(cfg *config.Config, table *message.Table, routes []dispatch.Route, opts ...Option) (*Fiber, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	f := &Fiber{
		config: cfg,
		tasks:  queue.NewMpsc[func()](),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	for _, opt := range opts {
		opt.Apply(f)
	}

	if f.logger == nil {
		f.logger = log.NewZap(log.ParseLevel(cfg.LogLevel), os.Stdout)
	}
	f.logger = f.logger.With("fiber", cfg.Name, "process", cfg.Process)

	f.timer = scheduler.New(
		scheduler.WithLogger(f.logger),
		scheduler.WithExecutor(f.tasks.Push),
	)
	f.locker = mailbox.NewLocker(f.timer,
		mailbox.WithLogger(f.logger),
		mailbox.WithWarnLevel(cfg.LockWarnLevel),
	)
	f.registry = entity.NewRegistry(cfg.Process)

	layout := packet.Inner
	if cfg.Layout == config.LayoutOuter {
		layout = packet.Outer
	}

	wrapper, err := tcp.NewCompression(cfg.Compression)
	if err != nil {
		return nil, err
	}

	transportOpts := []transport.Option{
		transport.WithLogger(f.logger),
		transport.WithLayout(layout),
		transport.WithMaxPacketSize(cfg.MaxPacketSize),
		transport.WithSendHighWater(cfg.SendHighWater),
		transport.WithIdleTimeout(cfg.IdleTimeout),
		transport.WithMaxConnections(cfg.MaxConnections),
		transport.WithConnWrapper(wrapper),
		transport.WithMeterProvider(f.meterProvider),
		transport.WithDialer(tcp.NewDialer(
			tcp.WithDialTimeout(cfg.DialTimeout),
			tcp.WithAttempts(cfg.DialRetries),
		)),
	}

	f.transport, err = transport.New(table, transportOpts...)
	if err != nil {
		return nil, err
	}

	router, err := dispatch.NewRouter(table, routes...)
	if err != nil {
		return nil, err
	}

	f.dispatcher, err = dispatch.New(router, f.registry, f.transport,
		dispatch.WithLogger(f.logger),
		dispatch.WithTimer(f.timer),
		dispatch.WithLocker(f.locker),
		dispatch.WithRequestTimeout(cfg.RequestTimeout),
		dispatch.WithLockTimeout(cfg.LockTimeout),
	)
	if err != nil {
		return nil, err
	}

	f.transport.SetListener(f.dispatcher)
	return f, nil
}

// Start starts the timer service, the listener when an address is
// configured and the owner loop.
func (f *Fiber) Start(ctx context.Context) error {
	if !f.started.CompareAndSwap(false, true) {
		return gerrors.ErrFiberAlreadyStarted
	}

	f.timer.Start(ctx)
	if !f.timer.IsStarted() {
		return gerrors.ErrSchedulerNotStarted
	}

	if address := f.config.ListenAddress; address != "" {
		if err := f.transport.Listen(ctx, address); err != nil {
			f.timer.Stop(ctx)
			return err
		}
	}

	go f.loop()
	f.logger.Infof("fiber %s started (process=%d)", f.config.Name, f.config.Process)
	return nil
}

// Stop stops the owner loop, then closes the dispatcher, the transport and
// the timer service.
func (f *Fiber) Stop(ctx context.Context) error {
	if !f.started.Load() {
		return gerrors.ErrFiberNotStarted
	}
	if !f.stopped.CompareAndSwap(false, true) {
		return nil
	}

	close(f.stop)
	select {
	case <-f.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	var errs error
	errs = multierr.Append(errs, f.dispatcher.Close(ctx))
	errs = multierr.Append(errs, f.transport.Close())
	f.timer.Stop(ctx)

	f.logger.Infof("fiber %s stopped", f.config.Name)
	errs = multierr.Append(errs, f.logger.Flush())
	return errs
}

// Post hands fn to the owner loop.
func (f *Fiber) Post(fn func()) error {
	if !f.started.Load() || f.stopped.Load() {
		return gerrors.ErrFiberNotStarted
	}
	f.tasks.Push(fn)
	return nil
}

// Every runs fn on the owner loop every interval.
func (f *Fiber) Every(interval time.Duration, fn func()) (scheduler.Handle, error) {
	return f.timer.Every(interval, fn)
}

// Connect dials address and returns the channel id.
func (f *Fiber) Connect(ctx context.Context, address string) (uint64, error) {
	return f.transport.Connect(ctx, address)
}

// Spawn registers entity so that it can receive messages.
func (f *Fiber) Spawn(e entity.Entity) error {
	return f.registry.Add(e)
}

func (f *Fiber) loop() {
	defer close(f.done)

	clock := ticker.New(f.config.TickInterval)
	clock.Start()
	defer clock.Stop()

	for {
		select {
		case <-f.stop:
			f.tasks.Drain(f.run)
			return
		case <-clock.C():
		case <-f.transport.Notify():
		case <-f.tasks.Notify():
		}

		f.tasks.Drain(f.run)
		f.transport.Update()
	}
}

// run executes a posted task, keeping the loop alive when it panics.
func (f *Fiber) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error(fmt.Errorf("fiber task: %w", gerrors.NewPanicError(r)))
		}
	}()
	task()
}

// Config returns the configuration.
func (f *Fiber) Config() *config.Config {
	return f.config
}

// Logger returns the logger.
func (f *Fiber) Logger() log.Logger {
	return f.logger
}

// Process returns the process id.
func (f *Fiber) Process() uint16 {
	return f.config.Process
}

// Scheduler returns the timer service.
func (f *Fiber) Scheduler() *scheduler.Scheduler {
	return f.timer
}

// Locker returns the mailbox locker.
func (f *Fiber) Locker() *mailbox.Locker {
	return f.locker
}

// Registry returns the entity registry.
func (f *Fiber) Registry() *entity.Registry {
	return f.registry
}

// Transport returns the transport service.
func (f *Fiber) Transport() *transport.Service {
	return f.transport
}

// Dispatcher returns the dispatcher.
func (f *Fiber) Dispatcher() *dispatch.Dispatcher {
	return f.dispatcher
}
