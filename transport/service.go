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

package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/tochemey/actorwire/address"
	gerrors "github.com/tochemey/actorwire/errors"
	"github.com/tochemey/actorwire/internal/buffer"
	imetric "github.com/tochemey/actorwire/internal/metric"
	"github.com/tochemey/actorwire/internal/packet"
	"github.com/tochemey/actorwire/internal/queue"
	"github.com/tochemey/actorwire/internal/tcp"
	"github.com/tochemey/actorwire/internal/validation"
	"github.com/tochemey/actorwire/log"
	"github.com/tochemey/actorwire/message"
)

const (
	// DefaultSendHighWater is the default pending byte count above which
	// senders are suspended.
	DefaultSendHighWater = 1 << 20
)

// Service owns the channels of one endpoint. Network goroutines hand their
// events to a single consumer queue; Update delivers them to the Listener
// on the calling goroutine.
type Service struct {
	table         *message.Table
	layout        packet.Layout
	maxPacketSize int
	highWater     int
	idleTimeout   time.Duration
	listenConfig  tcp.ListenConfig
	dialer        *tcp.Dialer
	wrappers      []tcp.ConnWrapper
	logger        log.Logger
	listener      Listener
	meterProvider metric.MeterProvider
	metric        *imetric.TransportMetric
	chunks        *buffer.Pool
	frames        *packet.FramePool

	mu       sync.RWMutex
	channels map[uint64]*Channel
	netLn    net.Listener
	closed   bool

	nextID atomic.Uint64
	events *queue.Mpsc[event]
	wg     sync.WaitGroup
}

// New creates a Service encoding and decoding frames with table.
func New(table *message.Table, opts ...Option) (*Service, error) {
	s := &Service{
		table:         table,
		layout:        packet.Inner,
		maxPacketSize: packet.MaxSize,
		highWater:     DefaultSendHighWater,
		logger:        log.DefaultLogger,
		channels:      make(map[uint64]*Channel),
		events:        queue.NewMpsc[event](),
		frames:        packet.NewFramePool(),
	}

	for _, opt := range opts {
		opt.Apply(s)
	}

	if err := validation.New(validation.FailFast()).
		AddAssertion(table != nil, "message table is required").
		AddValidator(validation.NewRangeValidator("maxPacketSize", s.maxPacketSize, s.layout.MinSize(), packet.MaxSize)).
		AddValidator(validation.NewPositiveValidator("sendHighWater", s.highWater)).
		Validate(); err != nil {
		return nil, err
	}

	if s.dialer == nil {
		s.dialer = tcp.NewDialer()
	}

	provider := imetric.New(imetric.WithMeterProvider(s.meterProvider))
	instruments, err := imetric.NewTransportMetric(provider.Meter())
	if err != nil {
		return nil, err
	}
	s.metric = instruments
	return s, nil
}

// Layout returns the frame layout.
func (s *Service) Layout() packet.Layout {
	return s.layout
}

// Table returns the message table.
func (s *Service) Table() *message.Table {
	return s.table
}

// SetListener sets the receiver of the service events. It must be called
// before the first Update.
func (s *Service) SetListener(listener Listener) {
	s.listener = listener
}

// Notify returns a channel signaled when events are waiting for Update.
func (s *Service) Notify() <-chan struct{} {
	return s.events.Notify()
}

// Listen starts accepting connections on address.
func (s *Service) Listen(ctx context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return gerrors.ErrTransportClosed
	}
	if s.netLn != nil {
		return fmt.Errorf("already listening on %s", s.netLn.Addr())
	}

	ln, err := tcp.Listen(ctx, address, s.listenConfig)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	s.netLn = ln
	s.wg.Add(1)
	go s.acceptLoop(ln)
	s.logger.Infof("transport listening on %s (layout=%s)", ln.Addr(), s.layout)
	return nil
}

// Addr returns the bound listener address, nil when not listening.
func (s *Service) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.netLn == nil {
		return nil
	}
	return s.netLn.Addr()
}

// AdvertisedAddr returns the host:port peers should dial. Wildcard binds
// resolve to a concrete interface address.
func (s *Service) AdvertisedAddr() (string, error) {
	addr := s.Addr()
	if addr == nil {
		return "", errors.New("transport is not listening")
	}
	return tcp.AdvertisedAddress(addr)
}

// Connect dials address and registers the connection as a channel.
func (s *Service) Connect(ctx context.Context, address string) (uint64, error) {
	if s.isClosed() {
		return 0, gerrors.ErrTransportClosed
	}

	conn, err := s.dialer.Dial(ctx, address)
	if err != nil {
		return 0, fmt.Errorf("failed to connect to %s: %w", address, err)
	}

	wrapped, err := tcp.Wrap(conn, s.wrappers...)
	if err != nil {
		return 0, err
	}

	channel, err := s.register(wrapped)
	if err != nil {
		return 0, err
	}

	s.events.Push(event{kind: eventConnect, channelID: channel.id, remote: channel.remote})
	return channel.id, nil
}

// Channel returns the live channel with the given id.
func (s *Service) Channel(channelID uint64) (*Channel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	channel, ok := s.channels[channelID]
	return channel, ok
}

// Len returns the number of live channels.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.channels)
}

// Bind attaches a session actor to the channel. Frames arriving on the
// channel without a destination are routed to it.
func (s *Service) Bind(channelID uint64, actorID address.ActorID) error {
	channel, ok := s.Channel(channelID)
	if !ok {
		return gerrors.ErrChannelNotFound
	}
	channel.session.Store(actorID.Pack())
	return nil
}

// Session returns the actor bound to the channel.
func (s *Service) Session(channelID uint64) (address.ActorID, bool) {
	channel, ok := s.Channel(channelID)
	if !ok {
		return address.NoActor, false
	}
	session := channel.Session()
	return session, !session.IsZero()
}

// Send frames envelope for destination and queues it on the channel. The
// caller is suspended while the channel is above its high water mark.
func (s *Service) Send(ctx context.Context, channelID uint64, destination address.ActorID, envelope *message.Envelope) error {
	channel, ok := s.Channel(channelID)
	if !ok {
		return fmt.Errorf("channel=%d: %w", channelID, gerrors.ErrChannelNotFound)
	}

	body, err := s.table.AppendBody(nil, envelope)
	if err != nil {
		return err
	}
	return s.sendBody(ctx, channel, destination, envelope.Opcode, body, channel.send)
}

// TrySend is Send without suspension, for callers on the owner loop. A
// channel above its high water mark is torn down with CodeSendOverflow.
func (s *Service) TrySend(channelID uint64, destination address.ActorID, envelope *message.Envelope) error {
	channel, ok := s.Channel(channelID)
	if !ok {
		return fmt.Errorf("channel=%d: %w", channelID, gerrors.ErrChannelNotFound)
	}

	body, err := s.table.AppendBody(nil, envelope)
	if err != nil {
		return err
	}

	err = s.sendBody(context.Background(), channel, destination, envelope.Opcode, body, func(_ context.Context, frame []byte) error {
		return channel.trySend(frame)
	})
	if errors.Is(err, gerrors.ErrSendOverflow) {
		s.teardown(channel, gerrors.CodeSendOverflow, err)
	}
	return err
}

// Broadcast sends envelope to every channel in channelIDs, encoding it once.
func (s *Service) Broadcast(ctx context.Context, channelIDs []uint64, destination address.ActorID, envelope *message.Envelope) error {
	body, err := s.table.AppendBody(nil, envelope)
	if err != nil {
		return err
	}

	var errs error
	for _, channelID := range channelIDs {
		channel, ok := s.Channel(channelID)
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("channel=%d: %w", channelID, gerrors.ErrChannelNotFound))
			continue
		}
		errs = multierr.Append(errs, s.sendBody(ctx, channel, destination, envelope.Opcode, body, channel.send))
	}
	return errs
}

// Update delivers the queued events to the Listener and tears down idle
// channels. It returns the number of events delivered.
func (s *Service) Update() int {
	count := s.events.Drain(func(ev event) {
		if s.listener != nil {
			ev.deliver(s.listener)
		}
	})

	s.expireIdle()
	return count
}

// Remove tears the channel down with the given reason. The Listener gets
// OnError on the next Update.
func (s *Service) Remove(channelID uint64, code gerrors.Code) bool {
	channel, ok := s.Channel(channelID)
	if !ok {
		return false
	}
	return s.teardown(channel, code, nil)
}

// Close stops the listener and tears every channel down.
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	ln := s.netLn
	channels := make([]*Channel, 0, len(s.channels))
	for _, channel := range s.channels {
		channels = append(channels, channel)
	}
	s.mu.Unlock()

	var errs error
	if ln != nil {
		if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			errs = multierr.Append(errs, err)
		}
	}

	eg := new(errgroup.Group)
	for _, channel := range channels {
		eg.Go(func() error {
			s.teardown(channel, gerrors.CodeServiceClosed, nil)
			return nil
		})
	}
	errs = multierr.Append(errs, eg.Wait())

	s.wg.Wait()
	return errs
}

func (s *Service) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *Service) acceptLoop(ln net.Listener) {
	defer s.wg.Done()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || s.isClosed() {
				return
			}
			s.logger.Warnf("transport failed to accept connection: %v", err)
			time.Sleep(10 * time.Millisecond)
			continue
		}

		tcp.Configure(conn)
		wrapped, err := tcp.Wrap(conn, s.wrappers...)
		if err != nil {
			s.logger.Warnf("transport failed to wrap connection from %s: %v", conn.RemoteAddr(), err)
			continue
		}

		channel, err := s.register(wrapped)
		if err != nil {
			return
		}
		s.events.Push(event{kind: eventAccept, channelID: channel.id, remote: channel.remote})
	}
}

// register adds conn as a live channel and starts its reader.
func (s *Service) register(conn net.Conn) (*Channel, error) {
	channel := newChannel(s.nextID.Add(1), s, conn)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = conn.Close()
		return nil, gerrors.ErrTransportClosed
	}
	s.channels[channel.id] = channel
	s.wg.Add(1)
	s.mu.Unlock()

	s.metric.ChannelOpened(context.Background())
	s.logger.Debugf("transport channel=%d opened remote=%s", channel.id, channel.remote)
	go channel.readLoop()
	return channel, nil
}

// teardown removes channel once and queues the OnError event.
func (s *Service) teardown(channel *Channel, code gerrors.Code, cause error) bool {
	if !channel.close() {
		return false
	}

	s.mu.Lock()
	delete(s.channels, channel.id)
	s.mu.Unlock()

	s.metric.ChannelClosed(context.Background(), code.String())
	if cause != nil {
		s.logger.Warn(gerrors.NewChannelError(code, fmt.Errorf("channel=%d: %w", channel.id, cause)))
	} else {
		s.logger.Debugf("transport channel=%d closed: %s", channel.id, code)
	}

	s.events.Push(event{kind: eventError, channelID: channel.id, code: code})
	return true
}

func (s *Service) expireIdle() {
	if s.idleTimeout <= 0 {
		return
	}

	deadline := time.Now().Add(-s.idleTimeout)
	s.mu.RLock()
	idle := make([]*Channel, 0)
	for _, channel := range s.channels {
		if channel.LastReceive().Before(deadline) {
			idle = append(idle, channel)
		}
	}
	s.mu.RUnlock()

	for _, channel := range idle {
		s.teardown(channel, gerrors.CodeIdleTimeout, nil)
	}
}

func (s *Service) sendBody(ctx context.Context, channel *Channel, destination address.ActorID, opcode uint16, body []byte, send func(context.Context, []byte) error) error {
	length := s.layout.HeaderSize() + len(body)
	if length > s.maxPacketSize {
		return fmt.Errorf("opcode=%d length=%d: %w", opcode, length, gerrors.ErrPacketTooLarge)
	}

	size := packet.LengthSize + length
	frame := s.frames.Get(size)[:0]
	frame = packet.AppendHeader(frame, s.layout, opcode, destination.Pack(), len(body))
	frame = append(frame, body...)

	err := send(ctx, frame)
	s.frames.Put(frame)
	if err != nil {
		return err
	}

	s.metric.FrameOut(ctx, size)
	return nil
}
