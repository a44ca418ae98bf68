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
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tochemey/actorwire/address"
	"github.com/tochemey/actorwire/entity"
	gerrors "github.com/tochemey/actorwire/errors"
	"github.com/tochemey/actorwire/log"
	"github.com/tochemey/actorwire/mailbox"
	"github.com/tochemey/actorwire/message"
	"github.com/tochemey/actorwire/scheduler"
	"github.com/tochemey/actorwire/transport"
)

// LocalChannel is the channel id of in-process delivery. Frames sent to it
// never touch the network and go through the same Handle path.
const LocalChannel uint64 = 0

// Transport is what the Dispatcher needs from the network layer.
// *transport.Service implements it. TrySend must not suspend the caller.
type Transport interface {
	Send(ctx context.Context, channelID uint64, destination address.ActorID, envelope *message.Envelope) error
	TrySend(channelID uint64, destination address.ActorID, envelope *message.Envelope) error
	Bind(channelID uint64, actorID address.ActorID) error
	Session(channelID uint64) (address.ActorID, bool)
}

type channelKey struct{}

// ChannelFromContext returns the id of the channel the frame being handled
// arrived on.
func ChannelFromContext(ctx context.Context) (uint64, bool) {
	channelID, ok := ctx.Value(channelKey{}).(uint64)
	return channelID, ok
}

// Dispatcher routes decoded frames to the handlers of their destination
// entity and correlates Requests with their Responses.
//
// Frames for an entity with the Ordered policy are reserved a place in the
// mailbox of that entity on the calling goroutine, so they run one at a
// time and in arrival order. Unordered entities run frames concurrently.
type Dispatcher struct {
	router    *Router
	table     *message.Table
	registry  *entity.Registry
	transport Transport
	timer     scheduler.Timer
	locker    *mailbox.Locker
	logger    log.Logger

	requestTimeout time.Duration
	lockTimeout    time.Duration

	rpcIDs       atomic.Uint32
	pending      *pendingTable
	localSession atomic.Uint64

	mu     sync.Mutex
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var _ transport.Listener = (*Dispatcher)(nil)

// New creates a Dispatcher. transport may be nil when only LocalChannel
// is used.
func New(router *Router, registry *entity.Registry, transport Transport, opts ...Option) (*Dispatcher, error) {
	if router == nil {
		return nil, fmt.Errorf("%w: router is required", gerrors.ErrInvalidDefinition)
	}
	if registry == nil {
		return nil, fmt.Errorf("%w: registry is required", gerrors.ErrInvalidDefinition)
	}

	d := &Dispatcher{
		router:    router,
		table:     router.Table(),
		registry:  registry,
		transport: transport,
		logger:    log.DefaultLogger,
	}

	for _, opt := range opts {
		opt.Apply(d)
	}

	if d.locker == nil {
		d.locker = mailbox.NewLocker(d.timer, mailbox.WithLogger(d.logger))
	}

	d.pending = newPendingTable(d.timer)
	d.ctx, d.cancel = context.WithCancel(context.Background())
	return d, nil
}

// Router returns the handler routes.
func (d *Dispatcher) Router() *Router {
	return d.router
}

// Pending returns the number of Requests waiting for a Response.
func (d *Dispatcher) Pending() int {
	return d.pending.len()
}

// Bind routes frames arriving on channelID without a destination to actorID.
func (d *Dispatcher) Bind(channelID uint64, actorID address.ActorID) error {
	if channelID == LocalChannel {
		d.localSession.Store(actorID.Pack())
		return nil
	}
	if d.transport == nil {
		return gerrors.ErrChannelNotFound
	}
	return d.transport.Bind(channelID, actorID)
}

// Unbind removes the session actor of channelID.
func (d *Dispatcher) Unbind(channelID uint64) error {
	return d.Bind(channelID, address.NoActor)
}

// OnAccept implements transport.Listener.
func (d *Dispatcher) OnAccept(channelID uint64, remote net.Addr) {
	d.logger.Debugf("dispatcher: channel=%d accepted from %s", channelID, remote)
}

// OnConnect implements transport.Listener.
func (d *Dispatcher) OnConnect(channelID uint64, remote net.Addr) {
	d.logger.Debugf("dispatcher: channel=%d connected to %s", channelID, remote)
}

// OnRead implements transport.Listener.
func (d *Dispatcher) OnRead(channelID uint64, destination address.ActorID, envelope *message.Envelope) {
	d.Handle(channelID, destination, envelope)
}

// OnError implements transport.Listener. Requests waiting on the channel
// fail with ErrChannelClosed.
func (d *Dispatcher) OnError(channelID uint64, code gerrors.Code) {
	if failed := d.pending.failChannel(channelID, code); failed > 0 {
		d.logger.Debugf("dispatcher: channel=%d closed (%s), %d pending requests failed", channelID, code, failed)
	}
}

// Handle routes one decoded frame. It never blocks: handlers run on their
// own goroutine and frames refused here are answered without waiting on
// the channel.
func (d *Dispatcher) Handle(channelID uint64, destination address.ActorID, envelope *message.Envelope) {
	if d.isClosed() {
		return
	}

	if envelope.IsResponse() {
		if !d.pending.resolve(channelID, envelope) {
			d.logger.Debugf("dispatcher: dropping late %s", envelope)
		}
		return
	}

	if destination.IsZero() {
		destination = d.session(channelID)
	}

	ref, ok := d.registry.Lookup(destination)
	if !ok {
		d.reject(channelID, envelope, gerrors.CodeActorNotFound, fmt.Sprintf("actor=(%s) not found", destination), d.post)
		return
	}

	handler, ok := d.router.Lookup(envelope.Opcode)
	if !ok {
		d.reject(channelID, envelope, gerrors.CodeUnknownOpcode, fmt.Sprintf("no handler for opcode=%d", envelope.Opcode), d.post)
		return
	}

	if !d.track() {
		return
	}

	var ticket *mailbox.Ticket
	if ref.Entity.MailboxPolicy() == entity.Ordered {
		ticket = d.locker.Reserve(mailbox.DomainMailbox, destination.Pack(), d.lockTimeout)
	}
	go d.run(channelID, ref, handler, envelope, ticket)
}

// track counts a handler goroutine unless the dispatcher is closed.
func (d *Dispatcher) track() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	d.wg.Add(1)
	return true
}

func (d *Dispatcher) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func (d *Dispatcher) run(channelID uint64, ref entity.Ref, handler Handler, envelope *message.Envelope, ticket *mailbox.Ticket) {
	defer d.wg.Done()

	if ticket != nil {
		lock, err := ticket.Wait(d.ctx)
		if err != nil {
			d.reject(channelID, envelope, gerrors.CodeOf(err), err.Error(), d.reply)
			return
		}
		defer lock.Release()
	}

	if !d.registry.Valid(ref) {
		d.reject(channelID, envelope, gerrors.CodeActorNotFound, fmt.Sprintf("actor=(%s) is gone", ref.Entity.ID()), d.reply)
		return
	}

	ctx := context.WithValue(d.ctx, channelKey{}, channelID)
	result, err := d.invoke(ctx, handler, ref.Entity, envelope)

	if !envelope.IsRequest() {
		if err != nil {
			d.logger.Warnf("dispatcher: %s for actor=(%s) failed: %v", envelope, ref.Entity.ID(), err)
		}
		return
	}

	if err != nil {
		d.logger.Warnf("dispatcher: %s for actor=(%s) failed: %v", envelope, ref.Entity.ID(), err)
		d.reply(channelID, d.table.Fail(envelope, gerrors.CodeOf(err), errorText(err)))
		return
	}

	response, err := d.table.Respond(envelope, result)
	if err != nil {
		d.logger.Errorf("dispatcher: invalid response to %s: %v", envelope, err)
		d.reply(channelID, d.table.Fail(envelope, gerrors.CodeHandlerFailed, err.Error()))
		return
	}
	d.reply(channelID, response)
}

// invoke runs the handler, turning a panic into an error.
func (d *Dispatcher) invoke(ctx context.Context, handler Handler, target entity.Entity, envelope *message.Envelope) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = gerrors.NewPanicError(r)
			d.logger.Errorf("dispatcher: handler of %s panicked: %v", envelope, err)
		}
	}()
	return handler.Handle(ctx, target, envelope.Payload)
}

// reject answers a Request with an error Response and drops anything else.
func (d *Dispatcher) reject(channelID uint64, envelope *message.Envelope, code gerrors.Code, text string, send func(uint64, *message.Envelope)) {
	if !envelope.IsRequest() {
		d.logger.Debugf("dispatcher: dropping %s: %s", envelope, text)
		return
	}
	send(channelID, d.table.Fail(envelope, code, text))
}

// reply sends a Response from a handler goroutine, waiting for room on the
// channel.
func (d *Dispatcher) reply(channelID uint64, response *message.Envelope) {
	if err := d.deliver(d.ctx, channelID, address.NoActor, response); err != nil {
		d.logger.Warnf("dispatcher: failed to send %s on channel=%d: %v", response, channelID, err)
	}
}

// post sends a Response from the owner loop. A channel that cannot take it
// right away is torn down by the transport instead.
func (d *Dispatcher) post(channelID uint64, response *message.Envelope) {
	var err error
	switch {
	case channelID == LocalChannel:
		d.Handle(LocalChannel, address.NoActor, response)
	case d.transport == nil:
		err = fmt.Errorf("channel=%d: %w", channelID, gerrors.ErrChannelNotFound)
	default:
		err = d.transport.TrySend(channelID, address.NoActor, response)
	}
	if err != nil {
		d.logger.Warnf("dispatcher: failed to send %s on channel=%d: %v", response, channelID, err)
	}
}

// errorText is the text sent in an error Response. Handlers choosing their
// own code through a ResponseError send their message as is.
func errorText(err error) string {
	var responseErr *gerrors.ResponseError
	if errors.As(err, &responseErr) && responseErr.Message() != "" {
		return responseErr.Message()
	}
	return err.Error()
}

func (d *Dispatcher) session(channelID uint64) address.ActorID {
	if channelID == LocalChannel {
		return address.Unpack(d.localSession.Load())
	}
	if d.transport == nil {
		return address.NoActor
	}
	session, _ := d.transport.Session(channelID)
	return session
}

// Send delivers a one way message to destination.
func (d *Dispatcher) Send(ctx context.Context, channelID uint64, destination address.ActorID, payload any) error {
	envelope, err := d.table.Wrap(payload)
	if err != nil {
		return err
	}
	if envelope.Kind != message.KindMessage {
		return fmt.Errorf("%T is a %s: %w", payload, envelope.Kind, gerrors.ErrHandlerKindMismatch)
	}
	return d.deliver(ctx, channelID, destination, envelope)
}

// Call sends a Request and waits for its Response. A failed Response is
// returned along with its error.
func (d *Dispatcher) Call(ctx context.Context, channelID uint64, destination address.ActorID, payload any) (*message.Envelope, error) {
	envelope, err := d.table.Wrap(payload)
	if err != nil {
		return nil, err
	}
	if envelope.Kind != message.KindRequest {
		return nil, fmt.Errorf("%T: %w", payload, gerrors.ErrNotRequest)
	}

	rpcID := d.rpcIDs.Add(1)
	envelope.RpcID = rpcID
	call := d.pending.add(rpcID, channelID)

	if d.requestTimeout > 0 && d.timer != nil {
		handle, err := d.timer.Once(d.requestTimeout, func() {
			d.pending.complete(rpcID, nil, gerrors.NewResponseError(gerrors.CodeRequestTimeout, ""))
		})
		if err != nil {
			d.pending.complete(rpcID, nil, err)
			return nil, err
		}
		d.pending.arm(rpcID, handle)
	}

	if err := d.deliver(ctx, channelID, destination, envelope); err != nil {
		d.pending.complete(rpcID, nil, err)
	}

	select {
	case <-call.done:
	case <-ctx.Done():
		d.pending.complete(rpcID, nil, fmt.Errorf("%w: %w", gerrors.ErrRequestCanceled, ctx.Err()))
		<-call.done
	}
	return call.response, call.err
}

// Ask sends a Request and returns the typed Response payload.
func Ask[Resp any](ctx context.Context, d *Dispatcher, channelID uint64, destination address.ActorID, payload any) (Resp, error) {
	var zero Resp
	response, err := d.Call(ctx, channelID, destination, payload)
	if err != nil {
		return zero, err
	}
	resp, ok := response.Payload.(Resp)
	if !ok {
		return zero, fmt.Errorf("%w: response %T is not a %T", gerrors.ErrUnknownMessageType, response.Payload, zero)
	}
	return resp, nil
}

func (d *Dispatcher) deliver(ctx context.Context, channelID uint64, destination address.ActorID, envelope *message.Envelope) error {
	if channelID == LocalChannel {
		d.Handle(LocalChannel, destination, envelope)
		return nil
	}
	if d.transport == nil {
		return fmt.Errorf("channel=%d: %w", channelID, gerrors.ErrChannelNotFound)
	}
	return d.transport.Send(ctx, channelID, destination, envelope)
}

// Close fails the pending Requests, cancels mailbox waits and waits for
// running handlers until ctx ends.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	d.cancel()
	d.pending.failAll(gerrors.ErrRequestCanceled)

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Join(errors.New("dispatcher: handlers still running"), ctx.Err())
	}
}
