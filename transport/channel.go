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
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tochemey/actorwire/address"
	gerrors "github.com/tochemey/actorwire/errors"
	"github.com/tochemey/actorwire/internal/buffer"
	"github.com/tochemey/actorwire/internal/packet"
)

// Channel is one live connection of a Service. Frames are appended to a
// chunked send buffer drained by a writer goroutine started on demand; a
// reader goroutine fills the receive buffer and cuts it into frames.
type Channel struct {
	id      uint64
	service *Service
	conn    net.Conn
	remote  net.Addr

	sendMu    sync.Mutex
	sendBuf   *buffer.Circular
	isSending bool
	closed    bool
	space     chan struct{}

	recvBuf *buffer.Circular
	parser  *packet.Parser

	connected   atomic.Bool
	lastReceive atomic.Int64
	session     atomic.Uint64

	done      chan struct{}
	closeOnce sync.Once
}

func newChannel(id uint64, service *Service, conn net.Conn) *Channel {
	c := &Channel{
		id:      id,
		service: service,
		conn:    conn,
		remote:  conn.RemoteAddr(),
		sendBuf: buffer.New(service.chunks),
		recvBuf: buffer.New(service.chunks),
		parser:  packet.NewParser(service.layout, service.maxPacketSize, service.frames),
		space:   make(chan struct{}),
		done:    make(chan struct{}),
	}
	c.connected.Store(true)
	c.lastReceive.Store(time.Now().UnixNano())
	return c
}

// ID returns the channel id.
func (c *Channel) ID() uint64 {
	return c.id
}

// RemoteAddr returns the address of the peer.
func (c *Channel) RemoteAddr() net.Addr {
	return c.remote
}

// IsConnected reports whether the channel is still live.
func (c *Channel) IsConnected() bool {
	return c.connected.Load()
}

// LastReceive returns the time bytes were last received.
func (c *Channel) LastReceive() time.Time {
	return time.Unix(0, c.lastReceive.Load())
}

// Session returns the actor bound to the channel, if any.
func (c *Channel) Session() address.ActorID {
	return address.Unpack(c.session.Load())
}

// Pending returns the number of bytes waiting to be written.
func (c *Channel) Pending() int {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	return c.sendBuf.Len()
}

// send appends a complete frame. The caller is suspended while the pending
// bytes are above the high water mark.
func (c *Channel) send(ctx context.Context, frame []byte) error {
	c.sendMu.Lock()
	for !c.closed && c.sendBuf.Len() >= c.service.highWater {
		space := c.space
		c.sendMu.Unlock()
		select {
		case <-space:
		case <-c.done:
		case <-ctx.Done():
			return ctx.Err()
		}
		c.sendMu.Lock()
	}

	if c.closed {
		c.sendMu.Unlock()
		return gerrors.ErrChannelClosed
	}

	c.enqueue(frame)
	c.sendMu.Unlock()
	return nil
}

// trySend appends a complete frame without waiting. It fails with
// ErrSendOverflow while the pending bytes are above the high water mark.
func (c *Channel) trySend(frame []byte) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.closed {
		return gerrors.ErrChannelClosed
	}
	if c.sendBuf.Len() >= c.service.highWater {
		return gerrors.ErrSendOverflow
	}

	c.enqueue(frame)
	return nil
}

// enqueue writes frame to the send buffer and starts the writer when idle.
// sendMu must be held.
func (c *Channel) enqueue(frame []byte) {
	_, _ = c.sendBuf.Write(frame)
	if !c.isSending {
		c.isSending = true
		c.service.wg.Add(1)
		go c.drain()
	}
}

// drain writes the send buffer out until it is empty.
func (c *Channel) drain() {
	defer c.service.wg.Done()

	for {
		c.sendMu.Lock()
		if c.closed {
			c.isSending = false
			c.sendBuf.Reset()
			c.sendMu.Unlock()
			return
		}

		front := c.sendBuf.Front()
		if len(front) == 0 {
			c.isSending = false
			c.sendMu.Unlock()
			return
		}
		c.sendMu.Unlock()

		n, err := c.conn.Write(front)

		c.sendMu.Lock()
		c.sendBuf.Discard(n)
		close(c.space)
		c.space = make(chan struct{})
		c.sendMu.Unlock()

		if err != nil {
			c.service.teardown(c, gerrors.CodeWriteFailed, err)
		}
	}
}

// readLoop fills the receive buffer and emits every complete frame.
func (c *Channel) readLoop() {
	defer c.service.wg.Done()
	defer c.recvBuf.Reset()

	ctx := context.Background()
	for {
		space := c.recvBuf.Reserve()
		n, err := c.conn.Read(space)
		if n > 0 {
			c.recvBuf.Commit(n)
			c.lastReceive.Store(time.Now().UnixNano())
			if perr := c.parse(ctx); perr != nil {
				c.service.teardown(c, gerrors.CodeProtocolViolation, perr)
				return
			}
		}

		switch {
		case err == nil && n == 0:
			c.service.teardown(c, gerrors.CodePeerClosed, io.ErrUnexpectedEOF)
			return
		case errors.Is(err, io.EOF):
			c.service.teardown(c, gerrors.CodePeerClosed, err)
			return
		case err != nil:
			c.service.teardown(c, gerrors.CodeReadFailed, err)
			return
		}
	}
}

func (c *Channel) parse(ctx context.Context) error {
	for {
		frame, err := c.parser.Next(c.recvBuf)
		if err != nil {
			return err
		}
		if frame == nil {
			return nil
		}

		size := packet.LengthSize + c.service.layout.HeaderSize() + len(frame.Body)
		envelope, err := c.service.table.DecodeBody(frame.Opcode, frame.Body)
		destination := address.Unpack(frame.ActorID)
		frame.Release()
		if err != nil {
			return err
		}

		c.service.metric.FrameIn(ctx, size)
		c.service.events.Push(event{
			kind:        eventRead,
			channelID:   c.id,
			destination: destination,
			envelope:    envelope,
		})
	}
}

// close marks the channel dead and closes the connection. It reports
// whether this call did it.
func (c *Channel) close() bool {
	first := false
	c.closeOnce.Do(func() {
		first = true
		c.connected.Store(false)

		c.sendMu.Lock()
		c.closed = true
		if !c.isSending {
			c.sendBuf.Reset()
		}
		close(c.done)
		c.sendMu.Unlock()

		_ = c.conn.Close()
	})
	return first
}
