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
	"net"

	"github.com/tochemey/actorwire/address"
	gerrors "github.com/tochemey/actorwire/errors"
	"github.com/tochemey/actorwire/message"
)

// Listener receives the events of a Service. Callbacks run on the goroutine
// calling Service.Update, one at a time and in arrival order.
type Listener interface {
	// OnAccept is called when a connection has been accepted.
	OnAccept(channelID uint64, remote net.Addr)
	// OnConnect is called when an outbound connection has been established.
	OnConnect(channelID uint64, remote net.Addr)
	// OnRead is called for every decoded frame.
	OnRead(channelID uint64, destination address.ActorID, envelope *message.Envelope)
	// OnError is called once when a channel is torn down.
	OnError(channelID uint64, code gerrors.Code)
}

type eventKind int

const (
	eventAccept eventKind = iota
	eventConnect
	eventRead
	eventError
)

// event is what the network goroutines hand to the owner through the
// single consumer queue.
type event struct {
	kind        eventKind
	channelID   uint64
	remote      net.Addr
	destination address.ActorID
	envelope    *message.Envelope
	code        gerrors.Code
}

func (ev event) deliver(listener Listener) {
	switch ev.kind {
	case eventAccept:
		listener.OnAccept(ev.channelID, ev.remote)
	case eventConnect:
		listener.OnConnect(ev.channelID, ev.remote)
	case eventRead:
		listener.OnRead(ev.channelID, ev.destination, ev.envelope)
	case eventError:
		listener.OnError(ev.channelID, ev.code)
	}
}
