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
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	gerrors "github.com/tochemey/actorwire/errors"
	"github.com/tochemey/actorwire/message"
	"github.com/tochemey/actorwire/scheduler"
)

// pendingCall is an outstanding Request waiting for its Response.
type pendingCall struct {
	channelID uint64
	timer     scheduler.Handle
	done      chan struct{}
	response  *message.Envelope
	err       error
}

// pendingTable correlates RpcIDs with their callers. Every call is
// completed exactly once: by its Response, its timeout, the caller giving
// up or the teardown of its channel.
type pendingTable struct {
	timer     scheduler.Timer
	mu        sync.Mutex
	calls     map[uint32]*pendingCall
	byChannel map[uint64]mapset.Set[uint32]
}

func newPendingTable(timer scheduler.Timer) *pendingTable {
	return &pendingTable{
		timer:     timer,
		calls:     make(map[uint32]*pendingCall),
		byChannel: make(map[uint64]mapset.Set[uint32]),
	}
}

func (p *pendingTable) add(rpcID uint32, channelID uint64) *pendingCall {
	call := &pendingCall{channelID: channelID, done: make(chan struct{})}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[rpcID] = call
	ids, ok := p.byChannel[channelID]
	if !ok {
		ids = mapset.NewThreadUnsafeSet[uint32]()
		p.byChannel[channelID] = ids
	}
	ids.Add(rpcID)
	return call
}

// arm attaches the timeout timer to a call still pending.
func (p *pendingTable) arm(rpcID uint32, handle scheduler.Handle) {
	p.mu.Lock()
	call, ok := p.calls[rpcID]
	if ok {
		call.timer = handle
	}
	p.mu.Unlock()

	if !ok {
		p.timer.Cancel(handle)
	}
}

// resolve settles the call of rpcID with a Response received on
// channelID. Responses arriving on another channel are ignored.
func (p *pendingTable) resolve(channelID uint64, response *message.Envelope) bool {
	p.mu.Lock()
	call, ok := p.calls[response.RpcID]
	p.mu.Unlock()
	if !ok || call.channelID != channelID {
		return false
	}
	return p.complete(response.RpcID, response, nil)
}

// complete settles the call of rpcID. It reports false when the call was
// already settled.
func (p *pendingTable) complete(rpcID uint32, response *message.Envelope, err error) bool {
	p.mu.Lock()
	call, ok := p.calls[rpcID]
	if !ok {
		p.mu.Unlock()
		return false
	}
	p.remove(rpcID, call)
	handle := call.timer
	p.mu.Unlock()

	if handle != scheduler.NoHandle {
		p.timer.Cancel(handle)
	}

	if err == nil && response != nil {
		err = response.Err()
	}
	call.response = response
	call.err = err
	close(call.done)
	return true
}

// failChannel settles every call waiting on channelID.
func (p *pendingTable) failChannel(channelID uint64, reason gerrors.Code) int {
	p.mu.Lock()
	ids, ok := p.byChannel[channelID]
	if !ok {
		p.mu.Unlock()
		return 0
	}
	rpcIDs := ids.ToSlice()
	p.mu.Unlock()

	failed := 0
	for _, rpcID := range rpcIDs {
		if p.complete(rpcID, nil, gerrors.NewResponseError(gerrors.CodeChannelClosed, reason.String())) {
			failed++
		}
	}
	return failed
}

// failAll settles every pending call with err.
func (p *pendingTable) failAll(err error) {
	p.mu.Lock()
	rpcIDs := make([]uint32, 0, len(p.calls))
	for rpcID := range p.calls {
		rpcIDs = append(rpcIDs, rpcID)
	}
	p.mu.Unlock()

	for _, rpcID := range rpcIDs {
		p.complete(rpcID, nil, err)
	}
}

func (p *pendingTable) len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func (p *pendingTable) remove(rpcID uint32, call *pendingCall) {
	delete(p.calls, rpcID)
	if ids, ok := p.byChannel[call.channelID]; ok {
		ids.Remove(rpcID)
		if ids.Cardinality() == 0 {
			delete(p.byChannel, call.channelID)
		}
	}
}
