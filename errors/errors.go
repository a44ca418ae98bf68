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

package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrActorNotFound indicates that the destination entity is not registered.
	ErrActorNotFound = errors.New("actor not found")

	// ErrUnknownOpcode is returned when an opcode has no registered message type or handler.
	ErrUnknownOpcode = errors.New("unknown opcode")

	// ErrUnknownMessageType is returned when a payload type is not registered in the opcode table.
	ErrUnknownMessageType = errors.New("unknown message type")

	// ErrDuplicateOpcode is returned when the same opcode is registered twice.
	ErrDuplicateOpcode = errors.New("opcode already registered")

	// ErrDuplicateMessageType is returned when the same payload type is registered twice.
	ErrDuplicateMessageType = errors.New("message type already registered")

	// ErrDuplicateHandler is returned when two handlers are registered for the same opcode.
	ErrDuplicateHandler = errors.New("handler already registered")

	// ErrInvalidDefinition is returned when an opcode definition is malformed.
	ErrInvalidDefinition = errors.New("invalid message definition")

	// ErrHandlerKindMismatch is returned when a handler does not match the kind of its opcode.
	ErrHandlerKindMismatch = errors.New("handler does not match message kind")

	// ErrNotRequest is returned when Call is used with a payload that is not a request.
	ErrNotRequest = errors.New("message is not a request")

	// ErrRequestTimeout indicates that a request timed out while waiting for a response.
	ErrRequestTimeout = errors.New("request timed out")

	// ErrRequestCanceled indicates that a request was canceled before completion.
	ErrRequestCanceled = errors.New("request canceled")

	// ErrLockTimeout indicates that a mailbox lock was not granted before its deadline.
	ErrLockTimeout = errors.New("mailbox lock timed out")

	// ErrLockCanceled indicates that a mailbox lock wait was canceled.
	ErrLockCanceled = errors.New("mailbox lock canceled")

	// ErrHandlerFailed is the generic outcome of a failing handler.
	ErrHandlerFailed = errors.New("handler failed")

	// ErrChannelNotFound is returned when a channel id does not match a live channel.
	ErrChannelNotFound = errors.New("channel not found")

	// ErrChannelClosed is returned when sending to a channel that has been torn down.
	ErrChannelClosed = errors.New("channel is closed")

	// ErrSendOverflow is returned by a non suspending send to a channel above its high water mark.
	ErrSendOverflow = errors.New("send buffer above high water mark")

	// ErrTransportClosed is returned when using a transport service after Close.
	ErrTransportClosed = errors.New("transport is closed")

	// ErrPacketTooLarge is returned when a frame exceeds the configured maximum size.
	ErrPacketTooLarge = errors.New("packet exceeds maximum size")

	// ErrPacketTooSmall is returned when a frame is shorter than the minimum size.
	ErrPacketTooSmall = errors.New("packet is below minimum size")

	// ErrDecodeFailed is returned when a frame body cannot be decoded.
	ErrDecodeFailed = errors.New("failed to decode packet")

	// ErrEncodeFailed is returned when a message cannot be encoded.
	ErrEncodeFailed = errors.New("failed to encode message")

	// ErrSchedulerNotStarted is returned when using the timer service before it has started.
	ErrSchedulerNotStarted = errors.New("scheduler has not started")

	// ErrTimerCanceled is returned to a waiter whose timer has been canceled.
	ErrTimerCanceled = errors.New("timer canceled")

	// ErrEntityExists is returned when registering an entity id twice.
	ErrEntityExists = errors.New("entity already registered")

	// ErrFiberNotStarted is returned when using a fiber before Start.
	ErrFiberNotStarted = errors.New("fiber is not started")

	// ErrFiberAlreadyStarted is returned when Start is called twice.
	ErrFiberAlreadyStarted = errors.New("fiber has already started")

	// ErrInvalidInterval is returned when a repeated timer is given a non positive interval.
	ErrInvalidInterval = errors.New("invalid interval")

	// ErrInvalidTimeout is returned when a timeout value is less than or equal to zero.
	ErrInvalidTimeout = errors.New("invalid timeout")
)

// PanicError defines the panic error
// wrapping the recovered value
type PanicError struct {
	err error
}

// enforce compilation error
var _ error = (*PanicError)(nil)

// NewPanicError creates an instance of PanicError from a recovered value
func NewPanicError(recovered any) *PanicError {
	if err, ok := recovered.(error); ok {
		return &PanicError{err}
	}
	return &PanicError{fmt.Errorf("%v", recovered)}
}

// Error implements the standard error interface
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.err)
}

func (e *PanicError) Unwrap() error {
	return e.err
}

// ChannelError carries the reason a channel was torn down.
type ChannelError struct {
	code Code
	err  error
}

var _ error = (*ChannelError)(nil)

// NewChannelError returns an instance of ChannelError
func NewChannelError(code Code, err error) *ChannelError {
	return &ChannelError{code: code, err: err}
}

// Code returns the teardown reason.
func (e *ChannelError) Code() Code {
	return e.code
}

// Error implements the standard error interface
func (e *ChannelError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("channel error: %s", e.code)
	}
	return fmt.Sprintf("channel error: %s: %v", e.code, e.err)
}

func (e *ChannelError) Unwrap() error {
	return e.err
}
