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

// Code is the error code carried by Response frames and by channel
// teardown notifications. Zero means success.
//
// Codes below [CodeUserStart] are reserved for the runtime; handlers may
// return any code at or above it through [NewResponseError].
type Code int32

const (
	// CodeOK marks a successful response.
	CodeOK Code = 0

	// routing and dispatch
	CodeActorNotFound  Code = 1
	CodeUnknownOpcode  Code = 2
	CodeHandlerFailed  Code = 3
	CodeRequestTimeout Code = 4
	CodeLockTimeout    Code = 5
	CodeChannelClosed  Code = 6
	CodeCanceled       Code = 7

	// channel teardown reasons
	CodePeerClosed        Code = 100
	CodeReadFailed        Code = 101
	CodeWriteFailed       Code = 102
	CodeProtocolViolation Code = 103
	CodeIdleTimeout       Code = 104
	CodeRemoved           Code = 105
	CodeServiceClosed     Code = 106
	CodeSendOverflow      Code = 107

	// CodeUserStart is the first code available to application handlers.
	CodeUserStart Code = 1000
)

var codeNames = map[Code]string{
	CodeOK:                "OK",
	CodeActorNotFound:     "ActorNotFound",
	CodeUnknownOpcode:     "UnknownOpcode",
	CodeHandlerFailed:     "HandlerFailed",
	CodeRequestTimeout:    "RequestTimeout",
	CodeLockTimeout:       "LockTimeout",
	CodeChannelClosed:     "ChannelClosed",
	CodeCanceled:          "Canceled",
	CodePeerClosed:        "PeerClosed",
	CodeReadFailed:        "ReadFailed",
	CodeWriteFailed:       "WriteFailed",
	CodeProtocolViolation: "ProtocolViolation",
	CodeIdleTimeout:       "IdleTimeout",
	CodeRemoved:           "Removed",
	CodeServiceClosed:     "ServiceClosed",
	CodeSendOverflow:      "SendOverflow",
}

// sentinels maps runtime codes to the error returned by errors.Is checks.
var sentinels = map[Code]error{
	CodeActorNotFound:  ErrActorNotFound,
	CodeUnknownOpcode:  ErrUnknownOpcode,
	CodeHandlerFailed:  ErrHandlerFailed,
	CodeRequestTimeout: ErrRequestTimeout,
	CodeLockTimeout:    ErrLockTimeout,
	CodeChannelClosed:  ErrChannelClosed,
	CodeCanceled:       ErrRequestCanceled,
}

// String returns the symbolic name of the code.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", int32(c))
}

// Coder is implemented by errors that carry a wire error code.
type Coder interface {
	Code() Code
}

// ResponseError is the error surfaced to a caller that received an error
// Response, and the error a handler returns to pick the response code.
type ResponseError struct {
	code    Code
	message string
}

var _ error = (*ResponseError)(nil)
var _ Coder = (*ResponseError)(nil)

// NewResponseError creates a ResponseError
func NewResponseError(code Code, message string) *ResponseError {
	return &ResponseError{code: code, message: message}
}

// Code returns the response error code.
func (e *ResponseError) Code() Code {
	return e.code
}

// Message returns the error text sent by the remote side.
func (e *ResponseError) Message() string {
	return e.message
}

// Error implements the standard error interface
func (e *ResponseError) Error() string {
	if e.message == "" {
		return fmt.Sprintf("response error: %s", e.code)
	}
	return fmt.Sprintf("response error: %s: %s", e.code, e.message)
}

// Unwrap maps runtime codes back to their sentinel so that
// errors.Is(err, ErrActorNotFound) holds on the calling side.
func (e *ResponseError) Unwrap() error {
	return sentinels[e.code]
}

// CodeOf derives the wire code for err. Errors implementing [Coder] keep
// their code, known sentinels map to their runtime code, anything else is
// [CodeHandlerFailed].
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}

	var coder Coder
	if errors.As(err, &coder) {
		return coder.Code()
	}

	for code, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return code
		}
	}

	if errors.Is(err, ErrLockCanceled) {
		return CodeCanceled
	}
	return CodeHandlerFailed
}
