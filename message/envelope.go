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

package message

import (
	"fmt"

	gerrors "github.com/tochemey/actorwire/errors"
)

// Envelope is a decoded message object: a Message, a Request or a Response.
//
// RpcID is only meaningful for Requests and Responses. Error and
// ErrorMessage are only meaningful for Responses; when Error is not
// CodeOK the Payload is nil and ErrorMessage carries the remote error text.
type Envelope struct {
	Opcode       uint16
	Kind         Kind
	RpcID        uint32
	Error        gerrors.Code
	ErrorMessage string
	Payload      any
}

// NewMessage creates a Message envelope.
func NewMessage(opcode uint16, payload any) *Envelope {
	return &Envelope{Opcode: opcode, Kind: KindMessage, Payload: payload}
}

// NewRequest creates a Request envelope.
func NewRequest(opcode uint16, rpcID uint32, payload any) *Envelope {
	return &Envelope{Opcode: opcode, Kind: KindRequest, RpcID: rpcID, Payload: payload}
}

// NewResponse creates a successful Response envelope.
func NewResponse(opcode uint16, rpcID uint32, payload any) *Envelope {
	return &Envelope{Opcode: opcode, Kind: KindResponse, RpcID: rpcID, Payload: payload}
}

// NewErrorResponse creates a failed Response envelope.
func NewErrorResponse(opcode uint16, rpcID uint32, code gerrors.Code, message string) *Envelope {
	return &Envelope{
		Opcode:       opcode,
		Kind:         KindResponse,
		RpcID:        rpcID,
		Error:        code,
		ErrorMessage: message,
	}
}

// IsRequest reports whether the envelope is a Request.
func (e *Envelope) IsRequest() bool {
	return e.Kind == KindRequest
}

// IsResponse reports whether the envelope is a Response.
func (e *Envelope) IsResponse() bool {
	return e.Kind == KindResponse
}

// Err returns the error carried by a failed Response, nil otherwise.
func (e *Envelope) Err() error {
	if e.Kind != KindResponse || e.Error == gerrors.CodeOK {
		return nil
	}
	return gerrors.NewResponseError(e.Error, e.ErrorMessage)
}

// String returns a short description used in logs.
func (e *Envelope) String() string {
	switch e.Kind {
	case KindRequest:
		return fmt.Sprintf("Request(opcode=%d, rpcId=%d)", e.Opcode, e.RpcID)
	case KindResponse:
		return fmt.Sprintf("Response(opcode=%d, rpcId=%d, error=%s)", e.Opcode, e.RpcID, e.Error)
	default:
		return fmt.Sprintf("Message(opcode=%d)", e.Opcode)
	}
}
