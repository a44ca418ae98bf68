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
	"fmt"
	"reflect"

	"github.com/tochemey/actorwire/entity"
	gerrors "github.com/tochemey/actorwire/errors"
	"github.com/tochemey/actorwire/message"
)

// Handler processes the payload of one opcode for a target entity. For
// Requests the returned value is the response payload; for Messages it is
// ignored.
type Handler interface {
	// Handle processes payload.
	Handle(ctx context.Context, target entity.Entity, payload any) (any, error)
	// Accepts reports whether the handler can serve frames of kind.
	Accepts(kind message.Kind) bool
	// PayloadType returns the payload type expected by the handler, nil
	// when any payload is accepted.
	PayloadType() reflect.Type
}

// HandlerFunc adapts a plain function to a Handler accepting Messages and
// Requests of any payload type.
type HandlerFunc func(ctx context.Context, target entity.Entity, payload any) (any, error)

var _ Handler = HandlerFunc(nil)

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, target entity.Entity, payload any) (any, error) {
	return f(ctx, target, payload)
}

// Accepts implements Handler.
func (f HandlerFunc) Accepts(kind message.Kind) bool {
	return kind == message.KindMessage || kind == message.KindRequest
}

// PayloadType implements Handler.
func (f HandlerFunc) PayloadType() reflect.Type {
	return nil
}

type typedHandler struct {
	kind        message.Kind
	payloadType reflect.Type
	handle      func(ctx context.Context, target entity.Entity, payload any) (any, error)
}

func (h *typedHandler) Handle(ctx context.Context, target entity.Entity, payload any) (any, error) {
	return h.handle(ctx, target, payload)
}

func (h *typedHandler) Accepts(kind message.Kind) bool {
	return h.kind == kind
}

func (h *typedHandler) PayloadType() reflect.Type {
	return h.payloadType
}

// OnMessage builds the Handler of a one way message M sent to entities of
// type E.
func OnMessage[E entity.Entity, M any](fn func(ctx context.Context, target E, msg M) error) Handler {
	return &typedHandler{
		kind:        message.KindMessage,
		payloadType: reflect.TypeFor[M](),
		handle: func(ctx context.Context, target entity.Entity, payload any) (any, error) {
			e, msg, err := cast[E, M](target, payload)
			if err != nil {
				return nil, err
			}
			return nil, fn(ctx, e, msg)
		},
	}
}

// OnRequest builds the Handler of a request Req sent to entities of type E
// and answered with Resp.
func OnRequest[E entity.Entity, Req, Resp any](fn func(ctx context.Context, target E, req Req) (Resp, error)) Handler {
	return &typedHandler{
		kind:        message.KindRequest,
		payloadType: reflect.TypeFor[Req](),
		handle: func(ctx context.Context, target entity.Entity, payload any) (any, error) {
			e, req, err := cast[E, Req](target, payload)
			if err != nil {
				return nil, err
			}
			resp, err := fn(ctx, e, req)
			if err != nil {
				return nil, err
			}
			return resp, nil
		},
	}
}

func cast[E entity.Entity, M any](target entity.Entity, payload any) (E, M, error) {
	var zeroE E
	var zeroM M
	e, ok := target.(E)
	if !ok {
		return zeroE, zeroM, fmt.Errorf("%w: entity %T is not a %s", gerrors.ErrHandlerFailed, target, reflect.TypeFor[E]())
	}
	msg, ok := payload.(M)
	if !ok {
		return zeroE, zeroM, fmt.Errorf("%w: payload %T is not a %s", gerrors.ErrHandlerFailed, payload, reflect.TypeFor[M]())
	}
	return e, msg, nil
}
