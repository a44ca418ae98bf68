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
	"fmt"

	"go.uber.org/multierr"

	gerrors "github.com/tochemey/actorwire/errors"
	"github.com/tochemey/actorwire/message"
)

// Route binds an opcode to its Handler.
type Route struct {
	Opcode  uint16
	Handler Handler
}

// Router maps opcodes to handlers. It is built once and only read afterwards.
type Router struct {
	table    *message.Table
	handlers map[uint16]Handler
}

// NewRouter validates routes against table. Unknown opcodes, Response
// opcodes, handlers of the wrong kind or payload type and duplicates are
// all reported.
func NewRouter(table *message.Table, routes ...Route) (*Router, error) {
	if table == nil {
		return nil, fmt.Errorf("%w: message table is required", gerrors.ErrInvalidDefinition)
	}

	router := &Router{table: table, handlers: make(map[uint16]Handler, len(routes))}
	var errs error
	for _, route := range routes {
		errs = multierr.Append(errs, router.add(route))
	}
	if errs != nil {
		return nil, errs
	}
	return router, nil
}

func (r *Router) add(route Route) error {
	if route.Handler == nil {
		return fmt.Errorf("opcode=%d: %w: nil handler", route.Opcode, gerrors.ErrInvalidDefinition)
	}

	def, ok := r.table.Lookup(route.Opcode)
	if !ok {
		return fmt.Errorf("opcode=%d: %w", route.Opcode, gerrors.ErrUnknownOpcode)
	}

	if def.Kind == message.KindResponse || !route.Handler.Accepts(def.Kind) {
		return fmt.Errorf("opcode=%d is a %s: %w", route.Opcode, def.Kind, gerrors.ErrHandlerKindMismatch)
	}

	if payloadType := route.Handler.PayloadType(); payloadType != nil && payloadType != def.Type {
		return fmt.Errorf("opcode=%d carries %s, handler expects %s: %w", route.Opcode, def.Type, payloadType, gerrors.ErrHandlerKindMismatch)
	}

	if _, ok := r.handlers[route.Opcode]; ok {
		return fmt.Errorf("opcode=%d: %w", route.Opcode, gerrors.ErrDuplicateHandler)
	}

	r.handlers[route.Opcode] = route.Handler
	return nil
}

// Lookup returns the handler of opcode.
func (r *Router) Lookup(opcode uint16) (Handler, bool) {
	handler, ok := r.handlers[opcode]
	return handler, ok
}

// Table returns the message table the router was built against.
func (r *Router) Table() *message.Table {
	return r.table
}

// Len returns the number of routes.
func (r *Router) Len() int {
	return len(r.handlers)
}
