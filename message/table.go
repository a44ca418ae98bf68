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
	"encoding/binary"
	"fmt"
	"reflect"
	"slices"

	"go.uber.org/multierr"

	gerrors "github.com/tochemey/actorwire/errors"
)

// Table is the opcode to type mapping of a process.
//
// A Table is built once with NewTable and is read-only afterwards, so it
// can be shared by every channel and handler without locking.
type Table struct {
	codec    Codec
	byOpcode map[uint16]Definition
	byType   map[reflect.Type]Definition
}

// NewTable builds a Table from the given definitions. It fails when an
// opcode or a type is declared twice, when a definition has no type or an
// invalid kind, or when a Request names a response opcode that is not a
// Response definition. A nil codec selects the protocol buffer codec.
func NewTable(codec Codec, definitions ...Definition) (*Table, error) {
	if codec == nil {
		codec = NewProtoCodec()
	}

	table := &Table{
		codec:    codec,
		byOpcode: make(map[uint16]Definition, len(definitions)),
		byType:   make(map[reflect.Type]Definition, len(definitions)),
	}

	var err error
	for _, def := range definitions {
		if def.Type == nil || !def.Kind.Valid() {
			err = multierr.Append(err, fmt.Errorf("opcode=%d: %w", def.Opcode, gerrors.ErrInvalidDefinition))
			continue
		}
		if _, ok := table.byOpcode[def.Opcode]; ok {
			err = multierr.Append(err, fmt.Errorf("opcode=%d: %w", def.Opcode, gerrors.ErrDuplicateOpcode))
			continue
		}
		if _, ok := table.byType[def.Type]; ok {
			err = multierr.Append(err, fmt.Errorf("type=%s: %w", def.Type, gerrors.ErrDuplicateMessageType))
			continue
		}
		table.byOpcode[def.Opcode] = def
		table.byType[def.Type] = def
	}

	for _, def := range table.byOpcode {
		if def.Kind != KindRequest {
			continue
		}
		response, ok := table.byOpcode[def.Response]
		if !ok || response.Kind != KindResponse {
			err = multierr.Append(err, fmt.Errorf("opcode=%d: response opcode=%d is not a response: %w",
				def.Opcode, def.Response, gerrors.ErrInvalidDefinition))
		}
	}

	if err != nil {
		return nil, err
	}
	return table, nil
}

// Codec returns the payload codec.
func (t *Table) Codec() Codec {
	return t.codec
}

// Len returns the number of definitions.
func (t *Table) Len() int {
	return len(t.byOpcode)
}

// Lookup returns the definition of an opcode.
func (t *Table) Lookup(opcode uint16) (Definition, bool) {
	def, ok := t.byOpcode[opcode]
	return def, ok
}

// DefinitionOf returns the definition registered for the type of payload.
func (t *Table) DefinitionOf(payload any) (Definition, error) {
	def, ok := t.byType[reflect.TypeOf(payload)]
	if !ok {
		return Definition{}, fmt.Errorf("type=%T: %w", payload, gerrors.ErrUnknownMessageType)
	}
	return def, nil
}

// Definitions returns every definition ordered by opcode.
func (t *Table) Definitions() []Definition {
	out := make([]Definition, 0, len(t.byOpcode))
	for _, def := range t.byOpcode {
		out = append(out, def)
	}
	slices.SortFunc(out, func(a, b Definition) int { return int(a.Opcode) - int(b.Opcode) })
	return out
}

// Wrap creates the envelope matching the registered kind of payload.
// Requests get a zero RpcID; the dispatcher assigns it when sending.
func (t *Table) Wrap(payload any) (*Envelope, error) {
	def, err := t.DefinitionOf(payload)
	if err != nil {
		return nil, err
	}
	return &Envelope{Opcode: def.Opcode, Kind: def.Kind, Payload: payload}, nil
}

// Respond creates the successful Response to request.
func (t *Table) Respond(request *Envelope, payload any) (*Envelope, error) {
	reqDef, ok := t.byOpcode[request.Opcode]
	if !ok || reqDef.Kind != KindRequest {
		return nil, fmt.Errorf("opcode=%d: %w", request.Opcode, gerrors.ErrNotRequest)
	}

	def, err := t.DefinitionOf(payload)
	if err != nil {
		return nil, err
	}

	if def.Opcode != reqDef.Response {
		return nil, fmt.Errorf("type=%T does not answer opcode=%d: %w", payload, request.Opcode, gerrors.ErrHandlerKindMismatch)
	}
	return NewResponse(def.Opcode, request.RpcID, payload), nil
}

// Fail creates the error Response to request.
func (t *Table) Fail(request *Envelope, code gerrors.Code, text string) *Envelope {
	opcode := request.Opcode
	if def, ok := t.byOpcode[request.Opcode]; ok && def.Kind == KindRequest {
		opcode = def.Response
	}
	return NewErrorResponse(opcode, request.RpcID, code, text)
}

// AppendBody appends the rpc header and the encoded payload of env to dst.
func (t *Table) AppendBody(dst []byte, env *Envelope) ([]byte, error) {
	def, ok := t.byOpcode[env.Opcode]
	if !ok {
		return dst, fmt.Errorf("%w: opcode=%d: %w", gerrors.ErrEncodeFailed, env.Opcode, gerrors.ErrUnknownOpcode)
	}
	if def.Kind != env.Kind {
		return dst, fmt.Errorf("%w: opcode=%d is a %s, got a %s", gerrors.ErrEncodeFailed, env.Opcode, def.Kind, env.Kind)
	}

	switch env.Kind {
	case KindRequest:
		dst = binary.BigEndian.AppendUint32(dst, env.RpcID)
	case KindResponse:
		dst = binary.BigEndian.AppendUint32(dst, env.RpcID)
		dst = binary.BigEndian.AppendUint32(dst, uint32(env.Error))
		if env.Error != gerrors.CodeOK {
			return append(dst, env.ErrorMessage...), nil
		}
	}

	if env.Payload == nil {
		return dst, nil
	}

	if payloadType := reflect.TypeOf(env.Payload); payloadType != def.Type {
		return dst, fmt.Errorf("%w: opcode=%d expects %s, got %s", gerrors.ErrEncodeFailed, env.Opcode, def.Type, payloadType)
	}

	out, err := t.codec.Append(dst, env.Payload)
	if err != nil {
		return dst, fmt.Errorf("%w: opcode=%d: %w", gerrors.ErrEncodeFailed, env.Opcode, err)
	}
	return out, nil
}

// DecodeBody decodes the body of a frame carrying opcode. The returned
// envelope does not reference body.
func (t *Table) DecodeBody(opcode uint16, body []byte) (*Envelope, error) {
	def, ok := t.byOpcode[opcode]
	if !ok {
		return nil, fmt.Errorf("%w: opcode=%d: %w", gerrors.ErrDecodeFailed, opcode, gerrors.ErrUnknownOpcode)
	}

	if len(body) < def.Kind.RPCHeaderSize() {
		return nil, fmt.Errorf("%w: opcode=%d: truncated %s header", gerrors.ErrDecodeFailed, opcode, def.Kind)
	}

	env := &Envelope{Opcode: opcode, Kind: def.Kind}
	switch def.Kind {
	case KindRequest:
		env.RpcID = binary.BigEndian.Uint32(body[:4])
	case KindResponse:
		env.RpcID = binary.BigEndian.Uint32(body[:4])
		env.Error = gerrors.Code(int32(binary.BigEndian.Uint32(body[4:8])))
	}

	payload := body[def.Kind.RPCHeaderSize():]
	if env.Error != gerrors.CodeOK {
		env.ErrorMessage = string(payload)
		return env, nil
	}

	value, err := def.decode(t.codec, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: opcode=%d: %w", gerrors.ErrDecodeFailed, opcode, err)
	}
	env.Payload = value
	return env, nil
}
