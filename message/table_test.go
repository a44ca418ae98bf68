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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"

	gerrors "github.com/tochemey/actorwire/errors"
)

const (
	opNotify uint16 = 10
	opPing   uint16 = 11
	opPong   uint16 = 12
)

func newTestTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable(nil,
		OneWay[*wrapperspb.BoolValue](opNotify),
		Call[*wrapperspb.StringValue](opPing, opPong),
		Reply[*wrapperspb.Int64Value](opPong),
	)
	require.NoError(t, err)
	return table
}

type position struct {
	X int32 `cbor:"1,keyasint"`
	Y int32 `cbor:"2,keyasint"`
}

func TestNewTable(t *testing.T) {
	t.Run("With valid definitions", func(t *testing.T) {
		table := newTestTable(t)
		assert.Equal(t, 3, table.Len())
		assert.Equal(t, "proto", table.Codec().Name())

		def, ok := table.Lookup(opPing)
		require.True(t, ok)
		assert.Equal(t, KindRequest, def.Kind)
		assert.Equal(t, opPong, def.Response)

		defs := table.Definitions()
		require.Len(t, defs, 3)
		assert.Equal(t, []uint16{opNotify, opPing, opPong}, []uint16{defs[0].Opcode, defs[1].Opcode, defs[2].Opcode})
	})
	t.Run("With duplicate opcode", func(t *testing.T) {
		_, err := NewTable(nil,
			OneWay[*wrapperspb.BoolValue](1),
			OneWay[*wrapperspb.StringValue](1))
		require.ErrorIs(t, err, gerrors.ErrDuplicateOpcode)
	})
	t.Run("With duplicate type", func(t *testing.T) {
		_, err := NewTable(nil,
			OneWay[*wrapperspb.BoolValue](1),
			OneWay[*wrapperspb.BoolValue](2))
		require.ErrorIs(t, err, gerrors.ErrDuplicateMessageType)
	})
	t.Run("With request answered by a non response", func(t *testing.T) {
		_, err := NewTable(nil,
			Call[*wrapperspb.StringValue](1, 2),
			OneWay[*wrapperspb.BoolValue](2))
		require.ErrorIs(t, err, gerrors.ErrInvalidDefinition)

		_, err = NewTable(nil, Call[*wrapperspb.StringValue](1, 99))
		require.ErrorIs(t, err, gerrors.ErrInvalidDefinition)
	})
	t.Run("With missing type", func(t *testing.T) {
		_, err := NewTable(nil, Definition{Opcode: 1, Kind: KindMessage})
		require.ErrorIs(t, err, gerrors.ErrInvalidDefinition)
	})
}

func TestBodyRoundTrip(t *testing.T) {
	table := newTestTable(t)

	t.Run("With message", func(t *testing.T) {
		env, err := table.Wrap(wrapperspb.Bool(true))
		require.NoError(t, err)
		assert.Equal(t, KindMessage, env.Kind)

		body, err := table.AppendBody(nil, env)
		require.NoError(t, err)

		decoded, err := table.DecodeBody(opNotify, body)
		require.NoError(t, err)
		assert.Equal(t, KindMessage, decoded.Kind)
		assert.True(t, proto.Equal(wrapperspb.Bool(true), decoded.Payload.(*wrapperspb.BoolValue)))
	})
	t.Run("With request", func(t *testing.T) {
		env := NewRequest(opPing, 77, wrapperspb.String("ping"))
		body, err := table.AppendBody(nil, env)
		require.NoError(t, err)
		assert.Equal(t, []byte{0, 0, 0, 77}, body[:4])

		decoded, err := table.DecodeBody(opPing, body)
		require.NoError(t, err)
		assert.True(t, decoded.IsRequest())
		assert.EqualValues(t, 77, decoded.RpcID)
		assert.Equal(t, "ping", decoded.Payload.(*wrapperspb.StringValue).GetValue())
	})
	t.Run("With response", func(t *testing.T) {
		request := NewRequest(opPing, 5, wrapperspb.String("ping"))
		env, err := table.Respond(request, wrapperspb.Int64(42))
		require.NoError(t, err)

		body, err := table.AppendBody(nil, env)
		require.NoError(t, err)

		decoded, err := table.DecodeBody(opPong, body)
		require.NoError(t, err)
		assert.True(t, decoded.IsResponse())
		assert.EqualValues(t, 5, decoded.RpcID)
		assert.NoError(t, decoded.Err())
		assert.EqualValues(t, 42, decoded.Payload.(*wrapperspb.Int64Value).GetValue())
	})
	t.Run("With empty payload", func(t *testing.T) {
		body, err := table.AppendBody(nil, NewResponse(opPong, 1, nil))
		require.NoError(t, err)
		assert.Len(t, body, 8)

		decoded, err := table.DecodeBody(opPong, body)
		require.NoError(t, err)
		assert.Zero(t, decoded.Payload.(*wrapperspb.Int64Value).GetValue())
	})
	t.Run("With error response", func(t *testing.T) {
		request := NewRequest(opPing, 9, nil)
		env := table.Fail(request, gerrors.CodeActorNotFound, "actor 1:2 not found")
		assert.Equal(t, opPong, env.Opcode)

		body, err := table.AppendBody(nil, env)
		require.NoError(t, err)

		decoded, err := table.DecodeBody(opPong, body)
		require.NoError(t, err)
		assert.Nil(t, decoded.Payload)
		assert.Equal(t, gerrors.CodeActorNotFound, decoded.Error)
		assert.Equal(t, "actor 1:2 not found", decoded.ErrorMessage)

		err = decoded.Err()
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrActorNotFound)
	})
	t.Run("With body not referenced after decode", func(t *testing.T) {
		body, err := table.AppendBody(nil, NewRequest(opPing, 1, wrapperspb.String("stable")))
		require.NoError(t, err)
		decoded, err := table.DecodeBody(opPing, body)
		require.NoError(t, err)
		clear(body)
		assert.Equal(t, "stable", decoded.Payload.(*wrapperspb.StringValue).GetValue())
	})
}

func TestBodyErrors(t *testing.T) {
	table := newTestTable(t)

	t.Run("With unknown opcode", func(t *testing.T) {
		_, err := table.AppendBody(nil, NewMessage(999, nil))
		require.ErrorIs(t, err, gerrors.ErrEncodeFailed)
		require.ErrorIs(t, err, gerrors.ErrUnknownOpcode)

		_, err = table.DecodeBody(999, nil)
		require.ErrorIs(t, err, gerrors.ErrDecodeFailed)
		require.ErrorIs(t, err, gerrors.ErrUnknownOpcode)
	})
	t.Run("With kind mismatch", func(t *testing.T) {
		_, err := table.AppendBody(nil, NewMessage(opPing, wrapperspb.String("x")))
		require.ErrorIs(t, err, gerrors.ErrEncodeFailed)
	})
	t.Run("With payload type mismatch", func(t *testing.T) {
		_, err := table.AppendBody(nil, NewRequest(opPing, 1, wrapperspb.Bool(true)))
		require.ErrorIs(t, err, gerrors.ErrEncodeFailed)
	})
	t.Run("With truncated rpc header", func(t *testing.T) {
		_, err := table.DecodeBody(opPong, []byte{0, 0, 1})
		require.ErrorIs(t, err, gerrors.ErrDecodeFailed)
	})
	t.Run("With corrupt payload", func(t *testing.T) {
		_, err := table.DecodeBody(opPing, []byte{0, 0, 0, 1, 0xff, 0xff, 0xff})
		require.ErrorIs(t, err, gerrors.ErrDecodeFailed)
	})
	t.Run("With unknown payload type", func(t *testing.T) {
		_, err := table.Wrap(wrapperspb.Double(1))
		require.ErrorIs(t, err, gerrors.ErrUnknownMessageType)
	})
	t.Run("With respond to a non request", func(t *testing.T) {
		_, err := table.Respond(NewMessage(opNotify, nil), wrapperspb.Int64(1))
		require.ErrorIs(t, err, gerrors.ErrNotRequest)
	})
	t.Run("With respond with the wrong type", func(t *testing.T) {
		_, err := table.Respond(NewRequest(opPing, 1, nil), wrapperspb.Bool(true))
		require.ErrorIs(t, err, gerrors.ErrHandlerKindMismatch)
	})
}

func TestCBORCodec(t *testing.T) {
	codec, err := NewCBORCodec()
	require.NoError(t, err)
	assert.Equal(t, "cbor", codec.Name())

	table, err := NewTable(codec,
		OneWay[position](1),
		OneWay[*position](2))
	require.NoError(t, err)

	body, err := table.AppendBody(nil, NewMessage(1, position{X: 3, Y: -4}))
	require.NoError(t, err)
	decoded, err := table.DecodeBody(1, body)
	require.NoError(t, err)
	assert.Equal(t, position{X: 3, Y: -4}, decoded.Payload)

	body, err = table.AppendBody(nil, NewMessage(2, &position{X: 1}))
	require.NoError(t, err)
	decoded, err = table.DecodeBody(2, body)
	require.NoError(t, err)
	assert.Equal(t, &position{X: 1}, decoded.Payload)
}

func TestEnvelope(t *testing.T) {
	assert.Equal(t, "Message(opcode=1)", NewMessage(1, nil).String())
	assert.Equal(t, "Request(opcode=2, rpcId=3)", NewRequest(2, 3, nil).String())
	assert.Equal(t, "Response(opcode=4, rpcId=5, error=OK)", NewResponse(4, 5, nil).String())
	assert.Nil(t, NewMessage(1, nil).Err())
	assert.Equal(t, "Invalid", Kind(0).String())
	assert.False(t, Kind(4).Valid())
	assert.Equal(t, 8, KindResponse.RPCHeaderSize())
}
