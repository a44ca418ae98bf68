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

	"github.com/fxamacker/cbor/v2"
	"google.golang.org/protobuf/proto"
)

// Codec turns payload values into bytes and back.
//
// A Codec is shared by every channel of a process and must be safe for
// concurrent use. Unmarshal always receives a pointer created from the
// registered prototype type.
type Codec interface {
	// Name identifies the codec in logs.
	Name() string
	// Append appends the encoding of v to dst.
	Append(dst []byte, v any) ([]byte, error)
	// Unmarshal decodes data into v.
	Unmarshal(data []byte, v any) error
}

// ProtoCodec encodes protocol buffer messages.
type ProtoCodec struct {
	marshal   proto.MarshalOptions
	unmarshal proto.UnmarshalOptions
}

var _ Codec = (*ProtoCodec)(nil)

// NewProtoCodec creates a ProtoCodec.
func NewProtoCodec() *ProtoCodec {
	return &ProtoCodec{
		marshal:   proto.MarshalOptions{},
		unmarshal: proto.UnmarshalOptions{DiscardUnknown: true},
	}
}

// Name implements Codec.
func (c *ProtoCodec) Name() string {
	return "proto"
}

// Append implements Codec.
func (c *ProtoCodec) Append(dst []byte, v any) ([]byte, error) {
	msg, ok := v.(proto.Message)
	if !ok {
		return dst, fmt.Errorf("%T is not a proto message", v)
	}
	return c.marshal.MarshalAppend(dst, msg)
}

// Unmarshal implements Codec.
func (c *ProtoCodec) Unmarshal(data []byte, v any) error {
	msg, ok := v.(proto.Message)
	if !ok {
		return fmt.Errorf("%T is not a proto message", v)
	}
	return c.unmarshal.Unmarshal(data, msg)
}

// CBORCodec encodes plain Go values with CBOR.
type CBORCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var _ Codec = (*CBORCodec)(nil)

// NewCBORCodec creates a CBORCodec using the core deterministic encoding.
func NewCBORCodec() (*CBORCodec, error) {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	dec, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return nil, err
	}
	return &CBORCodec{enc: enc, dec: dec}, nil
}

// Name implements Codec.
func (c *CBORCodec) Name() string {
	return "cbor"
}

// Append implements Codec.
func (c *CBORCodec) Append(dst []byte, v any) ([]byte, error) {
	bytea, err := c.enc.Marshal(v)
	if err != nil {
		return dst, err
	}
	return append(dst, bytea...), nil
}

// Unmarshal implements Codec.
func (c *CBORCodec) Unmarshal(data []byte, v any) error {
	return c.dec.Unmarshal(data, v)
}
