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
	"reflect"
)

// Definition binds an opcode to a payload type and a kind.
//
// Type is the static type handlers receive, usually a pointer to a
// generated protocol buffer message. For Requests, Response names the
// opcode of the matching Response definition.
type Definition struct {
	Opcode   uint16
	Kind     Kind
	Type     reflect.Type
	Response uint16
}

// OneWay declares a fire-and-forget message of type T.
func OneWay[T any](opcode uint16) Definition {
	return Definition{Opcode: opcode, Kind: KindMessage, Type: reflect.TypeFor[T]()}
}

// Call declares a request of type T answered by the response opcode.
func Call[T any](opcode, response uint16) Definition {
	return Definition{Opcode: opcode, Kind: KindRequest, Type: reflect.TypeFor[T](), Response: response}
}

// Reply declares a response of type T.
func Reply[T any](opcode uint16) Definition {
	return Definition{Opcode: opcode, Kind: KindResponse, Type: reflect.TypeFor[T]()}
}

// decode creates a fresh value of the definition type and fills it from data.
func (d Definition) decode(codec Codec, data []byte) (any, error) {
	if d.Type.Kind() == reflect.Pointer {
		value := reflect.New(d.Type.Elem())
		if len(data) > 0 {
			if err := codec.Unmarshal(data, value.Interface()); err != nil {
				return nil, err
			}
		}
		return value.Interface(), nil
	}

	value := reflect.New(d.Type)
	if len(data) > 0 {
		if err := codec.Unmarshal(data, value.Interface()); err != nil {
			return nil, err
		}
	}
	return value.Elem().Interface(), nil
}
