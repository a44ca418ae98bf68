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

package packet

import "encoding/binary"

// Layout selects the frame header shape.
type Layout uint8

const (
	// Inner frames carry the destination actor id. Used between processes
	// of the same deployment.
	Inner Layout = iota
	// Outer frames carry no actor id. Used with external clients.
	Outer
)

const (
	// LengthSize is the size of the length prefix.
	LengthSize = 2
	// OpcodeSize is the size of the opcode field.
	OpcodeSize = 2
	// ActorIDSize is the size of the actor id field of inner frames.
	ActorIDSize = 8
	// MaxSize is the largest length the prefix can carry.
	MaxSize = 65535
)

// String returns the layout name.
func (l Layout) String() string {
	if l == Outer {
		return "outer"
	}
	return "inner"
}

// HeaderSize is the number of fixed bytes after the length prefix.
func (l Layout) HeaderSize() int {
	if l == Outer {
		return OpcodeSize
	}
	return OpcodeSize + ActorIDSize
}

// MinSize is the smallest valid length for the layout.
func (l Layout) MinSize() int {
	return l.HeaderSize()
}

// Frame is a decoded frame. Body holds the bytes following the fixed
// header: the rpc header, if any, and the payload.
type Frame struct {
	Opcode  uint16
	ActorID uint64
	Body    []byte

	raw  []byte
	pool *FramePool
}

// Release returns the frame storage to its pool. Body must not be used afterwards.
func (f *Frame) Release() {
	if f.pool != nil && f.raw != nil {
		f.pool.Put(f.raw)
	}
	f.raw = nil
	f.Body = nil
}

// AppendHeader appends the length prefix and the fixed header of a frame
// whose body is bodyLen bytes long.
func AppendHeader(dst []byte, layout Layout, opcode uint16, actorID uint64, bodyLen int) []byte {
	dst = binary.BigEndian.AppendUint16(dst, uint16(layout.HeaderSize()+bodyLen))
	dst = binary.BigEndian.AppendUint16(dst, opcode)
	if layout == Inner {
		dst = binary.BigEndian.AppendUint64(dst, actorID)
	}
	return dst
}
