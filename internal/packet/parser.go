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

import (
	"encoding/binary"
	"fmt"

	gerrors "github.com/tochemey/actorwire/errors"
	"github.com/tochemey/actorwire/internal/buffer"
)

// State is the framing state of a Parser.
type State int

const (
	// AwaitingLength waits for the two byte length prefix.
	AwaitingLength State = iota
	// AwaitingBody waits for the announced number of bytes.
	AwaitingBody
)

// Parser cuts frames out of a receive buffer. It keeps its state between
// calls so that a frame may arrive over several reads.
type Parser struct {
	layout   Layout
	maxSize  int
	state    State
	expected int
	frames   *FramePool
}

// NewParser creates a Parser accepting lengths in [layout.MinSize(), maxSize].
func NewParser(layout Layout, maxSize int, frames *FramePool) *Parser {
	if maxSize <= 0 || maxSize > MaxSize {
		maxSize = MaxSize
	}
	if frames == nil {
		frames = NewFramePool()
	}
	return &Parser{layout: layout, maxSize: maxSize, frames: frames}
}

// State returns the current framing state.
func (p *Parser) State() State {
	return p.state
}

// Next returns the next complete frame in buf, or nil when more bytes are
// needed. A length outside the allowed range is an error and the stream
// must be dropped.
func (p *Parser) Next(buf *buffer.Circular) (*Frame, error) {
	if p.state == AwaitingLength {
		if buf.Len() < LengthSize {
			return nil, nil
		}

		var prefix [LengthSize]byte
		buf.Peek(prefix[:])
		buf.Discard(LengthSize)

		length := int(binary.BigEndian.Uint16(prefix[:]))
		if length < p.layout.MinSize() {
			return nil, fmt.Errorf("length=%d: %w", length, gerrors.ErrPacketTooSmall)
		}
		if length > p.maxSize {
			return nil, fmt.Errorf("length=%d: %w", length, gerrors.ErrPacketTooLarge)
		}

		p.expected = length
		p.state = AwaitingBody
	}

	if buf.Len() < p.expected {
		return nil, nil
	}

	raw := p.frames.Get(p.expected)
	_, _ = buf.Read(raw)
	p.state = AwaitingLength

	frame := &Frame{
		Opcode: binary.BigEndian.Uint16(raw[:OpcodeSize]),
		raw:    raw,
		pool:   p.frames,
	}

	if p.layout == Inner {
		frame.ActorID = binary.BigEndian.Uint64(raw[OpcodeSize : OpcodeSize+ActorIDSize])
	}
	frame.Body = raw[p.layout.HeaderSize():]
	return frame, nil
}
