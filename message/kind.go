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

// Kind is the shape of a message object.
type Kind uint8

const (
	// KindMessage is a fire-and-forget message.
	KindMessage Kind = iota + 1
	// KindRequest expects exactly one Response carrying the same RpcID.
	KindRequest
	// KindResponse answers a Request.
	KindResponse
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "Message"
	case KindRequest:
		return "Request"
	case KindResponse:
		return "Response"
	default:
		return "Invalid"
	}
}

// Valid reports whether k is one of the three known kinds.
func (k Kind) Valid() bool {
	return k >= KindMessage && k <= KindResponse
}

// RPCHeaderSize returns the number of bytes the kind adds between the
// frame header and the payload.
func (k Kind) RPCHeaderSize() int {
	switch k {
	case KindRequest:
		return 4
	case KindResponse:
		return 8
	default:
		return 0
	}
}
