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

package tcp

import (
	"net"
	"sync"

	"github.com/andybalholm/brotli"
)

// BrotliConnWrapper wraps connections with Brotli compression.
type BrotliConnWrapper struct {
	level      int
	writerPool sync.Pool
}

var _ ConnWrapper = (*BrotliConnWrapper)(nil)

// BrotliOption configures NewBrotliConnWrapper.
type BrotliOption func(*BrotliConnWrapper)

// WithBrotliLevel sets the Brotli compression level.
func WithBrotliLevel(level int) BrotliOption {
	return func(b *BrotliConnWrapper) { b.level = level }
}

// NewBrotliConnWrapper creates a BrotliConnWrapper.
func NewBrotliConnWrapper(opts ...BrotliOption) *BrotliConnWrapper {
	w := &BrotliConnWrapper{level: brotli.BestSpeed}
	for _, opt := range opts {
		opt(w)
	}
	w.writerPool.New = func() any {
		return brotli.NewWriterLevel(nil, w.level)
	}
	return w
}

// Wrap applies Brotli compression to conn.
func (b *BrotliConnWrapper) Wrap(conn net.Conn) (net.Conn, error) {
	bw := b.writerPool.Get().(*brotli.Writer)
	bw.Reset(conn)
	br := brotli.NewReader(conn)

	closer := func() {
		bw.Reset(nil)
		b.writerPool.Put(bw)
	}
	return newCompressedConn(conn, br, bw, closer), nil
}
