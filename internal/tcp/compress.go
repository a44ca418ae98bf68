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
	"fmt"
	"io"
	"net"
	"sync"
)

// ConnWrapper transforms a net.Conn, typically by adding a compression
// layer. Implementations must be safe to call from multiple goroutines.
type ConnWrapper interface {
	Wrap(conn net.Conn) (net.Conn, error)
}

// Compression names understood by NewCompression.
const (
	CompressionNone   = "none"
	CompressionZstd   = "zstd"
	CompressionBrotli = "brotli"
)

// NewCompression returns the ConnWrapper for a compression name. It returns
// nil for "none" and the empty name.
func NewCompression(name string) (ConnWrapper, error) {
	switch name {
	case "", CompressionNone:
		return nil, nil
	case CompressionZstd:
		return NewZstdConnWrapper()
	case CompressionBrotli:
		return NewBrotliConnWrapper(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCompression, name)
	}
}

type flushWriter interface {
	io.Writer
	Flush() error
}

// compressedConn compresses writes and decompresses reads. Every Write is
// flushed so the peer can decode it without waiting for more data.
type compressedConn struct {
	net.Conn
	reader io.Reader
	writer flushWriter
	closer func()

	writeMu   sync.Mutex
	closed    bool
	closeOnce sync.Once
	closeErr  error
}

func newCompressedConn(raw net.Conn, r io.Reader, w flushWriter, closer func()) *compressedConn {
	return &compressedConn{Conn: raw, reader: r, writer: w, closer: closer}
}

func (c *compressedConn) Read(p []byte) (int, error) {
	return c.reader.Read(p)
}

func (c *compressedConn) Write(p []byte) (int, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.closed {
		return 0, net.ErrClosed
	}

	n, err := c.writer.Write(p)
	if err != nil {
		return n, err
	}
	return n, c.writer.Flush()
}

// Close closes the underlying connection first so a pending Read returns,
// then hands the encoder back to its pool. No trailer is written.
func (c *compressedConn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.Conn.Close()
		c.writeMu.Lock()
		c.closed = true
		c.closer()
		c.writeMu.Unlock()
	})
	return c.closeErr
}
