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
	"errors"
	"net"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// ZstdConnWrapper wraps connections with Zstandard compression.
// Encoders are pooled for reuse.
type ZstdConnWrapper struct {
	encoderOpts []zstd.EOption
	decoderOpts []zstd.DOption
	encoderPool sync.Pool
}

var _ ConnWrapper = (*ZstdConnWrapper)(nil)

type zstdConfig struct {
	level  zstd.EncoderLevel
	window int
	maxMem uint64
}

// ZstdOption configures NewZstdConnWrapper.
type ZstdOption func(*zstdConfig)

// WithZstdLevel sets the Zstandard compression level.
func WithZstdLevel(level zstd.EncoderLevel) ZstdOption {
	return func(c *zstdConfig) { c.level = level }
}

// WithZstdDecoderMaxMemory sets the decoder memory limit.
func WithZstdDecoderMaxMemory(n uint64) ZstdOption {
	return func(c *zstdConfig) { c.maxMem = n }
}

// NewZstdConnWrapper creates a ZstdConnWrapper. Frames are small, so the
// window is kept at 256 KiB.
func NewZstdConnWrapper(opts ...ZstdOption) (*ZstdConnWrapper, error) {
	cfg := zstdConfig{
		level:  zstd.SpeedFastest,
		window: 256 << 10,
		maxMem: 64 << 20,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	w := &ZstdConnWrapper{
		encoderOpts: []zstd.EOption{
			zstd.WithEncoderLevel(cfg.level),
			zstd.WithWindowSize(cfg.window),
			zstd.WithEncoderConcurrency(1),
			zstd.WithLowerEncoderMem(true),
		},
		decoderOpts: []zstd.DOption{
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(true),
			zstd.WithDecoderMaxMemory(cfg.maxMem),
		},
	}

	enc, err := zstd.NewWriter(nil, w.encoderOpts...)
	if err != nil {
		return nil, errors.Join(ErrZstdInvalidEncoderOpts, err)
	}

	dec, err := zstd.NewReader(nil, w.decoderOpts...)
	if err != nil {
		_ = enc.Close()
		return nil, errors.Join(ErrZstdInvalidDecoderOpts, err)
	}
	dec.Close()

	w.encoderPool.Put(enc)
	w.encoderPool.New = func() any {
		e, err := zstd.NewWriter(nil, w.encoderOpts...)
		if err != nil {
			return nil
		}
		return e
	}
	return w, nil
}

// Wrap applies Zstandard compression to conn. The decoder runs
// synchronously on the reading goroutine and holds no background resource.
func (z *ZstdConnWrapper) Wrap(conn net.Conn) (net.Conn, error) {
	enc, ok := z.encoderPool.Get().(*zstd.Encoder)
	if !ok || enc == nil {
		return nil, ErrZstdEncoderInit
	}

	dec, err := zstd.NewReader(conn, z.decoderOpts...)
	if err != nil {
		z.encoderPool.Put(enc)
		return nil, errors.Join(ErrZstdDecoderInit, err)
	}

	enc.Reset(conn)
	closer := func() {
		enc.Reset(nil)
		z.encoderPool.Put(enc)
	}
	return newCompressedConn(conn, dec, enc, closer), nil
}
