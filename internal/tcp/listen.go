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
	"context"
	"net"
	"time"

	"golang.org/x/net/netutil"
)

// ListenConfig holds the listener settings.
type ListenConfig struct {
	// ReusePort sets SO_REUSEPORT on the listening socket where supported.
	ReusePort bool
	// KeepAlive is the keep-alive period of accepted connections.
	KeepAlive time.Duration
	// MaxConnections caps the number of connections accepted at once.
	// Zero means no cap.
	MaxConnections int
}

// Listen opens a TCP listener on address.
func Listen(ctx context.Context, address string, config ListenConfig) (net.Listener, error) {
	lc := net.ListenConfig{
		KeepAlive: config.KeepAlive,
		Control:   controlFor(config),
	}

	listener, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return nil, err
	}

	if config.MaxConnections > 0 {
		listener = netutil.LimitListener(listener, config.MaxConnections)
	}
	return listener, nil
}

// Configure applies the per connection socket options shared by accepted
// and dialed connections.
func Configure(conn net.Conn) {
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.SetNoDelay(true)
	}
}
