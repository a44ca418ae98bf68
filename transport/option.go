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

package transport

import (
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/tochemey/actorwire/internal/buffer"
	"github.com/tochemey/actorwire/internal/packet"
	"github.com/tochemey/actorwire/internal/tcp"
	"github.com/tochemey/actorwire/log"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a Service.
	Apply(service *Service)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(service *Service)

// Apply applies the Service's option
func (f OptionFunc) Apply(service *Service) {
	f(service)
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(service *Service) {
		service.logger = logger
	})
}

// WithListener sets the receiver of the service events.
func WithListener(listener Listener) Option {
	return OptionFunc(func(service *Service) {
		service.listener = listener
	})
}

// WithLayout sets the frame layout. Inner frames carry the destination actor id.
func WithLayout(layout packet.Layout) Option {
	return OptionFunc(func(service *Service) {
		service.layout = layout
	})
}

// WithMaxPacketSize sets the largest accepted frame length.
func WithMaxPacketSize(size int) Option {
	return OptionFunc(func(service *Service) {
		service.maxPacketSize = size
	})
}

// WithSendHighWater sets the number of pending bytes above which senders
// are suspended.
func WithSendHighWater(size int) Option {
	return OptionFunc(func(service *Service) {
		service.highWater = size
	})
}

// WithIdleTimeout tears down channels that received nothing for the given
// duration. Zero disables the check.
func WithIdleTimeout(timeout time.Duration) Option {
	return OptionFunc(func(service *Service) {
		service.idleTimeout = timeout
	})
}

// WithMaxConnections caps the number of accepted connections.
func WithMaxConnections(limit int) Option {
	return OptionFunc(func(service *Service) {
		service.listenConfig.MaxConnections = limit
	})
}

// WithReusePort sets SO_REUSEPORT on the listening socket.
func WithReusePort() Option {
	return OptionFunc(func(service *Service) {
		service.listenConfig.ReusePort = true
	})
}

// WithDialer sets the dialer used by Connect.
func WithDialer(dialer *tcp.Dialer) Option {
	return OptionFunc(func(service *Service) {
		service.dialer = dialer
	})
}

// WithConnWrapper wraps every accepted and dialed connection, typically
// with a compression layer.
func WithConnWrapper(wrapper tcp.ConnWrapper) Option {
	return OptionFunc(func(service *Service) {
		if wrapper != nil {
			service.wrappers = append(service.wrappers, wrapper)
		}
	})
}

// WithChunkPool sets the pool backing the channel buffers.
func WithChunkPool(pool *buffer.Pool) Option {
	return OptionFunc(func(service *Service) {
		service.chunks = pool
	})
}

// WithMeterProvider sets the OpenTelemetry meter provider.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return OptionFunc(func(service *Service) {
		service.meterProvider = provider
	})
}
