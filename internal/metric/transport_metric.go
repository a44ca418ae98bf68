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

package metric

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// TransportMetric groups the instruments recorded by the transport service.
//
// Instruments:
//   - transport.frames.in / transport.frames.out (Int64Counter)
//   - transport.bytes.in / transport.bytes.out   (Int64Counter, unit: By)
//   - transport.channels.active                  (Int64UpDownCounter)
//   - transport.channels.faults                  (Int64Counter, attribute: code)
type TransportMetric struct {
	framesIn       metric.Int64Counter
	framesOut      metric.Int64Counter
	bytesIn        metric.Int64Counter
	bytesOut       metric.Int64Counter
	activeChannels metric.Int64UpDownCounter
	faults         metric.Int64Counter
}

// NewTransportMetric creates the transport instruments from meter.
func NewTransportMetric(meter metric.Meter) (*TransportMetric, error) {
	var instruments TransportMetric
	var err error

	if instruments.framesIn, err = meter.Int64Counter(
		"transport.frames.in",
		metric.WithDescription("Total number of frames received"),
	); err != nil {
		return nil, fmt.Errorf("failed to create framesIn instrument, %w", err)
	}

	if instruments.framesOut, err = meter.Int64Counter(
		"transport.frames.out",
		metric.WithDescription("Total number of frames sent"),
	); err != nil {
		return nil, fmt.Errorf("failed to create framesOut instrument, %w", err)
	}

	if instruments.bytesIn, err = meter.Int64Counter(
		"transport.bytes.in",
		metric.WithDescription("Total number of bytes received"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, fmt.Errorf("failed to create bytesIn instrument, %w", err)
	}

	if instruments.bytesOut, err = meter.Int64Counter(
		"transport.bytes.out",
		metric.WithDescription("Total number of bytes sent"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, fmt.Errorf("failed to create bytesOut instrument, %w", err)
	}

	if instruments.activeChannels, err = meter.Int64UpDownCounter(
		"transport.channels.active",
		metric.WithDescription("Number of live channels"),
	); err != nil {
		return nil, fmt.Errorf("failed to create activeChannels instrument, %w", err)
	}

	if instruments.faults, err = meter.Int64Counter(
		"transport.channels.faults",
		metric.WithDescription("Total number of channel teardowns by reason"),
	); err != nil {
		return nil, fmt.Errorf("failed to create faults instrument, %w", err)
	}

	return &instruments, nil
}

// FrameIn records one received frame of size bytes.
func (x *TransportMetric) FrameIn(ctx context.Context, size int) {
	x.framesIn.Add(ctx, 1)
	x.bytesIn.Add(ctx, int64(size))
}

// FrameOut records one sent frame of size bytes.
func (x *TransportMetric) FrameOut(ctx context.Context, size int) {
	x.framesOut.Add(ctx, 1)
	x.bytesOut.Add(ctx, int64(size))
}

// ChannelOpened increments the live channel count.
func (x *TransportMetric) ChannelOpened(ctx context.Context) {
	x.activeChannels.Add(ctx, 1)
}

// ChannelClosed decrements the live channel count and records the reason.
func (x *TransportMetric) ChannelClosed(ctx context.Context, reason string) {
	x.activeChannels.Add(ctx, -1)
	x.faults.Add(ctx, 1, metric.WithAttributes(attribute.String("code", reason)))
}

// FramesIn returns the received frames counter.
func (x *TransportMetric) FramesIn() metric.Int64Counter {
	return x.framesIn
}

// FramesOut returns the sent frames counter.
func (x *TransportMetric) FramesOut() metric.Int64Counter {
	return x.framesOut
}

// ActiveChannels returns the live channels counter.
func (x *TransportMetric) ActiveChannels() metric.Int64UpDownCounter {
	return x.activeChannels
}

// Faults returns the teardown counter.
func (x *TransportMetric) Faults() metric.Int64Counter {
	return x.faults
}
