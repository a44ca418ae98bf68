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

package fiber

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travisjeffery/go-dynaport"
	"go.uber.org/atomic"
	"go.uber.org/goleak"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/tochemey/actorwire/address"
	"github.com/tochemey/actorwire/config"
	"github.com/tochemey/actorwire/dispatch"
	"github.com/tochemey/actorwire/entity"
	gerrors "github.com/tochemey/actorwire/errors"
	"github.com/tochemey/actorwire/log"
	"github.com/tochemey/actorwire/message"
)

const (
	opPing uint16 = 1
	opPong uint16 = 2
	opNote uint16 = 3
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type pinger struct {
	entity.Base
	notes *atomic.Int64
}

func newPinger(id address.ActorID) *pinger {
	return &pinger{Base: entity.NewBase(id, entity.Ordered), notes: atomic.NewInt64(0)}
}

func newTable(t *testing.T) *message.Table {
	t.Helper()
	table, err := message.NewTable(nil,
		message.Call[*wrapperspb.Int64Value](opPing, opPong),
		message.Reply[*wrapperspb.StringValue](opPong),
		message.OneWay[*wrapperspb.BoolValue](opNote),
	)
	require.NoError(t, err)
	return table
}

func serverRoutes() []dispatch.Route {
	return []dispatch.Route{
		{
			Opcode: opPing,
			Handler: dispatch.OnRequest(func(_ context.Context, _ *pinger, req *wrapperspb.Int64Value) (*wrapperspb.StringValue, error) {
				return wrapperspb.String(fmt.Sprintf("PONG-%d", req.GetValue())), nil
			}),
		},
		{
			Opcode: opNote,
			Handler: dispatch.OnMessage(func(_ context.Context, p *pinger, _ *wrapperspb.BoolValue) error {
				p.notes.Inc()
				return nil
			}),
		},
	}
}

func newConfig(name string, process uint16) *config.Config {
	cfg := config.Default()
	cfg.Name = name
	cfg.Process = process
	cfg.TickInterval = 5 * time.Millisecond
	cfg.RequestTimeout = 2 * time.Second
	return cfg
}

func startFiber(t *testing.T, cfg *config.Config, routes []dispatch.Route) *Fiber {
	t.Helper()
	ctx := context.Background()
	f, err := New(cfg, newTable(t), routes, WithLogger(log.DiscardLogger))
	require.NoError(t, err)
	require.NoError(t, f.Start(ctx))
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		_ = f.Stop(stopCtx)
	})
	return f
}

func TestFiber(t *testing.T) {
	for _, compression := range []string{config.CompressionNone, config.CompressionZstd, config.CompressionBrotli} {
		t.Run(fmt.Sprintf("With ping over tcp and %s compression", compression), func(t *testing.T) {
			ctx := context.Background()
			ports := dynaport.Get(1)

			serverCfg := newConfig("server", 1)
			serverCfg.ListenAddress = fmt.Sprintf("127.0.0.1:%d", ports[0])
			serverCfg.Compression = compression
			server := startFiber(t, serverCfg, serverRoutes())

			target := newPinger(server.Registry().NewID())
			require.NoError(t, server.Spawn(target))

			clientCfg := newConfig("client", 2)
			clientCfg.Compression = compression
			client := startFiber(t, clientCfg, nil)

			channelID, err := client.Connect(ctx, serverCfg.ListenAddress)
			require.NoError(t, err)

			for i := range 5 {
				pong, err := dispatch.Ask[*wrapperspb.StringValue](ctx, client.Dispatcher(), channelID, target.ID(), wrapperspb.Int64(int64(i)))
				require.NoError(t, err)
				assert.Equal(t, fmt.Sprintf("PONG-%d", i), pong.GetValue())
			}

			require.NoError(t, client.Dispatcher().Send(ctx, channelID, target.ID(), wrapperspb.Bool(true)))
			require.Eventually(t, func() bool { return target.notes.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

			_, err = client.Dispatcher().Call(ctx, channelID, address.New(1, 9999), wrapperspb.Int64(1))
			require.ErrorIs(t, err, gerrors.ErrActorNotFound)
		})
	}
	t.Run("With pending call failed on disconnect", func(t *testing.T) {
		ctx := context.Background()
		ports := dynaport.Get(1)

		serverCfg := newConfig("server", 1)
		serverCfg.ListenAddress = fmt.Sprintf("127.0.0.1:%d", ports[0])
		blocked := make(chan struct{})
		server := startFiber(t, serverCfg, []dispatch.Route{
			{
				Opcode: opPing,
				Handler: dispatch.OnRequest(func(ctx context.Context, _ *pinger, _ *wrapperspb.Int64Value) (*wrapperspb.StringValue, error) {
					close(blocked)
					<-ctx.Done()
					return nil, ctx.Err()
				}),
			},
		})
		target := newPinger(server.Registry().NewID())
		require.NoError(t, server.Spawn(target))

		client := startFiber(t, newConfig("client", 2), nil)
		channelID, err := client.Connect(ctx, serverCfg.ListenAddress)
		require.NoError(t, err)

		errc := make(chan error, 1)
		go func() {
			_, err := client.Dispatcher().Call(ctx, channelID, target.ID(), wrapperspb.Int64(1))
			errc <- err
		}()

		<-blocked
		require.True(t, client.Transport().Remove(channelID, gerrors.CodeRemoved))
		require.ErrorIs(t, <-errc, gerrors.ErrChannelClosed)
	})
	t.Run("With tasks and repeated timers on the owner loop", func(t *testing.T) {
		f := startFiber(t, newConfig("owner", 3), nil)

		posted := atomic.NewInt32(0)
		for range 10 {
			require.NoError(t, f.Post(func() { posted.Inc() }))
		}
		require.NoError(t, f.Post(func() { panic("boom") }))
		require.Eventually(t, func() bool { return posted.Load() == 10 }, 2*time.Second, 5*time.Millisecond)

		ticks := atomic.NewInt32(0)
		handle, err := f.Every(10*time.Millisecond, func() { ticks.Inc() })
		require.NoError(t, err)
		require.Eventually(t, func() bool { return ticks.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
		assert.True(t, f.Scheduler().Cancel(handle))
	})
	t.Run("With lifecycle errors", func(t *testing.T) {
		ctx := context.Background()
		f, err := New(newConfig("idle", 4), newTable(t), nil, WithLogger(log.DiscardLogger))
		require.NoError(t, err)

		require.ErrorIs(t, f.Post(func() {}), gerrors.ErrFiberNotStarted)
		require.ErrorIs(t, f.Stop(ctx), gerrors.ErrFiberNotStarted)

		require.NoError(t, f.Start(ctx))
		require.ErrorIs(t, f.Start(ctx), gerrors.ErrFiberAlreadyStarted)
		require.NoError(t, f.Stop(ctx))
		require.NoError(t, f.Stop(ctx))
		require.ErrorIs(t, f.Post(func() {}), gerrors.ErrFiberNotStarted)
	})
	t.Run("With accessors", func(t *testing.T) {
		f, err := New(newConfig("accessors", 5), newTable(t), serverRoutes(), WithLogger(log.DiscardLogger))
		require.NoError(t, err)
		assert.EqualValues(t, 5, f.Process())
		assert.Equal(t, "accessors", f.Config().Name)
		assert.NotNil(t, f.Logger())
		assert.NotNil(t, f.Locker())
		assert.NotNil(t, f.Transport())
		assert.Equal(t, 2, f.Dispatcher().Router().Len())
		assert.EqualValues(t, 5, f.Registry().NewID().Process())
	})
	t.Run("With invalid setup", func(t *testing.T) {
		cfg := newConfig("broken", 6)
		cfg.Layout = "sideways"
		_, err := New(cfg, newTable(t), nil)
		require.ErrorIs(t, err, config.ErrInvalidConfig)

		_, err = New(newConfig("routes", 7), newTable(t), []dispatch.Route{{Opcode: 42, Handler: dispatch.HandlerFunc(nil)}})
		require.ErrorIs(t, err, gerrors.ErrUnknownOpcode)
	})
}
