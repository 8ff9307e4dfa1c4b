/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package core wires every other package into one process-wide object with
// explicit Init/Run/Shutdown, replacing the module-level singletons the
// original design note calls out (server socket, arena pair, buffer pools,
// request pool, client list all lived as globals; here they are fields of
// Core, constructed once and passed down instead of hidden behind statics).
package core

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sabouaram/embercore/arena"
	"github.com/sabouaram/embercore/bufpool"
	"github.com/sabouaram/embercore/config"
	liberr "github.com/sabouaram/embercore/errors"
	"github.com/sabouaram/embercore/gameloop"
	"github.com/sabouaram/embercore/httpserver"
	"github.com/sabouaram/embercore/logger"
	"github.com/sabouaram/embercore/packet"
	"github.com/sabouaram/embercore/reactor"
)

// tickArenaSize is spec.md §4.1's 1 GiB per-arena anonymous mapping.
const tickArenaSize = 1 << 30

// Core owns every long-lived component: the tick arena pair, the three
// buffer pools, the packet dispatcher, the io_uring reactor, the fixed-tick
// game loop, and the metrics side listener.
type Core struct {
	cfg config.Config
	log *logger.Logger

	arenas *arena.Pair
	pools  *bufpool.Pools

	dispatcher *packet.Dispatcher
	reactor    *reactor.Reactor
	loop       *gameloop.Loop
	metrics    *httpserver.Server

	stopped bool
}

// Init constructs every component but starts nothing: no socket is bound,
// no goroutine is spawned, until Run is called.
func Init(cfg config.Config, log *logger.Logger) (*Core, liberr.Error) {
	arenas, err := arena.NewPair(tickArenaSize)
	if err.IsError() {
		return nil, err
	}

	pools := bufpool.NewPools(cfg)
	dispatcher := packet.NewDispatcher(arenas, pools.ProtoSend)

	rx, err := reactor.New(cfg, dispatcher, pools.TCPRecv, pools.ProtoRecv, pools.ProtoSend, log)
	if err.IsError() {
		return nil, err
	}

	loop := gameloop.New(arenas, log)

	c := &Core{
		cfg:        cfg,
		log:        log,
		arenas:     arenas,
		pools:      pools,
		dispatcher: dispatcher,
		reactor:    rx,
		loop:       loop,
	}

	if cfg.MetricsAddr != "" {
		c.metrics = httpserver.New(httpserver.DefaultConfig(cfg.MetricsAddr), log)
	}

	return c, liberr.None
}

// Run starts the reactor thread, the game-loop thread, and (if configured)
// the metrics listener, blocking until ctx is cancelled or one of the two
// worker threads returns an error.
func (c *Core) Run(ctx context.Context) liberr.Error {
	if c.metrics != nil {
		c.pools.RegisterMetrics()
		if err := c.metrics.Listen(ctx, httpserver.NewHandler(nil, c)); err.IsError() {
			return err
		}
		defer c.metrics.Shutdown()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := c.reactor.Run(&c.stopped); err.IsError() {
			return err
		}
		return nil
	})

	g.Go(func() error {
		c.loop.Run(&c.stopped)
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if c.metrics != nil {
					c.pools.RegisterMetrics()
				}
			}
		}
	})

	<-gctx.Done()
	c.Shutdown()

	if e := g.Wait(); e != nil {
		return liberr.NewOs(e)
	}
	return liberr.None
}

// Shutdown flips the shared stop flag the reactor and game-loop threads
// poll, interrupts a blocked game-loop sleep, and tears down the reactor's
// socket and ring.
func (c *Core) Shutdown() {
	c.stopped = true
	c.loop.Interrupt()
	c.reactor.Close()
}

// OpenConnections implements httpserver.Stats.
func (c *Core) OpenConnections() int {
	return c.reactor.OpenConnections()
}

// TickCount implements httpserver.Stats.
func (c *Core) TickCount() uint64 {
	return c.loop.TickCount()
}
