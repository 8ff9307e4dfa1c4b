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

// Package gameloop implements spec.md §4.6's fixed-period tick scheduler:
// one goroutine that swaps the tick-arena pair every 50 ms, logs when it
// falls behind instead of trying to catch up mid-tick, and reports observed
// ticks-per-second once per wall-clock second.
package gameloop

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sabouaram/embercore/arena"
	"github.com/sabouaram/embercore/logger"
)

// TickPeriod is the fixed 50 ms quantum spec.md §4.6 mandates (20 ticks per
// second).
const TickPeriod = 50 * time.Millisecond

// TicksPerSecond is the Prometheus gauge this loop updates once per
// wall-clock second (SPEC_FULL.md §B).
var TicksPerSecond = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "embercore_ticks_per_second",
	Help: "Observed game-loop ticks completed in the last wall-clock second.",
})

func init() {
	prometheus.MustRegister(TicksPerSecond)
}

// Loop drives the tick cadence and owns arena swaps (spec.md §5's
// Game-loop thread).
type Loop struct {
	arenas *arena.Pair
	log    *logger.Logger

	interrupt chan struct{}

	tickCount uint64
}

// New builds a Loop over the shared tick-arena pair.
func New(arenas *arena.Pair, log *logger.Logger) *Loop {
	return &Loop{arenas: arenas, log: log, interrupt: make(chan struct{}, 1)}
}

// Interrupt wakes a blocked sleep early; the loop resumes sleeping for
// whatever remains of the current tick period (spec.md §4.6: "Sleep must be
// interrupt-resumable").
func (l *Loop) Interrupt() {
	select {
	case l.interrupt <- struct{}{}:
	default:
	}
}

// Run drives the fixed-period loop until stopped is set.
func (l *Loop) Run(stopped *bool) {
	var ticksThisSecond uint64
	secondStart := time.Now()

	for !*stopped {
		tStart := time.Now()
		l.arenas.Swap()
		elapsed := time.Since(tStart)

		remaining := TickPeriod - elapsed
		if remaining <= 0 {
			l.log.Warning("tick lagging", logger.Fields{"over_by": (-remaining).String()})
		} else {
			l.sleep(remaining)
		}

		l.tickCount++
		ticksThisSecond++

		if since := time.Since(secondStart); since >= time.Second {
			TicksPerSecond.Set(float64(ticksThisSecond))
			l.log.Trace("ticks per second", logger.Fields{"tps": ticksThisSecond})
			ticksThisSecond = 0
			secondStart = time.Now()
		}
	}
}

// sleep waits out d, resuming for the remainder whenever Interrupt fires
// early instead of returning prematurely.
func (l *Loop) sleep(d time.Duration) {
	deadline := time.Now().Add(d)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return
		}

		t := time.NewTimer(remaining)
		select {
		case <-t.C:
			return
		case <-l.interrupt:
			t.Stop()
		}
	}
}

// TickCount returns the number of ticks completed since Run started.
func (l *Loop) TickCount() uint64 {
	return l.tickCount
}
