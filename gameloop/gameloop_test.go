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

package gameloop

import (
	"testing"
	"time"

	"github.com/sabouaram/embercore/arena"
	"github.com/sabouaram/embercore/logger"
)

func newTestLoop(t *testing.T) *Loop {
	t.Helper()
	pair, err := arena.NewPair(1 << 12)
	if err.IsError() {
		t.Fatalf("arena.NewPair: %v", err)
	}
	return New(pair, logger.Default())
}

func TestRunAdvancesTickCountAndStops(t *testing.T) {
	l := newTestLoop(t)
	stopped := false

	done := make(chan struct{})
	go func() {
		l.Run(&stopped)
		close(done)
	}()

	time.Sleep(120 * time.Millisecond)
	stopped = true

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after stopped was set")
	}

	if l.TickCount() == 0 {
		t.Fatalf("expected at least one tick to have run")
	}
}

func TestSleepReturnsImmediatelyForNonPositiveDuration(t *testing.T) {
	l := newTestLoop(t)

	start := time.Now()
	l.sleep(0)
	if elapsed := time.Since(start); elapsed > 5*time.Millisecond {
		t.Fatalf("sleep(0) took %v, expected near-immediate return", elapsed)
	}
}

func TestInterruptResumesForRemainder(t *testing.T) {
	l := newTestLoop(t)

	start := time.Now()
	done := make(chan struct{})
	go func() {
		l.sleep(150 * time.Millisecond)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	l.Interrupt()

	select {
	case <-done:
		if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
			t.Fatalf("sleep returned early after interrupt: %v", elapsed)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("sleep never returned after interrupt")
	}
}
