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

package arena

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/sabouaram/embercore/syncutil"

	liberr "github.com/sabouaram/embercore/errors"
)

// Pair is the two-arena handoff unit shared between the reactor's producer
// threads and the game loop's swap. Both arenas live for the process
// lifetime; only the current/next designation changes.
type Pair struct {
	current atomic.Pointer[Arena]
	next    atomic.Pointer[Arena]
	swap    *syncutil.TicketLock
}

// Handle is the reader reference returned by TakeCurrent. The caller must
// present it back to DropCurrent exactly once.
type Handle struct {
	arena *Arena
}

// Arena returns the arena this handle holds a reader reference on. Slices
// allocated from it remain valid until this arena is selected as next and
// reset (spec.md §3).
func (h Handle) Arena() *Arena { return h.arena }

// NewPair allocates both backing arenas at size bytes each.
func NewPair(size int) (*Pair, liberr.Error) {
	a, err := newArena(size)
	if err.IsError() {
		return nil, err.Trace()
	}
	b, err := newArena(size)
	if err.IsError() {
		return nil, err.Trace()
	}

	p := &Pair{swap: syncutil.NewTicketLock()}
	p.current.Store(a)
	p.next.Store(b)
	return p, liberr.None
}

// TakeCurrent acquires the ticket lock, increments active_readers of
// current, releases the lock, and returns a handle valid until DropCurrent
// (spec.md §4.3).
func (p *Pair) TakeCurrent() Handle {
	p.swap.Lock()
	a := p.current.Load()
	a.addReader(1)
	p.swap.Unlock()
	return Handle{arena: a}
}

// DropCurrent releases a handle obtained from TakeCurrent.
func (p *Pair) DropCurrent(h Handle) {
	h.arena.addReader(-1)
}

// Swap runs the five-step handoff protocol once per tick: exchange
// current/next, reset what is now next, then wait for the new current's
// readers (inherited from its time as the previous-previous current) to
// drain to zero.
func (p *Pair) Swap() {
	p.swap.Lock()

	oldCurrent := p.current.Load()
	oldNext := p.next.Load()

	p.current.Store(oldNext)
	p.next.Store(oldCurrent)

	oldCurrent.reset()

	p.swap.Unlock()

	newCurrent := oldNext
	backoff := time.Microsecond
	for spins := 0; newCurrent.readers() != 0; spins++ {
		if spins < 64 {
			runtime.Gosched()
			continue
		}
		time.Sleep(backoff)
		if backoff < time.Millisecond {
			backoff *= 2
		}
	}
}
