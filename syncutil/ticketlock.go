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

package syncutil

import (
	"sync/atomic"
	"time"
)

// TicketLock is a FIFO fair lock: each acquirer draws a ticket and waits for
// "now serving" to reach it. Used only for the arena-swap critical section
// (spec.md §4.3) so a swap can never be starved by concurrent take_current
// calls racing ahead of it.
type TicketLock struct {
	nextTicket   atomic.Uint64
	nowServing   atomic.Uint64
	spinBound    int
	backoffStart time.Duration
}

// NewTicketLock builds a TicketLock with a bounded pure-spin phase before
// falling back to a short sleep, per SPEC_FULL.md §D.5 (bounded backoff
// instead of an unbounded spin).
func NewTicketLock() *TicketLock {
	return &TicketLock{spinBound: 256, backoffStart: time.Microsecond}
}

// Lock draws a ticket and waits for it to be served, in FIFO order.
func (t *TicketLock) Lock() {
	my := t.nextTicket.Add(1) - 1
	spins := 0
	backoff := t.backoffStart

	for t.nowServing.Load() != my {
		spins++
		if spins < t.spinBound {
			continue
		}
		time.Sleep(backoff)
		if backoff < time.Millisecond {
			backoff *= 2
		}
	}
}

// Unlock admits the next waiting ticket holder.
func (t *TicketLock) Unlock() {
	t.nowServing.Add(1)
}
