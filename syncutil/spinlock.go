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

// Package syncutil provides the two mutual-exclusion primitives spec.md §5
// names: an unfair CAS spin lock for short critical sections (request pool,
// send-buffer pool, arena allocator) and a FIFO ticket lock reserved for the
// arena-swap critical section, where fairness is required so a swap can
// never be starved by a storm of take-current calls.
package syncutil

import (
	"runtime"
	"sync/atomic"
)

// SpinLock is a CAS-acquire, store-release mutual exclusion lock with no
// fairness guarantee. It is appropriate only for critical sections expected
// to be held for a handful of instructions.
type SpinLock struct {
	state atomic.Bool
}

// Lock spins until the lock is acquired, yielding the processor between
// attempts so a busy waiter does not starve the holder on a single core.
func (s *SpinLock) Lock() {
	for !s.state.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
}

// TryLock attempts to acquire the lock without blocking.
func (s *SpinLock) TryLock() bool {
	return s.state.CompareAndSwap(false, true)
}

// Unlock releases the lock. Unlock on a lock that is not held is a caller
// bug and, like sync.Mutex, is not guarded against.
func (s *SpinLock) Unlock() {
	s.state.Store(false)
}
