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

// Package arena implements spec.md §4.3's double-buffered per-tick bump
// arena: a pair of fixed-size anonymous-mapped regions, one current
// (producer-facing this tick) and one next, handed off once per tick by the
// game loop under a fair ticket lock shared with take_current/drop_current.
package arena

import (
	"sync/atomic"

	"github.com/sabouaram/embercore/syncutil"

	liberr "github.com/sabouaram/embercore/errors"
)

// DefaultSize is the per-arena backing region size (spec.md §3: "base (a
// 1 GiB anonymous mapping)").
const DefaultSize = 1 << 30

// pageSize approximates the host page size closely enough for the
// don't-need hinting threshold in reset; the hint is advisory either way.
const pageSize = 4096

// Arena is a single bump allocator over a fixed backing region.
type Arena struct {
	base      []byte
	cursor    atomic.Uint64
	highWater uint64

	allocLock     syncutil.SpinLock
	activeReaders atomic.Int64
}

func newArena(size int) (*Arena, liberr.Error) {
	base, err := mmapAnon(size)
	if err.IsError() {
		return nil, err.Trace()
	}
	return &Arena{base: base}, liberr.None
}

// AllocLocked bumps cursor under the arena's spin lock; safe for concurrent
// producers.
func (a *Arena) AllocLocked(size int) ([]byte, bool) {
	a.allocLock.Lock()
	defer a.allocLock.Unlock()
	return a.allocUnlocked(size)
}

// AllocUnlocked bumps cursor without taking the spin lock; reserved for
// single-producer contexts (spec.md §4.3).
func (a *Arena) AllocUnlocked(size int) ([]byte, bool) {
	return a.allocUnlocked(size)
}

func (a *Arena) allocUnlocked(size int) ([]byte, bool) {
	if size < 0 {
		return nil, false
	}
	cur := a.cursor.Load()
	next := cur + uint64(size)
	if next > uint64(len(a.base)) {
		return nil, false
	}
	a.cursor.Store(next)
	return a.base[cur:next:next], true
}

// reset records the prior cursor as high_water, rewinds cursor to zero, and
// hints the previously-used range as reclaimable once it exceeds one page.
func (a *Arena) reset() {
	prior := a.cursor.Load()
	a.highWater = prior
	a.cursor.Store(0)

	if prior > pageSize {
		adviseDontNeed(a.base[:prior])
	}
}

func (a *Arena) addReader(delta int64) int64 {
	return a.activeReaders.Add(delta)
}

func (a *Arena) readers() int64 {
	return a.activeReaders.Load()
}
