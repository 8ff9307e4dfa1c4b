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

// Package bufpool implements spec.md §4.2's three fixed-size buffer pools:
// TCP-recv, protocol-recv, and protocol-send. Each buffer is a fresh
// anonymous mmap region so the OS can reclaim idle pages page-granularly;
// a LIFO free list maximizes cache reuse for hot buffers, matching the
// teacher's bump-pool-of-mmap-regions idiom used across its archive/ and
// ioutils/ packages for large scratch buffers.
package bufpool

import (
	"github.com/sabouaram/embercore/syncutil"

	liberr "github.com/sabouaram/embercore/errors"
)

// Pool is a LIFO of fixed-size buffers backed by anonymous mmap regions.
// TCP-recv and protocol-recv pools are single-reactor-thread only and pass
// locked=false; protocol-send may be entered from any context and must pass
// locked=true (spec.md §4.2).
type Pool struct {
	size   int
	locked bool
	lock   syncutil.SpinLock
	free   [][]byte
}

// New builds a Pool whose buffers are each size bytes.
func New(size int, locked bool) *Pool {
	return &Pool{size: size, locked: locked}
}

// Size returns the fixed size of every buffer this pool vends.
func (p *Pool) Size() int { return p.size }

// Depth returns the number of buffers currently idle in the free list, for
// metrics exposition.
func (p *Pool) Depth() int {
	if p.locked {
		p.lock.Lock()
		defer p.lock.Unlock()
	}
	return len(p.free)
}

// Take pops a free buffer or, if the pool is empty, mmaps a fresh one and
// hints it as about to be used.
func (p *Pool) Take() ([]byte, liberr.Error) {
	if p.locked {
		p.lock.Lock()
	}

	n := len(p.free)
	if n == 0 {
		if p.locked {
			p.lock.Unlock()
		}
		return mmapAnon(p.size)
	}

	buf := p.free[n-1]
	p.free = p.free[:n-1]

	if p.locked {
		p.lock.Unlock()
	}

	adviseWillNeed(buf)
	return buf, liberr.None
}

// Put returns buf to the pool and hints the region as not needed, so the OS
// can reclaim its pages while it sits idle.
func (p *Pool) Put(buf []byte) {
	if len(buf) != p.size {
		return
	}

	adviseDontNeed(buf)

	if p.locked {
		p.lock.Lock()
		defer p.lock.Unlock()
	}
	p.free = append(p.free, buf)
}
