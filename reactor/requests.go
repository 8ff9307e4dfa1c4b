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

package reactor

import (
	"github.com/sabouaram/embercore/syncutil"

	liberr "github.com/sabouaram/embercore/errors"
)

// requestKind tags the in-flight request descriptor's union (spec.md §4.7).
type requestKind uint8

const (
	requestAccept requestKind = iota
	requestRecv
	requestSend
)

// request is one in-flight submission's descriptor: the reactor's completion
// handler reads req.kind to know which union arm is live and req.client to
// resolve the owning client (spec.md's "pool of reusable request
// descriptors").
type request struct {
	kind   requestKind
	client Handle

	// buf is the single recv/TCP-recv buffer a Recv request reads into.
	buf []byte

	// sendBufs holds every buffer a Send request's iovecs reference, in
	// submission order, so completion can return each to its pool per the
	// Design Note's "the send request owns all buffers it references"
	// (spec.md §9).
	sendBufs [][]byte
	sendPool *poolRef
}

// poolRef lets a send request remember which pool its buffers go back to;
// the reactor draws both the length-varint scratch and the body from the
// protocol-send pool (spec.md §9's pool-return-after-send note).
type poolRef struct {
	put func(buf []byte)
}

// requestPool recycles request descriptors via a spin-lock-guarded LIFO,
// fresh-allocating on underflow (spec.md §4.7's final sentence). Slots are
// individually heap-allocated (not a single growable slice of values) so a
// *request handed out by at() stays valid across later take() calls that
// grow the pool.
type requestPool struct {
	lock syncutil.SpinLock
	free []uint32
	reqs []*request
}

func newRequestPool(capacity int) *requestPool {
	return &requestPool{reqs: make([]*request, 0, capacity)}
}

// take returns the index of a recycled or freshly allocated request slot.
func (p *requestPool) take() uint32 {
	p.lock.Lock()
	defer p.lock.Unlock()

	n := len(p.free)
	if n == 0 {
		p.reqs = append(p.reqs, &request{})
		return uint32(len(p.reqs) - 1)
	}

	idx := p.free[n-1]
	p.free = p.free[:n-1]
	return idx
}

// at returns the stable pointer to the descriptor at idx for the caller to
// fill or read.
func (p *requestPool) at(idx uint32) *request {
	return p.reqs[idx]
}

// release clears a descriptor and returns its index to the free list.
func (p *requestPool) release(idx uint32) {
	*p.reqs[idx] = request{}

	p.lock.Lock()
	defer p.lock.Unlock()
	p.free = append(p.free, idx)
}

// errNoDescriptor is returned by send_packet when the request pool or the
// submission queue has no room (spec.md §4.7: "Fail if no request
// descriptor or submission entry is available").
func errNoDescriptor() liberr.Error {
	return liberr.New(liberr.CheckFailed, "no request descriptor or submission entry available")
}
