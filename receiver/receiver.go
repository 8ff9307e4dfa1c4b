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

// Package receiver implements spec.md §4.4's resumable byte-stream decoder:
// a per-client state machine that turns an arbitrarily-fragmented TCP stream
// into whole protocol packets without blocking a thread or allocating on the
// fast path.
package receiver

import (
	"github.com/sabouaram/embercore/bufpool"
	"github.com/sabouaram/embercore/protocol"

	liberr "github.com/sabouaram/embercore/errors"
)

// State names the suspension point a Receiver resumes from.
type State int

const (
	// StateReadLength is decoding the VarInt length prefix, one byte at a
	// time.
	StateReadLength State = iota
	// StateFillBody is copying a slow-path (oversize-for-one-read) body
	// into a checked-out protocol-recv buffer.
	StateFillBody
)

// Emit hands a complete packet body to the dispatcher. length is the
// declared packet length, which for the slow path equals len(body); for the
// fast path body is a sub-slice of the caller's TCP-recv buffer.
type Emit func(body []byte, length int) liberr.Error

// Receiver is the per-client resumable decoder described by spec.md §3's
// "Receiver state" data model. A Receiver built by New starts in
// StateReadLength.
type Receiver struct {
	state State

	lenDec         protocol.VarIntDecoder
	declaredLength int32

	pool              *bufpool.Pool
	maxRecvPacketSize int

	body            []byte
	bodyOwnedByPool bool
	bodyOffset      int
	bytesRemaining  int

	// EncryptionEnabled and Decrypt mirror spec.md §4.4's "if
	// encryption_enabled, the copied bytes are decrypted in place here
	// (hook; not implemented)": the flag and the seam exist, nothing
	// behind Decrypt is ever set by this core.
	EncryptionEnabled bool
	Decrypt           func(buf []byte)

	// CompressionEnabled and Decompress mirror the equivalent hook for
	// emit: "if compression_enabled, run the decompression hook (not
	// implemented)".
	CompressionEnabled bool
	Decompress         DecompressHook
}

// New builds a Receiver that checks out oversize bodies from pool, rejecting
// any declared length greater than maxRecvPacketSize.
func New(pool *bufpool.Pool, maxRecvPacketSize int) *Receiver {
	return &Receiver{pool: pool, maxRecvPacketSize: maxRecvPacketSize}
}

// Consume is the reactor's per-recv entry point (spec.md §4.4's contract):
// it makes forward progress on as many whole packets as input allows, then
// suspends. No thread blocks; suspension is just this call returning with
// r's resume state updated for the next Consume call.
func (r *Receiver) Consume(input []byte, emit Emit) liberr.Error {
	for {
		switch r.state {
		case StateReadLength:
			if len(input) == 0 {
				return liberr.None
			}

			b := input[0]
			input = input[1:]

			v, done, err := r.lenDec.Feed(b)
			if err.IsError() {
				r.reset()
				return err.Trace()
			}
			if !done {
				continue
			}

			r.declaredLength = v
			if err := r.beginBody(&input, emit); err.IsError() {
				r.reset()
				return err.Trace()
			}

		case StateFillBody:
			if len(input) == 0 {
				return liberr.None
			}

			n := len(input)
			if n > r.bytesRemaining {
				n = r.bytesRemaining
			}

			dst := r.body[r.bodyOffset : r.bodyOffset+n]
			copy(dst, input[:n])
			if r.EncryptionEnabled && r.Decrypt != nil {
				r.Decrypt(dst)
			}

			input = input[n:]
			r.bodyOffset += n
			r.bytesRemaining -= n

			if r.bytesRemaining > 0 {
				return liberr.None
			}

			if err := r.emitBody(r.body[:r.bodyOffset], r.bodyOffset, emit); err.IsError() {
				r.reset()
				return err.Trace()
			}
			r.state = StateReadLength
		}
	}
}

// beginBody implements BodyFastOrSlow: decide whether the declared length is
// already fully present in input (fast path, no allocation) or must be
// assembled across further Consume calls via a checked-out pool buffer
// (slow path).
func (r *Receiver) beginBody(input *[]byte, emit Emit) liberr.Error {
	in := *input
	declared := int(r.declaredLength)

	if declared > r.maxRecvPacketSize {
		return liberr.NewProtocol("declared packet length %d exceeds max_recv_packet_size %d", declared, r.maxRecvPacketSize)
	}

	if declared <= len(in) {
		body := in[:declared]
		*input = in[declared:]
		return r.emitBody(body, declared, emit)
	}

	buf, err := r.pool.Take()
	if err.IsError() {
		return err.Trace()
	}

	r.body = buf
	r.bodyOwnedByPool = true
	r.bodyOffset = 0
	r.bytesRemaining = declared
	r.state = StateFillBody
	return liberr.None
}

// emitBody runs the decompression hook (if enabled), hands the body to the
// dispatcher, then returns any pool buffer it owns.
func (r *Receiver) emitBody(body []byte, length int, emit Emit) liberr.Error {
	if r.CompressionEnabled && r.Decompress != nil {
		decompressed, err := r.Decompress(body)
		if err.IsError() {
			r.releaseBody()
			return err.Trace()
		}
		body = decompressed
		length = len(decompressed)
	}

	err := emit(body, length)
	r.releaseBody()
	return err
}

func (r *Receiver) releaseBody() {
	if r.bodyOwnedByPool {
		r.pool.Put(r.body)
		r.bodyOwnedByPool = false
		r.body = nil
	}
}

// reset returns any buffer the receiver holds and rewinds to "no packet in
// progress" (spec.md §3: "On error the state is reset ... and any pool
// buffer held is returned").
func (r *Receiver) reset() {
	r.releaseBody()
	r.lenDec.Reset()
	r.bodyOffset = 0
	r.bytesRemaining = 0
	r.state = StateReadLength
}
