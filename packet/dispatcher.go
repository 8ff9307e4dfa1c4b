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

package packet

import (
	"github.com/sabouaram/embercore/arena"
	"github.com/sabouaram/embercore/bufpool"
	"github.com/sabouaram/embercore/protocol"

	liberr "github.com/sabouaram/embercore/errors"
)

// Send hands a composed outbound body (packet id varint + fields) to the
// reactor layer, which prefixes the wire length varint and submits it
// (spec.md §4.5's "Outbound" paragraph; the length prefix is the reactor's
// concern, see §4.7).
type Send func(body []byte) liberr.Error

// Dispatcher reads the packet id and the client's current phase to select a
// typed body parser and a handler (spec.md §4.5).
type Dispatcher struct {
	arenas   *arena.Pair
	sendPool *bufpool.Pool
}

// NewDispatcher builds a Dispatcher. arenas is the tick-arena pair decoded
// records are copied into; sendPool is the protocol-send buffer pool
// handlers compose their replies into.
func NewDispatcher(arenas *arena.Pair, sendPool *bufpool.Pool) *Dispatcher {
	return &Dispatcher{arenas: arenas, sendPool: sendPool}
}

// Dispatch reads the leading packet-id VarInt from body and routes to the
// handler selected by (client.Phase, id).
func (d *Dispatcher) Dispatch(client *ClientState, body []byte, send Send) liberr.Error {
	id, n, err := protocol.ReadVarInt(body)
	if err.IsError() {
		return err.Trace()
	}
	if n < 0 {
		return liberr.NewProtocol("packet id varint not fully present in a dispatched body")
	}
	fields := body[n:]

	switch client.Phase {
	case Handshaking:
		return d.dispatchHandshaking(client, id, fields)
	case Status:
		return d.dispatchStatus(client, id, fields, send)
	case Login:
		return d.dispatchLogin(client, id, fields, send)
	case Play:
		return d.dispatchPlay(client, id, fields)
	default:
		return liberr.New(liberr.CheckFailed, "client in unrecognized phase %d", int(client.Phase)).Trace()
	}
}

// record copies size bytes' worth of decoded fields into the current tick
// arena, following the take_current -> alloc -> drop_current pattern of
// spec.md §4.5. The body buffer that was read from may already be back in
// its pool's free list by the time later-tick code wants the decoded
// values, so the arena is where a decoded packet actually lives past this
// call.
func (d *Dispatcher) record(size int) ([]byte, liberr.Error) {
	h := d.arenas.TakeCurrent()
	defer d.arenas.DropCurrent(h)

	buf, ok := h.Arena().AllocLocked(size)
	if !ok {
		return nil, liberr.New(liberr.CheckFailed, "tick arena exhausted allocating a %d-byte record", size).Trace()
	}
	return buf, liberr.None
}

// sendBody checks out a protocol-send buffer, composes build(buf[:0]) into
// it, and hands the result to send.
func (d *Dispatcher) sendBody(build func(dst []byte) []byte, send Send) liberr.Error {
	buf, err := d.sendPool.Take()
	if err.IsError() {
		return err.Trace()
	}

	out := build(buf[:0])
	return send(out)
}
