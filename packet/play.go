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
	"github.com/sabouaram/embercore/protocol"

	liberr "github.com/sabouaram/embercore/errors"
)

// idKeepAlive is the one Play-phase id this core recognizes by shape
// (SPEC_FULL.md §C): a VarLong payload, acknowledged without timeout/kick
// logic. Every other Play id is a stub.
const idKeepAlive = 0x21

// StrictPlay, when true, makes dispatchPlay return Protocol for unknown
// Play ids instead of silently dropping them (spec.md §4.5: "it either
// drops them or returns Protocol per configuration").
var StrictPlay = false

func (d *Dispatcher) dispatchPlay(client *ClientState, id int32, fields []byte) liberr.Error {
	if id == idKeepAlive {
		return d.handleKeepAlive(fields)
	}

	if StrictPlay {
		return liberr.NewProtocol("unhandled packet id %d in Play phase", id)
	}
	return liberr.None
}

// handleKeepAlive records the VarLong shape of a keep-alive payload without
// implementing any timeout/disconnect policy (SPEC_FULL.md §C).
func (d *Dispatcher) handleKeepAlive(fields []byte) liberr.Error {
	id, n, err := protocol.ReadVarLong(fields)
	if err.IsError() {
		return err.Trace()
	}
	if n < 0 {
		return liberr.NewProtocol("keep-alive id not fully present")
	}

	rec, rerr := d.record(n)
	if rerr.IsError() {
		return rerr.Trace()
	}
	protocol.WriteVarLong(rec[:0], id)

	return liberr.None
}
