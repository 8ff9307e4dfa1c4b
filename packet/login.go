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

const (
	idLoginStart          = 0x00
	idEncryptionResponse  = 0x01
	idLoginPluginResponse = 0x02
)

// maxPlayerNameRunes caps LoginStart's name field at 16 bytes (SPEC_FULL.md
// §C, the original's player-name bound).
const maxPlayerNameRunes = 16 / 4

func (d *Dispatcher) dispatchLogin(client *ClientState, id int32, fields []byte, send Send) liberr.Error {
	switch id {
	case idLoginStart:
		return d.handleLoginStart(client, fields)
	case idEncryptionResponse, idLoginPluginResponse:
		// The core never sends EncryptionRequest or LoginPluginRequest,
		// so a reply to either is always unsolicited (spec.md §4.5).
		return liberr.NewProtocol("unsolicited packet id %d in Login phase", id)
	default:
		return liberr.NewProtocol("unexpected packet id %d in Login phase", id)
	}
}

// handleLoginStart parses and stores name; completing the join (assigning a
// UUID, sending LoginSuccess, advancing to Play) is a collaborator's job per
// spec.md §4.5 and SPEC_FULL.md §C — this handler is a no-op placeholder
// beyond recording the field.
func (d *Dispatcher) handleLoginStart(client *ClientState, fields []byte) liberr.Error {
	name, n, err := protocol.ReadString(fields, maxPlayerNameRunes)
	if err.IsError() {
		return err.Trace()
	}
	if n < 0 {
		return liberr.NewProtocol("name not fully present in LoginStart body")
	}

	recordSize := protocol.SizeVarInt(int32(len(name))) + len(name)
	rec, rerr := d.record(recordSize)
	if rerr.IsError() {
		return rerr.Trace()
	}
	protocol.WriteString(rec[:0], name)

	client.PlayerName = name
	return liberr.None
}
