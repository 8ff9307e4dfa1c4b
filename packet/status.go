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
	"fmt"

	"github.com/sabouaram/embercore/protocol"

	liberr "github.com/sabouaram/embercore/errors"
)

const (
	idPingStart = 0x00
	idPing      = 0x01

	idServerInfo = 0x00
	idPong       = 0x01
)

// statusJSON is the literal status response body spec.md §8 scenario 1
// requires: version 1.18.1, protocol 757, description "Hello World!".
var statusJSON = fmt.Sprintf(
	`{"version":{"name":"%s","protocol":%d},"description":{"text":"%s"}}`,
	GameVersion, ProtocolVersion, ServerDescription,
)

func (d *Dispatcher) dispatchStatus(client *ClientState, id int32, fields []byte, send Send) liberr.Error {
	switch id {
	case idPingStart:
		return d.handlePingStart(send)
	case idPing:
		return d.handlePing(fields, send)
	default:
		return liberr.NewProtocol("unexpected packet id %d in Status phase", id)
	}
}

// handlePingStart replies with ServerInfo{response: statusJSON}.
func (d *Dispatcher) handlePingStart(send Send) liberr.Error {
	return d.sendBody(func(dst []byte) []byte {
		dst = protocol.WriteVarInt(dst, idServerInfo)
		return protocol.WriteString(dst, statusJSON)
	}, send)
}

// handlePing echoes time back in Pong{time}.
func (d *Dispatcher) handlePing(fields []byte, send Send) liberr.Error {
	t, err := protocol.ReadInt64(fields)
	if err.IsError() {
		return err.Trace()
	}

	return d.sendBody(func(dst []byte) []byte {
		dst = protocol.WriteVarInt(dst, idPong)
		return protocol.WriteInt64(dst, t)
	}, send)
}
