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

// idSetProtocol is Handshaking's single inbound packet id.
const idSetProtocol = 0x00

// maxServerHostRunes caps server_host at 256 bytes (SPEC_FULL.md §C, the
// original's documented handshake host-string bound): ReadString's cap is
// expressed in runes, so 256/4 keeps the byte cap exact for worst-case
// 4-byte UTF-8.
const maxServerHostRunes = 256 / 4

const (
	nextStateStatus = 1
	nextStateLogin  = 2
)

func (d *Dispatcher) dispatchHandshaking(client *ClientState, id int32, fields []byte) liberr.Error {
	if id != idSetProtocol {
		return liberr.NewProtocol("unexpected packet id %d in Handshaking phase", id)
	}
	return d.handleSetProtocol(client, fields)
}

// handleSetProtocol parses SetProtocol{protocol_version, server_host,
// server_port, next_state} (spec.md §4.5) and advances client.Phase.
func (d *Dispatcher) handleSetProtocol(client *ClientState, fields []byte) liberr.Error {
	version, n, err := protocol.ReadVarInt(fields)
	if err.IsError() {
		return err.Trace()
	}
	if n < 0 {
		return liberr.NewProtocol("protocol_version not fully present in SetProtocol body")
	}
	fields = fields[n:]

	host, n, err := protocol.ReadString(fields, maxServerHostRunes)
	if err.IsError() {
		return err.Trace()
	}
	if n < 0 {
		return liberr.NewProtocol("server_host not fully present in SetProtocol body")
	}
	fields = fields[n:]

	port, err := protocol.ReadUint16(fields)
	if err.IsError() {
		return err.Trace()
	}
	fields = fields[2:]

	nextState, n, err := protocol.ReadVarInt(fields)
	if err.IsError() {
		return err.Trace()
	}
	if n < 0 {
		return liberr.NewProtocol("next_state not fully present in SetProtocol body")
	}

	if nextState != nextStateStatus && nextState != nextStateLogin {
		return liberr.NewProtocol("next_state %d is not Status or Login", nextState)
	}
	if nextState == nextStateLogin && version != ProtocolVersion {
		return liberr.NewProtocol("unsupported protocol version %d, core requires %d", version, ProtocolVersion)
	}

	recordSize := protocol.SizeVarInt(version) + protocol.SizeVarInt(int32(len(host))) + len(host) + 2 + protocol.SizeVarInt(nextState)
	rec, rerr := d.record(recordSize)
	if rerr.IsError() {
		return rerr.Trace()
	}
	rec = rec[:0]
	rec = protocol.WriteVarInt(rec, version)
	rec = protocol.WriteString(rec, host)
	rec = protocol.WriteUint16(rec, port)
	protocol.WriteVarInt(rec, nextState)

	client.HandshakeProtocolVersion = version
	client.ServerHost = host
	client.ServerPort = port

	if nextState == nextStateStatus {
		client.Phase = Status
	} else {
		client.Phase = Login
	}

	return liberr.None
}
