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
	"strings"
	"testing"

	"github.com/sabouaram/embercore/arena"
	"github.com/sabouaram/embercore/bufpool"
	"github.com/sabouaram/embercore/protocol"

	liberr "github.com/sabouaram/embercore/errors"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	pair, err := arena.NewPair(1 << 16)
	if err.IsError() {
		t.Fatalf("arena.NewPair: %v", err)
	}
	pool := bufpool.New(4096, true)
	return NewDispatcher(pair, pool)
}

func setProtocolBody(version, nextState int32, host string, port uint16) []byte {
	var b []byte
	b = protocol.WriteVarInt(b, idSetProtocol)
	b = protocol.WriteVarInt(b, version)
	b = protocol.WriteString(b, host)
	b = protocol.WriteUint16(b, port)
	b = protocol.WriteVarInt(b, nextState)
	return b
}

func TestHandshakeAdvancesPhase(t *testing.T) {
	d := newTestDispatcher(t)
	c := &ClientState{Phase: Handshaking}

	body := setProtocolBody(ProtocolVersion, nextStateLogin, "localhost", 25565)
	if err := d.Dispatch(c, body, nil); err.IsError() {
		t.Fatalf("dispatch: %v", err)
	}
	if c.Phase != Login {
		t.Fatalf("expected phase Login, got %v", c.Phase)
	}
	if c.ServerHost != "localhost" || c.ServerPort != 25565 {
		t.Fatalf("unexpected client state: %+v", c)
	}
}

func TestHandshakeWrongVersionOnLogin(t *testing.T) {
	d := newTestDispatcher(t)
	c := &ClientState{Phase: Handshaking}

	body := setProtocolBody(756, nextStateLogin, "x", 25565)
	err := d.Dispatch(c, body, nil)
	if !err.IsError() || !err.HasCode(liberr.Protocol) {
		t.Fatalf("expected a Protocol error, got %v", err)
	}
	if !strings.Contains(err.Error(), "756") {
		t.Fatalf("expected error to mention the offending version, got %q", err.Error())
	}
}

func TestHandshakeWrongVersionOnStatusIsAllowed(t *testing.T) {
	d := newTestDispatcher(t)
	c := &ClientState{Phase: Handshaking}

	// The version check only applies when transitioning to Login
	// (spec.md §4.5): a status ping from a mismatched client still works.
	body := setProtocolBody(756, nextStateStatus, "x", 25565)
	if err := d.Dispatch(c, body, nil); err.IsError() {
		t.Fatalf("dispatch: %v", err)
	}
	if c.Phase != Status {
		t.Fatalf("expected phase Status, got %v", c.Phase)
	}
}

func TestStatusPingStartReturnsServerInfo(t *testing.T) {
	d := newTestDispatcher(t)
	c := &ClientState{Phase: Status}

	var sent []byte
	send := func(body []byte) liberr.Error {
		sent = append([]byte(nil), body...)
		return liberr.None
	}

	var body []byte
	body = protocol.WriteVarInt(body, idPingStart)
	if err := d.Dispatch(c, body, send); err.IsError() {
		t.Fatalf("dispatch: %v", err)
	}

	id, n, err := protocol.ReadVarInt(sent)
	if err.IsError() || id != idServerInfo {
		t.Fatalf("expected ServerInfo id, got %d (err=%v)", id, err)
	}
	response, _, err := protocol.ReadString(sent[n:], 1<<20)
	if err.IsError() {
		t.Fatalf("read response: %v", err)
	}
	if !strings.Contains(response, GameVersion) || !strings.Contains(response, ServerDescription) {
		t.Fatalf("unexpected status response: %s", response)
	}
}

func TestStatusPingEchoesTime(t *testing.T) {
	d := newTestDispatcher(t)
	c := &ClientState{Phase: Status}

	var sent []byte
	send := func(body []byte) liberr.Error {
		sent = append([]byte(nil), body...)
		return liberr.None
	}

	const want = int64(0x1122334455667788)
	var body []byte
	body = protocol.WriteVarInt(body, idPing)
	body = protocol.WriteInt64(body, want)
	if err := d.Dispatch(c, body, send); err.IsError() {
		t.Fatalf("dispatch: %v", err)
	}

	id, n, err := protocol.ReadVarInt(sent)
	if err.IsError() || id != idPong {
		t.Fatalf("expected Pong id, got %d (err=%v)", id, err)
	}
	got, err := protocol.ReadInt64(sent[n:])
	if err.IsError() || got != want {
		t.Fatalf("expected echoed time %#x, got %#x (err=%v)", want, got, err)
	}
}

func TestLoginStartRecordsName(t *testing.T) {
	d := newTestDispatcher(t)
	c := &ClientState{Phase: Login}

	var body []byte
	body = protocol.WriteVarInt(body, idLoginStart)
	body = protocol.WriteString(body, "Steve")
	if err := d.Dispatch(c, body, nil); err.IsError() {
		t.Fatalf("dispatch: %v", err)
	}
	if c.PlayerName != "Steve" {
		t.Fatalf("expected PlayerName Steve, got %q", c.PlayerName)
	}
}

func TestLoginEncryptionResponseAlwaysFails(t *testing.T) {
	d := newTestDispatcher(t)
	c := &ClientState{Phase: Login}

	var body []byte
	body = protocol.WriteVarInt(body, idEncryptionResponse)
	err := d.Dispatch(c, body, nil)
	if !err.IsError() || !err.HasCode(liberr.Protocol) {
		t.Fatalf("expected a Protocol error, got %v", err)
	}
}

func TestPlayUnknownIDDroppedByDefault(t *testing.T) {
	d := newTestDispatcher(t)
	c := &ClientState{Phase: Play}

	var body []byte
	body = protocol.WriteVarInt(body, 0x7f)
	if err := d.Dispatch(c, body, nil); err.IsError() {
		t.Fatalf("expected unknown Play ids to be dropped by default, got %v", err)
	}
}

func TestPlayKeepAliveStub(t *testing.T) {
	d := newTestDispatcher(t)
	c := &ClientState{Phase: Play}

	var body []byte
	body = protocol.WriteVarInt(body, idKeepAlive)
	body = protocol.WriteVarLong(body, 123456789)
	if err := d.Dispatch(c, body, nil); err.IsError() {
		t.Fatalf("dispatch: %v", err)
	}
}
