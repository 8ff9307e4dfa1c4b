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

// Package packet implements spec.md §4.5's dispatcher and the handshake,
// status, and login handlers; play-phase handling is a stub per §2/§4.5.
package packet

// Phase is one of the four protocol states a Client moves through,
// monotonically, per spec.md §3: Handshaking -> Status | Login -> Play.
type Phase int

const (
	Handshaking Phase = iota
	Status
	Login
	Play
)

func (p Phase) String() string {
	switch p {
	case Handshaking:
		return "handshaking"
	case Status:
		return "status"
	case Login:
		return "login"
	case Play:
		return "play"
	default:
		return "unknown"
	}
}

// ProtocolVersion is the one wire revision this core understands (spec.md
// §1: protocol revision 757).
const ProtocolVersion = 757

// GameVersion is the literal version string advertised in ServerInfo.
const GameVersion = "1.18.1"

// ServerDescription is the literal status description advertised in
// ServerInfo (spec.md §8, scenario 1).
const ServerDescription = "Hello World!"

// ClientState is the subset of spec.md §3's Client data model the
// dispatcher and handlers read and mutate: protocol phase and the fields
// carried by the handshake and login packets.
type ClientState struct {
	Phase Phase

	HandshakeProtocolVersion int32
	ServerHost               string
	ServerPort               uint16

	PlayerName string

	CompressionEnabled bool
	EncryptionEnabled  bool
}
