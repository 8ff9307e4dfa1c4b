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

package errors

// CodeError is a numeric classification for EmberCore errors, in the spirit of
// HTTP status codes. It carries the taxonomy defined by the core's error
// handling design: success, internal invariant violation, client-caused
// protocol fault, and wrapped operating-system error.
type CodeError uint16

const (
	// UnknownError is the zero value: no code was attached.
	UnknownError CodeError = 0

	// CheckFailed marks an internal invariant violation (an assertion that
	// should never trip). Fatal wherever it surfaces in the reactor.
	CheckFailed CodeError = 1

	// Protocol marks a client-caused fault: malformed length, oversize
	// packet, invalid next-state, wrong protocol version, or a packet not
	// valid for the client's current phase. Recovery is "disconnect this
	// client only".
	Protocol CodeError = 2

	// OsError marks a failure surfaced from a system call. The underlying
	// errno or error is carried as the error's parent.
	OsError CodeError = 3

	// pkgReactor, pkgBufPool, ... give each component a disjoint range so a
	// bare numeric code printed in a log line can be traced back to its
	// origin without the trace string.
	pkgReactor    CodeError = 100
	pkgBufPool    CodeError = 200
	pkgArena      CodeError = 300
	pkgReceiver   CodeError = 400
	pkgPacket     CodeError = 500
	pkgConfig     CodeError = 600
	pkgGameLoop   CodeError = 700
	pkgHTTPServer CodeError = 800
)

// Uint16 returns the raw numeric value of the code.
func (c CodeError) Uint16() uint16 {
	return uint16(c)
}

// String renders the code's symbolic name where known, falling back to its
// numeric value.
func (c CodeError) String() string {
	switch c {
	case UnknownError:
		return "unknown"
	case CheckFailed:
		return "check-failed"
	case Protocol:
		return "protocol"
	case OsError:
		return "os-error"
	default:
		return c.fallback()
	}
}

func (c CodeError) fallback() string {
	if c >= pkgHTTPServer {
		return "http-server"
	} else if c >= pkgGameLoop {
		return "game-loop"
	} else if c >= pkgConfig {
		return "config"
	} else if c >= pkgPacket {
		return "packet"
	} else if c >= pkgReceiver {
		return "receiver"
	} else if c >= pkgArena {
		return "arena"
	} else if c >= pkgBufPool {
		return "buffer-pool"
	} else if c >= pkgReactor {
		return "reactor"
	}
	return "unknown"
}
