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
	"net"

	"github.com/sabouaram/embercore/packet"
	"github.com/sabouaram/embercore/receiver"
)

// Client is a connected peer (spec.md §3): an accepted socket, its protocol
// phase/state machine, and its own byte-stream receiver. A client appears in
// exactly one reactor slot from accept until disconnect.
type Client struct {
	Handle Handle

	FD   int
	Peer net.IP

	State    packet.ClientState
	Receiver *receiver.Receiver

	// recvBuf is this client's checked-out TCP-recv buffer, reused across
	// every Recv submitted for it (spec.md §4.7's Recv completion handler).
	recvBuf []byte
}

// Handle is the weak (client_id, generation) reference the Design Notes
// require in place of a raw back-pointer from a request descriptor to its
// client (spec.md §9): a completion carries a Handle rather than a *Client,
// and the reactor resolves it through the slot table before acting, so a
// completion that outlives its client's disconnect becomes a no-op instead
// of touching freed state.
type Handle struct {
	ID         uint64
	Generation uint32
}
