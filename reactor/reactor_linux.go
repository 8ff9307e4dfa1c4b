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

//go:build linux

package reactor

import (
	"net"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/sabouaram/embercore/bufpool"
	"github.com/sabouaram/embercore/config"
	"github.com/sabouaram/embercore/logger"
	"github.com/sabouaram/embercore/packet"
	"github.com/sabouaram/embercore/protocol"
	"github.com/sabouaram/embercore/receiver"

	liberr "github.com/sabouaram/embercore/errors"
)

// slot holds one client table entry. generation increments every time the
// slot is recycled so a stale Handle resolves to (nil, false) instead of a
// different client that now occupies the same slot (spec.md §9).
type slot struct {
	generation uint32
	client     *Client
}

// Reactor is the single-threaded completion loop described in spec.md §4.7:
// it owns the listening socket, the in-flight request-descriptor pool, and
// the membership list of connected clients.
type Reactor struct {
	ring *ring

	listenFD int

	tcpRecvPool *bufpool.Pool
	protoRecv   *bufpool.Pool
	protoSend   *bufpool.Pool

	maxRecvPacketSize int

	dispatcher *packet.Dispatcher
	log        *logger.Logger

	slots    []slot
	freeSlot []uint32

	reqs *requestPool

	running bool
}

// New opens and binds the listening socket per spec.md §4.7's Startup
// paragraph (address reuse, backlog from config, a completion queue sized
// max_connections+1) and builds a Reactor ready for Run.
func New(cfg config.Config, dispatcher *packet.Dispatcher, tcpRecvPool, protoRecv, protoSend *bufpool.Pool, log *logger.Logger) (*Reactor, liberr.Error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, liberr.NewOs(err).Trace()
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return nil, liberr.NewOs(err).Trace()
	}

	addr := &unix.SockaddrInet4{Port: int(cfg.Port)}
	if err := unix.Bind(fd, addr); err != nil {
		_ = unix.Close(fd)
		return nil, liberr.NewOs(err).Trace()
	}

	if err := unix.Listen(fd, int(cfg.MaxServerListPending)); err != nil {
		_ = unix.Close(fd)
		return nil, liberr.NewOs(err).Trace()
	}

	entries := cfg.MaxConnections + 1
	r, rerr := newRing(entries)
	if rerr.IsError() {
		_ = unix.Close(fd)
		return nil, rerr.Trace()
	}

	return &Reactor{
		ring:              r,
		listenFD:          fd,
		tcpRecvPool:       tcpRecvPool,
		protoRecv:         protoRecv,
		protoSend:         protoSend,
		maxRecvPacketSize: int(cfg.MaxRecvPacketSize),
		dispatcher:        dispatcher,
		log:               log,
		reqs:              newRequestPool(int(entries)),
		slots:             make([]slot, 0, cfg.MaxConnections),
	}, liberr.None
}

// Close tears down the ring and the listening socket.
func (rx *Reactor) Close() {
	rx.ring.close()
	_ = unix.Close(rx.listenFD)
}

// Run submits the initial Accept and drives the completion loop until
// stopped is set (spec.md §4.7's Steady-state paragraph; "running = false"
// is the Design Notes' process-shutdown model).
func (rx *Reactor) Run(stopped *bool) liberr.Error {
	rx.running = true

	if err := rx.submitAccept(); err.IsError() {
		return err.Trace()
	}

	for rx.running && !*stopped {
		if _, err := rx.ring.commit(1); err.IsError() {
			return err.Trace()
		}

		rx.ring.reap(rx.handleCompletion)
	}

	return liberr.None
}

func (rx *Reactor) handleCompletion(userData uint64, res int32, _ uint32) {
	idx := uint32(userData)
	req := rx.reqs.at(idx)
	kind := req.kind

	switch kind {
	case requestAccept:
		rx.onAccept(res)
	case requestRecv:
		rx.onRecv(req.client, req.buf, res)
	case requestSend:
		rx.onSend(req, res)
	}

	rx.reqs.release(idx)
}

func (rx *Reactor) submitAccept() liberr.Error {
	idx := rx.reqs.take()
	*rx.reqs.at(idx) = request{kind: requestAccept}

	entry, ok := rx.ring.prepare()
	if !ok {
		rx.reqs.release(idx)
		return errNoDescriptor().Trace()
	}

	*entry = sqe{
		opcode:   opAccept,
		fd:       int32(rx.listenFD),
		userData: uint64(idx),
	}
	return liberr.None
}

// onAccept handles an Accept completion. A negative result is fatal per
// spec.md §4.7 ("if the result is negative, propagate as fatal"); this core
// logs it fatal through the shared logger instead of panicking, matching
// the teacher's fatal-log-then-exit idiom.
func (rx *Reactor) onAccept(res int32) {
	if res < 0 {
		rx.log.Fatal("accept failed", liberr.NewOs(unix.Errno(-res)), nil)
		rx.running = false
		return
	}

	fd := int(res)
	sa, saErr := unix.Getpeername(fd)
	var peer net.IP
	if saErr == nil {
		if sa4, ok := sa.(*unix.SockaddrInet4); ok {
			peer = net.IP(sa4.Addr[:])
		} else {
			// Require IPv4 (spec.md §4.7); anything else is closed immediately.
			_ = unix.Close(fd)
			_ = rx.submitAccept()
			return
		}
	}

	buf, err := rx.tcpRecvPool.Take()
	if err.IsError() {
		rx.log.Fatal("tcp-recv pool exhausted on accept", err, nil)
		rx.running = false
		return
	}

	id := rx.allocClient()
	sl := &rx.slots[id]
	sl.client = &Client{
		Handle:   Handle{ID: id, Generation: sl.generation},
		FD:       fd,
		Peer:     peer,
		State:    packet.ClientState{Phase: packet.Handshaking},
		Receiver: receiver.New(rx.protoRecv, rx.maxRecvPacketSize),
		recvBuf:  buf,
	}

	acceptedConnections.Inc()
	activeConnections.Inc()

	rx.submitRecv(sl.client)
	_ = rx.submitAccept()
}

func (rx *Reactor) submitRecv(c *Client) {
	idx := rx.reqs.take()
	*rx.reqs.at(idx) = request{kind: requestRecv, client: c.Handle, buf: c.recvBuf}

	entry, ok := rx.ring.prepare()
	if !ok {
		rx.reqs.release(idx)
		rx.disconnect(c)
		return
	}

	*entry = sqe{
		opcode:   opRecv,
		fd:       int32(c.FD),
		addr:     uint64(uintptr(unsafe.Pointer(&c.recvBuf[0]))),
		length:   uint32(len(c.recvBuf)),
		userData: uint64(idx),
	}
}

func (rx *Reactor) onRecv(h Handle, buf []byte, res int32) {
	c, ok := rx.resolve(h)
	if !ok {
		return
	}

	if res <= 0 {
		rx.disconnect(c)
		return
	}

	n := int(res)
	send := func(body []byte) liberr.Error { return rx.sendPacket(c, body) }

	err := c.Receiver.Consume(buf[:n], func(body []byte, _ int) liberr.Error {
		return rx.dispatcher.Dispatch(&c.State, body, send)
	})
	if err.IsError() {
		if err.HasCode(liberr.Protocol) {
			rx.disconnect(c)
			return
		}
		rx.log.Fatal("non-protocol error from receiver loop", err, nil)
		rx.running = false
		return
	}

	rx.submitRecv(c)
}

// sendPacket builds [length varint, body] (and the compression-stub
// extension, never actually taken since compression is carried as an
// always-false flag) and submits a vectored write, per spec.md §4.7.
func (rx *Reactor) sendPacket(c *Client, body []byte) liberr.Error {
	scratch, err := rx.protoSend.Take()
	if err.IsError() {
		return err.Trace()
	}
	scratch = protocol.WriteVarInt(scratch[:0], int32(len(body)))

	idx := rx.reqs.take()
	req := rx.reqs.at(idx)
	*req = request{
		kind:     requestSend,
		client:   c.Handle,
		sendBufs: [][]byte{scratch[:cap(scratch)], body[:cap(body)]},
		sendPool: &poolRef{put: rx.protoSend.Put},
	}

	entry, ok := rx.ring.prepare()
	if !ok {
		rx.reqs.release(idx)
		rx.protoSend.Put(scratch[:cap(scratch)])
		return errNoDescriptor().Trace()
	}

	iovecs := []unix.Iovec{
		{Base: &scratch[0], Len: uint64(len(scratch))},
		{Base: &body[0], Len: uint64(len(body))},
	}

	*entry = sqe{
		opcode:   opWritev,
		fd:       int32(c.FD),
		addr:     uint64(uintptr(unsafe.Pointer(&iovecs[0]))),
		length:   uint32(len(iovecs)),
		userData: uint64(idx),
	}

	return liberr.None
}

func (rx *Reactor) onSend(req *request, res int32) {
	for _, buf := range req.sendBufs {
		if req.sendPool != nil {
			req.sendPool.put(buf)
		}
	}

	if res <= 0 {
		c, ok := rx.resolve(req.client)
		if ok {
			rx.disconnect(c)
		}
	}
}

// disconnect removes the client from the membership list, returns its
// TCP-recv buffer, and shuts down both directions of the socket (spec.md
// §4.7). The slot's generation is bumped so any later completion carrying
// this client's old Handle resolves to nothing.
func (rx *Reactor) disconnect(c *Client) {
	sl := &rx.slots[c.Handle.ID]
	if sl.client != c || sl.generation != c.Handle.Generation {
		return
	}

	rx.tcpRecvPool.Put(c.recvBuf)
	_ = unix.Shutdown(c.FD, unix.SHUT_RDWR)
	_ = unix.Close(c.FD)

	sl.client = nil
	sl.generation++
	rx.freeSlot = append(rx.freeSlot, uint32(c.Handle.ID))

	disconnectedConnections.Inc()
	activeConnections.Dec()
}

func (rx *Reactor) resolve(h Handle) (*Client, bool) {
	if int(h.ID) >= len(rx.slots) {
		return nil, false
	}
	sl := &rx.slots[h.ID]
	if sl.client == nil || sl.generation != h.Generation {
		return nil, false
	}
	return sl.client, true
}

func (rx *Reactor) allocClient() uint64 {
	if n := len(rx.freeSlot); n > 0 {
		id := rx.freeSlot[n-1]
		rx.freeSlot = rx.freeSlot[:n-1]
		return uint64(id)
	}

	rx.slots = append(rx.slots, slot{})
	return uint64(len(rx.slots) - 1)
}

// OpenConnections reports the number of clients currently in the membership
// list, for metrics exposition.
func (rx *Reactor) OpenConnections() int {
	n := 0
	for i := range rx.slots {
		if rx.slots[i].client != nil {
			n++
		}
	}
	return n
}

// Port reports the listening socket's bound port, useful when New was
// called with Port 0 to let the kernel choose one (as tests do).
func (rx *Reactor) Port() (uint16, liberr.Error) {
	sa, err := unix.Getsockname(rx.listenFD)
	if err != nil {
		return 0, liberr.NewOs(err).Trace()
	}
	sa4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return 0, liberr.NewCheckFailed("listening socket is not IPv4")
	}
	return uint16(sa4.Port), liberr.None
}
