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

// Package reactor implements spec.md §4.7's I/O reactor over io_uring: a
// completion-based kernel interface (submission queue + completion queue)
// reached directly through golang.org/x/sys/unix raw syscalls, with no cgo
// and no liburing dependency.
package reactor

import (
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"

	liberr "github.com/sabouaram/embercore/errors"
)

// Raw syscall numbers for x86_64 Linux; io_uring has no wrapper in
// golang.org/x/sys/unix, so the core issues these directly the same way the
// small pure-Go io_uring libraries in the wild do.
const (
	sysIoUringSetup    = 425
	sysIoUringEnter    = 426
	sysIoUringRegister = 427
)

// Submission-queue entry opcodes this core issues.
const (
	opWritev = 2
	opAccept = 13
	opRecv   = 27
)

const enterGetEvents = 1

// mmap offsets into the fd returned by io_uring_setup (linux/io_uring.h).
const (
	offSQRing = 0x00000000
	offCQRing = 0x08000000
	offSQEs   = 0x10000000
)

// sqOffsets mirrors struct io_sqring_offsets.
type sqOffsets struct {
	head        uint32
	tail        uint32
	ringMask    uint32
	ringEntries uint32
	flags       uint32
	dropped     uint32
	array       uint32
	resv1       uint32
	resv2       uint64
}

// cqOffsets mirrors struct io_cqring_offsets.
type cqOffsets struct {
	head        uint32
	tail        uint32
	ringMask    uint32
	ringEntries uint32
	overflow    uint32
	cqes        uint32
	flags       uint32
	resv1       uint32
	resv2       uint64
}

// uringParams mirrors struct io_uring_params.
type uringParams struct {
	sqEntries    uint32
	cqEntries    uint32
	flags        uint32
	sqThreadCPU  uint32
	sqThreadIdle uint32
	features     uint32
	wqFD         uint32
	resv         [3]uint32
	sqOff        sqOffsets
	cqOff        cqOffsets
}

// sqe mirrors struct io_uring_sqe (64 bytes).
type sqe struct {
	opcode   uint8
	flags    uint8
	ioprio   uint16
	fd       int32
	off      uint64
	addr     uint64
	length   uint32
	opFlags  uint32
	userData uint64
	bufIndex uint16
	personality uint16
	spliceFDIn  int32
	pad         [2]uint64
}

// cqe mirrors struct io_uring_cqe (16 bytes).
type cqe struct {
	userData uint64
	res      int32
	flags    uint32
}

// ring is a set up io_uring instance: the submission ring, the completion
// ring, and the flat sqe array they both index into.
type ring struct {
	fd int

	sqRing    []byte
	cqRing    []byte
	sqesBytes []byte

	sqHead        *uint32
	sqTail        *uint32
	sqRingMask    uint32
	sqRingEntries uint32
	sqArray       []uint32
	sqes          []sqe

	cqHead        *uint32
	cqTail        *uint32
	cqRingMask    uint32
	cqRingEntries uint32
	cqes          []cqe

	// sqFill is the reactor's own unsynchronized producer cursor: the
	// reactor is single-threaded, so no lock is needed to compute the
	// next sqe slot.
	sqFill uint32
}

func newRing(entries uint32) (*ring, liberr.Error) {
	var params uringParams
	fd, _, errno := unix.Syscall(sysIoUringSetup, uintptr(entries), uintptr(unsafe.Pointer(&params)), 0)
	if errno != 0 {
		return nil, liberr.NewOs(errno).Trace()
	}

	r := &ring{fd: int(fd)}

	sqRingSize := params.sqOff.array + params.sqEntries*4
	cqRingSize := params.cqOff.cqes + params.cqEntries*uint32(unsafe.Sizeof(cqe{}))

	sqRing, err := unix.Mmap(r.fd, offSQRing, int(sqRingSize), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_POPULATE)
	if err != nil {
		_ = unix.Close(r.fd)
		return nil, liberr.NewOs(err).Trace()
	}
	r.sqRing = sqRing

	cqRing, err := unix.Mmap(r.fd, offCQRing, int(cqRingSize), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_POPULATE)
	if err != nil {
		_ = unix.Munmap(r.sqRing)
		_ = unix.Close(r.fd)
		return nil, liberr.NewOs(err).Trace()
	}
	r.cqRing = cqRing

	sqesSize := int(params.sqEntries) * int(unsafe.Sizeof(sqe{}))
	sqesBytes, err := unix.Mmap(r.fd, offSQEs, sqesSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_POPULATE)
	if err != nil {
		_ = unix.Munmap(r.cqRing)
		_ = unix.Munmap(r.sqRing)
		_ = unix.Close(r.fd)
		return nil, liberr.NewOs(err).Trace()
	}
	r.sqesBytes = sqesBytes

	sqBase := unsafe.Pointer(&sqRing[0])
	r.sqHead = (*uint32)(unsafe.Add(sqBase, params.sqOff.head))
	r.sqTail = (*uint32)(unsafe.Add(sqBase, params.sqOff.tail))
	r.sqRingMask = *(*uint32)(unsafe.Add(sqBase, params.sqOff.ringMask))
	r.sqRingEntries = *(*uint32)(unsafe.Add(sqBase, params.sqOff.ringEntries))
	r.sqArray = unsafe.Slice((*uint32)(unsafe.Add(sqBase, params.sqOff.array)), r.sqRingEntries)

	cqBase := unsafe.Pointer(&cqRing[0])
	r.cqHead = (*uint32)(unsafe.Add(cqBase, params.cqOff.head))
	r.cqTail = (*uint32)(unsafe.Add(cqBase, params.cqOff.tail))
	r.cqRingMask = *(*uint32)(unsafe.Add(cqBase, params.cqOff.ringMask))
	r.cqRingEntries = *(*uint32)(unsafe.Add(cqBase, params.cqOff.ringEntries))
	r.cqes = unsafe.Slice((*cqe)(unsafe.Add(cqBase, params.cqOff.cqes)), r.cqRingEntries)

	r.sqes = unsafe.Slice((*sqe)(unsafe.Pointer(&sqesBytes[0])), params.sqEntries)

	return r, liberr.None
}

func (r *ring) close() {
	_ = unix.Munmap(r.sqesBytes)
	_ = unix.Munmap(r.cqRing)
	_ = unix.Munmap(r.sqRing)
	_ = unix.Close(r.fd)
}

// prepare claims the next submission slot and returns it for the caller to
// fill; it does not publish the slot to the kernel (that's commit's job),
// so a full batch of requests can be prepared before one io_uring_enter.
func (r *ring) prepare() (*sqe, bool) {
	if r.sqFill-atomic.LoadUint32(r.sqHead) >= r.sqRingEntries {
		return nil, false
	}
	idx := r.sqFill & r.sqRingMask
	r.sqArray[idx] = idx
	r.sqFill++
	return &r.sqes[idx], true
}

// commit publishes every slot prepared since the last commit and asks the
// kernel to submit them, optionally blocking for at least minComplete
// completions.
func (r *ring) commit(minComplete uint32) (uint32, liberr.Error) {
	toSubmit := r.sqFill - atomic.LoadUint32(r.sqTail)
	atomic.StoreUint32(r.sqTail, r.sqFill)

	var flags uintptr
	if minComplete > 0 {
		flags = enterGetEvents
	}

	n, _, errno := unix.Syscall6(sysIoUringEnter, uintptr(r.fd), uintptr(toSubmit), uintptr(minComplete), flags, 0, 0)
	if errno != 0 {
		return 0, liberr.NewOs(errno).Trace()
	}
	return uint32(n), liberr.None
}

// reap drains every completion currently posted, calling handle(userData,
// res, flags) for each, then advances the consumer head.
func (r *ring) reap(handle func(userData uint64, res int32, flags uint32)) {
	head := atomic.LoadUint32(r.cqHead)
	tail := atomic.LoadUint32(r.cqTail)

	for head != tail {
		c := r.cqes[head&r.cqRingMask]
		handle(c.userData, c.res, c.flags)
		head++
	}

	atomic.StoreUint32(r.cqHead, head)
}
