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

package receiver

import (
	"bytes"
	"testing"

	"github.com/sabouaram/embercore/bufpool"

	liberr "github.com/sabouaram/embercore/errors"
)

func collect(t *testing.T) (Emit, func() [][]byte) {
	t.Helper()
	var got [][]byte
	return func(body []byte, length int) liberr.Error {
		if length != len(body) {
			t.Fatalf("emit length %d does not match body len %d", length, len(body))
		}
		cp := make([]byte, len(body))
		copy(cp, body)
		got = append(got, cp)
		return liberr.None
	}, func() [][]byte { return got }
}

func TestFastPathWholeChunk(t *testing.T) {
	pool := bufpool.New(65536, false)
	r := New(pool, 65536)
	emit, results := collect(t)

	// length=2, body=F0 9F
	input := []byte{0x02, 0xF0, 0x9F}
	if err := r.Consume(input, emit); err.IsError() {
		t.Fatalf("consume: %v", err)
	}

	got := results()
	if len(got) != 1 || !bytes.Equal(got[0], []byte{0xF0, 0x9F}) {
		t.Fatalf("unexpected result: %v", got)
	}
}

func TestFragmentedFramingOneBytePerRecv(t *testing.T) {
	pool := bufpool.New(65536, false)
	r := New(pool, 65536)
	emit, results := collect(t)

	// Two length=2 packets, back to back, delivered as six separate
	// single-byte recvs (spec.md §8.4's fragmentation scenario).
	stream := []byte{0x02, 0xF0, 0x9F, 0x02, 0x98, 0x80}
	for _, b := range stream {
		if err := r.Consume([]byte{b}, emit); err.IsError() {
			t.Fatalf("consume byte %#x: %v", b, err)
		}
	}

	got := results()
	if len(got) != 2 {
		t.Fatalf("expected 2 emitted packets, got %d", len(got))
	}
	if !bytes.Equal(got[0], []byte{0xF0, 0x9F}) {
		t.Fatalf("first packet body = %v, want F0 9F", got[0])
	}
	if !bytes.Equal(got[1], []byte{0x98, 0x80}) {
		t.Fatalf("second packet body = %v, want 98 80", got[1])
	}
}

func TestOversizeRejection(t *testing.T) {
	// spec.md §8.5: VarInt length 0x80 0x80 0x04 (= 65536) followed by any
	// single byte, with max_recv_packet_size=65536, must NOT fail (length
	// is not fully buffered, so this takes the slow path, but 65536 is not
	// strictly greater than the 65536 cap).
	atCapPool := bufpool.New(65536, false)
	atCap := New(atCapPool, 65536)
	emit, _ := collect(t)
	if err := atCap.Consume([]byte{0x80, 0x80, 0x04, 0x01}, emit); err.IsError() {
		t.Fatalf("a declared length exactly at max_recv_packet_size must not be rejected: %v", err)
	}

	// 0x81 0x80 0x04 decodes to length 65537, which strictly exceeds
	// max_recv_packet_size=65536 and must fail with Protocol.
	overCapPool := bufpool.New(65536, false)
	overCap := New(overCapPool, 65536)
	err := overCap.Consume([]byte{0x81, 0x80, 0x04, 0x00}, emit)
	if !err.IsError() || !err.HasCode(liberr.Protocol) {
		t.Fatalf("expected a Protocol error for an over-cap declared length, got %v", err)
	}
}

func TestSlowPathUsesPoolBufferAndReturnsIt(t *testing.T) {
	pool := bufpool.New(8, false)
	r := New(pool, 8)
	emit, results := collect(t)

	// length=5, split across three Consume calls.
	if err := r.Consume([]byte{0x05, 0x01, 0x02}, emit); err.IsError() {
		t.Fatalf("consume: %v", err)
	}
	if depth := pool.Depth(); depth != 0 {
		t.Fatalf("pool buffer should still be checked out mid-body, depth=%d", depth)
	}

	if err := r.Consume([]byte{0x03}, emit); err.IsError() {
		t.Fatalf("consume: %v", err)
	}
	if err := r.Consume([]byte{0x04, 0x05}, emit); err.IsError() {
		t.Fatalf("consume: %v", err)
	}

	got := results()
	if len(got) != 1 || !bytes.Equal(got[0], []byte{0x01, 0x02, 0x03, 0x04, 0x05}) {
		t.Fatalf("unexpected slow-path result: %v", got)
	}
	if depth := pool.Depth(); depth != 1 {
		t.Fatalf("expected the pool buffer to have been returned, depth=%d", depth)
	}
}

func TestDispatcherErrorResetsToReadLength(t *testing.T) {
	pool := bufpool.New(4, false)
	r := New(pool, 4)

	failing := func(body []byte, length int) liberr.Error {
		return liberr.NewProtocol("dispatcher rejected body")
	}

	// length=3, fits the fast path: body is a slice of input, so no pool
	// buffer is ever taken, but the dispatcher error must still reset
	// the receiver to ReadLength for the next packet.
	if err := r.Consume([]byte{0x03, 0x01, 0x02, 0x03}, failing); !err.IsError() {
		t.Fatal("expected the dispatcher's error to propagate")
	}
	if r.state != StateReadLength {
		t.Fatalf("expected reset to StateReadLength, got %v", r.state)
	}

	ok, results := collect(t)
	if err := r.Consume([]byte{0x01, 0x09}, ok); err.IsError() {
		t.Fatalf("receiver should be usable again after reset: %v", err)
	}
	if got := results(); len(got) != 1 || got[0][0] != 0x09 {
		t.Fatalf("unexpected result after reset: %v", got)
	}
}

func TestVarIntLongerThanFiveBytesIsProtocolError(t *testing.T) {
	pool := bufpool.New(8, false)
	r := New(pool, 8)
	emit, _ := collect(t)

	// Six continuation bytes with the high bit always set, no terminator.
	overlong := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80}
	err := r.Consume(overlong, emit)
	if !err.IsError() || !err.HasCode(liberr.Protocol) {
		t.Fatal("expected a Protocol error for an overlong VarInt")
	}
	if r.state != StateReadLength {
		t.Fatalf("expected reset to StateReadLength, got %v", r.state)
	}
}
