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

// Package protocol implements the wire codec primitives of spec.md §4.1:
// big-endian fixed-width scalars, VarInt/VarLong group-encoded integers, and
// the 16-byte UUID layout. Every reader here is allocation-free on the fast
// path so the receiver's per-packet dispatch does not pay a heap allocation
// per field.
package protocol

import liberr "github.com/sabouaram/embercore/errors"

const (
	// maxVarIntBytes is the most bytes a conforming VarInt may occupy; a
	// longer run is a Protocol error (spec.md §4.1, §8).
	maxVarIntBytes = 5
	// maxVarLongBytes is VarLong's equivalent bound.
	maxVarLongBytes = 10

	segmentBits = 0x7f
	continueBit = 0x80
)

// VarIntDecoder is a one-byte-at-a-time resumable VarInt reader, the
// primitive the receiver's ReadLength state (spec.md §4.4) is built on: it
// survives being fed bytes across many separate TCP reads without losing
// partial progress.
type VarIntDecoder struct {
	value uint32
	shift uint
}

// Reset clears accumulated partial state, as the receiver does on packet
// completion or on error (spec.md: "no packet in progress").
func (d *VarIntDecoder) Reset() {
	d.value = 0
	d.shift = 0
}

// Feed consumes one more wire byte. done is true once the VarInt is
// complete, in which case value holds the decoded result. An error is
// returned, and the decoder is reset, if more than maxVarIntBytes groups are
// consumed without a terminator (spec.md §4.1, §8).
func (d *VarIntDecoder) Feed(b byte) (value int32, done bool, err liberr.Error) {
	d.value |= uint32(b&segmentBits) << d.shift

	if b&continueBit == 0 {
		v := int32(d.value)
		d.Reset()
		return v, true, liberr.None
	}

	d.shift += 7
	if d.shift/7 >= maxVarIntBytes {
		d.Reset()
		return 0, false, liberr.NewProtocol("varint exceeds %d bytes without a terminator", maxVarIntBytes)
	}

	return 0, false, liberr.None
}

// ReadVarInt decodes a whole VarInt from the start of b, returning the value
// and the number of bytes consumed. It returns a negative byte count if b is
// exhausted before a terminator is seen, so callers (e.g. a full-buffer fast
// path) can detect "needs more input" without allocating a decoder.
func ReadVarInt(b []byte) (value int32, n int, err liberr.Error) {
	var d VarIntDecoder

	for i := 0; i < len(b); i++ {
		v, done, e := d.Feed(b[i])
		if e.IsError() {
			return 0, 0, e.Trace()
		}
		if done {
			return v, i + 1, liberr.None
		}
	}

	return 0, -1, liberr.None
}

// WriteVarInt appends v's VarInt encoding to dst and returns the extended
// slice. The terminator byte is always emitted (SPEC_FULL.md §D.4 — the
// original source's writer drops it; EmberCore's does not).
func WriteVarInt(dst []byte, v int32) []byte {
	u := uint32(v)
	for {
		if u&^uint32(segmentBits) == 0 {
			return append(dst, byte(u))
		}
		dst = append(dst, byte(u&segmentBits)|continueBit)
		u >>= 7
	}
}

// SizeVarInt returns the number of bytes WriteVarInt would emit for v,
// without allocating.
func SizeVarInt(v int32) int {
	u := uint32(v)
	n := 1
	for u&^uint32(segmentBits) != 0 {
		n++
		u >>= 7
	}
	return n
}

// VarLongDecoder is VarInt's 64-bit counterpart, bounded at maxVarLongBytes.
type VarLongDecoder struct {
	value uint64
	shift uint
}

// Reset clears accumulated partial state.
func (d *VarLongDecoder) Reset() {
	d.value = 0
	d.shift = 0
}

// Feed consumes one more wire byte; see VarIntDecoder.Feed.
func (d *VarLongDecoder) Feed(b byte) (value int64, done bool, err liberr.Error) {
	d.value |= uint64(b&segmentBits) << d.shift

	if b&continueBit == 0 {
		v := int64(d.value)
		d.Reset()
		return v, true, liberr.None
	}

	d.shift += 7
	if d.shift/7 >= maxVarLongBytes {
		d.Reset()
		return 0, false, liberr.NewProtocol("varlong exceeds %d bytes without a terminator", maxVarLongBytes)
	}

	return 0, false, liberr.None
}

// ReadVarLong decodes a whole VarLong from the start of b; see ReadVarInt.
func ReadVarLong(b []byte) (value int64, n int, err liberr.Error) {
	var d VarLongDecoder

	for i := 0; i < len(b); i++ {
		v, done, e := d.Feed(b[i])
		if e.IsError() {
			return 0, 0, e.Trace()
		}
		if done {
			return v, i + 1, liberr.None
		}
	}

	return 0, -1, liberr.None
}

// WriteVarLong appends v's VarLong encoding to dst, terminator included.
func WriteVarLong(dst []byte, v int64) []byte {
	u := uint64(v)
	for {
		if u&^uint64(segmentBits) == 0 {
			return append(dst, byte(u))
		}
		dst = append(dst, byte(u&segmentBits)|continueBit)
		u >>= 7
	}
}
