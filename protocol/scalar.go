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

package protocol

import (
	"encoding/binary"
	"math"

	liberr "github.com/sabouaram/embercore/errors"
)

// needBytes is shared by every fixed-width reader: it fails with Protocol
// when b holds fewer than n bytes. Unlike ReadVarInt, the fixed-width
// readers have no -1 "need more" signal; a short field is an error.
func needBytes(b []byte, n int) liberr.Error {
	if len(b) < n {
		return liberr.NewProtocol("need %d bytes, have %d", n, len(b))
	}
	return liberr.None
}

// ReadBool reads spec §4.1's single-byte boolean: 0 is false, any non-zero
// is true.
func ReadBool(b []byte) (bool, liberr.Error) {
	if err := needBytes(b, 1); err.IsError() {
		return false, err.Trace()
	}
	return b[0] != 0, liberr.None
}

// WriteBool appends spec §4.1's canonical boolean encoding (0x01 for true).
func WriteBool(dst []byte, v bool) []byte {
	if v {
		return append(dst, 0x01)
	}
	return append(dst, 0x00)
}

// ReadUint8 reads a single unsigned byte.
func ReadUint8(b []byte) (uint8, liberr.Error) {
	if err := needBytes(b, 1); err.IsError() {
		return 0, err.Trace()
	}
	return b[0], liberr.None
}

// WriteUint8 appends a single unsigned byte.
func WriteUint8(dst []byte, v uint8) []byte { return append(dst, v) }

// ReadInt8 reads a single signed byte.
func ReadInt8(b []byte) (int8, liberr.Error) {
	v, err := ReadUint8(b)
	return int8(v), err
}

// WriteInt8 appends a single signed byte.
func WriteInt8(dst []byte, v int8) []byte { return append(dst, byte(v)) }

// ReadUint16 reads a big-endian unsigned 16-bit scalar.
func ReadUint16(b []byte) (uint16, liberr.Error) {
	if err := needBytes(b, 2); err.IsError() {
		return 0, err.Trace()
	}
	return binary.BigEndian.Uint16(b), liberr.None
}

// WriteUint16 appends a big-endian unsigned 16-bit scalar.
func WriteUint16(dst []byte, v uint16) []byte {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	return append(dst, tmp[:]...)
}

// ReadInt16 reads a big-endian signed 16-bit scalar.
func ReadInt16(b []byte) (int16, liberr.Error) {
	v, err := ReadUint16(b)
	return int16(v), err
}

// WriteInt16 appends a big-endian signed 16-bit scalar.
func WriteInt16(dst []byte, v int16) []byte { return WriteUint16(dst, uint16(v)) }

// ReadUint32 reads a big-endian unsigned 32-bit scalar.
func ReadUint32(b []byte) (uint32, liberr.Error) {
	if err := needBytes(b, 4); err.IsError() {
		return 0, err.Trace()
	}
	return binary.BigEndian.Uint32(b), liberr.None
}

// WriteUint32 appends a big-endian unsigned 32-bit scalar.
func WriteUint32(dst []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(dst, tmp[:]...)
}

// ReadInt32 reads a big-endian signed 32-bit scalar.
func ReadInt32(b []byte) (int32, liberr.Error) {
	v, err := ReadUint32(b)
	return int32(v), err
}

// WriteInt32 appends a big-endian signed 32-bit scalar.
func WriteInt32(dst []byte, v int32) []byte { return WriteUint32(dst, uint32(v)) }

// ReadUint64 reads a big-endian unsigned 64-bit scalar.
func ReadUint64(b []byte) (uint64, liberr.Error) {
	if err := needBytes(b, 8); err.IsError() {
		return 0, err.Trace()
	}
	return binary.BigEndian.Uint64(b), liberr.None
}

// WriteUint64 appends a big-endian unsigned 64-bit scalar.
func WriteUint64(dst []byte, v uint64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	return append(dst, tmp[:]...)
}

// ReadInt64 reads a big-endian signed 64-bit scalar.
func ReadInt64(b []byte) (int64, liberr.Error) {
	v, err := ReadUint64(b)
	return int64(v), err
}

// WriteInt64 appends a big-endian signed 64-bit scalar.
func WriteInt64(dst []byte, v int64) []byte { return WriteUint64(dst, uint64(v)) }

// ReadFloat32 reads an IEEE-754 single-precision float in network byte order.
func ReadFloat32(b []byte) (float32, liberr.Error) {
	v, err := ReadUint32(b)
	if err.IsError() {
		return 0, err
	}
	return math.Float32frombits(v), liberr.None
}

// WriteFloat32 appends an IEEE-754 single-precision float.
func WriteFloat32(dst []byte, v float32) []byte {
	return WriteUint32(dst, math.Float32bits(v))
}

// ReadFloat64 reads an IEEE-754 double-precision float in network byte order.
func ReadFloat64(b []byte) (float64, liberr.Error) {
	v, err := ReadUint64(b)
	if err.IsError() {
		return 0, err
	}
	return math.Float64frombits(v), liberr.None
}

// WriteFloat64 appends an IEEE-754 double-precision float.
func WriteFloat64(dst []byte, v float64) []byte {
	return WriteUint64(dst, math.Float64bits(v))
}
