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

package protocol_test

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/sabouaram/embercore/protocol"
)

func TestVarIntRoundTrip(t *testing.T) {
	values := []int32{0, 1, -1, 127, 128, 255, 2097151, 2147483647, -2147483648}
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 2000; i++ {
		values = append(values, r.Int31()-r.Int31())
	}

	for _, v := range values {
		buf := protocol.WriteVarInt(nil, v)
		if len(buf) > 5 {
			t.Fatalf("varint encoding of %d exceeds 5 bytes: %d", v, len(buf))
		}
		if len(buf) != protocol.SizeVarInt(v) {
			t.Fatalf("SizeVarInt mismatch for %d: got %d want %d", v, protocol.SizeVarInt(v), len(buf))
		}

		got, n, err := protocol.ReadVarInt(buf)
		if err.IsError() {
			t.Fatalf("unexpected error decoding %d: %v", v, err)
		}
		if n != len(buf) {
			t.Fatalf("expected to consume %d bytes, consumed %d", len(buf), n)
		}
		if got != v {
			t.Fatalf("round trip mismatch: wrote %d read %d", v, got)
		}
	}
}

func TestVarLongRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 9223372036854775807, -9223372036854775808, 0x1122334455667788}
	r := rand.New(rand.NewSource(2))
	for i := 0; i < 2000; i++ {
		values = append(values, r.Int63()-r.Int63())
	}

	for _, v := range values {
		buf := protocol.WriteVarLong(nil, v)
		if len(buf) > 10 {
			t.Fatalf("varlong encoding of %d exceeds 10 bytes: %d", v, len(buf))
		}

		got, n, err := protocol.ReadVarLong(buf)
		if err.IsError() {
			t.Fatalf("unexpected error decoding %d: %v", v, err)
		}
		if n != len(buf) {
			t.Fatalf("expected to consume %d bytes, consumed %d", len(buf), n)
		}
		if got != v {
			t.Fatalf("round trip mismatch: wrote %d read %d", v, got)
		}
	}
}

func TestVarIntRejectsOverlongEncoding(t *testing.T) {
	// five continuation bytes before the terminator: 6 groups, exceeds the 5-byte bound.
	overlong := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}

	var d protocol.VarIntDecoder
	var sawErr bool
	for _, b := range overlong {
		_, done, err := d.Feed(b)
		if err.IsError() {
			sawErr = true
			break
		}
		if done {
			t.Fatalf("expected no completion before the error")
		}
	}

	if !sawErr {
		t.Fatalf("expected a Protocol error for an overlong varint")
	}
}

func TestVarIntFeedByteAtATimeMatchesWholeBuffer(t *testing.T) {
	buf := protocol.WriteVarInt(nil, 300)

	var d protocol.VarIntDecoder
	var got int32
	for i, b := range buf {
		v, done, err := d.Feed(b)
		if err.IsError() {
			t.Fatalf("unexpected error: %v", err)
		}
		if done {
			got = v
			if i != len(buf)-1 {
				t.Fatalf("expected completion on the last byte")
			}
		}
	}

	if got != 300 {
		t.Fatalf("expected 300, got %d", got)
	}
}

func TestScalarRoundTrip(t *testing.T) {
	buf := protocol.WriteUint8(nil, 0xAB)
	buf = protocol.WriteUint16(buf, 0x1234)
	buf = protocol.WriteUint32(buf, 0xDEADBEEF)
	buf = protocol.WriteUint64(buf, 0x1122334455667788)
	buf = protocol.WriteBool(buf, true)
	buf = protocol.WriteBool(buf, false)
	buf = protocol.WriteFloat32(buf, 3.5)
	buf = protocol.WriteFloat64(buf, -2.25)

	u8, err := protocol.ReadUint8(buf)
	if err.IsError() || u8 != 0xAB {
		t.Fatalf("uint8 round trip failed: %v %v", u8, err)
	}
	buf = buf[1:]

	u16, err := protocol.ReadUint16(buf)
	if err.IsError() || u16 != 0x1234 {
		t.Fatalf("uint16 round trip failed: %v %v", u16, err)
	}
	buf = buf[2:]

	u32, err := protocol.ReadUint32(buf)
	if err.IsError() || u32 != 0xDEADBEEF {
		t.Fatalf("uint32 round trip failed: %v %v", u32, err)
	}
	buf = buf[4:]

	u64, err := protocol.ReadUint64(buf)
	if err.IsError() || u64 != 0x1122334455667788 {
		t.Fatalf("uint64 round trip failed: %v %v", u64, err)
	}
	buf = buf[8:]

	bt, err := protocol.ReadBool(buf)
	if err.IsError() || bt != true {
		t.Fatalf("bool(true) round trip failed: %v %v", bt, err)
	}
	buf = buf[1:]

	bf, err := protocol.ReadBool(buf)
	if err.IsError() || bf != false {
		t.Fatalf("bool(false) round trip failed: %v %v", bf, err)
	}
	buf = buf[1:]

	f32, err := protocol.ReadFloat32(buf)
	if err.IsError() || f32 != 3.5 {
		t.Fatalf("float32 round trip failed: %v %v", f32, err)
	}
	buf = buf[4:]

	f64, err := protocol.ReadFloat64(buf)
	if err.IsError() || f64 != -2.25 {
		t.Fatalf("float64 round trip failed: %v %v", f64, err)
	}
}

func TestStringRoundTrip(t *testing.T) {
	buf := protocol.WriteString(nil, "localhost")

	s, n, err := protocol.ReadString(buf, 256)
	if err.IsError() {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != len(buf) {
		t.Fatalf("expected to consume %d bytes, consumed %d", len(buf), n)
	}
	if s != "localhost" {
		t.Fatalf("expected localhost, got %q", s)
	}
}

func TestStringRejectsOverCap(t *testing.T) {
	long := make([]byte, 300)
	buf := protocol.WriteString(nil, string(long))

	// 256/4 runes is a 256-byte cap, the same cap the handshake uses for
	// server_host; the 300-byte string exceeds it.
	_, _, err := protocol.ReadString(buf, 256/4)
	if !err.IsError() {
		t.Fatalf("expected a Protocol error for an over-cap string")
	}
}

func TestUUIDRoundTrip(t *testing.T) {
	want := uuid.New()
	buf := protocol.WriteUUID(nil, want)

	got, err := protocol.ReadUUID(buf)
	if err.IsError() {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch: wrote %s read %s", want, got)
	}
}
