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

import liberr "github.com/sabouaram/embercore/errors"

// ReadString decodes a VarInt-length-prefixed UTF-8 string, rejecting a
// declared byte length over maxRunes*4 (the worst-case UTF-8 size of
// maxRunes runes) with Protocol; the rune count itself is not checked
// (SPEC_FULL.md §C carries the original's per-field string caps: 256 bytes
// for server_host, 16 bytes for a player name). n is the total number of
// bytes consumed including the length prefix, or -1 if b does not yet hold
// the whole field.
func ReadString(b []byte, maxRunes int) (value string, n int, err liberr.Error) {
	length, ln, e := ReadVarInt(b)
	if e.IsError() {
		return "", 0, e.Trace()
	}
	if ln < 0 {
		return "", -1, liberr.None
	}
	if length < 0 || int(length) > maxRunes*4 {
		return "", 0, liberr.NewProtocol("string length %d exceeds cap %d", length, maxRunes*4)
	}

	total := ln + int(length)
	if len(b) < total {
		return "", -1, liberr.None
	}

	return string(b[ln:total]), total, liberr.None
}

// WriteString appends a VarInt-length-prefixed UTF-8 string.
func WriteString(dst []byte, s string) []byte {
	dst = WriteVarInt(dst, int32(len(s)))
	return append(dst, s...)
}
