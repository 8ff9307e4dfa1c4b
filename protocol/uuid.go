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
	liberr "github.com/sabouaram/embercore/errors"

	"github.com/google/uuid"
)

// ReadUUID decodes spec §4.1's 16-byte UUID layout (time_low(4) time_mid(2)
// time_hi_and_version(2) clock_seq_hi_and_reserved(1) clock_seq_low(1)
// node(6)), which is exactly google/uuid's byte order, so no field shuffling
// is needed.
func ReadUUID(b []byte) (uuid.UUID, liberr.Error) {
	if err := needBytes(b, 16); err.IsError() {
		return uuid.UUID{}, err.Trace()
	}
	var u uuid.UUID
	copy(u[:], b[:16])
	return u, liberr.None
}

// WriteUUID appends the 16 raw bytes of u.
func WriteUUID(dst []byte, u uuid.UUID) []byte {
	return append(dst, u[:]...)
}
