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
	"io"

	"github.com/klauspost/compress/zlib"

	liberr "github.com/sabouaram/embercore/errors"
)

// DecompressHook mirrors spec.md §4.4's emit-time decompression seam: EmberCore
// declares the hook's shape but never wires CompressionEnabled to true, so
// the only implementation offered is StubDecompress.
type DecompressHook func(body []byte) ([]byte, liberr.Error)

// StubDecompress gives the decompression hook a concrete, zlib-shaped
// implementation to swap out rather than leaving it an empty interface; it
// always fails, since decompression itself is out of scope (spec.md §1).
func StubDecompress(body []byte) ([]byte, liberr.Error) {
	r, err := zlib.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, liberr.NewProtocol("decompression hook invoked on non-zlib body: %v", err).Trace()
	}
	defer r.Close()

	if _, err := io.Copy(io.Discard, r); err != nil {
		return nil, liberr.NewProtocol("decompression not implemented: %v", err).Trace()
	}

	return nil, liberr.NewProtocol("decompression not implemented")
}
