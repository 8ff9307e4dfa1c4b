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

package bufpool

import (
	liberr "github.com/sabouaram/embercore/errors"
	"golang.org/x/sys/unix"
)

// mmapAnon maps a fresh anonymous, private region of size bytes.
func mmapAnon(size int) ([]byte, liberr.Error) {
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, liberr.NewOs(err).Trace()
	}
	return b, liberr.None
}

// adviseDontNeed tells the kernel this region's pages are reclaimable.
func adviseDontNeed(buf []byte) {
	if len(buf) == 0 {
		return
	}
	_ = unix.Madvise(buf, unix.MADV_DONTNEED)
}

// adviseWillNeed tells the kernel this region is about to be reused.
func adviseWillNeed(buf []byte) {
	if len(buf) == 0 {
		return
	}
	_ = unix.Madvise(buf, unix.MADV_WILLNEED)
}
