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

//go:build !linux

package reactor

import (
	"github.com/sabouaram/embercore/bufpool"
	"github.com/sabouaram/embercore/config"
	"github.com/sabouaram/embercore/logger"
	"github.com/sabouaram/embercore/packet"

	liberr "github.com/sabouaram/embercore/errors"
)

// Reactor is unavailable on non-Linux platforms: the completion loop this
// core uses is io_uring, a Linux-only kernel interface (spec.md §1's
// Non-goals).
type Reactor struct{}

// New always fails off Linux.
func New(config.Config, *packet.Dispatcher, *bufpool.Pool, *bufpool.Pool, *bufpool.Pool, *logger.Logger) (*Reactor, liberr.Error) {
	return nil, liberr.New(liberr.CheckFailed, "the io_uring reactor is only available on linux")
}

// Close is a no-op stub.
func (rx *Reactor) Close() {}

// Run always returns a fatal error off Linux.
func (rx *Reactor) Run(*bool) liberr.Error {
	return liberr.New(liberr.CheckFailed, "the io_uring reactor is only available on linux")
}

// OpenConnections always reports zero off Linux.
func (rx *Reactor) OpenConnections() int { return 0 }
