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

package bufpool

import "github.com/sabouaram/embercore/config"

// Pools bundles the three size-class pools spec.md §3 names, keyed by
// purpose. TCPRecv and ProtoRecv are reactor-thread-only (unlocked);
// ProtoSend is reachable from any context (locked).
type Pools struct {
	TCPRecv   *Pool
	ProtoRecv *Pool
	ProtoSend *Pool
}

// NewPools sizes each pool from cfg, matching spec.md §6's configuration
// table.
func NewPools(cfg config.Config) *Pools {
	return &Pools{
		TCPRecv:   New(int(cfg.RecvBufferSize), false),
		ProtoRecv: New(int(cfg.MaxRecvPacketSize), false),
		ProtoSend: New(int(cfg.MaxSendPacketSize), true),
	}
}
