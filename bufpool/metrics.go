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

import "github.com/prometheus/client_golang/prometheus"

// depthGauge is a Prometheus gauge labeled by pool name. It is set only by
// RegisterMetrics, so the hot Take/Put path never touches the metrics
// registry itself (SPEC_FULL.md §B).
var depthGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
	Name: "embercore_bufpool_depth",
	Help: "Free buffers currently idle in a buffer pool's LIFO.",
}, []string{"pool"})

func init() {
	prometheus.MustRegister(depthGauge)
}

// RegisterMetrics sets each pool's labeled Prometheus gauge to its current
// Depth. The gauges hold that sample until the next call; a scrape does not
// refresh them.
func (p *Pools) RegisterMetrics() {
	named := map[string]*Pool{
		"tcp_recv":   p.TCPRecv,
		"proto_recv": p.ProtoRecv,
		"proto_send": p.ProtoSend,
	}
	for name, pool := range named {
		pool := pool
		depthGauge.WithLabelValues(name).Set(float64(pool.Depth()))
	}
}
