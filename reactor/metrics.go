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

package reactor

import "github.com/prometheus/client_golang/prometheus"

// Connection accounting as Prometheus counters/gauges, replacing the
// original's ad hoc accepted/active/dropped counters (SPEC_FULL.md §C).
var (
	acceptedConnections = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "embercore_connections_accepted_total",
		Help: "Total TCP connections accepted by the reactor.",
	})
	disconnectedConnections = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "embercore_connections_disconnected_total",
		Help: "Total client disconnects handled by the reactor.",
	})
	activeConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "embercore_connections_active",
		Help: "Clients currently in the reactor's membership list.",
	})
)

func init() {
	prometheus.MustRegister(acceptedConnections, disconnectedConnections, activeConnections)
}
