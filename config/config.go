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

// Package config holds EmberCore's server configuration: the handful of
// tunables spec §6 names (listen port, connection caps, buffer sizes),
// loaded through spf13/viper and exposed as spf13/cobra flags, the way the
// teacher wires every component's configuration.
package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config mirrors spec.md §6's configuration table exactly; defaults are the
// table's defaults.
type Config struct {
	// Port is the TCP listen port.
	Port uint16

	// MaxConnections sizes the completion queue and softly caps concurrent
	// clients.
	MaxConnections uint32

	// MaxServerListPending is the listen backlog.
	MaxServerListPending uint32

	// RecvBufferSize is the size of each per-client TCP-recv buffer.
	RecvBufferSize uint32

	// MaxRecvPacketSize caps a single inbound protocol packet.
	MaxRecvPacketSize uint32

	// MaxSendPacketSize caps a single outbound protocol packet. Present in
	// one teacher header and not the other in the original source; EmberCore
	// resolves that Open Question by always carrying it (see SPEC_FULL.md §D.3).
	MaxSendPacketSize uint32

	// MetricsAddr, if non-empty, is the listen address for the Prometheus
	// metrics HTTP exposition (see httpserver/). Empty disables it.
	MetricsAddr string
}

// Default returns spec §6's default configuration.
func Default() Config {
	return Config{
		Port:                 25565,
		MaxConnections:       4096,
		MaxServerListPending: 512,
		RecvBufferSize:       4096,
		MaxRecvPacketSize:    65536,
		MaxSendPacketSize:    65536,
		MetricsAddr:          "",
	}
}

// BindFlags registers EmberCore's configuration as flags on cmd, the way the
// teacher's cobra/ package wires component configuration onto a command.
func BindFlags(cmd *cobra.Command, v *viper.Viper) {
	d := Default()

	cmd.Flags().Uint16("port", d.Port, "TCP listen port")
	cmd.Flags().Uint32("max-connections", d.MaxConnections, "completion queue size / soft client cap")
	cmd.Flags().Uint32("max-server-list-pending", d.MaxServerListPending, "listen backlog")
	cmd.Flags().Uint32("recv-buffer-size", d.RecvBufferSize, "per-client TCP recv buffer size")
	cmd.Flags().Uint32("max-recv-packet-size", d.MaxRecvPacketSize, "cap on a single inbound protocol packet")
	cmd.Flags().Uint32("max-send-packet-size", d.MaxSendPacketSize, "cap on a single outbound protocol packet")
	cmd.Flags().String("metrics-addr", d.MetricsAddr, "listen address for Prometheus metrics, empty to disable")

	_ = v.BindPFlag("port", cmd.Flags().Lookup("port"))
	_ = v.BindPFlag("max_connections", cmd.Flags().Lookup("max-connections"))
	_ = v.BindPFlag("max_server_list_pending", cmd.Flags().Lookup("max-server-list-pending"))
	_ = v.BindPFlag("recv_buffer_size", cmd.Flags().Lookup("recv-buffer-size"))
	_ = v.BindPFlag("max_recv_packet_size", cmd.Flags().Lookup("max-recv-packet-size"))
	_ = v.BindPFlag("max_send_packet_size", cmd.Flags().Lookup("max-send-packet-size"))
	_ = v.BindPFlag("metrics_addr", cmd.Flags().Lookup("metrics-addr"))
}

// FromViper reads a bound viper instance into a Config, falling back to
// Default for anything unset.
func FromViper(v *viper.Viper) Config {
	d := Default()

	get := func(key string, fallback uint32) uint32 {
		if !v.IsSet(key) {
			return fallback
		}
		return v.GetUint32(key)
	}

	return Config{
		Port:                 uint16(get("port", uint32(d.Port))),
		MaxConnections:       get("max_connections", d.MaxConnections),
		MaxServerListPending: get("max_server_list_pending", d.MaxServerListPending),
		RecvBufferSize:       get("recv_buffer_size", d.RecvBufferSize),
		MaxRecvPacketSize:    get("max_recv_packet_size", d.MaxRecvPacketSize),
		MaxSendPacketSize:    get("max_send_packet_size", d.MaxSendPacketSize),
		MetricsAddr:          v.GetString("metrics_addr"),
	}
}
