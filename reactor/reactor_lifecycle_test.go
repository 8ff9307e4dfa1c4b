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

package reactor_test

import (
	"fmt"
	"net"
	"time"

	"github.com/sabouaram/embercore/arena"
	"github.com/sabouaram/embercore/bufpool"
	"github.com/sabouaram/embercore/config"
	"github.com/sabouaram/embercore/logger"
	"github.com/sabouaram/embercore/packet"
	"github.com/sabouaram/embercore/protocol"
	"github.com/sabouaram/embercore/reactor"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func newTestReactor() *reactor.Reactor {
	cfg := config.Default()
	cfg.Port = 0
	cfg.MaxConnections = 64

	pair, err := arena.NewPair(1 << 16)
	Expect(err.IsError()).To(BeFalse())

	tcpRecv := bufpool.New(int(cfg.RecvBufferSize), false)
	protoRecv := bufpool.New(int(cfg.MaxRecvPacketSize), false)
	protoSend := bufpool.New(int(cfg.MaxSendPacketSize), true)

	dispatcher := packet.NewDispatcher(pair, protoSend)

	rx, rerr := reactor.New(cfg, dispatcher, tcpRecv, protoRecv, protoSend, logger.Default())
	Expect(rerr.IsError()).To(BeFalse())
	return rx
}

func dialReactor(rx *reactor.Reactor) net.Conn {
	port, err := rx.Port()
	Expect(err.IsError()).To(BeFalse())

	conn, derr := net.Dial("tcp4", fmt.Sprintf("127.0.0.1:%d", port))
	Expect(derr).ToNot(HaveOccurred())
	return conn
}

var _ = Describe("Reactor lifecycle", func() {
	var (
		rx      *reactor.Reactor
		stopped bool
	)

	BeforeEach(func() {
		rx = newTestReactor()
		stopped = false
		go func() {
			defer GinkgoRecover()
			_ = rx.Run(&stopped)
		}()
		time.Sleep(10 * time.Millisecond)
	})

	AfterEach(func() {
		stopped = true
		rx.Close()
		time.Sleep(10 * time.Millisecond)
	})

	It("accepts a connection and counts it open", func() {
		conn := dialReactor(rx)
		defer func() { _ = conn.Close() }()

		Eventually(func() int { return rx.OpenConnections() }, time.Second, 10*time.Millisecond).Should(Equal(1))
	})

	It("drops the connection count after the peer closes", func() {
		conn := dialReactor(rx)
		Eventually(func() int { return rx.OpenConnections() }, time.Second, 10*time.Millisecond).Should(Equal(1))

		_ = conn.Close()
		Eventually(func() int { return rx.OpenConnections() }, time.Second, 10*time.Millisecond).Should(Equal(0))
	})

	It("answers a status ping-start with ServerInfo over the wire", func() {
		conn := dialReactor(rx)
		defer func() { _ = conn.Close() }()

		var handshake []byte
		handshake = protocol.WriteVarInt(handshake, 0x00)
		handshake = protocol.WriteVarInt(handshake, packet.ProtocolVersion)
		handshake = protocol.WriteString(handshake, "127.0.0.1")
		handshake = protocol.WriteUint16(handshake, 0)
		handshake = protocol.WriteVarInt(handshake, 1)
		writeFramed(conn, handshake)

		var pingStart []byte
		pingStart = protocol.WriteVarInt(pingStart, 0x00)
		writeFramed(conn, pingStart)

		body := readFramed(conn)
		id, n, err := protocol.ReadVarInt(body)
		Expect(err.IsError()).To(BeFalse())
		Expect(id).To(Equal(int32(0)))

		response, _, err := protocol.ReadString(body[n:], 1<<20)
		Expect(err.IsError()).To(BeFalse())
		Expect(response).To(ContainSubstring(packet.GameVersion))
	})
})

func writeFramed(conn net.Conn, body []byte) {
	var framed []byte
	framed = protocol.WriteVarInt(framed, int32(len(body)))
	framed = append(framed, body...)
	_, err := conn.Write(framed)
	Expect(err).ToNot(HaveOccurred())
}

func readFramed(conn net.Conn) []byte {
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var lenDec protocol.VarIntDecoder
	for {
		var b [1]byte
		_, err := conn.Read(b[:])
		Expect(err).ToNot(HaveOccurred())

		v, done, derr := lenDec.Feed(b[0])
		Expect(derr.IsError()).To(BeFalse())
		if done {
			body := make([]byte, v)
			_, rerr := readFull(conn, body)
			Expect(rerr).ToNot(HaveOccurred())
			return body
		}
	}
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
