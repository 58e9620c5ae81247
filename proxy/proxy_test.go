/*
 * MIT License
 *
 * Copyright (c) 2024 prinbee authors
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

package proxy_test

import (
	"net"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/prinbee/client"
	"github.com/nabbar/prinbee/journal"
	"github.com/nabbar/prinbee/logger"
	"github.com/nabbar/prinbee/proxy"
	"github.com/nabbar/prinbee/transport"
	"github.com/nabbar/prinbee/wire"
)

func tempJournal() *journal.Journal {
	d, err := os.MkdirTemp("", "prinbee-proxy-*")
	Expect(err).To(BeNil())
	DeferCleanup(func() { _ = os.RemoveAll(d) })

	j, e := journal.Open(d, journal.DefaultConfig(), logger.Nop())
	Expect(e).To(BeNil())
	DeferCleanup(func() { _ = j.Close() })
	return j
}

// fakeDaemon answers every forwarded message on its side of a pipe:
// ACK when ack is true, ERR otherwise.
func fakeDaemon(conn *transport.Connection, ack bool) {
	go func() {
		for {
			msg, e := conn.ReadMessage()
			if e != nil {
				return
			}
			if msg.Header.Name.IsLifecycle() {
				continue
			}
			if ack {
				body := transport.EncodeACK(transport.AckBody{Phase: 0})
				_ = conn.Send(wire.NewMessage(wire.NameACK, msg.Header.Serial, 0, body))
			} else {
				body := transport.EncodeERR(transport.ErrBody{Code: 1, Message: "daemon says no"})
				_ = conn.Send(wire.NewMessage(wire.NameERR, msg.Header.Serial, 0, body))
			}
		}
	}()
}

var _ = Describe("proxy core", func() {
	var (
		p *proxy.Proxy
		j *journal.Journal
	)

	BeforeEach(func() {
		j = tempJournal()
		p = proxy.New(j, logger.Nop())
		Expect(p.Start("127.0.0.1:0")).To(BeNil())
		DeferCleanup(p.Stop)
	})

	It("journals a client write, forwards it, and completes on the daemon ACK", func() {
		proxySide, daemonSide := net.Pipe()
		p.AddDaemon(transport.NewConnection(transport.KindProxy, proxySide, logger.Nop()))
		fakeDaemon(transport.NewConnection(transport.KindProxy, daemonSide, logger.Nop()), true)

		c, e := client.Dial(p.Addr().String(), "test-client", logger.Nop())
		Expect(e).To(BeNil())
		DeferCleanup(func() { _ = c.Close() })

		Expect(c.SetContext(client.SetContextRequest{Name: "sales", SchemaVersion: 1})).To(BeNil())

		// The journal entry went READY -> FORWARDED -> COMPLETED, so
		// the live set is empty again.
		Eventually(j.Size).Should(Equal(0))
	})

	It("forwards a daemon ERR and fails the journal entry", func() {
		proxySide, daemonSide := net.Pipe()
		p.AddDaemon(transport.NewConnection(transport.KindProxy, proxySide, logger.Nop()))
		fakeDaemon(transport.NewConnection(transport.KindProxy, daemonSide, logger.Nop()), false)

		c, e := client.Dial(p.Addr().String(), "test-client", logger.Nop())
		Expect(e).To(BeNil())
		DeferCleanup(func() { _ = c.Close() })

		err := c.SetContext(client.SetContextRequest{Name: "sales", SchemaVersion: 1})
		Expect(err).NotTo(BeNil())
		Expect(err.Error()).To(ContainSubstring("daemon says no"))

		Eventually(j.Size).Should(Equal(0))
	})

	It("answers a client ERR when no daemon is available", func() {
		c, e := client.Dial(p.Addr().String(), "test-client", logger.Nop())
		Expect(e).To(BeNil())
		DeferCleanup(func() { _ = c.Close() })

		err := c.SetContext(client.SetContextRequest{Name: "sales", SchemaVersion: 1})
		Expect(err).NotTo(BeNil())
	})

	It("answers a client PING inline without touching the journal", func() {
		c, e := client.Dial(p.Addr().String(), "test-client", logger.Nop())
		Expect(e).To(BeNil())
		DeferCleanup(func() { _ = c.Close() })

		Expect(c.Ping()).To(BeNil())
		Expect(j.Empty()).To(BeTrue())
	})

	It("drops a client that never completes its handshake", func() {
		raw, err := net.Dial("tcp", p.Addr().String())
		Expect(err).To(BeNil())
		DeferCleanup(func() { _ = raw.Close() })

		// The stale scanner runs on a one-second cadence; a connection
		// with no negotiated protocol older than the handshake timeout
		// is dropped on its next pass.
		buf := make([]byte, 1)
		Eventually(func() error {
			_, rerr := raw.Read(buf)
			return rerr
		}, "5s", "200ms").ShouldNot(BeNil())
	})
})
