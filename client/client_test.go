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

package client_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/prinbee/client"
	"github.com/nabbar/prinbee/logger"
	"github.com/nabbar/prinbee/transport"
	"github.com/nabbar/prinbee/wire"
)

// startFakeProxy runs a minimal server speaking the proxy's client
// surface: REG handshake, PING answered with PONG, LIST_CONTEXTS and
// GET_CONTEXT answered from a canned table.
func startFakeProxy() string {
	ln, e := transport.Listen(transport.KindDirect, "127.0.0.1:0", logger.Nop())
	Expect(e).To(BeNil())
	DeferCleanup(func() { _ = ln.Close() })

	go func() {
		_ = ln.Serve(func(c *transport.Connection) {
			defer c.Close()
			for {
				msg, re := c.ReadMessage()
				if re != nil {
					return
				}
				switch msg.Header.Name {
				case wire.NameREG:
					if he := transport.HandleIncomingREG(c, msg); he != nil {
						return
					}
				case wire.NamePING:
					_ = transport.ReplyPong(c, msg.Header.Serial, 0.5)
				case wire.NameListContexts:
					enc := wire.NewEncoder(64)
					enc.PutUint32(1).
						PutPString(1, "sales").
						PutUint64(3).
						PutPString(1, "alice").
						PutPString(1, "staff")
					_ = c.Send(wire.NewMessage(wire.NameACK, msg.Header.Serial, 0, enc.Bytes()))
				case wire.NameGetContext:
					body := transport.EncodeERR(transport.ErrBody{Code: 404, Message: "context not found"})
					_ = c.Send(wire.NewMessage(wire.NameERR, msg.Header.Serial, 0, body))
				}
			}
		})
	}()
	return ln.Addr().String()
}

var _ = Describe("client library", func() {
	var addr string

	BeforeEach(func() {
		addr = startFakeProxy()
	})

	It("completes the REG handshake on Dial", func() {
		c, e := client.Dial(addr, "cli-test", logger.Nop())
		Expect(e).To(BeNil())
		DeferCleanup(func() { _ = c.Close() })
	})

	It("decodes the LIST_CONTEXTS reply", func() {
		c, e := client.Dial(addr, "cli-test", logger.Nop())
		Expect(e).To(BeNil())
		DeferCleanup(func() { _ = c.Close() })

		list, le := c.ListContexts()
		Expect(le).To(BeNil())
		Expect(list).To(HaveLen(1))
		Expect(list[0].Name).To(Equal("sales"))
		Expect(list[0].SchemaVersion).To(Equal(uint64(3)))
		Expect(list[0].Owner).To(Equal("alice"))
		Expect(list[0].Group).To(Equal("staff"))
	})

	It("surfaces a server ERR payload verbatim", func() {
		c, e := client.Dial(addr, "cli-test", logger.Nop())
		Expect(e).To(BeNil())
		DeferCleanup(func() { _ = c.Close() })

		_, ge := c.GetContext("missing")
		Expect(ge).NotTo(BeNil())
		Expect(ge.Error()).To(ContainSubstring("context not found"))
	})

	It("resolves Ping through the connection's liveness bookkeeping", func() {
		c, e := client.Dial(addr, "cli-test", logger.Nop())
		Expect(e).To(BeNil())
		DeferCleanup(func() { _ = c.Close() })

		Expect(c.Ping()).To(BeNil())
	})
})
