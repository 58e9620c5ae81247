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

package transport_test

import (
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/prinbee/logger"
	"github.com/nabbar/prinbee/transport"
	"github.com/nabbar/prinbee/wire"
)

var _ = Describe("handshake", func() {
	var clientConn, serverConn net.Conn

	BeforeEach(func() {
		clientConn, serverConn = net.Pipe()
	})

	It("succeeds when version and clock agree", func() {
		client := transport.NewConnection(transport.KindNode, clientConn, logger.Nop())
		server := transport.NewConnection(transport.KindNode, serverConn, logger.Nop())

		done := make(chan error, 1)
		go func() {
			msg, e := server.ReadMessage()
			if e != nil {
				done <- e
				return
			}
			done <- transport.HandleIncomingREG(server, msg)
		}()

		e := transport.DoHandshake(client, "test-client")
		Expect(e).To(BeNil())
		Expect(<-done).To(BeNil())
		Expect(client.IsRegistered()).To(BeTrue())
	})

	It("rejects a REG whose clock is skewed beyond tolerance", func() {
		client := transport.NewConnection(transport.KindNode, clientConn, logger.Nop())
		server := transport.NewConnection(transport.KindNode, serverConn, logger.Nop())

		skewed := transport.RegBody{
			Name:  "skewed",
			Major: transport.ProtocolMajor,
			Minor: transport.ProtocolMinor,
			Now:   time.Now().Add(50 * time.Millisecond),
		}

		done := make(chan error, 1)
		go func() {
			msg, e := server.ReadMessage()
			if e != nil {
				done <- e
				return
			}
			done <- transport.HandleIncomingREG(server, msg)
		}()

		serial := client.NextSerial()
		e := client.Send(wire.NewMessage(wire.NameREG, serial, 0, transport.EncodeREG(skewed)))
		Expect(e).To(BeNil())

		// net.Pipe is unbuffered: the server's ERR send only returns
		// once this side reads it, so read the reply before waiting.
		reply, re := client.ReadMessage()
		Expect(re).To(BeNil())
		Expect(<-done).NotTo(BeNil())
		Expect(reply.Header.Name).To(Equal(wire.NameERR))

		errBody, de := transport.DecodeERR(reply.Body)
		Expect(de).To(BeNil())
		Expect(errBody.Code).To(Equal(uint32(transport.ErrorTimeSkewTooLarge)))
		Expect(server.IsRegistered()).To(BeFalse())
	})
})
