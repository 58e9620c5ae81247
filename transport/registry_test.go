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
)

var _ = Describe("Registry", func() {
	It("tracks connections by kind and supports stale/dead scans", func() {
		reg := transport.NewRegistry()

		c1, s1 := net.Pipe()
		defer c1.Close()
		defer s1.Close()

		a := transport.NewConnection(transport.KindNode, c1, logger.Nop())
		b := transport.NewConnection(transport.KindDirect, s1, logger.Nop())
		reg.Add(a)
		reg.Add(b)

		Expect(reg.Len()).To(Equal(2))
		Expect(reg.ByKind(transport.KindNode)).To(HaveLen(1))
		Expect(reg.ByKind(transport.KindDirect)).To(HaveLen(1))

		got, ok := reg.Get(a.ID())
		Expect(ok).To(BeTrue())
		Expect(got).To(Equal(a))

		future := time.Now().Add(2 * transport.HandshakeTimeout)
		Expect(reg.StaleUnregistered(future)).To(HaveLen(2))

		for i := 0; i < transport.MaxPingPongFailures; i++ {
			a.NotePingSent(uint32(i + 1))
		}
		Expect(a.IsDead()).To(BeTrue())
		Expect(reg.Dead()).To(HaveLen(1))

		reg.Remove(b.ID())
		Expect(reg.Len()).To(Equal(1))

		reg.CloseAll()
		Expect(reg.Len()).To(Equal(0))
		Expect(a.IsClosed()).To(BeTrue())
	})
})
