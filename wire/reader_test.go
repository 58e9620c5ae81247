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

package wire_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/prinbee/wire"
)

var _ = Describe("Reader", func() {
	It("should read several messages back to back", func() {
		var buf bytes.Buffer
		w := wire.NewWriter(&buf)

		Expect(w.WriteMessage(wire.NewMessage(wire.NamePING, 1, 0, nil))).To(BeNil())
		Expect(w.WriteMessage(wire.NewMessage(wire.NamePONG, 1, 0, []byte("load=0.1")))).To(BeNil())

		r := wire.NewReader(&buf)

		m1, err := r.ReadMessage()
		Expect(err).To(BeNil())
		Expect(m1.Header.Name).To(Equal(wire.NamePING))

		m2, err := r.ReadMessage()
		Expect(err).To(BeNil())
		Expect(m2.Header.Name).To(Equal(wire.NamePONG))
		Expect(m2.Body).To(Equal([]byte("load=0.1")))

		Expect(r.Resynced()).To(Equal(0))
	})

	It("should resync past garbage preceding a valid frame", func() {
		var buf bytes.Buffer
		buf.Write([]byte("garbage-before-the-frame"))

		w := wire.NewWriter(&buf)
		Expect(w.WriteMessage(wire.NewMessage(wire.NameACK, 9, 0, nil))).To(BeNil())

		r := wire.NewReader(&buf)
		m, err := r.ReadMessage()
		Expect(err).To(BeNil())
		Expect(m.Header.Name).To(Equal(wire.NameACK))
		Expect(m.Header.Serial).To(Equal(uint32(9)))
	})

	It("should resync past a corrupted frame that precedes a good one", func() {
		var buf bytes.Buffer
		w := wire.NewWriter(&buf)

		good1 := wire.NewMessage(wire.NameREG, 1, 0, []byte("a"))
		frame1 := good1.Marshal()
		frame1[wire.HeaderSize] ^= 0xFF // corrupt the body byte
		buf.Write(frame1)

		Expect(w.WriteMessage(wire.NewMessage(wire.NameERR, 2, 0, []byte("b")))).To(BeNil())

		r := wire.NewReader(&buf)
		m, err := r.ReadMessage()
		Expect(err).To(BeNil())
		Expect(m.Header.Name).To(Equal(wire.NameERR))
		Expect(r.Resynced()).To(BeNumerically(">", 0))
	})
})
