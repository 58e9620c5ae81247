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

var _ = Describe("Message framing", func() {
	It("should round trip a REG message through Marshal/Unmarshal", func() {
		body := wire.NewEncoder(16).PutPString(1, "node-a").PutVersion(1, 0).PutTime(100, 200).Bytes()
		msg := wire.NewMessage(wire.NameREG, 7, 0, body)

		frame := msg.Marshal()
		Expect(frame).To(HaveLen(wire.HeaderSize + len(body) + wire.TrailerSize))

		got, err := wire.Unmarshal(frame)
		Expect(err).To(BeNil())
		Expect(got.Header.Name).To(Equal(wire.NameREG))
		Expect(got.Header.Serial).To(Equal(uint32(7)))
		Expect(got.Body).To(Equal(body))
	})

	It("should yield a zero CRC residue with the CRC field appended after the trailer", func() {
		msg := wire.NewMessage(wire.NamePING, 1, 0, nil)
		frame := msg.Marshal()
		crcField := append([]byte(nil), frame[16:18]...)
		frame[16], frame[17] = 0, 0
		Expect(wire.CRC16(wire.CRC16(0, frame), crcField)).To(Equal(uint16(0)))
	})

	It("should reject a frame with a flipped body byte", func() {
		msg := wire.NewMessage(wire.NamePONG, 2, 0, []byte("payload"))
		frame := msg.Marshal()
		frame[wire.HeaderSize] ^= 0xFF

		_, err := wire.Unmarshal(frame)
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(wire.ErrorCRCMismatch)).To(BeTrue())
	})

	It("should reject a frame with a corrupt trailer", func() {
		msg := wire.NewMessage(wire.NameACK, 3, 0, []byte("x"))
		frame := msg.Marshal()
		// flip a trailer byte without updating the CRC field, so the
		// frame fails validation the same way real corruption would
		frame[len(frame)-1] ^= 0xFF

		_, err := wire.Unmarshal(frame)
		Expect(err).ToNot(BeNil())
	})

	It("should reject a buffer shorter than the declared length", func() {
		msg := wire.NewMessage(wire.NameSync, 4, 0, []byte("0123456789"))
		frame := msg.Marshal()

		_, err := wire.Unmarshal(frame[:len(frame)-3])
		Expect(err).ToNot(BeNil())
	})

	It("should reject a frame missing the magic bytes", func() {
		_, err := wire.Unmarshal(bytes.Repeat([]byte{0}, wire.HeaderSize+wire.TrailerSize))
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(wire.ErrorBadMagic)).To(BeTrue())
	})
})

var _ = Describe("Name", func() {
	It("should resolve every closed-set name both ways", func() {
		for _, s := range []string{"REG", "ACK", "ERR", "PING", "PONG", "LIST_CONTEXTS", "GET_CONTEXT", "SET_CONTEXT", "SYNC"} {
			n, ok := wire.ParseName(s)
			Expect(ok).To(BeTrue())
			Expect(n.String()).To(Equal(s))
		}
	})

	It("should treat REG/ACK/ERR/PING/PONG as lifecycle messages", func() {
		Expect(wire.NameREG.IsLifecycle()).To(BeTrue())
		Expect(wire.NameSetContext.IsLifecycle()).To(BeFalse())
	})
})
