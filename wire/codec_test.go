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
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/prinbee/bigint"
	"github.com/nabbar/prinbee/wire"
)

var _ = Describe("Encoder/Decoder", func() {
	It("should round trip every fixed-width field", func() {
		enc := wire.NewEncoder(64)
		enc.PutUint8(0xAB).PutInt8(-1).
			PutUint16(0x1234).PutInt16(-2).
			PutUint32(0xCAFEBABE).PutInt32(-3).
			PutUint64(0xDEADBEEFCAFEBABE).PutInt64(-4)

		dec := wire.NewDecoder(enc.Bytes())
		Expect(dec.GetUint8()).To(Equal(uint8(0xAB)))
		Expect(dec.GetInt8()).To(Equal(int8(-1)))
		Expect(dec.GetUint16()).To(Equal(uint16(0x1234)))
		Expect(dec.GetInt16()).To(Equal(int16(-2)))
		Expect(dec.GetUint32()).To(Equal(uint32(0xCAFEBABE)))
		Expect(dec.GetInt32()).To(Equal(int32(-3)))
		Expect(dec.GetUint64()).To(Equal(uint64(0xDEADBEEFCAFEBABE)))
		Expect(dec.GetInt64()).To(Equal(int64(-4)))
		Expect(dec.Err()).To(BeNil())
	})

	It("should round trip a uint512 and an int512", func() {
		u := bigint.UintFromLimbs(1, 2, 3, 4, 5, 6, 7, 8)
		n := bigint.IntFromInt64(-99)

		enc := wire.NewEncoder(128).PutUint512(u).PutInt512(n)
		dec := wire.NewDecoder(enc.Bytes())

		Expect(dec.GetUint512()).To(Equal(u))
		Expect(dec.GetInt512()).To(Equal(n))
	})

	It("should round trip a p1-string and a reference/version pair", func() {
		enc := wire.NewEncoder(32).
			PutPString(1, "ctx-name").
			PutReference(0xF00D).
			PutVersion(2, 1)

		dec := wire.NewDecoder(enc.Bytes())
		Expect(dec.GetPString(1)).To(Equal("ctx-name"))
		Expect(dec.GetReference()).To(Equal(uint64(0xF00D)))
		major, minor := dec.GetVersion()
		Expect(major).To(Equal(uint8(2)))
		Expect(minor).To(Equal(uint8(1)))
	})

	It("should round trip time/ms-time/us-time", func() {
		enc := wire.NewEncoder(32).PutTime(1700000000, 123456789).PutMSTime(-5).PutUSTime(999)
		dec := wire.NewDecoder(enc.Bytes())

		sec, nsec := dec.GetTime()
		Expect(sec).To(Equal(uint64(1700000000)))
		Expect(nsec).To(Equal(uint64(123456789)))
		Expect(dec.GetMSTime()).To(Equal(int64(-5)))
		Expect(dec.GetUSTime()).To(Equal(int64(999)))
	})

	It("should round trip a packed bitfield", func() {
		enc := wire.NewEncoder(4).PutBitfield8(true, false, true, true)
		dec := wire.NewDecoder(enc.Bytes())
		Expect(dec.GetBitfield8(4)).To(Equal([]bool{true, false, true, true}))
	})

	It("should stick on the first short-buffer error", func() {
		dec := wire.NewDecoder([]byte{1, 2})
		_ = dec.GetUint64()
		Expect(dec.Err()).ToNot(BeNil())
		_ = dec.GetUint8()
		Expect(dec.Err()).ToNot(BeNil())
	})
})
