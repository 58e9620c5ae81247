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

package bigint_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/prinbee/bigint"
)

var _ = Describe("Binary encoding", func() {
	It("should round trip an unsigned value through 64 little endian bytes", func() {
		orig := bigint.UintFromLimbs(1, 2, 3, 4, 5, 6, 7, 8)
		b, err := orig.MarshalBinary()
		Expect(err).To(BeNil())
		Expect(b).To(HaveLen(bigint.ByteSize))

		var got bigint.Uint512
		Expect(got.UnmarshalBinary(b)).To(BeNil())
		Expect(got).To(Equal(orig))
	})

	It("should round trip a negative signed value", func() {
		orig := bigint.IntFromInt64(-12345)
		b, err := orig.MarshalBinary()
		Expect(err).To(BeNil())

		var got bigint.Int512
		Expect(got.UnmarshalBinary(b)).To(BeNil())
		Expect(got).To(Equal(orig))
	})

	It("should reject a short buffer", func() {
		var got bigint.Uint512
		err := got.UnmarshalBinary([]byte{1, 2, 3})
		Expect(err).ToNot(BeNil())
	})

	It("should place the least significant limb first", func() {
		v := bigint.UintFromUint64(1)
		b, _ := v.MarshalBinary()
		Expect(b[0]).To(Equal(byte(1)))
		for _, x := range b[1:] {
			Expect(x).To(Equal(byte(0)))
		}
	})
})
