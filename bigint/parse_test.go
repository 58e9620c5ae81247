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

var _ = Describe("ParseUint / ParseInt", func() {
	It("should round trip across every supported base", func() {
		orig := bigint.UintFromLimbs(1, 2, 3, 4, 5, 6, 7, 8)
		for _, base := range []int{2, 8, 10, 16, 36} {
			s := orig.ToString(bigint.StringOpts{Base: base})
			got, err := bigint.ParseUint(s, base)
			Expect(err).To(BeNil())
			Expect(got).To(Equal(orig))
		}
	})

	It("should accept a 0x prefix and infer the base", func() {
		got, err := bigint.ParseUint("0xFF", 0)
		Expect(err).To(BeNil())
		Expect(got).To(Equal(bigint.UintFromUint64(255)))
	})

	It("should parse a negative signed value", func() {
		n, err := bigint.ParseInt("-2a", 16)
		Expect(err).To(BeNil())
		Expect(n.String()).To(Equal("-42"))
	})

	It("should reject an empty string", func() {
		_, err := bigint.ParseUint("", 10)
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(bigint.ErrorEmptyString)).To(BeTrue())
	})

	It("should reject a digit out of range for the base", func() {
		_, err := bigint.ParseUint("19", 9)
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(bigint.ErrorInvalidDigit)).To(BeTrue())
	})

	It("should reject an out of range base", func() {
		_, err := bigint.ParseUint("10", 40)
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(bigint.ErrorInvalidBase)).To(BeTrue())
	})
})
