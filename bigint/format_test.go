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

var _ = Describe("ToString", func() {
	It("should render zero as \"0\"", func() {
		Expect(bigint.ZeroUint512().ToString(bigint.StringOpts{Base: 10})).To(Equal("0"))
	})

	It("should render 2^511 in upper case hex with a prefix", func() {
		v := bigint.UintFromUint64(1).Lsl(511)
		s := v.ToString(bigint.StringOpts{Base: 16, Prefix: true, Uppercase: true})
		Expect(s).To(HavePrefix("0X8"))
		Expect(s).To(HaveLen(130))
	})

	It("should render -1 in base 10", func() {
		Expect(bigint.IntFromInt64(-1).String()).To(Equal("-1"))
	})

	It("should default to base 10 when an invalid base is given", func() {
		v := bigint.UintFromUint64(255)
		Expect(v.ToString(bigint.StringOpts{Base: 1})).To(Equal("255"))
	})
})
