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

var _ = Describe("Uint512 Arithmetic", func() {
	Describe("Add", func() {
		It("should wrap 2^512 - 1 + 1 around to zero with the carry set", func() {
			max := bigint.ZeroUint512().Not()
			sum, carry := max.Add(bigint.UintFromUint64(1))
			Expect(sum.IsZero()).To(BeTrue())
			Expect(carry).To(Equal(uint64(1)))
		})

		It("should add two small values without a carry", func() {
			a := bigint.UintFromUint64(40)
			b := bigint.UintFromUint64(2)
			sum, carry := a.Add(b)
			Expect(sum).To(Equal(bigint.UintFromUint64(42)))
			Expect(carry).To(Equal(uint64(0)))
		})
	})

	Describe("Sub", func() {
		It("should wrap 0 - 1 around to 2^512 - 1 with the borrow set", func() {
			diff, borrow := bigint.ZeroUint512().Sub(bigint.UintFromUint64(1))
			Expect(diff).To(Equal(bigint.ZeroUint512().Not()))
			Expect(borrow).To(Equal(uint64(1)))
		})

		It("should satisfy (a+b)-b == a", func() {
			a := bigint.UintFromUint64(1).Lsl(400)
			b := bigint.UintFromUint64(987654321)
			sum, _ := a.Add(b)
			back, borrow := sum.Sub(b)
			Expect(back).To(Equal(a))
			Expect(borrow).To(Equal(uint64(0)))
		})
	})

	Describe("Mul", func() {
		It("should truncate a product wider than 512 bits", func() {
			a := bigint.UintFromUint64(1).Lsl(300)
			b := bigint.UintFromUint64(1).Lsl(300)
			Expect(a.Mul(b).IsZero()).To(BeTrue())
		})

		It("should multiply two small values", func() {
			a := bigint.UintFromUint64(6)
			b := bigint.UintFromUint64(7)
			Expect(a.Mul(b)).To(Equal(bigint.UintFromUint64(42)))
		})
	})

	Describe("QuoRem", func() {
		It("should return the quotient and the remainder", func() {
			q, r, err := bigint.UintFromUint64(100).QuoRem(bigint.UintFromUint64(7))
			Expect(err).To(BeNil())
			Expect(q).To(Equal(bigint.UintFromUint64(14)))
			Expect(r).To(Equal(bigint.UintFromUint64(2)))
		})

		It("should reject division by zero", func() {
			_, _, err := bigint.UintFromUint64(1).QuoRem(bigint.ZeroUint512())
			Expect(err).ToNot(BeNil())
			Expect(err.IsCode(bigint.ErrorDivideByZero)).To(BeTrue())
		})
	})

	Describe("Shifts", func() {
		It("should round trip Lsl then Lsr by the same amount", func() {
			v := bigint.UintFromUint64(0xDEADBEEF)
			Expect(v.Lsl(64).Lsr(64)).To(Equal(v))
		})

		It("should drop bits shifted out past bit 511", func() {
			v := bigint.UintFromUint64(1).Lsl(511).Lsl(1)
			Expect(v.IsZero()).To(BeTrue())
		})
	})

	Describe("BitLen", func() {
		It("should be zero for zero", func() {
			Expect(bigint.ZeroUint512().BitLen()).To(Equal(0))
		})

		It("should be 512 for the top bit set", func() {
			Expect(bigint.UintFromUint64(1).Lsl(511).BitLen()).To(Equal(512))
		})
	})
})

var _ = Describe("Int512 Arithmetic", func() {
	Describe("Cmp", func() {
		It("should order negative below positive", func() {
			Expect(bigint.IntFromInt64(-5).Cmp(bigint.IntFromInt64(5))).To(Equal(-1))
			Expect(bigint.IntFromInt64(5).Cmp(bigint.IntFromInt64(-5))).To(Equal(1))
			Expect(bigint.IntFromInt64(5).Cmp(bigint.IntFromInt64(5))).To(Equal(0))
		})
	})

	Describe("QuoRem", func() {
		It("should truncate toward zero like Go's integer division", func() {
			q, r, err := bigint.IntFromInt64(-7).QuoRem(bigint.IntFromInt64(2))
			Expect(err).To(BeNil())
			Expect(q.String()).To(Equal("-3"))
			Expect(r.String()).To(Equal("-1"))
		})

		It("should reject division by zero", func() {
			_, _, err := bigint.IntFromInt64(1).QuoRem(bigint.ZeroInt512())
			Expect(err).ToNot(BeNil())
		})
	})

	Describe("Neg", func() {
		It("should negate and back", func() {
			n := bigint.IntFromInt64(42)
			Expect(n.Neg().Neg()).To(Equal(n))
			Expect(n.Neg().String()).To(Equal("-42"))
		})
	})
})
