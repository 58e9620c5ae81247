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

package bigint

import (
	"math/bits"

	"github.com/nabbar/prinbee/errors"
)

// Add returns u+v truncated to 512 bits plus the carry out of the top
// limb (1 on overflow, 0 otherwise).
func (u Uint512) Add(v Uint512) (Uint512, uint64) {
	var r Uint512
	var carry uint64
	for i := 0; i < Limbs; i++ {
		r.limbs[i], carry = bits.Add64(u.limbs[i], v.limbs[i], carry)
	}
	return r, carry
}

// Sub returns u-v truncated to 512 bits plus the borrow out of the
// top limb (1 on underflow, 0 otherwise).
func (u Uint512) Sub(v Uint512) (Uint512, uint64) {
	var r Uint512
	var borrow uint64
	for i := 0; i < Limbs; i++ {
		r.limbs[i], borrow = bits.Sub64(u.limbs[i], v.limbs[i], borrow)
	}
	return r, borrow
}

// negate returns the two's complement negation of u: ^u + 1.
func (u Uint512) negate() Uint512 {
	var r Uint512
	for i := 0; i < Limbs; i++ {
		r.limbs[i] = ^u.limbs[i]
	}
	r, _ = r.Add(UintFromUint64(1))
	return r
}

// Mul returns u*v truncated to the low 512 bits of the full product.
func (u Uint512) Mul(v Uint512) Uint512 {
	var acc [2 * Limbs]uint64

	for i := 0; i < Limbs; i++ {
		if u.limbs[i] == 0 {
			continue
		}
		var carry uint64
		for j := 0; j < Limbs; j++ {
			hi, lo := bits.Mul64(u.limbs[i], v.limbs[j])
			var c1, c2 uint64
			acc[i+j], c1 = bits.Add64(acc[i+j], lo, 0)
			acc[i+j], c2 = bits.Add64(acc[i+j], carry, 0)
			carry = hi + c1 + c2
		}
		k := i + Limbs
		for carry != 0 && k < 2*Limbs {
			acc[k], carry = bits.Add64(acc[k], carry, 0)
			k++
		}
	}

	var r Uint512
	copy(r.limbs[:], acc[:Limbs])
	return r
}

// Cmp returns -1, 0 or 1 as u is less than, equal to, or greater than v,
// comparing both as unsigned magnitudes.
func (u Uint512) Cmp(v Uint512) int {
	for i := Limbs - 1; i >= 0; i-- {
		if u.limbs[i] != v.limbs[i] {
			if u.limbs[i] < v.limbs[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// QuoRem returns the quotient and remainder of u/v using unsigned long
// division. It returns ErrorDivideByZero if v is zero.
func (u Uint512) QuoRem(v Uint512) (q Uint512, r Uint512, err errors.Error) {
	if v.IsZero() {
		return Uint512{}, Uint512{}, errors.New(uint16(ErrorDivideByZero), ErrorDivideByZero.Message())
	}

	if u.Cmp(v) < 0 {
		return Uint512{}, u, nil
	}

	var rem Uint512
	for bit := BitSize - 1; bit >= 0; bit-- {
		rem = rem.shiftLeft1()
		if u.bitAt(bit) {
			rem.limbs[0] |= 1
		}
		if rem.Cmp(v) >= 0 {
			rem, _ = rem.Sub(v)
			q.setBit(bit)
		}
	}

	return q, rem, nil
}

func (u Uint512) bitAt(bit int) bool {
	return u.limbs[bit/64]&(1<<uint(bit%64)) != 0
}

func (u *Uint512) setBit(bit int) {
	u.limbs[bit/64] |= 1 << uint(bit%64)
}

func (u Uint512) shiftLeft1() Uint512 {
	var r Uint512
	var carry uint64
	for i := 0; i < Limbs; i++ {
		r.limbs[i] = (u.limbs[i] << 1) | carry
		carry = u.limbs[i] >> 63
	}
	return r
}

// Lsl returns u shifted left by n bits (0 shifted in, bits above 511
// dropped).
func (u Uint512) Lsl(n uint) Uint512 {
	if n == 0 {
		return u
	}
	if n >= BitSize {
		return Uint512{}
	}

	var r Uint512
	limbShift := n / 64
	bitShift := n % 64

	for i := Limbs - 1; i >= 0; i-- {
		var v uint64
		srcIdx := i - int(limbShift)
		if srcIdx >= 0 {
			v = u.limbs[srcIdx] << bitShift
			if bitShift != 0 && srcIdx-1 >= 0 {
				v |= u.limbs[srcIdx-1] >> (64 - bitShift)
			}
		}
		r.limbs[i] = v
	}
	return r
}

// Lsr returns u shifted right by n bits (logical, 0 shifted in).
func (u Uint512) Lsr(n uint) Uint512 {
	if n == 0 {
		return u
	}
	if n >= BitSize {
		return Uint512{}
	}

	var r Uint512
	limbShift := n / 64
	bitShift := n % 64

	for i := 0; i < Limbs; i++ {
		var v uint64
		srcIdx := i + int(limbShift)
		if srcIdx < Limbs {
			v = u.limbs[srcIdx] >> bitShift
			if bitShift != 0 && srcIdx+1 < Limbs {
				v |= u.limbs[srcIdx+1] << (64 - bitShift)
			}
		}
		r.limbs[i] = v
	}
	return r
}

// And returns the bitwise AND of u and v.
func (u Uint512) And(v Uint512) Uint512 {
	var r Uint512
	for i := 0; i < Limbs; i++ {
		r.limbs[i] = u.limbs[i] & v.limbs[i]
	}
	return r
}

// Or returns the bitwise OR of u and v.
func (u Uint512) Or(v Uint512) Uint512 {
	var r Uint512
	for i := 0; i < Limbs; i++ {
		r.limbs[i] = u.limbs[i] | v.limbs[i]
	}
	return r
}

// Xor returns the bitwise XOR of u and v.
func (u Uint512) Xor(v Uint512) Uint512 {
	var r Uint512
	for i := 0; i < Limbs; i++ {
		r.limbs[i] = u.limbs[i] ^ v.limbs[i]
	}
	return r
}

// Not returns the bitwise complement of u.
func (u Uint512) Not() Uint512 {
	var r Uint512
	for i := 0; i < Limbs; i++ {
		r.limbs[i] = ^u.limbs[i]
	}
	return r
}

// BitLen returns the number of bits required to represent u, i.e. the
// index of its highest set bit plus one. BitLen of zero is 0.
func (u Uint512) BitLen() int {
	for i := Limbs - 1; i >= 0; i-- {
		if u.limbs[i] != 0 {
			return i*64 + bits.Len64(u.limbs[i])
		}
	}
	return 0
}

// Add returns n+v truncated to 512 bits plus the raw carry out of the
// top limb. Unsigned and signed addition share the same bit pattern in
// two's complement, so this delegates to Uint512.Add.
func (n Int512) Add(v Int512) (Int512, uint64) {
	sum, carry := n.Uint512().Add(v.Uint512())
	return sum.Int512(), carry
}

// Sub returns n-v truncated to 512 bits plus the raw borrow out of the
// top limb.
func (n Int512) Sub(v Int512) (Int512, uint64) {
	diff, borrow := n.Uint512().Sub(v.Uint512())
	return diff.Int512(), borrow
}

// Mul returns n*v truncated to the low 512 bits of the signed product.
func (n Int512) Mul(v Int512) Int512 {
	return n.Uint512().Mul(v.Uint512()).Int512()
}

// Neg returns the two's complement negation of n.
func (n Int512) Neg() Int512 {
	return n.Uint512().negate().Int512()
}

// Cmp returns -1, 0 or 1 as n is less than, equal to, or greater than v,
// interpreting both operands as signed.
func (n Int512) Cmp(v Int512) int {
	if n.IsNegative() != v.IsNegative() {
		if n.IsNegative() {
			return -1
		}
		return 1
	}
	return n.Uint512().Cmp(v.Uint512())
}

// QuoRem returns the quotient and remainder of n/v, truncated toward
// zero as Go's integer division does. It returns ErrorDivideByZero if v
// is zero.
func (n Int512) QuoRem(v Int512) (q Int512, r Int512, err errors.Error) {
	if v.IsZero() {
		return Int512{}, Int512{}, errors.New(uint16(ErrorDivideByZero), ErrorDivideByZero.Message())
	}

	negQ := n.IsNegative() != v.IsNegative()
	negR := n.IsNegative()

	uq, ur, qerr := n.Abs().QuoRem(v.Abs())
	if qerr != nil {
		return Int512{}, Int512{}, qerr
	}

	q = uq.Int512()
	if negQ {
		q = q.Neg()
	}

	r = ur.Int512()
	if negR && !r.IsZero() {
		r = r.Neg()
	}

	return q, r, nil
}
