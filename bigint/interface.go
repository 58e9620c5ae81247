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

// Package bigint implements the fixed-width 512-bit integers used by the
// wire protocol and journal event fields: Uint512 (unsigned) and Int512
// (two's complement signed). Both share the same eight 64-bit, little
// endian limb layout - limbs[0] is the least significant word, limbs[7]
// the most significant - so a Uint512 and an Int512 built from the same
// limbs marshal to the exact same 64 bytes on the wire; only comparison,
// division and string formatting need to know which one they are.
package bigint

const (
	// Limbs is the number of 64-bit words backing a Uint512/Int512.
	Limbs = 8

	// ByteSize is the width of the binary encoding used on the wire and
	// in the journal (64 bytes, little endian).
	ByteSize = Limbs * 8

	// BitSize is the total number of bits a Uint512/Int512 represents.
	BitSize = ByteSize * 8
)

// Uint512 is an unsigned 512-bit integer: limbs[0] is bits 0-63,
// limbs[7] is bits 448-511. The zero value is 0.
type Uint512 struct {
	limbs [Limbs]uint64
}

// Int512 is a two's complement signed 512-bit integer using the same
// limb layout as Uint512. The zero value is 0.
type Int512 struct {
	limbs [Limbs]uint64
}

// ZeroUint512 returns the unsigned value 0.
func ZeroUint512() Uint512 {
	return Uint512{}
}

// ZeroInt512 returns the signed value 0.
func ZeroInt512() Int512 {
	return Int512{}
}

// UintFromUint64 builds a Uint512 from a single 64-bit word.
func UintFromUint64(v uint64) Uint512 {
	var u Uint512
	u.limbs[0] = v
	return u
}

// UintFromLimbs builds a Uint512 from eight little endian limbs. Extra
// limbs beyond Limbs are ignored; missing limbs are treated as zero.
func UintFromLimbs(limbs ...uint64) Uint512 {
	var u Uint512
	for i := 0; i < Limbs && i < len(limbs); i++ {
		u.limbs[i] = limbs[i]
	}
	return u
}

// IntFromInt64 builds an Int512 from a signed 64-bit value, sign
// extending into the high limbs.
func IntFromInt64(v int64) Int512 {
	var n Int512
	n.limbs[0] = uint64(v)
	if v < 0 {
		for i := 1; i < Limbs; i++ {
			n.limbs[i] = ^uint64(0)
		}
	}
	return n
}

// IntFromUint64 builds a non-negative Int512 from a 64-bit word.
func IntFromUint64(v uint64) Int512 {
	var n Int512
	n.limbs[0] = v
	return n
}

// IntFromLimbs builds an Int512 from eight little endian limbs, the top
// bit of the last limb is the sign bit.
func IntFromLimbs(limbs ...uint64) Int512 {
	var n Int512
	for i := 0; i < Limbs && i < len(limbs); i++ {
		n.limbs[i] = limbs[i]
	}
	return n
}

// Limbs returns a copy of the underlying little endian limb array.
func (u Uint512) Limbs() [Limbs]uint64 {
	return u.limbs
}

// Limbs returns a copy of the underlying little endian limb array.
func (n Int512) Limbs() [Limbs]uint64 {
	return n.limbs
}

// IsZero reports whether u == 0.
func (u Uint512) IsZero() bool {
	for _, l := range u.limbs {
		if l != 0 {
			return false
		}
	}
	return true
}

// IsZero reports whether n == 0.
func (n Int512) IsZero() bool {
	for _, l := range n.limbs {
		if l != 0 {
			return false
		}
	}
	return true
}

// IsNegative reports whether n is strictly less than zero, i.e. the sign
// bit (bit 511) is set.
func (n Int512) IsNegative() bool {
	return n.limbs[Limbs-1]&(1<<63) != 0
}

// IsPositive reports whether n is strictly greater than zero.
func (n Int512) IsPositive() bool {
	return !n.IsZero() && !n.IsNegative()
}

// Uint512 reinterprets n's bit pattern as an unsigned value, discarding
// its sign. This is a pure relabeling: no bits are changed.
func (n Int512) Uint512() Uint512 {
	return Uint512{limbs: n.limbs}
}

// Int512 reinterprets u's bit pattern as a signed value. This is a pure
// relabeling: no bits are changed.
func (u Uint512) Int512() Int512 {
	return Int512{limbs: u.limbs}
}

// Abs returns the unsigned magnitude of n: n itself if n >= 0, or its
// two's complement negation otherwise.
func (n Int512) Abs() Uint512 {
	if !n.IsNegative() {
		return n.Uint512()
	}
	return n.Uint512().negate()
}
