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

const digitsLower = "0123456789abcdefghijklmnopqrstuvwxyz"
const digitsUpper = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// StringOpts controls ToString rendering.
type StringOpts struct {
	Base      int
	Prefix    bool
	Uppercase bool
}

func basePrefix(base int, uppercase bool) string {
	switch base {
	case 16:
		if uppercase {
			return "0X"
		}
		return "0x"
	case 8:
		if uppercase {
			return "0O"
		}
		return "0o"
	case 2:
		if uppercase {
			return "0B"
		}
		return "0b"
	}
	return ""
}

// ToString renders u in the given base (2-36), optionally with a
// "0x"/"0o"/"0b" style prefix for base 16/8/2 and in upper case digits.
func (u Uint512) ToString(opts StringOpts) string {
	base := opts.Base
	if base < 2 || base > 36 {
		base = 10
	}

	digits := digitsLower
	if opts.Uppercase {
		digits = digitsUpper
	}

	if u.IsZero() {
		s := "0"
		if opts.Prefix {
			return basePrefix(base, opts.Uppercase) + s
		}
		return s
	}

	var out []byte
	b := UintFromUint64(uint64(base))
	rem := u

	for !rem.IsZero() {
		var r Uint512
		rem, r, _ = rem.QuoRem(b)
		out = append(out, digits[r.limbs[0]])
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}

	s := string(out)
	if opts.Prefix {
		s = basePrefix(base, opts.Uppercase) + s
	}
	return s
}

// String renders u in base 10, matching the fmt.Stringer convention.
func (u Uint512) String() string {
	return u.ToString(StringOpts{Base: 10})
}

// ToString renders n in the given base, prefixing a "-" for negative
// values ahead of any base prefix.
func (n Int512) ToString(opts StringOpts) string {
	if n.IsNegative() {
		return "-" + n.Abs().ToString(opts)
	}
	return n.Uint512().ToString(opts)
}

// String renders n in base 10.
func (n Int512) String() string {
	return n.ToString(StringOpts{Base: 10})
}
