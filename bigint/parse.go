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
	"strings"

	"github.com/nabbar/prinbee/errors"
)

// ParseUint parses s as an unsigned integer in the given base (2-36). A
// leading "0x"/"0X" (base 16), "0o"/"0O" (base 8) or "0b"/"0B" (base 2)
// prefix is accepted and, when present, overrides base if base is 0.
func ParseUint(s string, base int) (Uint512, errors.Error) {
	s, base, e := stripPrefix(s, base)
	if e != nil {
		return Uint512{}, e
	}

	if len(s) == 0 {
		return Uint512{}, errors.New(uint16(ErrorEmptyString), ErrorEmptyString.Message())
	}

	if base < 2 || base > 36 {
		return Uint512{}, errors.New(uint16(ErrorInvalidBase), ErrorInvalidBase.Message())
	}

	var (
		acc = Uint512{}
		b   = UintFromUint64(uint64(base))
	)

	for _, r := range s {
		if r == '_' {
			continue
		}
		d, ok := digitValue(r)
		if !ok || d >= base {
			return Uint512{}, errors.New(uint16(ErrorInvalidDigit), ErrorInvalidDigit.Message())
		}
		acc, _ = acc.Mul(b).Add(UintFromUint64(uint64(d)))
	}

	return acc, nil
}

// ParseInt parses s as a signed integer in the given base, accepting an
// optional leading "+" or "-" ahead of any base prefix.
func ParseInt(s string, base int) (Int512, errors.Error) {
	neg := false
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	u, e := ParseUint(s, base)
	if e != nil {
		return Int512{}, e
	}

	n := u.Int512()
	if neg {
		n = n.Neg()
	}
	return n, nil
}

func stripPrefix(s string, base int) (string, int, errors.Error) {
	lower := strings.ToLower(s)

	switch {
	case strings.HasPrefix(lower, "0x"):
		if base != 0 && base != 16 {
			return "", 0, errors.New(uint16(ErrorInvalidBase), ErrorInvalidBase.Message())
		}
		return s[2:], 16, nil
	case strings.HasPrefix(lower, "0o"):
		if base != 0 && base != 8 {
			return "", 0, errors.New(uint16(ErrorInvalidBase), ErrorInvalidBase.Message())
		}
		return s[2:], 8, nil
	case strings.HasPrefix(lower, "0b"):
		if base != 0 && base != 2 {
			return "", 0, errors.New(uint16(ErrorInvalidBase), ErrorInvalidBase.Message())
		}
		return s[2:], 2, nil
	}

	if base == 0 {
		base = 10
	}
	return s, base, nil
}

func digitValue(r rune) (int, bool) {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0'), true
	case r >= 'a' && r <= 'z':
		return int(r-'a') + 10, true
	case r >= 'A' && r <= 'Z':
		return int(r-'A') + 10, true
	}
	return 0, false
}
