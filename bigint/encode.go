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
	"encoding/binary"

	"github.com/nabbar/prinbee/errors"
)

// MarshalBinary encodes u as 64 bytes, little endian, limb 0 first -
// the exact layout the wire protocol and journal event records use for
// a uint512 field.
func (u Uint512) MarshalBinary() ([]byte, error) {
	out := make([]byte, ByteSize)
	for i := 0; i < Limbs; i++ {
		binary.LittleEndian.PutUint64(out[i*8:], u.limbs[i])
	}
	return out, nil
}

// UnmarshalBinary decodes 64 little endian bytes into u. It returns
// ErrorOverflow if fewer than ByteSize bytes are given.
func (u *Uint512) UnmarshalBinary(data []byte) error {
	if len(data) < ByteSize {
		return errors.New(uint16(ErrorOverflow), ErrorOverflow.Message())
	}
	for i := 0; i < Limbs; i++ {
		u.limbs[i] = binary.LittleEndian.Uint64(data[i*8:])
	}
	return nil
}

// MarshalBinary encodes n as 64 bytes, little endian, two's complement.
func (n Int512) MarshalBinary() ([]byte, error) {
	return n.Uint512().MarshalBinary()
}

// UnmarshalBinary decodes 64 little endian bytes into n.
func (n *Int512) UnmarshalBinary(data []byte) error {
	var u Uint512
	if err := u.UnmarshalBinary(data); err != nil {
		return err
	}
	n.limbs = u.limbs
	return nil
}
