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

package wire

import (
	"encoding/binary"

	"github.com/nabbar/prinbee/errors"
)

const (
	// HeaderSize is the fixed binary message header width.
	HeaderSize = 24
	// TrailerSize is the fixed end-marker trailer width.
	TrailerSize = 2
	// MaxBodyLength bounds a single frame's body so a corrupt length
	// field cannot make the reader allocate unbounded memory.
	MaxBodyLength = 64 << 20
)

var (
	magicBytes   = [2]byte{'P', 'B'}
	endMarkBytes = [2]byte{'e', 'v'}
)

// Flags is a bitmask carried in the header; no bit is currently
// assigned a meaning yet, the field exists for forward
// compatibility with future framing extensions.
type Flags uint16

// Header is the 24-byte fixed frame header preceding every message
// body: magic, interned name, serial, flags, body length and
// a CRC-16 computed over header+body+trailer with this field held at
// zero.
type Header struct {
	Name     Name
	Serial   uint32
	Flags    Flags
	Length   uint32
	CRC16    uint16
	Reserved [6]byte
}

// Encode writes the 24-byte header to buf, which must be at least
// HeaderSize long.
func (h Header) Encode(buf []byte) {
	_ = buf[HeaderSize-1]
	copy(buf[0:2], magicBytes[:])
	binary.LittleEndian.PutUint32(buf[2:6], uint32(h.Name))
	binary.LittleEndian.PutUint32(buf[6:10], h.Serial)
	binary.LittleEndian.PutUint16(buf[10:12], uint16(h.Flags))
	binary.LittleEndian.PutUint32(buf[12:16], h.Length)
	binary.LittleEndian.PutUint16(buf[16:18], h.CRC16)
	copy(buf[18:24], h.Reserved[:])
}

// DecodeHeader parses the 24-byte header from buf. It validates the
// leading magic but not the CRC, which depends on the body and
// trailer as well.
func DecodeHeader(buf []byte) (Header, errors.Error) {
	if len(buf) < HeaderSize {
		return Header{}, errors.New(uint16(ErrorShortBuffer), ErrorShortBuffer.Message())
	}
	if buf[0] != magicBytes[0] || buf[1] != magicBytes[1] {
		return Header{}, errors.New(uint16(ErrorBadMagic), ErrorBadMagic.Message())
	}

	var h Header
	h.Name = Name(binary.LittleEndian.Uint32(buf[2:6]))
	h.Serial = binary.LittleEndian.Uint32(buf[6:10])
	h.Flags = Flags(binary.LittleEndian.Uint16(buf[10:12]))
	h.Length = binary.LittleEndian.Uint32(buf[12:16])
	h.CRC16 = binary.LittleEndian.Uint16(buf[16:18])
	copy(h.Reserved[:], buf[18:24])

	if h.Length > MaxBodyLength {
		return Header{}, errors.New(uint16(ErrorMessageTooLarge), ErrorMessageTooLarge.Message())
	}

	return h, nil
}
