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

import "github.com/nabbar/prinbee/errors"

// Message is a decoded frame: header plus its raw body bytes, ready to
// be handed to the schema-driven codec for the name in question.
type Message struct {
	Header Header
	Body   []byte
}

// NewMessage builds a message with its Length already set from the
// body; CRC16 is computed at Marshal time.
func NewMessage(name Name, serial uint32, flags Flags, body []byte) *Message {
	return &Message{
		Header: Header{
			Name:   name,
			Serial: serial,
			Flags:  flags,
			Length: uint32(len(body)),
		},
		Body: body,
	}
}

// Marshal renders the full wire frame: header, body, trailer, with the
// CRC-16 computed over all three (crc field held at zero while
// computing it).
func (m *Message) Marshal() []byte {
	m.Header.Length = uint32(len(m.Body))
	m.Header.CRC16 = 0

	out := make([]byte, HeaderSize+len(m.Body)+TrailerSize)
	m.Header.Encode(out[:HeaderSize])
	copy(out[HeaderSize:], m.Body)
	copy(out[HeaderSize+len(m.Body):], endMarkBytes[:])

	crc := CRC16(0, out)
	m.Header.CRC16 = crc
	m.Header.Encode(out[:HeaderSize])

	return out
}

// Unmarshal parses a full frame (header+body+trailer) from buf,
// validating magic, declared length, end-marker and CRC-16. The CRC
// check relies on the standard residue property of a CRC with a zero
// final XOR: the checksum over the frame with its CRC field zeroed,
// continued over the stored CRC bytes, is zero exactly when they match.
func Unmarshal(buf []byte) (*Message, errors.Error) {
	h, e := DecodeHeader(buf)
	if e != nil {
		return nil, e
	}

	total := HeaderSize + int(h.Length) + TrailerSize
	if len(buf) < total {
		return nil, errors.New(uint16(ErrorShortBuffer), ErrorShortBuffer.Message())
	}

	frame := buf[:total]
	check := append([]byte(nil), frame...)
	check[16], check[17] = 0, 0 // CRC field, see Header.Encode
	if CRC16(CRC16(0, check), frame[16:18]) != 0 {
		return nil, errors.New(uint16(ErrorCRCMismatch), ErrorCRCMismatch.Message())
	}

	trailer := frame[HeaderSize+int(h.Length):]
	if trailer[0] != endMarkBytes[0] || trailer[1] != endMarkBytes[1] {
		return nil, errors.New(uint16(ErrorBadEndMarker), ErrorBadEndMarker.Message())
	}

	body := make([]byte, h.Length)
	copy(body, frame[HeaderSize:HeaderSize+int(h.Length)])

	return &Message{Header: h, Body: body}, nil
}
