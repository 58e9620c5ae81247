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
	"bufio"
	"io"

	"github.com/nabbar/prinbee/errors"
)

// Reader implements the frame reader state machine:
// WAIT_MAGIC -> READ_HEADER -> READ_BODY -> VALIDATE_CRC ->
// VALIDATE_END_MARKER -> DISPATCH (the CRC covers body and trailer, so
// it is checked once both are read), with a RESYNC fallback on any
// validation failure: the rejected frame is discarded as delimited by
// its header's length field, and the stream is scanned byte by byte
// from there for the next magic. Bytes inside the rejected frame are
// not rescanned.
type Reader struct {
	r        *bufio.Reader
	resynced int
}

// NewReader wraps r with the frame reader state machine.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, 4096)}
}

// Resynced returns how many times ReadMessage has had to scan forward
// for a fresh magic after a corrupt frame. Exposed for tests and
// metrics.
func (rd *Reader) Resynced() int {
	return rd.resynced
}

// ReadMessage reads and validates the next frame, transparently
// resyncing past corrupt frames.
func (rd *Reader) ReadMessage() (*Message, errors.Error) {
	for {
		if e := rd.waitMagic(); e != nil {
			return nil, e
		}

		hdrRest := make([]byte, HeaderSize-2)
		if _, err := io.ReadFull(rd.r, hdrRest); err != nil {
			return nil, errors.New(uint16(ErrorShortBuffer), err.Error())
		}

		full := make([]byte, HeaderSize)
		copy(full, magicBytes[:])
		copy(full[2:], hdrRest)

		h, e := DecodeHeader(full)
		if e != nil {
			rd.resynced++
			continue
		}

		body := make([]byte, h.Length)
		if _, err := io.ReadFull(rd.r, body); err != nil {
			return nil, errors.New(uint16(ErrorShortBuffer), err.Error())
		}

		trailer := make([]byte, TrailerSize)
		if _, err := io.ReadFull(rd.r, trailer); err != nil {
			return nil, errors.New(uint16(ErrorShortBuffer), err.Error())
		}

		frame := make([]byte, 0, HeaderSize+len(body)+TrailerSize)
		frame = append(frame, full...)
		frame = append(frame, body...)
		frame = append(frame, trailer...)

		check := append([]byte(nil), frame...)
		check[16], check[17] = 0, 0 // CRC field, see Header.Encode
		if CRC16(CRC16(0, check), frame[16:18]) != 0 {
			rd.resynced++
			continue
		}

		if trailer[0] != endMarkBytes[0] || trailer[1] != endMarkBytes[1] {
			rd.resynced++
			continue
		}

		return &Message{Header: h, Body: body}, nil
	}
}

// waitMagic consumes bytes one at a time until it has seen the two
// magic bytes back to back, leaving the stream positioned right after
// them (i.e. at the start of the rest of the header).
func (rd *Reader) waitMagic() errors.Error {
	var prev byte
	have := false

	for {
		b, err := rd.r.ReadByte()
		if err != nil {
			return errors.New(uint16(ErrorShortBuffer), err.Error())
		}

		if have && prev == magicBytes[0] && b == magicBytes[1] {
			return nil
		}

		have = true
		prev = b
	}
}
