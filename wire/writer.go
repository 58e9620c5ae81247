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
	"sync"

	"github.com/nabbar/prinbee/errors"
)

// Writer serializes messages onto a single connection. Outbound
// messages on one connection must be written in submission order
//, so Write takes a mutex for the whole marshal+flush.
type Writer struct {
	mu sync.Mutex
	w  *bufio.Writer
}

// NewWriter wraps w for frame serialization.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriterSize(w, 4096)}
}

// WriteMessage marshals and flushes msg, serialized against any other
// concurrent WriteMessage call on the same Writer.
func (wr *Writer) WriteMessage(msg *Message) errors.Error {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	frame := msg.Marshal()

	if _, err := wr.w.Write(frame); err != nil {
		return errors.New(uint16(ErrorShortBuffer), err.Error())
	}
	if err := wr.w.Flush(); err != nil {
		return errors.New(uint16(ErrorShortBuffer), err.Error())
	}

	return nil
}
