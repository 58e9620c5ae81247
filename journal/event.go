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

package journal

import "github.com/google/uuid"

// Status is an event's lifecycle state: it may only advance
// along READY -> FORWARDED -> ACKNOWLEDGED -> {COMPLETED | FAILED},
// skipping intermediates, never regressing.
type Status uint8

const (
	StatusReady Status = iota
	StatusForwarded
	StatusAcknowledged
	StatusCompleted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "READY"
	case StatusForwarded:
		return "FORWARDED"
	case StatusAcknowledged:
		return "ACKNOWLEDGED"
	case StatusCompleted:
		return "COMPLETED"
	case StatusFailed:
		return "FAILED"
	}
	return "UNKNOWN"
}

// IsTerminal reports whether s is an absorbing state.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanAdvanceTo reports whether transitioning from s to next is a legal,
// non-regressive move (staying put is allowed; terminal states accept
// no further transition).
func (s Status) CanAdvanceTo(next Status) bool {
	if s.IsTerminal() {
		return false
	}
	return next >= s
}

// Attachment is one of an event's 1..255 byte-strings: either
// provided as raw bytes or as a path to a regular file on disk. Either
// kind is stored inline up to InlineAttachmentThreshold (a path's file
// is read in); a larger one is externalized, raw bytes by a full copy
// and a path per AttachmentCopyMode.
type Attachment struct {
	Data       []byte
	SourcePath string
}

// IsPath reports whether this attachment was supplied as a filesystem
// path rather than raw bytes.
func (a Attachment) IsPath() bool {
	return a.SourcePath != ""
}

// Event is the in-memory representation of a durable journal entry
//: request-id, event-time, status and attachments, plus the
// bookkeeping the journal needs to rewrite status/debug-offset without
// re-parsing the file.
type Event struct {
	RequestID   string
	TimeSec     int64
	TimeNSec    int64
	Status      Status
	Attachments []Attachment

	file   int
	offset int64
}

// NewRequestID returns a fresh opaque request-id, a UUID in its
// 36-character dashed form, so it always fits the 255-byte id_len
// budget with room to spare for caller-supplied ids.
func NewRequestID() string {
	return uuid.New().String()
}

// DebugFile returns the journal file index the event was read from,
// valid only when NextEvent was called with debug=true.
func (e Event) DebugFile() int {
	return e.file
}

// DebugOffset returns the byte offset of the event's header within its
// file, valid only when NextEvent was called with debug=true.
func (e Event) DebugOffset() int64 {
	return e.offset
}
