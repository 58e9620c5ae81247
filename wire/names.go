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

// Name is the interned u32 identifier carried in every message header.
// The name space is closed: every value prinbee ever sends on the wire
// is one of the constants below.
type Name uint32

const (
	NameUnknown Name = iota
	NameREG
	NameACK
	NameERR
	NamePING
	NamePONG
	NameListContexts
	NameGetContext
	NameSetContext
	NameSync
)

var nameToString = map[Name]string{
	NameREG:          "REG",
	NameACK:          "ACK",
	NameERR:          "ERR",
	NamePING:         "PING",
	NamePONG:         "PONG",
	NameListContexts: "LIST_CONTEXTS",
	NameGetContext:   "GET_CONTEXT",
	NameSetContext:   "SET_CONTEXT",
	NameSync:         "SYNC",
}

var stringToName = func() map[string]Name {
	m := make(map[string]Name, len(nameToString))
	for k, v := range nameToString {
		m[v] = k
	}
	return m
}()

// String renders the message name, or "UNKNOWN" for an unrecognized
// interned id.
func (n Name) String() string {
	if s, ok := nameToString[n]; ok {
		return s
	}
	return "UNKNOWN"
}

// ParseName resolves a textual message name to its interned id. ok is
// false if s is not part of the closed name space.
func ParseName(s string) (n Name, ok bool) {
	n, ok = stringToName[s]
	return n, ok
}

// IsLifecycle reports whether n is one of the connection-lifecycle
// messages (REG/ACK/ERR/PING/PONG) that bypass the worker-pool payload
// dispatch and are handled inline by the owning event loop.
func (n Name) IsLifecycle() bool {
	switch n {
	case NameREG, NameACK, NameERR, NamePING, NamePONG:
		return true
	}
	return false
}

// ReplyState is the outcome of a correlated request, as observed by the
// sender tracking serial -> pending_message.
type ReplyState uint8

const (
	ReplyReceived ReplyState = iota
	ReplySucceeded
	ReplyFailed
)

func (r ReplyState) String() string {
	switch r {
	case ReplyReceived:
		return "RECEIVED"
	case ReplySucceeded:
		return "SUCCEEDED"
	case ReplyFailed:
		return "FAILED"
	}
	return "UNKNOWN"
}
