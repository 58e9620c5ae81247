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

package daemon

import (
	"sync"

	"github.com/nabbar/prinbee/transport"
	"github.com/nabbar/prinbee/wire"
)

// Payload is a work item passed from the event loop to a worker
// (glossary: "Payload"), pairing a peer connection id and the
// received message with an integer Stage used to implement
// multi-phase operations (e.g. SET_CONTEXT) without blocking a
// worker goroutine across a round trip.
type Payload struct {
	ConnID transport.ID
	Msg    *wire.Message
	Stage  int
	Acks   *AckMap
}

// AckMap is the mutex-guarded table of outstanding acknowledgments a
// multi-phase operation is waiting on.
type AckMap struct {
	mu       sync.Mutex
	expected map[transport.ID]bool
}

func NewAckMap(peers []transport.ID) *AckMap {
	m := &AckMap{expected: make(map[transport.ID]bool, len(peers))}
	for _, id := range peers {
		m.expected[id] = false
	}
	return m
}

// Mark records that id has replied (ACK or ERR, either resolves the
// wait).
func (a *AckMap) Mark(id transport.ID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.expected[id]; ok {
		a.expected[id] = true
	}
}

// AllReplied reports whether every expected peer has replied.
func (a *AckMap) AllReplied() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, done := range a.expected {
		if !done {
			return false
		}
	}
	return true
}
