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

package bus

import (
	"sync"

	"github.com/nabbar/prinbee/errors"
)

// MemBus is an in-process Bus implementation used by this repo's own
// tests (and usable as a single-host fallback): it delivers messages
// synchronously to every subscriber of the matching name, with no
// network round trip.
type MemBus struct {
	mu   sync.RWMutex
	subs map[Name][]*memSub
	seq  uint64
}

func NewMemBus() *MemBus {
	return &MemBus{subs: make(map[Name][]*memSub)}
}

type memSub struct {
	id   uint64
	name Name
	fn   Handler
	bus  *MemBus
}

func (s *memSub) Unsubscribe() errors.Error {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	list := s.bus.subs[s.name]
	for i, o := range list {
		if o.id == s.id {
			s.bus.subs[s.name] = append(list[:i], list[i+1:]...)
			break
		}
	}
	return nil
}

func (b *MemBus) Publish(msg Message) errors.Error {
	b.mu.RLock()
	list := append([]*memSub(nil), b.subs[msg.Name]...)
	b.mu.RUnlock()
	for _, s := range list {
		s.fn(msg)
	}
	return nil
}

func (b *MemBus) Subscribe(name Name, fn Handler) (Subscription, errors.Error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	s := &memSub{id: b.seq, name: name, fn: fn, bus: b}
	b.subs[name] = append(b.subs[name], s)
	return s, nil
}

func (b *MemBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = make(map[Name][]*memSub)
	return nil
}
