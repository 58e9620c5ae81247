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

package transport

import (
	"sync"
	"time"
)

// Registry is the owner-side map[ID]*Connection: event handlers are handed
// (service, connection id) by value, and look the live *Connection up
// here rather than holding a back-pointer.
type Registry struct {
	mu    sync.RWMutex
	conns map[ID]*Connection
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[ID]*Connection)}
}

func (r *Registry) Add(c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c.ID()] = c
}

func (r *Registry) Remove(id ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
}

func (r *Registry) Get(id ID) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[id]
	return c, ok
}

// ByKind returns a snapshot slice of all connections of the given
// kind, used for e.g. broadcasting SET_CONTEXT to every NODE peer.
func (r *Registry) ByKind(k Kind) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Connection, 0, len(r.conns))
	for _, c := range r.conns {
		if c.Kind() == k {
			out = append(out, c)
		}
	}
	return out
}

// All returns a snapshot of every tracked connection.
func (r *Registry) All() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Connection, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// StaleUnregistered returns connections that have exceeded the
// handshake timeout without completing REG; the proxy's stale scan
// drops them.
func (r *Registry) StaleUnregistered(now time.Time) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Connection
	for _, c := range r.conns {
		if c.HandshakeExpired(now) {
			out = append(out, c)
		}
	}
	return out
}

// Dead returns connections that have exceeded MaxPingPongFailures.
func (r *Registry) Dead() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Connection
	for _, c := range r.conns {
		if c.IsDead() {
			out = append(out, c)
		}
	}
	return out
}

// CloseAll closes every tracked connection; used during the ordered
// shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	conns := make([]*Connection, 0, len(r.conns))
	for _, c := range r.conns {
		conns = append(conns, c)
	}
	r.conns = make(map[ID]*Connection)
	r.mu.Unlock()

	for _, c := range conns {
		_ = c.Close()
	}
}
