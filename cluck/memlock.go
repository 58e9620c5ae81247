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

package cluck

import (
	"sync"

	"github.com/nabbar/prinbee/errors"
)

// MemLock is an in-process Lock used by this repo's own tests; it
// implements the same Acquire/Release/IsLockReady/OnStatusChange
// contract as NutsLock without a backing store.
type MemLock struct {
	mu    sync.Mutex
	held  map[string]struct{}
	ready bool
	hooks []StatusHandler
}

func NewMemLock() *MemLock {
	return &MemLock{held: make(map[string]struct{}), ready: true}
}

func (l *MemLock) IsLockReady() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ready
}

func (l *MemLock) SetReady(ready bool) {
	l.mu.Lock()
	changed := l.ready != ready
	l.ready = ready
	hooks := append([]StatusHandler(nil), l.hooks...)
	l.mu.Unlock()
	if changed {
		for _, h := range hooks {
			h(ready)
		}
	}
}

func (l *MemLock) OnStatusChange(fn StatusHandler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hooks = append(l.hooks, fn)
}

func (l *MemLock) Acquire(name string) errors.Error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.ready {
		return errors.New(uint16(ErrorLockNotReady), ErrorLockNotReady.Message())
	}
	if _, ok := l.held[name]; ok {
		return errors.New(uint16(ErrorAlreadyHeld), ErrorAlreadyHeld.Message())
	}
	l.held[name] = struct{}{}
	return nil
}

func (l *MemLock) Release(name string) errors.Error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[name]; !ok {
		return errors.New(uint16(ErrorNotHeld), ErrorNotHeld.Message())
	}
	delete(l.held, name)
	return nil
}
