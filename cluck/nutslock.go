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
	"time"

	"github.com/nutsdb/nutsdb"

	"github.com/nabbar/prinbee/errors"
)

const lockBucket = "cluck_locks"

// NutsLock is the default concrete Lock implementation: a
// lease-style lock table backed by github.com/nutsdb/nutsdb, giving
// the cluck collaborator's black-box Acquire/Release contract a
// crash-surviving store.
type NutsLock struct {
	db    *nutsdb.DB
	mu    sync.Mutex
	held  map[string]struct{}
	ready bool
	hooks []StatusHandler
}

// OpenNutsLock opens (creating if absent) a nutsdb store at dir to
// back the lock table.
func OpenNutsLock(dir string) (*NutsLock, errors.Error) {
	db, err := nutsdb.Open(
		nutsdb.DefaultOptions,
		nutsdb.WithDir(dir),
	)
	if err != nil {
		return nil, errors.New(uint16(ErrorBackendFailure), ErrorBackendFailure.Message(), err)
	}
	l := &NutsLock{db: db, held: make(map[string]struct{}), ready: true}
	return l, nil
}

func (l *NutsLock) IsLockReady() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ready
}

// setReady updates readiness and fires registered hooks; used by
// tests and by an operator-triggered backend health check.
func (l *NutsLock) setReady(ready bool) {
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

func (l *NutsLock) OnStatusChange(fn StatusHandler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hooks = append(l.hooks, fn)
}

func (l *NutsLock) Acquire(name string) errors.Error {
	l.mu.Lock()
	if !l.ready {
		l.mu.Unlock()
		return errors.New(uint16(ErrorLockNotReady), ErrorLockNotReady.Message())
	}
	if _, ok := l.held[name]; ok {
		l.mu.Unlock()
		return errors.New(uint16(ErrorAlreadyHeld), ErrorAlreadyHeld.Message())
	}
	l.mu.Unlock()

	err := l.db.Update(func(tx *nutsdb.Tx) error {
		return tx.Put(lockBucket, []byte(name), []byte(time.Now().UTC().Format(time.RFC3339Nano)), 0)
	})
	if err != nil {
		return errors.New(uint16(ErrorBackendFailure), ErrorBackendFailure.Message(), err)
	}

	l.mu.Lock()
	l.held[name] = struct{}{}
	l.mu.Unlock()
	return nil
}

func (l *NutsLock) Release(name string) errors.Error {
	l.mu.Lock()
	if _, ok := l.held[name]; !ok {
		l.mu.Unlock()
		return errors.New(uint16(ErrorNotHeld), ErrorNotHeld.Message())
	}
	delete(l.held, name)
	l.mu.Unlock()

	err := l.db.Update(func(tx *nutsdb.Tx) error {
		return tx.Delete(lockBucket, []byte(name))
	})
	if err != nil {
		return errors.New(uint16(ErrorBackendFailure), ErrorBackendFailure.Message(), err)
	}
	return nil
}

func (l *NutsLock) Close() error {
	return l.db.Close()
}
