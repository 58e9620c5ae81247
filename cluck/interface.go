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

import "github.com/nabbar/prinbee/errors"

// StatusHandler is invoked whenever the lock service's own readiness
// changes.
type StatusHandler func(ready bool)

// Lock is the abstract "cluck" collaborator: a black-box
// distributed lock API. The daemon's SET_CONTEXT phases acquire
// a lock named "context::<name>" before mutating schema state and
// release it once every peer has ACKed (at once when there are no
// peers, or when the local update fails).
type Lock interface {
	// IsLockReady reports whether the lock backend is ready to accept
	// Acquire/Release calls (one input of the daemon readiness gate).
	IsLockReady() bool

	// Acquire takes name exclusively for this process without waiting:
	// it returns ErrorAlreadyHeld if name is already held, or another
	// error if the backend is not ready or fails.
	Acquire(name string) errors.Error

	// Release gives up a previously acquired lock. Releasing a lock
	// not held by this process returns ErrorNotHeld.
	Release(name string) errors.Error

	// OnStatusChange registers a callback for lock-service readiness
	// transitions.
	OnStatusChange(fn StatusHandler)
}
