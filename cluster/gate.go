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

package cluster

import "sync"

// Gate implements the daemon readiness gate: binary listeners
// open only once every tracked condition is simultaneously true, and
// once opened a transient loss of any single condition does not close
// them again (a one-way latch from not-ready to ready).
type Gate struct {
	mu         sync.Mutex
	fluid      bool
	ipwall     bool
	clock      bool
	lock       bool
	addrValid  bool
	latched    bool
	onReady    []func()
}

func NewGate() *Gate {
	return &Gate{}
}

// OnReady registers fn to run exactly once, the first time every
// condition becomes true simultaneously.
func (g *Gate) OnReady(fn func()) {
	g.mu.Lock()
	already := g.latched
	g.onReady = append(g.onReady, fn)
	g.mu.Unlock()
	if already {
		fn()
	}
}

func (g *Gate) SetFluidSettingsReady(v bool) { g.set(&g.fluid, v) }
func (g *Gate) SetIPWallUp(v bool)            { g.set(&g.ipwall, v) }
func (g *Gate) SetClockStable(v bool)         { g.set(&g.clock, v) }
func (g *Gate) SetLockReady(v bool)           { g.set(&g.lock, v) }
func (g *Gate) SetAddressValid(v bool)        { g.set(&g.addrValid, v) }

func (g *Gate) set(field *bool, v bool) {
	g.mu.Lock()
	*field = v
	justReady := !g.latched && g.fluid && g.ipwall && g.clock && g.lock && g.addrValid
	if justReady {
		g.latched = true
	}
	hooks := append([]func(){}, g.onReady...)
	g.mu.Unlock()

	if justReady {
		for _, fn := range hooks {
			fn()
		}
	}
}

// IsReady reports whether the gate has ever latched open. Once open,
// once latched it stays latched regardless of subsequent transient
// flag loss.
func (g *Gate) IsReady() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.latched
}

// Snapshot returns the current value of every tracked condition,
// primarily for diagnostics/logging.
func (g *Gate) Snapshot() (fluid, ipwall, clock, lock, addrValid, latched bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fluid, g.ipwall, g.clock, g.lock, g.addrValid, g.latched
}
