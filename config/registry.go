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

package config

import (
	"sync"

	"github.com/nabbar/prinbee/errors"
)

// Components is the component registry: components register under a
// unique key, declare their dependency keys, and Start/Reload/Stop
// are driven in (resp. reverse) dependency order.
type Components struct {
	mu   sync.Mutex
	reg  map[string]Component
	vals map[string]Values
}

func NewComponents() *Components {
	return &Components{reg: make(map[string]Component), vals: make(map[string]Values)}
}

// Register adds a component under its own Key. Registering the same
// key twice is an error.
func (c *Components) Register(cpt Component, v Values) errors.Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.reg[cpt.Key()]; ok {
		return errors.New(uint16(ErrorComponentAlreadyRegistered), ErrorComponentAlreadyRegistered.Message())
	}
	c.reg[cpt.Key()] = cpt
	c.vals[cpt.Key()] = v
	return nil
}

// order returns registered keys topologically sorted by Dependencies,
// or an error if a dependency is missing or a cycle exists.
func (c *Components) order() ([]string, errors.Error) {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	state := make(map[string]int, len(c.reg))
	var out []string

	var visit func(key string) errors.Error
	visit = func(key string) errors.Error {
		switch state[key] {
		case black:
			return nil
		case gray:
			return errors.New(uint16(ErrorCycleDependency), ErrorCycleDependency.Message())
		}
		state[key] = gray
		cpt, ok := c.reg[key]
		if !ok {
			return errors.New(uint16(ErrorUnknownComponent), ErrorUnknownComponent.Message())
		}
		for _, dep := range cpt.Dependencies() {
			if _, ok := c.reg[dep]; !ok {
				return errors.New(uint16(ErrorMissingDependency), ErrorMissingDependency.Message())
			}
			if e := visit(dep); e != nil {
				return e
			}
		}
		state[key] = black
		out = append(out, key)
		return nil
	}

	for key := range c.reg {
		if e := visit(key); e != nil {
			return nil, e
		}
	}
	return out, nil
}

// Init calls Init on every registered component (order-independent:
// Init only parses configuration, it must not reach across to other
// components).
func (c *Components) Init() errors.Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, cpt := range c.reg {
		if e := cpt.Init(c.vals[key]); e != nil {
			return e
		}
	}
	return nil
}

// Start brings up every component in dependency order.
func (c *Components) Start() errors.Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	order, e := c.order()
	if e != nil {
		return e
	}
	for _, key := range order {
		if se := c.reg[key].Start(); se != nil {
			return errors.New(uint16(ErrorStartFailed), ErrorStartFailed.Message(), se)
		}
	}
	return nil
}

// Reload re-applies configuration to every component in dependency
// order.
func (c *Components) Reload() errors.Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	order, e := c.order()
	if e != nil {
		return e
	}
	for _, key := range order {
		if re := c.reg[key].Reload(c.vals[key]); re != nil {
			return re
		}
	}
	return nil
}

// ReloadWith refreshes every component's stored configuration section
// through load (typically Source.Section after a file change), then
// reloads in dependency order.
func (c *Components) ReloadWith(load func(key string) Values) errors.Error {
	c.mu.Lock()
	for key := range c.reg {
		c.vals[key] = load(key)
	}
	c.mu.Unlock()
	return c.Reload()
}

// Stop brings down every component in reverse dependency order:
// dependents stop before their dependencies.
func (c *Components) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	order, e := c.order()
	if e != nil {
		return
	}
	for i := len(order) - 1; i >= 0; i-- {
		_ = c.reg[order[i]].Stop()
	}
}

func (c *Components) Get(key string) (Component, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cpt, ok := c.reg[key]
	return cpt, ok
}
