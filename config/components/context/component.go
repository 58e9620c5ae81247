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

// Package context is the context component: it owns the on-disk
// context registry rooted at the prinbee path.
package context

import (
	"github.com/nabbar/prinbee/config"
	ctx "github.com/nabbar/prinbee/context"
	"github.com/nabbar/prinbee/errors"
	"github.com/nabbar/prinbee/logger"
)

const ComponentKey = "context"

type Component struct {
	getLog func() logger.Logger

	root string
	reg  *ctx.Registry
}

// New creates the component rooted at root (the --prinbee-path
// flag); the "context" configuration section may override it.
func New(root string, getLog func() logger.Logger) *Component {
	return &Component{getLog: getLog, root: root}
}

func (c *Component) Key() string            { return ComponentKey }
func (c *Component) Dependencies() []string { return []string{"log"} }

func (c *Component) Init(v config.Values) errors.Error {
	c.root = v.String("root", c.root)
	return nil
}

func (c *Component) Start() errors.Error {
	reg, e := ctx.Open(c.root, c.getLog())
	if e != nil {
		return e
	}
	c.reg = reg
	return nil
}

func (c *Component) Reload(v config.Values) errors.Error {
	// The registry root cannot move while the daemon runs; a changed
	// value takes effect on the next restart.
	return nil
}

func (c *Component) Stop() errors.Error {
	c.reg = nil
	return nil
}

// Registry returns the open registry; nil before Start.
func (c *Component) Registry() *ctx.Registry { return c.reg }
