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

// Package log is the logging component: it turns the "log" section of
// the configuration file into a shared logger.Logger every other
// component and the service cores receive at construction time.
package log

import (
	"io"
	"os"

	"github.com/nabbar/prinbee/config"
	"github.com/nabbar/prinbee/errors"
	"github.com/nabbar/prinbee/logger"
)

const ComponentKey = "log"

type Component struct {
	out io.Writer
	lvl logger.Level
	log logger.Logger
}

// New creates the component writing to out; a nil out defaults to
// stderr.
func New(out io.Writer) *Component {
	if out == nil {
		out = os.Stderr
	}
	return &Component{out: out, lvl: logger.InfoLevel}
}

func (c *Component) Key() string            { return ComponentKey }
func (c *Component) Dependencies() []string { return nil }

func (c *Component) Init(v config.Values) errors.Error {
	c.lvl = logger.ParseLevel(v.String("level", "info"))
	return nil
}

func (c *Component) Start() errors.Error {
	c.log = logger.New(c.lvl, c.out)
	return nil
}

// Reload rebuilds the logger at the new level; callers holding the old
// Logger keep it until they re-ask, which is acceptable for a level
// change.
func (c *Component) Reload(v config.Values) errors.Error {
	if e := c.Init(v); e != nil {
		return e
	}
	return c.Start()
}

func (c *Component) Stop() errors.Error { return nil }

// Logger returns the built logger; a Nop logger before Start.
func (c *Component) Logger() logger.Logger {
	if c.log == nil {
		return logger.Nop()
	}
	return c.log
}
