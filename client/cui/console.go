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

// Package cui is the line-oriented console front-end of the client
// library: it parses the command surface, batches work between
// begin-work and commit-work, and prints server ERR payloads verbatim
// on the terminal.
package cui

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/nabbar/prinbee/client"
	"github.com/nabbar/prinbee/logger"
)

// Prompt is printed before each interactive read.
const Prompt = "prinbee> "

// Dialer abstracts client.Dial for tests.
type Dialer func(addr, name string) (Session, error)

// Session is the subset of *client.Client the console drives.
type Session interface {
	ListContexts() ([]client.ContextSummary, error)
	GetContext(name string) (client.ContextSummary, error)
	SetContext(req client.SetContextRequest) error
	Ping() error
	Close() error
}

// clientSession adapts *client.Client's errors.Error returns onto the
// plain-error Session surface.
type clientSession struct{ c *client.Client }

func (s clientSession) ListContexts() ([]client.ContextSummary, error) {
	out, e := s.c.ListContexts()
	if e != nil {
		return nil, e
	}
	return out, nil
}

func (s clientSession) GetContext(name string) (client.ContextSummary, error) {
	cs, e := s.c.GetContext(name)
	if e != nil {
		return client.ContextSummary{}, e
	}
	return cs, nil
}

func (s clientSession) SetContext(req client.SetContextRequest) error {
	if e := s.c.SetContext(req); e != nil {
		return e
	}
	return nil
}

func (s clientSession) Ping() error {
	if e := s.c.Ping(); e != nil {
		return e
	}
	return nil
}

func (s clientSession) Close() error { return s.c.Close() }

// DefaultDialer connects through the real client library.
func DefaultDialer(log logger.Logger) Dialer {
	return func(addr, name string) (Session, error) {
		c, e := client.Dial(addr, name, log)
		if e != nil {
			return nil, e
		}
		return clientSession{c: c}, nil
	}
}

// Console owns one terminal session. It is a plain object threaded
// through initialization, never a process global, so two consoles can
// coexist in one test.
type Console struct {
	out  io.Writer
	dial Dialer

	name    string
	addr    string
	docPath string

	sess Session

	inWork bool
	work   []client.SetContextRequest

	errPrint  func(w io.Writer, format string, a ...interface{})
	infoPrint func(w io.Writer, format string, a ...interface{})
}

// Option mutates a Console at construction time.
type Option func(*Console)

// WithDocumentation points HELP at an external documentation file
// (--documentation).
func WithDocumentation(path string) Option {
	return func(c *Console) { c.docPath = path }
}

// New creates a console writing to out, dialing through dial, and
// registering under name on connect.
func New(out io.Writer, dial Dialer, name string, opts ...Option) *Console {
	c := &Console{
		out:  out,
		dial: dial,
		name: name,
		errPrint: func(w io.Writer, format string, a ...interface{}) {
			_, _ = color.New(color.FgRed).Fprintf(w, format, a...)
		},
		infoPrint: func(w io.Writer, format string, a ...interface{}) {
			_, _ = fmt.Fprintf(w, format, a...)
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Connected reports whether a session is live.
func (c *Console) Connected() bool { return c.sess != nil }

// InWork reports whether a begin-work batch is open.
func (c *Console) InWork() bool { return c.inWork }

// Run reads commands from in until EOF or /quit, printing Prompt
// before each line when interactive is set.
func (c *Console) Run(in io.Reader, interactive bool) error {
	sc := bufio.NewScanner(in)
	for {
		if interactive {
			c.infoPrint(c.out, "%s", Prompt)
		}
		if !sc.Scan() {
			break
		}
		quit, err := c.Execute(sc.Text())
		if err != nil {
			c.errPrint(c.out, "%s\n", err.Error())
		}
		if quit {
			break
		}
	}
	if c.sess != nil {
		_ = c.sess.Close()
	}
	return sc.Err()
}

// Execute runs one command line. The returned error is what a
// non-interactive run reports on stderr; a server ERR payload travels
// through it verbatim.
func (c *Console) Execute(line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := fields[0], fields[1:]

	switch strings.ToLower(cmd) {
	case "/quit":
		return true, nil
	case "/connect":
		return false, c.connect(args)
	case "/disconnect":
		return false, c.disconnect()
	case "help":
		c.printHelp(args)
		return false, nil
	case "begin-work":
		return false, c.beginWork()
	case "commit-work":
		return false, c.commitWork()
	case "rollback":
		return false, c.rollback()
	case "list-contexts":
		return false, c.listContexts()
	case "get-context":
		return false, c.getContext(args)
	case "set-context":
		return false, c.setContext(args)
	case "ping":
		return false, c.ping()
	default:
		return false, fmt.Errorf("unknown command %q; try HELP", cmd)
	}
}

func (c *Console) connect(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: /connect <host:port>")
	}
	if c.sess != nil {
		_ = c.sess.Close()
		c.sess = nil
	}
	sess, err := c.dial(args[0], c.name)
	if err != nil {
		return err
	}
	c.sess = sess
	c.addr = args[0]
	c.infoPrint(c.out, "connected to %s\n", c.addr)
	return nil
}

func (c *Console) disconnect() error {
	if c.sess == nil {
		return fmt.Errorf("not connected")
	}
	_ = c.sess.Close()
	c.sess = nil
	c.infoPrint(c.out, "disconnected from %s\n", c.addr)
	return nil
}

func (c *Console) requireSession() error {
	if c.sess == nil {
		return fmt.Errorf("not connected; use /connect <host:port>")
	}
	return nil
}

// beginWork opens a client-side batch: set-context commands queue up
// locally until commit-work sends them in order or rollback discards
// them.
func (c *Console) beginWork() error {
	if c.inWork {
		return fmt.Errorf("work already begun; commit-work or rollback first")
	}
	c.inWork = true
	c.work = nil
	return nil
}

func (c *Console) commitWork() error {
	if !c.inWork {
		return fmt.Errorf("no work begun")
	}
	if err := c.requireSession(); err != nil {
		return err
	}
	for i, req := range c.work {
		if err := c.sess.SetContext(req); err != nil {
			// Already-sent operations stay applied; the remainder is
			// preserved so a reconnect can retry commit-work.
			c.work = c.work[i:]
			return err
		}
	}
	n := len(c.work)
	c.inWork = false
	c.work = nil
	c.infoPrint(c.out, "committed %d operation(s)\n", n)
	return nil
}

func (c *Console) rollback() error {
	if !c.inWork {
		return fmt.Errorf("no work begun")
	}
	n := len(c.work)
	c.inWork = false
	c.work = nil
	c.infoPrint(c.out, "rolled back %d operation(s)\n", n)
	return nil
}

func (c *Console) listContexts() error {
	if err := c.requireSession(); err != nil {
		return err
	}
	list, err := c.sess.ListContexts()
	if err != nil {
		return err
	}
	for _, cs := range list {
		c.infoPrint(c.out, "%s\tversion=%d\towner=%s:%s\n", cs.Name, cs.SchemaVersion, cs.Owner, cs.Group)
	}
	c.infoPrint(c.out, "%d context(s)\n", len(list))
	return nil
}

func (c *Console) getContext(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: get-context <name>")
	}
	if err := c.requireSession(); err != nil {
		return err
	}
	cs, err := c.sess.GetContext(args[0])
	if err != nil {
		return err
	}
	c.infoPrint(c.out, "%s\tversion=%d\towner=%s:%s\n", cs.Name, cs.SchemaVersion, cs.Owner, cs.Group)
	return nil
}

// setContext parses `set-context <name> [version=N] [owner=U[:G]]
// [description=...]`. Inside a work batch the request queues; outside
// it is sent immediately.
func (c *Console) setContext(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: set-context <name> [version=N] [owner=<user>[:<group>]] [description=<text>]")
	}
	req := client.SetContextRequest{Name: args[0]}
	for _, kv := range args[1:] {
		key, val, found := strings.Cut(kv, "=")
		if !found {
			return fmt.Errorf("malformed argument %q: expected key=value", kv)
		}
		switch key {
		case "version":
			n, err := strconv.ParseUint(val, 10, 64)
			if err != nil {
				return fmt.Errorf("malformed version %q", val)
			}
			req.SchemaVersion = n
		case "owner":
			owner, group, hasGroup := strings.Cut(val, ":")
			req.Owner = owner
			if hasGroup {
				req.Group = group
			}
		case "description":
			req.Description = val
		default:
			return fmt.Errorf("unknown argument %q", key)
		}
	}

	if c.inWork {
		c.work = append(c.work, req)
		c.infoPrint(c.out, "queued (%d pending)\n", len(c.work))
		return nil
	}
	if err := c.requireSession(); err != nil {
		return err
	}
	return c.sess.SetContext(req)
}

func (c *Console) ping() error {
	if err := c.requireSession(); err != nil {
		return err
	}
	if err := c.sess.Ping(); err != nil {
		return err
	}
	c.infoPrint(c.out, "pong\n")
	return nil
}
