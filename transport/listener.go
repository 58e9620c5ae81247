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
	"net"

	"github.com/nabbar/prinbee/errors"
	"github.com/nabbar/prinbee/logger"
)

// AcceptFunc is invoked once per accepted connection, before the REG
// handshake runs; the listener itself never blocks the accept loop
// waiting on a handshake (that happens on the caller's goroutine).
type AcceptFunc func(c *Connection)

// Listener wraps a net.Listener bound to one of the three daemon
// listener kinds (node/proxy/direct) or the proxy's client
// listener.
type Listener struct {
	kind Kind
	ln   net.Listener
	log  logger.Logger
}

// Listen opens a TCP listener for the given kind and address.
func Listen(kind Kind, addr string, log logger.Logger) (*Listener, errors.Error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.New(uint16(ErrorListenFailed), ErrorListenFailed.Message(), err)
	}
	return &Listener{kind: kind, ln: ln, log: log}, nil
}

func (l *Listener) Addr() net.Addr { return l.ln.Addr() }
func (l *Listener) Kind() Kind     { return l.kind }

// Close stops accepting new connections. It does not touch already
// accepted connections.
func (l *Listener) Close() error {
	return ErrorFilter(l.ln.Close())
}

// Serve accepts connections in a loop, handing each to fn on its own
// goroutine, until the listener is closed.
func (l *Listener) Serve(fn AcceptFunc) error {
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			return ErrorFilter(err)
		}
		c := NewConnection(l.kind, conn, l.log)
		go fn(c)
	}
}

// Dial opens an outbound connection of the given kind to addr (used
// for full-mesh node-to-node links and for proxy-to-daemon
// links).
func Dial(kind Kind, network, addr string, log logger.Logger) (*Connection, errors.Error) {
	conn, err := net.Dial(network, addr)
	if err != nil {
		return nil, errors.New(uint16(ErrorDialFailed), ErrorDialFailed.Message(), err)
	}
	return NewConnection(kind, conn, log), nil
}
