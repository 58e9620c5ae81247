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

// Package client is the prinbee client library: it speaks the binary
// protocol to a proxy's client listener, folding the asynchronous
// ACK/ERR correlation into
// synchronous request/reply calls a CUI or a PBQL frontend can drive.
package client

import (
	"sync"
	"time"

	"github.com/nabbar/prinbee/errors"
	"github.com/nabbar/prinbee/logger"
	"github.com/nabbar/prinbee/transport"
	"github.com/nabbar/prinbee/wire"
)

// DefaultRequestTimeout bounds how long a call waits for a correlated
// ACK/ERR before giving up (the reply-timeout, applied client-side).
const DefaultRequestTimeout = 5 * time.Second

// ContextSummary is the client-side view of a context, decoded from
// the same wire layout the daemon's EncodeContextSummary writes
// (daemon/contextops.go).
type ContextSummary struct {
	Name          string
	SchemaVersion uint64
	Owner         string
	Group         string
}

func decodeContextSummary(dec *wire.Decoder) ContextSummary {
	return ContextSummary{
		Name:          dec.GetPString(1),
		SchemaVersion: dec.GetUint64(),
		Owner:         dec.GetPString(1),
		Group:         dec.GetPString(1),
	}
}

// SetContextRequest mirrors daemon.SetContextBody's wire layout; kept
// as an independent type here since the wire format, not the Go type,
// is the contract between the three separately-built executables.
type SetContextRequest struct {
	Name          string
	SchemaVersion uint64
	Owner         string
	Group         string
	Description   string
}

func encodeSetContextRequest(b SetContextRequest) []byte {
	enc := wire.NewEncoder(256)
	enc.PutPString(1, b.Name).
		PutUint64(b.SchemaVersion).
		PutPString(1, b.Owner).
		PutPString(1, b.Group).
		PutPString(2, b.Description)
	return enc.Bytes()
}

// Client is a single connection to one proxy. It is safe for
// concurrent use: outbound calls serialize through the connection's
// own write path and replies are correlated by serial
// number back to the goroutine awaiting them.
type Client struct {
	conn    *transport.Connection
	log     logger.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending map[uint32]chan *wire.Message
	closed  bool
}

// Dial connects to a proxy's client listener at addr, completes the
// REG handshake under name, and starts the background read
// loop that demultiplexes replies.
func Dial(addr, name string, log logger.Logger) (*Client, errors.Error) {
	conn, e := transport.Dial(transport.KindDirect, "tcp", addr, log)
	if e != nil {
		return nil, e
	}
	if e := transport.DoHandshake(conn, name); e != nil {
		_ = conn.Close()
		return nil, e
	}

	c := &Client{
		conn:    conn,
		log:     log,
		timeout: DefaultRequestTimeout,
		pending: make(map[uint32]chan *wire.Message),
	}
	go c.readLoop()
	return c, nil
}

// SetTimeout overrides DefaultRequestTimeout for subsequent calls.
func (c *Client) SetTimeout(d time.Duration) { c.timeout = d }

// readLoop mirrors daemon.handleInline's split: PING/PONG never
// reach the correlation map, they only update the connection's
// liveness bookkeeping; everything else is handed to whichever call
// is waiting on its serial.
func (c *Client) readLoop() {
	for {
		msg, e := c.conn.ReadMessage()
		if e != nil {
			c.failAll()
			return
		}
		switch msg.Header.Name {
		case wire.NamePING:
			_ = transport.ReplyPong(c.conn, msg.Header.Serial, 0)
			continue
		case wire.NamePONG:
			if pong, de := transport.DecodePONG(msg.Body); de == nil {
				c.conn.NotePong(msg.Header.Serial, pong.Load)
			}
			continue
		}
		c.mu.Lock()
		ch, ok := c.pending[msg.Header.Serial]
		if ok {
			delete(c.pending, msg.Header.Serial)
		}
		c.mu.Unlock()
		if ok {
			ch <- msg
		}
	}
}

func (c *Client) failAll() {
	c.mu.Lock()
	c.closed = true
	pending := c.pending
	c.pending = make(map[uint32]chan *wire.Message)
	c.mu.Unlock()
	for _, ch := range pending {
		close(ch)
	}
}

// call sends a request carrying name/body and blocks for its
// correlated ACK/ERR reply, or until the client's timeout
// (DefaultRequestTimeout unless SetTimeout changed it) elapses.
func (c *Client) call(name wire.Name, body []byte) (*wire.Message, errors.Error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, errors.New(uint16(ErrorNotConnected), ErrorNotConnected.Message())
	}
	serial := c.conn.NextSerial()
	ch := make(chan *wire.Message, 1)
	c.pending[serial] = ch
	c.mu.Unlock()

	msg := wire.NewMessage(name, serial, 0, body)
	if e := c.conn.Send(msg); e != nil {
		c.mu.Lock()
		delete(c.pending, serial)
		c.mu.Unlock()
		return nil, e
	}

	select {
	case reply, ok := <-ch:
		if !ok {
			return nil, errors.New(uint16(ErrorNotConnected), ErrorNotConnected.Message())
		}
		return reply, nil
	case <-time.After(c.timeout):
		c.mu.Lock()
		delete(c.pending, serial)
		c.mu.Unlock()
		return nil, errors.New(uint16(ErrorRequestTimeout), ErrorRequestTimeout.Message())
	}
}

// asErr turns a reply carrying wire.NameERR into a client-side error
// wrapping the server's message and code, so the console can print
// the ERR payload verbatim.
func asErr(reply *wire.Message) errors.Error {
	eb, de := transport.DecodeERR(reply.Body)
	if de != nil {
		return de
	}
	return errors.New(uint16(ErrorServerError), eb.Message)
}

// ListContexts issues LIST_CONTEXTS and decodes the resulting
// context summaries.
func (c *Client) ListContexts() ([]ContextSummary, errors.Error) {
	reply, e := c.call(wire.NameListContexts, nil)
	if e != nil {
		return nil, e
	}
	if reply.Header.Name == wire.NameERR {
		return nil, asErr(reply)
	}
	dec := wire.NewDecoder(reply.Body)
	count := dec.GetUint32()
	out := make([]ContextSummary, 0, count)
	for i := uint32(0); i < count; i++ {
		out = append(out, decodeContextSummary(dec))
	}
	if de := dec.Err(); de != nil {
		return nil, de
	}
	return out, nil
}

// GetContext issues GET_CONTEXT for name.
func (c *Client) GetContext(name string) (ContextSummary, errors.Error) {
	enc := wire.NewEncoder(64)
	enc.PutPString(1, name)
	reply, e := c.call(wire.NameGetContext, enc.Bytes())
	if e != nil {
		return ContextSummary{}, e
	}
	if reply.Header.Name == wire.NameERR {
		return ContextSummary{}, asErr(reply)
	}
	dec := wire.NewDecoder(reply.Body)
	cs := decodeContextSummary(dec)
	if de := dec.Err(); de != nil {
		return ContextSummary{}, de
	}
	return cs, nil
}

// SetContext drives SET_CONTEXT's first phase from the caller's
// perspective: it blocks for the daemon's very first ACK
// (PhaseContextReceived), which is sufficient for the caller to
// know the request was accepted for processing; the remaining phases
// (lock acquisition, peer fan-out) run asynchronously on the daemon
// and are not observable from here (the protocol only guarantees
// the proxy folds the *originating* daemon's eventual ACK/ERR back to
// the client once the whole chain settles, via its own journal).
func (c *Client) SetContext(req SetContextRequest) errors.Error {
	reply, e := c.call(wire.NameSetContext, encodeSetContextRequest(req))
	if e != nil {
		return e
	}
	if reply.Header.Name == wire.NameERR {
		return asErr(reply)
	}
	return nil
}

// PingPollInterval is how often Ping checks for the PONG it is
// waiting on.
const PingPollInterval = 10 * time.Millisecond

// Ping sends a liveness probe and blocks until the matching PONG has
// updated the connection, or the client's timeout (DefaultRequestTimeout
// unless SetTimeout changed it) elapses. PING/PONG is a connection-liveness primitive, not a
// correlated request/reply like the other calls, so this polls the
// connection's own bookkeeping rather than waiting on a reply channel.
func (c *Client) Ping() errors.Error {
	before := c.conn.UnansweredPings()
	if e := transport.SendPing(c.conn); e != nil {
		return errors.New(uint16(ErrorNotConnected), ErrorNotConnected.Message(), e)
	}

	deadline := time.Now().Add(c.timeout)
	for time.Now().Before(deadline) {
		if c.conn.IsClosed() {
			return errors.New(uint16(ErrorNotConnected), ErrorNotConnected.Message())
		}
		if c.conn.UnansweredPings() <= before {
			return nil
		}
		time.Sleep(PingPollInterval)
	}
	return errors.New(uint16(ErrorRequestTimeout), ErrorRequestTimeout.Message())
}

// Close shuts down the underlying connection.
func (c *Client) Close() error {
	c.failAll()
	return c.conn.Close()
}
