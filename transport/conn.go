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
	"sync"
	"sync/atomic"
	"time"

	"github.com/nabbar/prinbee/errors"
	"github.com/nabbar/prinbee/logger"
	"github.com/nabbar/prinbee/wire"
)

// Kind tags the role a connection plays.
type Kind uint8

const (
	KindNode Kind = iota
	KindProxy
	KindDirect
	KindPeerClient
)

func (k Kind) String() string {
	switch k {
	case KindNode:
		return "NODE"
	case KindProxy:
		return "PROXY"
	case KindDirect:
		return "DIRECT"
	case KindPeerClient:
		return "PEER_CLIENT"
	}
	return "UNKNOWN"
}

// ID is a stable, process-local identifier for a connection. Per
// avoid reference cycles, nothing holds a back
// pointer from a Connection to its owning service: the owner keeps a
// map[ID]*Connection and everything else addresses connections by
// this value.
type ID uint64

var nextConnID uint64

func newConnID() ID {
	return ID(atomic.AddUint64(&nextConnID, 1))
}

// HandshakeTimeout is the default window within which a
// freshly accepted/dialed connection must complete its REG handshake
// or be dropped.
const HandshakeTimeout = time.Second

// MaxPingPongFailures is the number of consecutive missed PONGs that
// declares a connection dead. Left hard-coded per
// deliberately not configurable.
const MaxPingPongFailures = 5

// Connection pairs a net.Conn with the bookkeeping described in
// its transport: remote address, creation time, negotiated protocol
// version, outstanding PING state and connection kind.
type Connection struct {
	id      ID
	kind    Kind
	conn    net.Conn
	created time.Time
	log     logger.Logger

	reader *wire.Reader
	writer *wire.Writer

	mu            sync.Mutex
	registered    bool
	protoMajor    uint8
	protoMinor    uint8
	lastPingSent  uint32
	unansweredPPs int
	peerLoad      float64
	closed        bool

	serialCounter uint32
}

// NewConnection wraps conn for the given role. The connection is not
// yet registered; callers must drive the REG handshake (see
// HandleIncomingREG / SendREG) before treating it as live.
func NewConnection(kind Kind, conn net.Conn, log logger.Logger) *Connection {
	return &Connection{
		id:      newConnID(),
		kind:    kind,
		conn:    conn,
		created: time.Now(),
		log:     log,
		reader:  wire.NewReader(conn),
		writer:  wire.NewWriter(conn),
	}
}

func (c *Connection) ID() ID                { return c.id }
func (c *Connection) Kind() Kind            { return c.kind }
func (c *Connection) CreatedAt() time.Time  { return c.created }
func (c *Connection) RemoteAddr() net.Addr  { return c.conn.RemoteAddr() }
func (c *Connection) LocalAddr() net.Addr   { return c.conn.LocalAddr() }

// NextSerial returns the next per-connection serial number for an
// outbound correlated message.
func (c *Connection) NextSerial() uint32 {
	return atomic.AddUint32(&c.serialCounter, 1)
}

// IsRegistered reports whether the REG handshake has completed.
func (c *Connection) IsRegistered() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registered
}

// HandshakeExpired reports whether this connection is older than
// HandshakeTimeout and still hasn't completed REG.
func (c *Connection) HandshakeExpired(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.registered && now.Sub(c.created) > HandshakeTimeout
}

func (c *Connection) markRegistered(major, minor uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registered = true
	c.protoMajor = major
	c.protoMinor = minor
}

// ProtocolVersion returns the negotiated major/minor version, valid
// only once IsRegistered is true.
func (c *Connection) ProtocolVersion() (major, minor uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.protoMajor, c.protoMinor
}

// NotePingSent records the serial of a PING just sent, for PONG
// correlation and miss-counting.
func (c *Connection) NotePingSent(serial uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastPingSent = serial
	c.unansweredPPs++
}

// NotePong clears the miss counter if serial matches the outstanding
// PING, and records the peer's reported load average.
func (c *Connection) NotePong(serial uint32, load float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if serial != c.lastPingSent {
		return false
	}
	c.unansweredPPs = 0
	c.peerLoad = load
	return true
}

// UnansweredPings returns the current consecutive-miss count.
func (c *Connection) UnansweredPings() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unansweredPPs
}

// IsDead reports whether this connection has exceeded
// MaxPingPongFailures consecutive missed PONGs.
func (c *Connection) IsDead() bool {
	return c.UnansweredPings() >= MaxPingPongFailures
}

// PeerLoad returns the most recently reported peer load average
// carried on every PONG.
func (c *Connection) PeerLoad() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peerLoad
}

// ReadMessage blocks for the next framed message on this connection.
func (c *Connection) ReadMessage() (*wire.Message, errors.Error) {
	return c.reader.ReadMessage()
}

// Send writes msg to the connection. Outbound writes on one
// connection are serialized in submission order by wire.Writer's own
// internal mutex.
func (c *Connection) Send(msg *wire.Message) errors.Error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return errors.New(uint16(ErrorSendOnClosed), ErrorSendOnClosed.Message())
	}
	return c.writer.WriteMessage(msg)
}

// Close closes the underlying transport. Idempotent.
func (c *Connection) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	return ErrorFilter(c.conn.Close())
}

func (c *Connection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
