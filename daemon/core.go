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

package daemon

import (
	"time"

	"github.com/nabbar/prinbee/bus"
	"github.com/nabbar/prinbee/cluck"
	"github.com/nabbar/prinbee/cluster"
	"github.com/nabbar/prinbee/context"
	"github.com/nabbar/prinbee/errors"
	"github.com/nabbar/prinbee/journal"
	"github.com/nabbar/prinbee/logger"
	"github.com/nabbar/prinbee/metrics"
	"github.com/nabbar/prinbee/transport"
	"github.com/nabbar/prinbee/wire"
)

// Shutdownable is one entry in the ordered shutdown sequence
// (bus -> interrupt -> listeners -> peer clients -> journals).
type Shutdownable interface {
	Shutdown() error
}

// Daemon is the backend core: it accepts node/proxy/direct
// connections once the readiness gate latches, dispatches lifecycle
// messages (ERR/PING/PONG) inline and everything else through the
// worker pool.
type Daemon struct {
	log        logger.Logger
	gate       *cluster.Gate
	bus        bus.Bus
	lock       cluck.Lock
	membership *cluster.Membership
	registry   *transport.Registry
	contexts   *context.Registry
	journal    *journal.Journal
	pool       *WorkerPool
	metrics    *metrics.Metrics

	name         string
	nodeListen   string
	proxyListen  string
	directListen string
	pingInterval time.Duration

	listeners     []*transport.Listener
	shutdownables []Shutdownable
}

// Config bundles the construction-time parameters of a Daemon.
type Config struct {
	Name         string
	NodeListen   string
	ProxyListen  string
	DirectListen string
	PingInterval time.Duration
	Workers      int
	QueueDepth   int
}

func New(cfg Config, j *journal.Journal, ctxReg *context.Registry, b bus.Bus, lock cluck.Lock, log logger.Logger) *Daemon {
	d := &Daemon{
		log:          log,
		gate:         cluster.NewGate(),
		bus:          b,
		lock:         lock,
		registry:     transport.NewRegistry(),
		contexts:     ctxReg,
		journal:      j,
		name:         cfg.Name,
		nodeListen:   cfg.NodeListen,
		proxyListen:  cfg.ProxyListen,
		directListen: cfg.DirectListen,
		pingInterval: cfg.PingInterval,
	}
	d.pool = NewWorkerPool(cfg.Workers, cfg.QueueDepth, d.Dispatch, log)
	return d
}

// Gate exposes the readiness gate so the caller that builds the daemon
// (cmd/prinbeed) can flip its inputs as the ambient collaborators
// (fluid settings, ipwall, clock, lock) report in.
func (d *Daemon) Gate() *cluster.Gate { return d.gate }

// SetMembership wires the full-mesh peer-linking state machine
//; called once the local address is known to be valid.
func (d *Daemon) SetMembership(m *cluster.Membership) { d.membership = m }

// SetMetrics attaches the operational counters to the daemon and its
// worker pool.
func (d *Daemon) SetMetrics(m *metrics.Metrics) {
	d.metrics = m
	d.pool.SetMetrics(m)
}

// Start opens every listener once the readiness gate has latched;
// until then only the bus messenger runs.
func (d *Daemon) Start() errors.Error {
	d.gate.OnReady(func() {
		d.openListeners()
		if d.membership != nil {
			_ = d.membership.Announce(true)
		}
	})
	return nil
}

func (d *Daemon) openListeners() {
	specs := []struct {
		kind Kind
		addr string
	}{
		{KindNode, d.nodeListen},
		{KindProxy, d.proxyListen},
		{KindDirect, d.directListen},
	}
	for _, s := range specs {
		if s.addr == "" {
			continue
		}
		ln, e := transport.Listen(transport.Kind(s.kind), s.addr, d.log)
		if e != nil {
			if d.log != nil {
				d.log.Error("daemon: failed to open listener", logger.F("kind", s.kind), logger.F("error", e.Error()))
			}
			continue
		}
		d.listeners = append(d.listeners, ln)
		go func(l *transport.Listener) {
			_ = l.Serve(d.onAccept)
		}(ln)
	}
}

// Kind mirrors transport.Kind to keep this file's listener table
// readable without a stutter import alias.
type Kind = transport.Kind

const (
	KindNode   = transport.KindNode
	KindProxy  = transport.KindProxy
	KindDirect = transport.KindDirect
)

func (d *Daemon) onAccept(c *transport.Connection) {
	d.registry.Add(c)
	if d.metrics != nil {
		d.metrics.ConnectionsOpen.WithLabelValues(c.Kind().String()).Inc()
		defer d.metrics.ConnectionsOpen.WithLabelValues(c.Kind().String()).Dec()
	}
	defer d.registry.Remove(c.ID())
	defer c.Close()

	msg, e := c.ReadMessage()
	if e != nil {
		return
	}
	if msg.Header.Name != wire.NameREG {
		return
	}
	if he := transport.HandleIncomingREG(c, msg); he != nil {
		return
	}

	ticker := transport.NewPingTicker(c, d.pingInterval)
	go ticker.Run(func(dead *transport.Connection) { _ = dead.Close() })
	defer ticker.Stop()

	for {
		msg, e = c.ReadMessage()
		if e != nil {
			return
		}
		d.handleInline(c, msg)
	}
}

// handleInline is the connection dispatcher: ERR, PING (reply
// PONG), PONG (clear liveness state) are handled without leaving the
// event-loop goroutine; everything else becomes a Payload for the
// worker pool.
func (d *Daemon) handleInline(c *transport.Connection, msg *wire.Message) {
	switch msg.Header.Name {
	case wire.NameERR:
		return
	case wire.NamePING:
		_ = transport.ReplyPong(c, msg.Header.Serial, 0)
		return
	case wire.NamePONG:
		pong, e := transport.DecodePONG(msg.Body)
		if e == nil {
			c.NotePong(msg.Header.Serial, pong.Load)
		}
		return
	default:
		if !d.pool.Push(&Payload{ConnID: c.ID(), Msg: msg, Stage: 0}) && msg.Header.Name != wire.NameACK {
			qe := errors.New(uint16(ErrorQueueFull), ErrorQueueFull.Message())
			body := transport.EncodeERR(transport.ErrBody{Code: uint32(qe.GetCode()), Message: qe.Error()})
			_ = c.Send(wire.NewMessage(wire.NameERR, msg.Header.Serial, 0, body))
		}
	}
}

// Stop removes and closes every listener and connection; it never
// re-adds anything.
func (d *Daemon) Stop() {
	for _, ln := range d.listeners {
		_ = ln.Close()
	}
	d.listeners = nil
	d.registry.CloseAll()
	d.pool.Drain()
}
