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

package proxy

import (
	"net"
	"sync"
	"time"

	"github.com/nabbar/prinbee/errors"
	"github.com/nabbar/prinbee/journal"
	"github.com/nabbar/prinbee/logger"
	"github.com/nabbar/prinbee/metrics"
	"github.com/nabbar/prinbee/transport"
)

// StaleScanInterval is how often the proxy drops client connections
// that never completed their handshake.
const StaleScanInterval = time.Second

// pending tracks one in-flight client request while it waits for the
// owning daemon's ACK/ERR.
type pending struct {
	clientID     transport.ID
	clientSerial uint32
	requestID    string
}

// Proxy is the client-facing core: a single client listener in front
// of a pool of daemon connections, journaling every client message
// before forwarding it and folding the daemon's reply back to the
// originating client.
type Proxy struct {
	log      logger.Logger
	listener *transport.Listener
	clients  *transport.Registry
	journal  *journal.Journal
	metrics  *metrics.Metrics

	mu      sync.Mutex
	daemons []*transport.Connection
	next    int
	waiting map[uint32]pending

	stopCh chan struct{}
}

// Config bundles the construction-time parameters of a Proxy.
type Config struct {
	ClientListen string
}

func New(j *journal.Journal, log logger.Logger) *Proxy {
	return &Proxy{
		log:     log,
		clients: transport.NewRegistry(),
		journal: j,
		waiting: make(map[uint32]pending),
		stopCh:  make(chan struct{}),
	}
}

// SetMetrics attaches the operational counters; nil leaves the proxy
// unobserved.
func (p *Proxy) SetMetrics(m *metrics.Metrics) { p.metrics = m }

// AddDaemon registers a daemon connection this proxy may forward to
// (opened as a KindProxy connection from this process),
// and starts the goroutine that folds its replies back to clients.
func (p *Proxy) AddDaemon(c *transport.Connection) {
	p.mu.Lock()
	p.daemons = append(p.daemons, c)
	p.mu.Unlock()
	go p.readDaemon(c)
}

func (p *Proxy) readDaemon(c *transport.Connection) {
	for {
		msg, e := c.ReadMessage()
		if e != nil {
			p.mu.Lock()
			for i, d := range p.daemons {
				if d == c {
					p.daemons = append(p.daemons[:i], p.daemons[i+1:]...)
					break
				}
			}
			p.mu.Unlock()
			return
		}
		p.handleDaemonMessage(c, msg)
	}
}

// pickDaemon round-robins across the known daemon connections.
func (p *Proxy) pickDaemon() (*transport.Connection, errors.Error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.daemons) == 0 {
		return nil, errors.New(uint16(ErrorNoDaemonAvailable), ErrorNoDaemonAvailable.Message())
	}
	d := p.daemons[p.next%len(p.daemons)]
	p.next++
	return d, nil
}

// Start opens the client listener and the stale-connection scanner.
// It does not dial daemons; callers supply those via
// AddDaemon once the readiness gate and membership have resolved them.
func (p *Proxy) Start(clientListen string) errors.Error {
	ln, e := transport.Listen(transport.KindDirect, clientListen, p.log)
	if e != nil {
		return e
	}
	p.listener = ln
	go func() { _ = ln.Serve(p.onAcceptClient) }()
	go p.scanStale()
	return nil
}

// Addr returns the client listener's bound address; valid only after
// Start has returned successfully.
func (p *Proxy) Addr() net.Addr { return p.listener.Addr() }

// Stop closes the listener and every client/daemon connection it
// owns.
func (p *Proxy) Stop() {
	close(p.stopCh)
	if p.listener != nil {
		_ = p.listener.Close()
	}
	p.clients.CloseAll()
	p.mu.Lock()
	for _, d := range p.daemons {
		_ = d.Close()
	}
	p.daemons = nil
	p.mu.Unlock()
}

func (p *Proxy) scanStale() {
	t := time.NewTicker(StaleScanInterval)
	defer t.Stop()
	for {
		select {
		case <-p.stopCh:
			return
		case now := <-t.C:
			for _, c := range p.clients.StaleUnregistered(now) {
				_ = c.Close()
				p.clients.Remove(c.ID())
			}
		}
	}
}

func (p *Proxy) onAcceptClient(c *transport.Connection) {
	p.clients.Add(c)
	defer p.clients.Remove(c.ID())
	defer c.Close()

	for {
		msg, e := c.ReadMessage()
		if e != nil {
			return
		}
		p.handleClientMessage(c, msg)
	}
}
