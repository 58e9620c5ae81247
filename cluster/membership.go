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

import (
	"bytes"
	"net"
	"sync"

	"github.com/nabbar/prinbee/bus"
	"github.com/nabbar/prinbee/errors"
	"github.com/nabbar/prinbee/logger"
)

// Node is one entry in the membership's view of the cluster: the
// address/name pair carried by a PRINBEE_CURRENT_STATUS bus message.
type Node struct {
	IP   net.IP
	Name string
}

// ConnectFunc dials a peer node and returns an error if the dial
// fails; the caller supplies the actual transport (see
// transport.Dial) so this package stays free of a direct dependency
// loop.
type ConnectFunc func(peer Node) errors.Error

// Membership implements the full-mesh rule: on learning a peer
// is UP, connect to it only if our own address compares lower than
// theirs; otherwise wait for them to connect to us. This guarantees
// exactly one side initiates.
type Membership struct {
	mu       sync.RWMutex
	localIP  net.IP
	name     string
	nodes    map[string]Node
	linked   map[string]bool
	connect  ConnectFunc
	log      logger.Logger
	b        bus.Bus
	clusterN string
}

// NewMembership wires a Membership to bus b. localIP is this node's
// own address (must be valid before subscribing meaningfully — see
// Gate.SetAddressValid).
func NewMembership(b bus.Bus, clusterName, nodeName string, localIP net.IP, connect ConnectFunc, log logger.Logger) (*Membership, errors.Error) {
	m := &Membership{
		localIP:  localIP,
		name:     nodeName,
		clusterN: clusterName,
		nodes:    make(map[string]Node),
		linked:   make(map[string]bool),
		connect:  connect,
		log:      log,
		b:        b,
	}

	if _, e := b.Subscribe(bus.NamePrinbeeCurrentStatus, m.onStatus); e != nil {
		return nil, e
	}
	return m, nil
}

func (m *Membership) onStatus(msg bus.Message) {
	if msg.Params.Get("cluster_name") != m.clusterN {
		return
	}
	status := msg.Params.Get("status")
	nodeIP := net.ParseIP(msg.Params.Get("node_ip"))
	nodeName := msg.Params.Get("node_name")
	if nodeIP == nil || nodeName == "" || nodeName == m.name {
		return
	}

	if status != "up" {
		m.mu.Lock()
		delete(m.nodes, nodeName)
		delete(m.linked, nodeName)
		m.mu.Unlock()
		return
	}

	node := Node{IP: nodeIP, Name: nodeName}

	m.mu.Lock()
	m.nodes[nodeName] = node
	alreadyLinked := m.linked[nodeName]
	shouldConnect := !alreadyLinked && bytes.Compare(m.localIP, nodeIP) < 0
	if shouldConnect {
		m.linked[nodeName] = true
	}
	m.mu.Unlock()

	if !shouldConnect {
		return
	}

	if e := m.connect(node); e != nil {
		if m.log != nil {
			m.log.Warn("cluster: failed to dial peer node", logger.F("peer", nodeName), logger.F("error", e.Error()))
		}
		m.mu.Lock()
		m.linked[nodeName] = false
		m.mu.Unlock()
	}
}

// Announce broadcasts this node's own readiness change
// (PRINBEE_CURRENT_STATUS).
func (m *Membership) Announce(up bool) errors.Error {
	status := "down"
	if up {
		status = "up"
	}
	return m.b.Publish(bus.Message{
		Name: bus.NamePrinbeeCurrentStatus,
		Params: bus.Params{
			"cluster_name": m.clusterN,
			"status":       status,
			"node_ip":      m.localIP.String(),
			"node_name":    m.name,
		},
	})
}

// Peers returns a snapshot of every node currently believed UP.
func (m *Membership) Peers() []Node {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Node, 0, len(m.nodes))
	for _, n := range m.nodes {
		out = append(out, n)
	}
	return out
}
