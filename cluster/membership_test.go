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

package cluster_test

import (
	"net"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/prinbee/bus"
	"github.com/nabbar/prinbee/cluster"
	"github.com/nabbar/prinbee/errors"
	"github.com/nabbar/prinbee/logger"
)

var _ = Describe("Membership", func() {
	It("dials a peer only when the local IP compares lower (full-mesh rule)", func() {
		b := bus.NewMemBus()
		defer b.Close()

		var mu sync.Mutex
		var dialed []cluster.Node

		m, e := cluster.NewMembership(b, "c1", "node-a", net.ParseIP("10.0.0.5"),
			func(peer cluster.Node) errors.Error {
				mu.Lock()
				dialed = append(dialed, peer)
				mu.Unlock()
				return nil
			}, logger.Nop())
		Expect(e).To(BeNil())

		// Peer with a higher IP: node-a must initiate.
		Expect(b.Publish(bus.Message{
			Name: bus.NamePrinbeeCurrentStatus,
			Params: bus.Params{
				"cluster_name": "c1", "status": "up",
				"node_ip": "10.0.0.9", "node_name": "node-b",
			},
		})).To(BeNil())

		// Peer with a lower IP: node-a must NOT initiate.
		Expect(b.Publish(bus.Message{
			Name: bus.NamePrinbeeCurrentStatus,
			Params: bus.Params{
				"cluster_name": "c1", "status": "up",
				"node_ip": "10.0.0.1", "node_name": "node-c",
			},
		})).To(BeNil())

		mu.Lock()
		defer mu.Unlock()
		Expect(dialed).To(HaveLen(1))
		Expect(dialed[0].Name).To(Equal("node-b"))
		Expect(m.Peers()).To(HaveLen(2))
	})

	It("ignores status messages for a different cluster or itself", func() {
		b := bus.NewMemBus()
		defer b.Close()

		dialed := 0
		_, e := cluster.NewMembership(b, "c1", "node-a", net.ParseIP("10.0.0.5"),
			func(cluster.Node) errors.Error { dialed++; return nil }, logger.Nop())
		Expect(e).To(BeNil())

		Expect(b.Publish(bus.Message{
			Name:   bus.NamePrinbeeCurrentStatus,
			Params: bus.Params{"cluster_name": "other", "status": "up", "node_ip": "10.0.0.9", "node_name": "node-b"},
		})).To(BeNil())
		Expect(b.Publish(bus.Message{
			Name:   bus.NamePrinbeeCurrentStatus,
			Params: bus.Params{"cluster_name": "c1", "status": "up", "node_ip": "10.0.0.9", "node_name": "node-a"},
		})).To(BeNil())

		Expect(dialed).To(Equal(0))
	})
})
