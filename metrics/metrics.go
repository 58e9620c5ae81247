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

// Package metrics exposes the daemon/proxy operational counters over
// a prometheus registry. Every collector lives on an instance-owned
// registry rather than the package default one, so two services in
// the same test process never collide.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the collectors shared by the daemon and proxy cores.
type Metrics struct {
	reg *prometheus.Registry

	ConnectionsOpen *prometheus.GaugeVec
	QueueDepth      prometheus.Gauge
	PayloadsTotal   *prometheus.CounterVec
	EventsJournaled prometheus.Counter
	ForwardsTotal   *prometheus.CounterVec
}

func New(service string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		ConnectionsOpen: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "prinbee",
			Subsystem: service,
			Name:      "connections_open",
			Help:      "Currently open connections, by kind.",
		}, []string{"kind"}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "prinbee",
			Subsystem: service,
			Name:      "worker_queue_depth",
			Help:      "Payloads waiting in the worker FIFO.",
		}),
		PayloadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prinbee",
			Subsystem: service,
			Name:      "payloads_total",
			Help:      "Payloads processed by the worker pool, by message name.",
		}, []string{"name"}),
		EventsJournaled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "prinbee",
			Subsystem: service,
			Name:      "events_journaled_total",
			Help:      "Events durably appended to the local journal.",
		}),
		ForwardsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prinbee",
			Subsystem: service,
			Name:      "forwards_total",
			Help:      "Client messages forwarded to a daemon, by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.ConnectionsOpen, m.QueueDepth, m.PayloadsTotal, m.EventsJournaled, m.ForwardsTotal)
	return m
}

// Handler serves the registry in the prometheus exposition format;
// mounted by the executables under /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for callers that register
// their own collectors next to the core set.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }
