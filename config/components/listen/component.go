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

// Package listen is the listener-address component: it parses the
// "listen" configuration section into the node/proxy/direct bind
// addresses and the ping-pong interval, and carries the optional TLS
// material for inter-node links.
package listen

import (
	"time"

	"github.com/nabbar/prinbee/config"
	"github.com/nabbar/prinbee/errors"
	"github.com/nabbar/prinbee/transport"
)

const ComponentKey = "listen"

// Addresses is the resolved bind-address set; empty strings disable
// the corresponding listener.
type Addresses struct {
	Node   string
	Proxy  string
	Direct string
	Client string
}

type Component struct {
	addrs    Addresses
	interval time.Duration
	tls      transport.TLSConfig
}

func New() *Component {
	return &Component{interval: transport.DefaultPingInterval}
}

func (c *Component) Key() string            { return ComponentKey }
func (c *Component) Dependencies() []string { return nil }

func (c *Component) Init(v config.Values) errors.Error {
	c.addrs = Addresses{
		Node:   v.String("node", c.addrs.Node),
		Proxy:  v.String("proxy", c.addrs.Proxy),
		Direct: v.String("direct", c.addrs.Direct),
		Client: v.String("client", c.addrs.Client),
	}
	if s := v.String("ping_pong_interval", ""); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			c.interval = transport.ClampPingInterval(d)
		}
	}
	c.tls = transport.TLSConfig{
		CertFile:           v.String("tls_cert", c.tls.CertFile),
		KeyFile:            v.String("tls_key", c.tls.KeyFile),
		CAFile:             v.String("tls_ca", c.tls.CAFile),
		ServerName:         v.String("tls_server_name", c.tls.ServerName),
		InsecureSkipVerify: v.Bool("tls_insecure_skip_verify", c.tls.InsecureSkipVerify),
	}
	return nil
}

func (c *Component) Start() errors.Error { return nil }

// Reload re-parses addresses; already-open listeners keep their bound
// address until the owning service restarts them.
func (c *Component) Reload(v config.Values) errors.Error { return c.Init(v) }

func (c *Component) Stop() errors.Error { return nil }

func (c *Component) Addresses() Addresses        { return c.addrs }
func (c *Component) PingInterval() time.Duration { return c.interval }
func (c *Component) TLS() transport.TLSConfig    { return c.tls }

// SetDefaults installs flag-sourced values as the pre-Init baseline so
// a configuration file section only has to name what it overrides.
func (c *Component) SetDefaults(a Addresses, interval time.Duration) {
	c.addrs = a
	if interval > 0 {
		c.interval = transport.ClampPingInterval(interval)
	}
}
