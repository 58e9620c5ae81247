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
	"time"

	"github.com/nabbar/prinbee/wire"
)

// MinPingInterval/MaxPingInterval/DefaultPingInterval clamp the
// per-connection PING period.
const (
	MinPingInterval     = time.Second
	MaxPingInterval     = time.Hour
	DefaultPingInterval = 5 * time.Second
)

// ClampPingInterval enforces [MinPingInterval, MaxPingInterval].
func ClampPingInterval(d time.Duration) time.Duration {
	if d < MinPingInterval {
		return MinPingInterval
	}
	if d > MaxPingInterval {
		return MaxPingInterval
	}
	return d
}

// SendPing emits a PING with a fresh serial and records it for miss
// counting.
func SendPing(c *Connection) error {
	serial := c.NextSerial()
	c.NotePingSent(serial)
	return c.Send(wire.NewMessage(wire.NamePING, serial, 0, EncodePING()))
}

// ReplyPong answers an inbound PING inline, echoing its serial and
// attaching the local load average.
func ReplyPong(c *Connection, pingSerial uint32, localLoad float64) error {
	body := EncodePONG(PongBody{Load: localLoad})
	return c.Send(wire.NewMessage(wire.NamePONG, pingSerial, 0, body))
}

// PingTicker drives the periodic liveness probe on one connection
// until Stop is called or the connection dies.
type PingTicker struct {
	conn     *Connection
	interval time.Duration
	stop     chan struct{}
}

func NewPingTicker(c *Connection, interval time.Duration) *PingTicker {
	return &PingTicker{conn: c, interval: ClampPingInterval(interval), stop: make(chan struct{})}
}

// Run blocks sending PING every interval until Stop is called or the
// connection is declared dead.
// onDead is invoked at most once, from this goroutine, when the
// connection is found dead.
func (p *PingTicker) Run(onDead func(*Connection)) {
	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-t.C:
			if p.conn.IsDead() {
				if onDead != nil {
					onDead(p.conn)
				}
				return
			}
			_ = SendPing(p.conn)
		}
	}
}

func (p *PingTicker) Stop() {
	close(p.stop)
}
