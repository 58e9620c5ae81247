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
	"time"

	"github.com/nabbar/prinbee/journal"
	"github.com/nabbar/prinbee/logger"
	"github.com/nabbar/prinbee/transport"
	"github.com/nabbar/prinbee/wire"
)

// handleClientMessage applies the per-message rules: REG and
// PING are answered inline, everything else is journaled then
// forwarded to a daemon.
func (p *Proxy) handleClientMessage(c *transport.Connection, msg *wire.Message) {
	switch msg.Header.Name {
	case wire.NameREG:
		if e := transport.HandleIncomingREG(c, msg); e != nil && p.log != nil {
			p.log.Warn("proxy: client REG rejected", logger.F("error", e.Error()))
		}
		return
	case wire.NamePING:
		_ = transport.ReplyPong(c, msg.Header.Serial, 0)
		return
	case wire.NameACK, wire.NameERR:
		// Replies travelling the daemon->proxy leg are handled by
		// handleDaemonMessage, not here.
		return
	default:
		p.forward(c, msg)
	}
}

// forward journals msg in the proxy's own journal, assigns it a
// daemon connection, and sends it on. The journal entry is marked
// FORWARDED once the send succeeds.
func (p *Proxy) forward(c *transport.Connection, msg *wire.Message) {
	reqID := journal.NewRequestID()

	if p.journal != nil {
		if _, e := p.journal.AddEvent(journal.AddRequest{
			RequestID:   reqID,
			Attachments: []journal.Attachment{{Data: append([]byte(nil), msg.Body...)}},
			CallerTime:  time.Now(),
		}); e != nil {
			p.replyErr(c, msg.Header.Serial, e.Error())
			return
		}
		if p.metrics != nil {
			p.metrics.EventsJournaled.Inc()
		}
	}

	d, e := p.pickDaemon()
	if e != nil {
		if p.journal != nil {
			_ = p.journal.EventFailed(reqID)
		}
		p.replyErr(c, msg.Header.Serial, e.Error())
		return
	}

	serial := d.NextSerial()
	p.mu.Lock()
	p.waiting[serial] = pending{clientID: c.ID(), clientSerial: msg.Header.Serial, requestID: reqID}
	p.mu.Unlock()

	fwd := wire.NewMessage(msg.Header.Name, serial, 0, msg.Body)
	if se := d.Send(fwd); se != nil {
		p.mu.Lock()
		delete(p.waiting, serial)
		p.mu.Unlock()
		if p.journal != nil {
			_ = p.journal.EventFailed(reqID)
		}
		p.replyErr(c, msg.Header.Serial, se.Error())
		return
	}
	if p.journal != nil {
		_ = p.journal.EventForwarded(reqID)
	}
}

// handleDaemonMessage answers the daemon link's lifecycle messages and
// folds a daemon's ACK/ERR back to the client that originated the
// request it answers, completing or failing the journal entry
// accordingly.
func (p *Proxy) handleDaemonMessage(d *transport.Connection, msg *wire.Message) {
	switch msg.Header.Name {
	case wire.NamePING:
		_ = transport.ReplyPong(d, msg.Header.Serial, 0)
		return
	case wire.NamePONG:
		if pong, de := transport.DecodePONG(msg.Body); de == nil {
			d.NotePong(msg.Header.Serial, pong.Load)
		}
		return
	case wire.NameACK, wire.NameERR:
	default:
		return
	}

	p.mu.Lock()
	pend, ok := p.waiting[msg.Header.Serial]
	if ok {
		delete(p.waiting, msg.Header.Serial)
	}
	p.mu.Unlock()
	if !ok {
		return
	}

	if p.journal != nil {
		if msg.Header.Name == wire.NameACK {
			_ = p.journal.EventCompleted(pend.requestID)
		} else {
			_ = p.journal.EventFailed(pend.requestID)
		}
	}
	if p.metrics != nil {
		if msg.Header.Name == wire.NameACK {
			p.metrics.ForwardsTotal.WithLabelValues("completed").Inc()
		} else {
			p.metrics.ForwardsTotal.WithLabelValues("failed").Inc()
		}
	}

	// The reply travels back under the client's own serial so its
	// correlation map resolves.
	if c, ok := p.clients.Get(pend.clientID); ok {
		reply := wire.NewMessage(msg.Header.Name, pend.clientSerial, 0, msg.Body)
		_ = c.Send(reply)
	}
}

func (p *Proxy) replyErr(c *transport.Connection, serial uint32, message string) {
	body := transport.EncodeERR(transport.ErrBody{Code: uint32(ErrorForwardFailed), Message: message})
	_ = c.Send(wire.NewMessage(wire.NameERR, serial, 0, body))
}
