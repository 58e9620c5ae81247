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
	"github.com/nabbar/prinbee/cluck"
	"github.com/nabbar/prinbee/context"
	"github.com/nabbar/prinbee/errors"
	"github.com/nabbar/prinbee/logger"
	"github.com/nabbar/prinbee/transport"
	"github.com/nabbar/prinbee/wire"
)

// Dispatch routes a Payload by message name and stage. It never touches connection objects directly: all
// replies go through d.registry.Get(p.ConnID) and Connection.Send,
// which is safe to call from any goroutine.
func (d *Daemon) Dispatch(p *Payload) (requeue bool, err errors.Error) {
	switch p.Msg.Header.Name {
	case wire.NameREG:
		return d.registerClient(p)
	case wire.NameACK:
		return d.acknowledge(p)
	case wire.NameListContexts:
		return d.listContexts(p)
	case wire.NameGetContext:
		return d.getContext(p)
	case wire.NameSetContext:
		return d.setContext(p)
	}
	return false, errors.New(uint16(ErrorUnknownMessage), ErrorUnknownMessage.Message())
}

func (d *Daemon) conn(id transport.ID) (*transport.Connection, bool) {
	return d.registry.Get(id)
}

func (d *Daemon) reply(id transport.ID, msg *wire.Message) {
	if c, ok := d.conn(id); ok {
		_ = c.Send(msg)
	}
}

func (d *Daemon) replyErr(id transport.ID, serial uint32, e errors.Error) {
	body := transport.EncodeERR(transport.ErrBody{Code: uint32(e.GetCode()), Message: e.Error()})
	d.reply(id, wire.NewMessage(wire.NameERR, serial, 0, body))
}

// registerClient is the worker-side counterpart of the connection's
// inline REG handshake: it records the peer's declared name
// against its connection id for logging/diagnostics.
func (d *Daemon) registerClient(p *Payload) (bool, errors.Error) {
	reg, e := transport.DecodeREG(p.Msg.Body)
	if e != nil {
		return false, e
	}
	if d.log != nil {
		d.log.Debug("daemon: register_client", logger.F("name", reg.Name), logger.F("conn", p.ConnID))
	}
	return false, nil
}

// acknowledge marks the originating connection as replied in whatever
// AckMap the in-flight multi-phase operation is waiting on
// (SET_CONTEXT phase 3/4).
func (d *Daemon) acknowledge(p *Payload) (bool, errors.Error) {
	if p.Acks != nil {
		p.Acks.Mark(p.ConnID)
	}
	return false, nil
}

func (d *Daemon) listContexts(p *Payload) (bool, errors.Error) {
	list := d.contexts.List()
	enc := wire.NewEncoder(64 + 64*len(list))
	enc.PutUint32(uint32(len(list)))
	for _, c := range list {
		EncodeContextSummary(enc, c)
	}
	d.reply(p.ConnID, wire.NewMessage(wire.NameACK, p.Msg.Header.Serial, 0, enc.Bytes()))
	return false, nil
}

func (d *Daemon) getContext(p *Payload) (bool, errors.Error) {
	dec := wire.NewDecoder(p.Msg.Body)
	name := dec.GetPString(1)
	if e := dec.Err(); e != nil {
		d.replyErr(p.ConnID, p.Msg.Header.Serial, e)
		return false, e
	}

	canon, ce := context.Canonicalize(name)
	if ce != nil {
		d.replyErr(p.ConnID, p.Msg.Header.Serial, ce)
		return false, ce
	}

	c, ok := d.contexts.Get(canon)
	if !ok {
		e := errors.New(uint16(ErrorUnknownMessage), "context not found")
		d.replyErr(p.ConnID, p.Msg.Header.Serial, e)
		return false, e
	}

	enc := wire.NewEncoder(128)
	EncodeContextSummary(enc, c)
	d.reply(p.ConnID, wire.NewMessage(wire.NameACK, p.Msg.Header.Serial, 0, enc.Bytes()))
	return false, nil
}

// setContext drives the four-phase SET_CONTEXT protocol using
// Payload.Stage to resume without blocking the worker.
func (d *Daemon) setContext(p *Payload) (bool, errors.Error) {
	body, e := DecodeSetContext(p.Msg.Body)
	if e != nil {
		d.replyErr(p.ConnID, p.Msg.Header.Serial, e)
		return false, e
	}

	switch p.Stage {
	case 0:
		// Phase 1: acknowledge receipt, then request the cluster lock.
		ack := transport.EncodeACK(transport.AckBody{Phase: PhaseContextReceived})
		d.reply(p.ConnID, wire.NewMessage(wire.NameACK, p.Msg.Header.Serial, 0, ack))

		lockName := "context::" + body.Name
		if le := d.lock.Acquire(lockName); le != nil {
			d.replyErr(p.ConnID, p.Msg.Header.Serial, le)
			return false, le
		}
		return true, nil

	case 1:
		// Phase 2: version check, create/update, ack phase 2, requeue.
		// On a version gap the ERR goes out while the lock is still
		// held; release only follows the reply.
		lockName := "context::" + body.Name
		if ae := applySetContext(d.contexts, body); ae != nil {
			d.replyErr(p.ConnID, p.Msg.Header.Serial, ae)
			_ = d.lock.Release(lockName)
			return false, ae
		}
		ack := transport.EncodeACK(transport.AckBody{Phase: PhaseContextSaved})
		d.reply(p.ConnID, wire.NewMessage(wire.NameACK, p.Msg.Header.Serial, 0, ack))
		return true, nil

	case 2:
		// Phase 3: broadcast to every NODE peer and start tracking acks.
		peers := d.registry.ByKind(transport.KindNode)
		ids := make([]transport.ID, 0, len(peers))
		for _, peer := range peers {
			ids = append(ids, peer.ID())
			msg := wire.NewMessage(wire.NameSetContext, peer.NextSerial(), 0, p.Msg.Body)
			_ = peer.Send(msg)
		}
		p.Acks = NewAckMap(ids)
		if len(ids) == 0 {
			return d.finishSetContext(p, body)
		}
		return true, nil

	default:
		// Phase 4: release the lock once every peer ACK has landed (or
		// this payload keeps requeueing until they have).
		if p.Acks != nil && !p.Acks.AllReplied() {
			return true, nil
		}
		return d.finishSetContext(p, body)
	}
}

func (d *Daemon) finishSetContext(p *Payload, body SetContextBody) (bool, errors.Error) {
	lockName := "context::" + body.Name
	if re := d.lock.Release(lockName); re != nil && re.GetCode() != cluck.ErrorNotHeld {
		return false, re
	}
	return false, nil
}
