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

package daemon_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/prinbee/cluck"
	"github.com/nabbar/prinbee/context"
	"github.com/nabbar/prinbee/daemon"
	"github.com/nabbar/prinbee/logger"
	"github.com/nabbar/prinbee/wire"
)

var _ = Describe("Daemon SET_CONTEXT", func() {
	var (
		ctxReg *context.Registry
		lock   *cluck.MemLock
		d      *daemon.Daemon
	)

	BeforeEach(func() {
		ctxRegP, ce := context.Open(GinkgoT().TempDir(), logger.Nop())
		Expect(ce).To(BeNil())
		ctxReg = ctxRegP

		lock = cluck.NewMemLock()
		d = daemon.New(daemon.Config{
			Name:         "test-node",
			PingInterval: time.Second,
			Workers:      2,
			QueueDepth:   16,
		}, nil, ctxReg, nil, lock, logger.Nop())
	})

	It("creates a new context and releases the lock when there are no peers", func() {
		body := daemon.SetContextBody{Name: "orders", SchemaVersion: 1, Owner: "root", Group: "root", Description: "orders"}
		msg := wire.NewMessage(wire.NameSetContext, 1, 0, daemon.EncodeSetContext(body))

		requeue, e := d.Dispatch(&daemon.Payload{Msg: msg, Stage: 0})
		Expect(e).To(BeNil())
		Expect(requeue).To(BeTrue())

		requeue, e = d.Dispatch(&daemon.Payload{Msg: msg, Stage: 1})
		Expect(e).To(BeNil())
		Expect(requeue).To(BeTrue())

		requeue, e = d.Dispatch(&daemon.Payload{Msg: msg, Stage: 2})
		Expect(e).To(BeNil())
		Expect(requeue).To(BeFalse())

		c, ok := ctxReg.Get("orders")
		Expect(ok).To(BeTrue())
		Expect(c.SchemaVersion).To(Equal(uint64(1)))
		Expect(lock.Acquire("context::orders")).To(BeNil())
	})

	It("rejects a schema version that is not current+1", func() {
		_, ce := ctxReg.Create("orders", "root", "root", "orders")
		Expect(ce).To(BeNil())

		body := daemon.SetContextBody{Name: "orders", SchemaVersion: 5}
		msg := wire.NewMessage(wire.NameSetContext, 2, 0, daemon.EncodeSetContext(body))

		_, _ = d.Dispatch(&daemon.Payload{Msg: msg, Stage: 0})
		_, e := d.Dispatch(&daemon.Payload{Msg: msg, Stage: 1})
		Expect(e).NotTo(BeNil())
		Expect(lock.Acquire("context::orders")).To(BeNil())
	})
})
