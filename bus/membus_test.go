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

package bus_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/prinbee/bus"
)

var _ = Describe("MemBus", func() {
	It("delivers published messages only to subscribers of the matching name", func() {
		b := bus.NewMemBus()
		defer b.Close()

		var gotReady, gotStop []bus.Message

		_, e := b.Subscribe(bus.NameReady, func(m bus.Message) { gotReady = append(gotReady, m) })
		Expect(e).To(BeNil())
		_, e = b.Subscribe(bus.NameStop, func(m bus.Message) { gotStop = append(gotStop, m) })
		Expect(e).To(BeNil())

		Expect(b.Publish(bus.Message{Name: bus.NameReady, Params: bus.Params{"cluster_name": "c1"}})).To(BeNil())
		Expect(gotReady).To(HaveLen(1))
		Expect(gotReady[0].Params.Get("cluster_name")).To(Equal("c1"))
		Expect(gotStop).To(BeEmpty())
	})

	It("stops delivery after Unsubscribe", func() {
		b := bus.NewMemBus()
		defer b.Close()

		count := 0
		sub, _ := b.Subscribe(bus.NamePrinbeeCurrentStatus, func(bus.Message) { count++ })
		Expect(b.Publish(bus.Message{Name: bus.NamePrinbeeCurrentStatus})).To(BeNil())
		Expect(sub.Unsubscribe()).To(BeNil())
		Expect(b.Publish(bus.Message{Name: bus.NamePrinbeeCurrentStatus})).To(BeNil())
		Expect(count).To(Equal(1))
	})
})
