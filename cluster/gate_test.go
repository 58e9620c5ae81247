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
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/prinbee/cluster"
)

var _ = Describe("Gate", func() {
	It("opens only once every condition is true, and latches through transient loss", func() {
		g := cluster.NewGate()
		fired := 0
		g.OnReady(func() { fired++ })

		g.SetFluidSettingsReady(true)
		g.SetIPWallUp(true)
		g.SetClockStable(true)
		Expect(g.IsReady()).To(BeFalse())

		g.SetLockReady(true)
		g.SetAddressValid(true)
		Expect(g.IsReady()).To(BeTrue())
		Expect(fired).To(Equal(1))

		g.SetClockStable(false)
		Expect(g.IsReady()).To(BeTrue())

		g.SetClockStable(true)
		Expect(fired).To(Equal(1))
	})

	It("runs a late OnReady callback immediately if already latched", func() {
		g := cluster.NewGate()
		g.SetFluidSettingsReady(true)
		g.SetIPWallUp(true)
		g.SetClockStable(true)
		g.SetLockReady(true)
		g.SetAddressValid(true)
		Expect(g.IsReady()).To(BeTrue())

		called := false
		g.OnReady(func() { called = true })
		Expect(called).To(BeTrue())
	})
})
