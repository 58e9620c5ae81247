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

package cluck_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/prinbee/cluck"
)

var _ = Describe("MemLock", func() {
	It("rejects a second acquire of the same name and a release while not held", func() {
		l := cluck.NewMemLock()
		Expect(l.Acquire("context::orders")).To(BeNil())
		Expect(l.Acquire("context::orders")).NotTo(BeNil())
		Expect(l.Release("context::orders")).To(BeNil())
		Expect(l.Release("context::orders")).NotTo(BeNil())
	})

	It("rejects Acquire while not ready and fires status hooks", func() {
		l := cluck.NewMemLock()
		var events []bool
		l.OnStatusChange(func(ready bool) { events = append(events, ready) })

		l.SetReady(false)
		Expect(l.IsLockReady()).To(BeFalse())
		Expect(l.Acquire("x")).NotTo(BeNil())

		l.SetReady(true)
		Expect(l.Acquire("x")).To(BeNil())
		Expect(events).To(Equal([]bool{false, true}))
	})
})
