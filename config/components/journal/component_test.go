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

package journal_test

import (
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/prinbee/config"
	cpt "github.com/nabbar/prinbee/config/components/journal"
	"github.com/nabbar/prinbee/logger"
)

var _ = Describe("journal component", func() {
	var root string

	BeforeEach(func() {
		d, err := os.MkdirTemp("", "prinbee-cpt-journal-*")
		Expect(err).To(BeNil())
		DeferCleanup(func() { _ = os.RemoveAll(d) })
		root = d
	})

	It("opens the journal under <root>/<name> on Start", func() {
		c := cpt.New(root, "daemon", logger.Nop)
		Expect(c.Init(config.Values{})).To(BeNil())
		Expect(c.Start()).To(BeNil())
		DeferCleanup(func() { _ = c.Stop() })

		Expect(c.Journal()).NotTo(BeNil())
		Expect(c.Journal().Empty()).To(BeTrue())

		st, err := os.Stat(root + "/daemon")
		Expect(err).To(BeNil())
		Expect(st.IsDir()).To(BeTrue())
	})

	It("clamps operator input into the documented ranges", func() {
		c := cpt.New(root, "daemon", logger.Nop)
		Expect(c.Init(config.Values{
			"maximum_number_of_files": 1000,
			"maximum_events":          1,
			"sync":                    "full",
			"file_management":         "delete",
			"compress_when_full":      true,
		})).To(BeNil())
		Expect(c.Start()).To(BeNil())
		DeferCleanup(func() { _ = c.Stop() })
		Expect(c.Journal()).NotTo(BeNil())
	})

	It("refuses a second component on the same directory", func() {
		a := cpt.New(root, "daemon", logger.Nop)
		Expect(a.Init(config.Values{})).To(BeNil())
		Expect(a.Start()).To(BeNil())
		DeferCleanup(func() { _ = a.Stop() })

		b := cpt.New(root, "daemon", logger.Nop)
		Expect(b.Init(config.Values{})).To(BeNil())
		Expect(b.Start()).NotTo(BeNil())
	})
})
