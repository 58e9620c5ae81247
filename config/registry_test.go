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

package config_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/prinbee/config"
	"github.com/nabbar/prinbee/errors"
)

type fakeComponent struct {
	key  string
	deps []string
	log  *[]string
}

func (f *fakeComponent) Key() string            { return f.key }
func (f *fakeComponent) Dependencies() []string { return f.deps }
func (f *fakeComponent) Init(config.Values) errors.Error   { return nil }
func (f *fakeComponent) Start() errors.Error {
	*f.log = append(*f.log, "start:"+f.key)
	return nil
}
func (f *fakeComponent) Reload(config.Values) errors.Error { return nil }
func (f *fakeComponent) Stop() errors.Error {
	*f.log = append(*f.log, "stop:"+f.key)
	return nil
}

var _ = Describe("Components", func() {
	It("starts dependencies before dependents and stops in reverse order", func() {
		var log []string
		c := config.NewComponents()

		Expect(c.Register(&fakeComponent{key: "journal", log: &log}, nil)).To(BeNil())
		Expect(c.Register(&fakeComponent{key: "context", deps: []string{"journal"}, log: &log}, nil)).To(BeNil())
		Expect(c.Register(&fakeComponent{key: "daemon", deps: []string{"context", "journal"}, log: &log}, nil)).To(BeNil())

		Expect(c.Start()).To(BeNil())
		Expect(log).To(Equal([]string{"start:journal", "start:context", "start:daemon"}))

		c.Stop()
		Expect(log).To(Equal([]string{
			"start:journal", "start:context", "start:daemon",
			"stop:daemon", "stop:context", "stop:journal",
		}))
	})

	It("rejects a registered component depending on an unregistered one", func() {
		c := config.NewComponents()
		Expect(c.Register(&fakeComponent{key: "daemon", deps: []string{"missing"}}, nil)).To(BeNil())
		Expect(c.Start()).NotTo(BeNil())
	})

	It("rejects registering the same key twice", func() {
		c := config.NewComponents()
		Expect(c.Register(&fakeComponent{key: "journal"}, nil)).To(BeNil())
		Expect(c.Register(&fakeComponent{key: "journal"}, nil)).NotTo(BeNil())
	})
})
