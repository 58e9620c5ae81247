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

package cui_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/prinbee/client"
	"github.com/nabbar/prinbee/client/cui"
)

// fakeSession records what the console sends it.
type fakeSession struct {
	set    []client.SetContextRequest
	setErr error
	closed bool
}

func (f *fakeSession) ListContexts() ([]client.ContextSummary, error) {
	return []client.ContextSummary{{Name: "sales", SchemaVersion: 2, Owner: "alice", Group: "staff"}}, nil
}

func (f *fakeSession) GetContext(name string) (client.ContextSummary, error) {
	if name != "sales" {
		return client.ContextSummary{}, errors.New("context not found")
	}
	return client.ContextSummary{Name: "sales", SchemaVersion: 2}, nil
}

func (f *fakeSession) SetContext(req client.SetContextRequest) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.set = append(f.set, req)
	return nil
}

func (f *fakeSession) Ping() error  { return nil }
func (f *fakeSession) Close() error { f.closed = true; return nil }

func newConsole(sess *fakeSession, opts ...cui.Option) (*cui.Console, *bytes.Buffer) {
	out := &bytes.Buffer{}
	dial := func(addr, name string) (cui.Session, error) {
		return sess, nil
	}
	c := cui.New(out, dial, "test", opts...)
	_, err := c.Execute("/connect localhost:4013")
	Expect(err).To(BeNil())
	return c, out
}

var _ = Describe("console", func() {
	It("rejects an unknown command", func() {
		c, _ := newConsole(&fakeSession{})
		_, err := c.Execute("frobnicate")
		Expect(err).NotTo(BeNil())
		Expect(err.Error()).To(ContainSubstring("unknown command"))
	})

	It("requires a connection for server commands", func() {
		out := &bytes.Buffer{}
		c := cui.New(out, func(addr, name string) (cui.Session, error) { return nil, errors.New("boom") }, "test")
		_, err := c.Execute("list-contexts")
		Expect(err).NotTo(BeNil())
		Expect(err.Error()).To(ContainSubstring("not connected"))
	})

	It("lists contexts through the session", func() {
		c, out := newConsole(&fakeSession{})
		_, err := c.Execute("list-contexts")
		Expect(err).To(BeNil())
		Expect(out.String()).To(ContainSubstring("sales"))
		Expect(out.String()).To(ContainSubstring("version=2"))
	})

	It("parses set-context key=value arguments", func() {
		sess := &fakeSession{}
		c, _ := newConsole(sess)
		_, err := c.Execute("set-context sales version=3 owner=alice:staff description=quarterly")
		Expect(err).To(BeNil())
		Expect(sess.set).To(HaveLen(1))
		Expect(sess.set[0]).To(Equal(client.SetContextRequest{
			Name:          "sales",
			SchemaVersion: 3,
			Owner:         "alice",
			Group:         "staff",
			Description:   "quarterly",
		}))
	})

	It("queues set-context inside a work batch and sends on commit", func() {
		sess := &fakeSession{}
		c, _ := newConsole(sess)

		_, err := c.Execute("begin-work")
		Expect(err).To(BeNil())
		Expect(c.InWork()).To(BeTrue())

		_, err = c.Execute("set-context a version=1")
		Expect(err).To(BeNil())
		_, err = c.Execute("set-context b version=1")
		Expect(err).To(BeNil())
		Expect(sess.set).To(BeEmpty())

		_, err = c.Execute("commit-work")
		Expect(err).To(BeNil())
		Expect(sess.set).To(HaveLen(2))
		Expect(c.InWork()).To(BeFalse())
	})

	It("discards a work batch on rollback", func() {
		sess := &fakeSession{}
		c, _ := newConsole(sess)

		_, _ = c.Execute("begin-work")
		_, _ = c.Execute("set-context a version=1")
		_, err := c.Execute("rollback")
		Expect(err).To(BeNil())
		Expect(sess.set).To(BeEmpty())
		Expect(c.InWork()).To(BeFalse())
	})

	It("passes a server error payload through verbatim", func() {
		sess := &fakeSession{setErr: errors.New("unexpected schema version, expected=4 got=5")}
		c, _ := newConsole(sess)
		_, err := c.Execute("set-context sales version=5")
		Expect(err).NotTo(BeNil())
		Expect(err.Error()).To(Equal("unexpected schema version, expected=4 got=5"))
	})

	It("quits on /quit and closes the session on /disconnect", func() {
		sess := &fakeSession{}
		c, _ := newConsole(sess)

		quit, err := c.Execute("/quit")
		Expect(err).To(BeNil())
		Expect(quit).To(BeTrue())

		_, err = c.Execute("/disconnect")
		Expect(err).To(BeNil())
		Expect(sess.closed).To(BeTrue())
	})

	It("serves HELP sections from a documentation file", func() {
		d, err := os.MkdirTemp("", "prinbee-cui-*")
		Expect(err).To(BeNil())
		DeferCleanup(func() { _ = os.RemoveAll(d) })

		doc := filepath.Join(d, "doc.md")
		Expect(os.WriteFile(doc, []byte("## contexts\nhow contexts work\n\n## work\nbatching\n"), 0o644)).To(BeNil())

		c, out := newConsole(&fakeSession{}, cui.WithDocumentation(doc))
		_, err = c.Execute("HELP contexts")
		Expect(err).To(BeNil())
		Expect(out.String()).To(ContainSubstring("how contexts work"))
		Expect(out.String()).NotTo(ContainSubstring("batching"))
	})
})
