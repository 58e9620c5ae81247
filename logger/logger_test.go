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

package logger_test

import (
	"bytes"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/prinbee/logger"
)

// syncBuffer guards the buffer logrus writes to, since a Logger may be
// shared across goroutines.
type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

var _ = Describe("logger", func() {
	It("filters entries below the configured level", func() {
		buf := &syncBuffer{}
		log := logger.New(logger.WarnLevel, buf)

		log.Info("should not appear")
		log.Warn("should appear")

		Expect(buf.String()).NotTo(ContainSubstring("should not appear"))
		Expect(buf.String()).To(ContainSubstring("should appear"))
	})

	It("carries With fields on every derived entry without mutating the parent", func() {
		buf := &syncBuffer{}
		base := logger.New(logger.InfoLevel, buf)
		child := base.With(logger.F("journal_dir", "/tmp/j"))

		child.Info("from child")
		base.Info("from base")

		out := buf.String()
		Expect(out).To(ContainSubstring("journal_dir"))

		lines := bytes.Split([]byte(out), []byte("\n"))
		for _, line := range lines {
			if bytes.Contains(line, []byte("from base")) {
				Expect(string(line)).NotTo(ContainSubstring("journal_dir"))
			}
		}
	})

	It("merges per-call fields on top of bound fields", func() {
		buf := &syncBuffer{}
		log := logger.New(logger.InfoLevel, buf, logger.F("service", "daemon"))

		log.Info("event", logger.F("request_id", "abc"))

		Expect(buf.String()).To(ContainSubstring("service"))
		Expect(buf.String()).To(ContainSubstring("request_id"))
	})
})
