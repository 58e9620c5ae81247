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
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/prinbee/journal"
)

func tempJournalDir() string {
	d, err := os.MkdirTemp("", "prinbee-journal-*")
	Expect(err).To(BeNil())
	DeferCleanup(func() { _ = os.RemoveAll(d) })
	return d
}

func smallAttachment(n int) []journal.Attachment {
	return []journal.Attachment{{Data: []byte(fmt.Sprintf("payload-%d", n))}}
}

var _ = Describe("Journal add/status lifecycle", func() {
	It("keys live entries by request-id and rejects a duplicate id", func() {
		dir := tempJournalDir()
		j, err := journal.Open(dir, journal.DefaultConfig(), nil)
		Expect(err).To(BeNil())
		defer func() { _ = j.Close() }()

		_, err = j.AddEvent(journal.AddRequest{
			RequestID:   "req-1",
			Attachments: smallAttachment(1),
			CallerTime:  time.Now(),
		})
		Expect(err).To(BeNil())
		Expect(j.Size()).To(Equal(1))

		_, err = j.AddEvent(journal.AddRequest{
			RequestID:   "req-1",
			Attachments: smallAttachment(1),
			CallerTime:  time.Now(),
		})
		Expect(err).NotTo(BeNil())
		Expect(err.IsCode(journal.ErrorDuplicateID)).To(BeTrue())
	})

	It("refuses a regressive status transition and an unknown id", func() {
		dir := tempJournalDir()
		j, err := journal.Open(dir, journal.DefaultConfig(), nil)
		Expect(err).To(BeNil())
		defer func() { _ = j.Close() }()

		_, err = j.AddEvent(journal.AddRequest{RequestID: "req-1", Attachments: smallAttachment(1), CallerTime: time.Now()})
		Expect(err).To(BeNil())

		Expect(j.EventForwarded("req-1")).To(BeNil())
		Expect(j.EventAcknowledged("req-1")).To(BeNil())
		Expect(j.EventCompleted("req-1")).To(BeNil())

		err = j.EventForwarded("req-1")
		Expect(err).NotTo(BeNil())

		err = j.EventForwarded("unknown-id")
		Expect(err).NotTo(BeNil())
		Expect(err.IsCode(journal.ErrorUnknownID)).To(BeTrue())
	})

	It("round trips inline attachments byte for byte through NextEvent", func() {
		dir := tempJournalDir()
		j, err := journal.Open(dir, journal.DefaultConfig(), nil)
		Expect(err).To(BeNil())
		defer func() { _ = j.Close() }()

		payload := []byte("exact inline bytes")
		_, err = j.AddEvent(journal.AddRequest{
			RequestID:   "req-rt",
			Attachments: []journal.Attachment{{Data: payload}},
			CallerTime:  time.Now(),
		})
		Expect(err).To(BeNil())

		j.Rewind(true)
		ev, ok, err := j.NextEvent(true, false)
		Expect(err).To(BeNil())
		Expect(ok).To(BeTrue())
		Expect(ev.RequestID).To(Equal("req-rt"))
		Expect(ev.Attachments).To(HaveLen(1))
		Expect(ev.Attachments[0].Data).To(Equal(payload))

		_, ok, err = j.NextEvent(true, false)
		Expect(err).To(BeNil())
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Journal delete-on-terminal sequence", func() {
	It("unlinks every file once every event completes under file_management=DELETE", func() {
		dir := tempJournalDir()

		cfg := journal.DefaultConfig()
		cfg.MaximumEvents = 5
		cfg.FileManagement = journal.FileDelete

		j, err := journal.Open(dir, cfg, nil)
		Expect(err).To(BeNil())
		defer func() { _ = j.Close() }()

		ids := make([]string, 0, 10)
		for i := 1; i <= 10; i++ {
			id := "id-" + strconv.Itoa(i)
			ids = append(ids, id)
			_, err := j.AddEvent(journal.AddRequest{
				RequestID:   id,
				Attachments: smallAttachment(i),
				CallerTime:  time.Now(),
			})
			Expect(err).To(BeNil())
		}

		for _, id := range ids {
			Expect(j.EventForwarded(id)).To(BeNil())
			Expect(j.EventAcknowledged(id)).To(BeNil())
			Expect(j.EventCompleted(id)).To(BeNil())
		}

		for n := 0; n < cfg.MaximumNumberOfFiles; n++ {
			_, statErr := os.Stat(dir + "/journal-" + strconv.Itoa(n) + ".events")
			Expect(os.IsNotExist(statErr)).To(BeTrue())
		}

		j.Rewind(true)
		_, ok, err := j.NextEvent(true, false)
		Expect(err).To(BeNil())
		Expect(ok).To(BeFalse())
		Expect(j.Empty()).To(BeTrue())
	})
})

var _ = Describe("Timestamp collision", func() {
	It("bumps colliding caller times by one nanosecond, preserving add order", func() {
		dir := tempJournalDir()
		j, err := journal.Open(dir, journal.DefaultConfig(), nil)
		Expect(err).To(BeNil())
		defer func() { _ = j.Close() }()

		base := time.Unix(1_700_000_000, 0)
		for i := 0; i < 10; i++ {
			got, err := j.AddEvent(journal.AddRequest{
				RequestID:   "ts-" + strconv.Itoa(i),
				Attachments: smallAttachment(i),
				CallerTime:  base,
			})
			Expect(err).To(BeNil())
			Expect(got.UnixNano()).To(Equal(base.UnixNano() + int64(i)))
		}

		j.Rewind(true)
		for i := 0; i < 10; i++ {
			ev, ok, err := j.NextEvent(true, false)
			Expect(err).To(BeNil())
			Expect(ok).To(BeTrue())
			Expect(ev.RequestID).To(Equal("ts-" + strconv.Itoa(i)))
		}
	})
})

var _ = Describe("Rollback of an unfit write", func() {
	It("fails once all files are full of non-terminal events, then succeeds once compression frees space", func() {
		dir := tempJournalDir()

		cfg := journal.DefaultConfig()
		cfg.MaximumFileSize = 65536
		cfg.CompressWhenFull = false

		j, err := journal.Open(dir, cfg, nil)
		Expect(err).To(BeNil())
		defer func() { _ = j.Close() }()

		big := make([]byte, 10*1024)
		var firstID string
		added := 0

		for {
			id := "big-" + strconv.Itoa(added)
			_, err := j.AddEvent(journal.AddRequest{
				RequestID:   id,
				Attachments: []journal.Attachment{{Data: big}},
				CallerTime:  time.Now(),
			})
			if err != nil {
				Expect(err.IsCode(journal.ErrorJournalFull)).To(BeTrue())
				break
			}
			if added == 0 {
				firstID = id
			}
			added++
		}
		Expect(added).To(BeNumerically(">", 0))

		Expect(j.EventForwarded(firstID)).To(BeNil())
		Expect(j.EventAcknowledged(firstID)).To(BeNil())
		Expect(j.EventCompleted(firstID)).To(BeNil())

		j.SetCompressWhenFull(true)

		_, err = j.AddEvent(journal.AddRequest{
			RequestID:   "big-after-compress",
			Attachments: []journal.Attachment{{Data: big}},
			CallerTime:  time.Now(),
		})
		Expect(err).To(BeNil())
	})
})

// forgeRecord builds raw on-disk record bytes for the recovery tests:
// header(32) + one u32 offset + id + inline data.
func forgeRecord(id string, data []byte, timeSec, timeNSec int64) []byte {
	coreSize := uint32(32 + 4 + len(id) + len(data))
	buf := make([]byte, coreSize)
	buf[0], buf[1] = 'e', 'v'
	buf[2] = 0 // READY
	buf[3] = byte(len(id))
	binary.LittleEndian.PutUint32(buf[4:8], coreSize)
	binary.LittleEndian.PutUint64(buf[8:16], uint64(timeSec))
	binary.LittleEndian.PutUint64(buf[16:24], uint64(timeNSec))
	buf[24] = 1
	binary.LittleEndian.PutUint32(buf[32:36], uint32(32+4+len(id)))
	copy(buf[36:], id)
	copy(buf[36+len(id):], data)
	return buf
}

var _ = Describe("Crash recovery", func() {
	appendRaw := func(dir string, raw []byte) {
		f, err := os.OpenFile(filepath.Join(dir, "journal-0.events"), os.O_WRONLY|os.O_APPEND, 0o644)
		Expect(err).To(BeNil())
		_, err = f.Write(raw)
		Expect(err).To(BeNil())
		Expect(f.Close()).To(BeNil())
	}

	It("stops at a record whose leading magic is invalid", func() {
		dir := tempJournalDir()
		j, err := journal.Open(dir, journal.DefaultConfig(), nil)
		Expect(err).To(BeNil())
		_, err = j.AddEvent(journal.AddRequest{RequestID: "good", Attachments: smallAttachment(1), CallerTime: time.Now()})
		Expect(err).To(BeNil())
		Expect(j.Close()).To(BeNil())

		bad := forgeRecord("forged", []byte("payload"), time.Now().Unix(), 0)
		bad[0], bad[1] = 'X', 'X'
		appendRaw(dir, bad)

		j, err = journal.Open(dir, journal.DefaultConfig(), nil)
		Expect(err).To(BeNil())
		defer func() { _ = j.Close() }()

		Expect(j.Size()).To(Equal(1))
		ev, ok, ne := j.NextEvent(true, false)
		Expect(ne).To(BeNil())
		Expect(ok).To(BeTrue())
		Expect(ev.RequestID).To(Equal("good"))
		_, ok, _ = j.NextEvent(true, false)
		Expect(ok).To(BeFalse())
	})

	It("stops at a record whose event-time is unreasonably far in the future", func() {
		dir := tempJournalDir()
		j, err := journal.Open(dir, journal.DefaultConfig(), nil)
		Expect(err).To(BeNil())
		_, err = j.AddEvent(journal.AddRequest{RequestID: "good", Attachments: smallAttachment(1), CallerTime: time.Now()})
		Expect(err).To(BeNil())
		Expect(j.Close()).To(BeNil())

		farFuture := time.Now().Add(365 * 24 * time.Hour).Unix()
		appendRaw(dir, forgeRecord("fromthefuture", []byte("payload"), farFuture, 0))

		j, err = journal.Open(dir, journal.DefaultConfig(), nil)
		Expect(err).To(BeNil())
		defer func() { _ = j.Close() }()

		Expect(j.Size()).To(Equal(1))
		ev, ok, ne := j.NextEvent(true, false)
		Expect(ne).To(BeNil())
		Expect(ok).To(BeTrue())
		Expect(ev.RequestID).To(Equal("good"))
	})

	It("keeps a record dated in the recent past and present", func() {
		dir := tempJournalDir()
		j, err := journal.Open(dir, journal.DefaultConfig(), nil)
		Expect(err).To(BeNil())
		_, err = j.AddEvent(journal.AddRequest{RequestID: "good", Attachments: smallAttachment(1), CallerTime: time.Now()})
		Expect(err).To(BeNil())
		Expect(j.Close()).To(BeNil())

		j, err = journal.Open(dir, journal.DefaultConfig(), nil)
		Expect(err).To(BeNil())
		defer func() { _ = j.Close() }()
		Expect(j.Size()).To(Equal(1))
	})
})
