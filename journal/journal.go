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

// Package journal implements the append-only, rotating event journal:
// durable at-most-once delivery bookkeeping for replicated writes,
// with in-place status rewrites and externalized large attachments.
package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/nabbar/prinbee/errors"
	"github.com/nabbar/prinbee/logger"
)

var externalFileRe = regexp.MustCompile(`^(\d+)\.bin$`)

// Journal is a single context's durable event log: a fixed-size ring
// of journal-<N>.events files plus sibling N.bin attachment files.
type Journal struct {
	mu      sync.Mutex
	dir     string
	cfg     Config
	log     logger.Logger
	dirLock *flock.Flock

	files []*journalFile
	cur   int

	lastTime int64 // nanoseconds since epoch, last assigned event-time

	index map[string]*recordMeta // request-id -> record, live set only

	nextExternalSeq uint64

	iterCursor int
	iterByTime bool
	iterSnap   []*recordMeta
}

// Open opens or creates the journal rooted at dir, recovering every
// file's valid records and rebuilding the live
// index and external attachment sequence counter.
func Open(dir string, cfg Config, log logger.Logger) (*Journal, errors.Error) {
	if e := cfg.Validate(); e != nil {
		return nil, e
	}
	if log == nil {
		log = logger.Nop()
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.New(uint16(ErrorWrite), err.Error())
	}

	// Advisory lock enforcing single-writer ownership: a
	// second process opening the same directory gets ErrorFileInUse
	// instead of interleaved appends.
	dl := flock.New(filepath.Join(dir, ".lock"))
	if held, err := dl.TryLock(); err != nil {
		return nil, errors.New(uint16(ErrorWrite), ErrorWrite.Message(), err)
	} else if !held {
		return nil, errors.New(uint16(ErrorFileInUse), ErrorFileInUse.Message())
	}

	j := &Journal{
		dir:     dir,
		cfg:     cfg,
		log:     log.With(logger.F("journal_dir", dir)),
		dirLock: dl,
		index:   make(map[string]*recordMeta),
	}

	maxTimeSec := time.Now().Unix() + cfg.FutureSkew/1_000_000_000 + 1
	for n := 0; n < cfg.MaximumNumberOfFiles; n++ {
		jf, e := openJournalFile(dir, n, maxTimeSec)
		if e != nil {
			j.closeAll()
			return nil, e
		}
		j.files = append(j.files, jf)

		for _, rec := range jf.records {
			if rec.timeSec*1_000_000_000+rec.timeNSec > j.lastTime {
				j.lastTime = rec.timeSec*1_000_000_000 + rec.timeNSec
			}
			if !rec.status.IsTerminal() {
				j.index[rec.requestID] = rec
			}
		}
	}

	if e := j.scanExternalSeq(); e != nil {
		j.closeAll()
		return nil, e
	}

	j.Rewind(true)

	return j, nil
}

func (j *Journal) scanExternalSeq() errors.Error {
	entries, err := os.ReadDir(j.dir)
	if err != nil {
		return errors.New(uint16(ErrorWrite), err.Error())
	}
	for _, e := range entries {
		m := externalFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, _ := strconv.ParseUint(m[1], 10, 64)
		if n >= j.nextExternalSeq {
			j.nextExternalSeq = n + 1
		}
	}
	return nil
}

func (j *Journal) closeAll() {
	for _, f := range j.files {
		_ = f.close()
	}
	if j.dirLock != nil {
		_ = j.dirLock.Unlock()
	}
}

// Close releases every underlying file handle.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	var first error
	for _, f := range j.files {
		if err := f.close(); err != nil && first == nil {
			first = err
		}
	}
	if j.dirLock != nil {
		if err := j.dirLock.Unlock(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// AddRequest is add_event's input: a request-id, 1..255
// attachments supplied either as raw bytes or as a path to a regular
// file, and the caller's wall-clock time.
type AddRequest struct {
	RequestID   string
	Attachments []Attachment
	CallerTime  time.Time
}

// AddEvent assigns a strictly-greater-than-last event-time, writes the
// record (externalizing oversize attachments per AttachmentCopyHandling),
// and returns the canonical assigned time.
func (j *Journal) AddEvent(req AddRequest) (time.Time, errors.Error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if len(req.RequestID) == 0 || len(req.RequestID) > MaxRequestIDLen {
		return time.Time{}, errors.New(uint16(ErrorIDTooLarge), ErrorIDTooLarge.Message())
	}
	if len(req.Attachments) == 0 {
		return time.Time{}, errors.New(uint16(ErrorNoAttachments), ErrorNoAttachments.Message())
	}
	if len(req.Attachments) > MaxAttachments {
		return time.Time{}, errors.New(uint16(ErrorTooManyAttachments), ErrorTooManyAttachments.Message())
	}
	if _, live := j.index[req.RequestID]; live {
		return time.Time{}, errors.New(uint16(ErrorDuplicateID), ErrorDuplicateID.Message())
	}

	callerNanos := req.CallerTime.UnixNano()
	nowNanos := time.Now().UnixNano()
	if callerNanos-nowNanos > j.cfg.FutureSkew {
		return time.Time{}, errors.New(uint16(ErrorTimeTooFarFuture), ErrorTimeTooFarFuture.Message())
	}

	assigned := callerNanos
	if assigned <= j.lastTime {
		assigned = j.lastTime + 1
	}

	externalNames := make([]string, len(req.Attachments))
	placements := make([]func() errors.Error, 0, len(req.Attachments))

	for i := range req.Attachments {
		a := &req.Attachments[i]

		if a.IsPath() {
			if e := validateAttachmentSource(a.SourcePath); e != nil {
				return time.Time{}, e
			}
			info, _ := os.Stat(a.SourcePath)
			if info.Size() <= j.cfg.InlineAttachmentThreshold {
				data, err := os.ReadFile(a.SourcePath)
				if err != nil {
					return time.Time{}, errors.New(uint16(ErrorWrite), err.Error())
				}
				a.Data = data
			} else {
				name := j.nextExternalName()
				externalNames[i] = name
				src := a.SourcePath
				dest := filepath.Join(j.dir, name)
				placements = append(placements, func() errors.Error {
					return placeAttachment(j.cfg.AttachmentCopyHandling, src, dest)
				})
			}
		} else if int64(len(a.Data)) > j.cfg.InlineAttachmentThreshold {
			name := j.nextExternalName()
			externalNames[i] = name
			dest := filepath.Join(j.dir, name)
			data := a.Data
			placements = append(placements, func() errors.Error {
				return fullCopyBytes(data, dest)
			})
		}
	}

	ev := &Event{
		RequestID:   req.RequestID,
		TimeSec:     assigned / 1_000_000_000,
		TimeNSec:    assigned % 1_000_000_000,
		Status:      StatusReady,
		Attachments: req.Attachments,
	}

	plan, e := encodeRecord(ev, externalNames)
	if e != nil {
		return time.Time{}, e
	}

	jf, e := j.selectFile(len(plan.bytes))
	if e != nil {
		return time.Time{}, e
	}

	for _, place := range placements {
		if e := place(); e != nil {
			return time.Time{}, e
		}
	}

	off, e := jf.append(plan)
	if e != nil {
		return time.Time{}, e
	}
	if e := jf.sync(j.cfg.Sync); e != nil {
		return time.Time{}, e
	}

	meta := &recordMeta{
		file:        jf.index,
		offset:      off,
		totalSize:   int64(len(plan.bytes)),
		requestID:   req.RequestID,
		timeSec:     ev.TimeSec,
		timeNSec:    ev.TimeNSec,
		status:      StatusReady,
		attachCount: len(req.Attachments),
	}
	jf.records = append(jf.records, meta)
	j.index[req.RequestID] = meta
	j.lastTime = assigned
	j.cur = jf.index

	return time.Unix(ev.TimeSec, ev.TimeNSec).UTC(), nil
}

func (j *Journal) nextExternalName() string {
	n := j.nextExternalSeq
	j.nextExternalSeq++
	return fmt.Sprintf("%d.bin", n)
}

func fullCopyBytes(data []byte, dest string) errors.Error {
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return errors.New(uint16(ErrorWrite), err.Error())
	}
	return nil
}

// selectFile finds a file able to hold a record of recordLen bytes,
// reclaiming fully-terminal files encountered along the way, and
// falling back to compression of partially-terminal files when
// cfg.CompressWhenFull is set and nothing fits as-is.
func (j *Journal) selectFile(recordLen int) (*journalFile, errors.Error) {
	n := j.cfg.MaximumNumberOfFiles

	for attempt := 0; attempt < n; attempt++ {
		idx := (j.cur + attempt) % n
		jf := j.files[idx]

		if len(jf.records) > 0 && j.isFullyTerminal(jf) {
			if e := j.reclaim(jf); e != nil {
				return nil, e
			}
		}

		if j.fits(jf, recordLen) {
			if e := j.ensureOpen(jf); e != nil {
				return nil, e
			}
			return jf, nil
		}
	}

	if j.cfg.CompressWhenFull {
		for idx := 0; idx < n; idx++ {
			jf := j.files[idx]
			if j.hasTerminal(jf) {
				if e := j.compress(jf); e != nil {
					return nil, e
				}
			}
			if j.fits(jf, recordLen) {
				if e := j.ensureOpen(jf); e != nil {
					return nil, e
				}
				return jf, nil
			}
		}
	}

	return nil, errors.New(uint16(ErrorJournalFull), ErrorJournalFull.Message())
}

func (j *Journal) fits(jf *journalFile, recordLen int) bool {
	return j.effectiveSize(jf)+int64(recordLen) <= j.cfg.MaximumFileSize && len(jf.records) < j.cfg.MaximumEvents
}

// effectiveSize returns jf.size, or the size a freshly (re)created
// file would report, for a file unlinked by a DELETE reclaim and not
// yet recreated.
func (j *Journal) effectiveSize(jf *journalFile) int64 {
	if jf.fh == nil {
		return fileHeaderSize
	}
	return jf.size
}

// ensureOpen recreates jf's underlying file if a prior DELETE reclaim
// unlinked it, lazily, right before the first write that needs it.
func (j *Journal) ensureOpen(jf *journalFile) errors.Error {
	if jf.fh != nil {
		return nil
	}
	nf, e := openJournalFile(j.dir, jf.index, time.Now().Unix()+j.cfg.FutureSkew/1_000_000_000+1)
	if e != nil {
		return e
	}
	*jf = *nf
	return nil
}

func (j *Journal) isFullyTerminal(jf *journalFile) bool {
	for _, r := range jf.records {
		if !r.status.IsTerminal() {
			return false
		}
	}
	return true
}

func (j *Journal) hasTerminal(jf *journalFile) bool {
	for _, r := range jf.records {
		if r.status.IsTerminal() {
			return true
		}
	}
	return false
}

// reclaim resets jf per the configured FileManagement policy once
// every one of its records has gone terminal.
func (j *Journal) reclaim(jf *journalFile) errors.Error {
	for _, r := range jf.records {
		delete(j.index, r.requestID)
	}

	switch j.cfg.FileManagement {
	case FileKeep:
		jf.size = fileHeaderSize
		jf.records = nil
		return nil
	case FileTruncate:
		return jf.truncateToHeader()
	case FileDelete:
		_ = jf.close()
		if err := os.Remove(jf.path); err != nil && !os.IsNotExist(err) {
			return errors.New(uint16(ErrorWrite), err.Error())
		}
		// Left unlinked; ensureOpen recreates it lazily on the next
		// add that actually needs it.
		jf.fh = nil
		jf.size = 0
		jf.records = nil
		return nil
	}
	return errors.New(uint16(ErrorUnknownCopyMode), "unknown file_management mode")
}

// compress rewrites jf keeping only its non-terminal records, in
// order, reclaiming the space occupied by terminal entries without
// requiring the whole file to be terminal.
func (j *Journal) compress(jf *journalFile) errors.Error {
	keep := make([]*recordMeta, 0, len(jf.records))
	for _, r := range jf.records {
		if !r.status.IsTerminal() {
			keep = append(keep, r)
		} else {
			delete(j.index, r.requestID)
		}
	}

	tmpPath := jf.path + ".compress"
	tmp, err := os.OpenFile(tmpPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.New(uint16(ErrorWrite), err.Error())
	}

	if _, err := tmp.Write(encodeFileHeader()); err != nil {
		_ = tmp.Close()
		return errors.New(uint16(ErrorWrite), err.Error())
	}

	pos := int64(fileHeaderSize)
	for _, r := range keep {
		buf := make([]byte, r.totalSize)
		if _, err := jf.fh.ReadAt(buf, r.offset); err != nil {
			_ = tmp.Close()
			return errors.New(uint16(ErrorWrite), err.Error())
		}
		if _, err := tmp.WriteAt(buf, pos); err != nil {
			_ = tmp.Close()
			return errors.New(uint16(ErrorWrite), err.Error())
		}
		r.offset = pos
		pos += r.totalSize
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.New(uint16(ErrorWrite), err.Error())
	}
	if err := tmp.Close(); err != nil {
		return errors.New(uint16(ErrorWrite), err.Error())
	}
	if err := jf.close(); err != nil {
		return errors.New(uint16(ErrorWrite), err.Error())
	}
	if err := os.Rename(tmpPath, jf.path); err != nil {
		return errors.New(uint16(ErrorWrite), err.Error())
	}

	fh, err := os.OpenFile(jf.path, os.O_RDWR, 0o644)
	if err != nil {
		return errors.New(uint16(ErrorWrite), err.Error())
	}
	jf.fh = fh
	jf.size = pos
	jf.records = keep

	return nil
}

// transition advances id's status, refusing unknown ids and
// regressions.
func (j *Journal) transition(id string, next Status) errors.Error {
	j.mu.Lock()
	defer j.mu.Unlock()

	meta, ok := j.index[id]
	if !ok {
		return errors.New(uint16(ErrorUnknownID), ErrorUnknownID.Message())
	}
	if !meta.status.CanAdvanceTo(next) {
		return errors.New(uint16(ErrorRegressiveTransition), ErrorRegressiveTransition.Message())
	}

	jf := j.files[meta.file]
	if e := jf.rewriteStatus(meta.offset, next); e != nil {
		return e
	}
	meta.status = next

	if next.IsTerminal() {
		delete(j.index, id)

		if len(jf.records) > 0 && j.isFullyTerminal(jf) {
			return j.reclaim(jf)
		}
	}

	return nil
}

// EventForwarded marks id FORWARDED.
func (j *Journal) EventForwarded(id string) errors.Error { return j.transition(id, StatusForwarded) }

// EventAcknowledged marks id ACKNOWLEDGED.
func (j *Journal) EventAcknowledged(id string) errors.Error {
	return j.transition(id, StatusAcknowledged)
}

// EventCompleted marks id COMPLETED.
func (j *Journal) EventCompleted(id string) errors.Error { return j.transition(id, StatusCompleted) }

// EventFailed marks id FAILED.
func (j *Journal) EventFailed(id string) errors.Error { return j.transition(id, StatusFailed) }

// Rewind resets the NextEvent cursor, taking a fresh snapshot ordered
// by time (byTime=true) or by file/offset (byTime=false).
func (j *Journal) Rewind(byTime bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.rewindLocked(byTime)
}

func (j *Journal) rewindLocked(byTime bool) {
	snap := make([]*recordMeta, 0)
	for _, jf := range j.files {
		snap = append(snap, jf.records...)
	}

	if byTime {
		sort.Slice(snap, func(i, k int) bool {
			ti := snap[i].timeSec*1_000_000_000 + snap[i].timeNSec
			tk := snap[k].timeSec*1_000_000_000 + snap[k].timeNSec
			return ti < tk
		})
	} else {
		sort.Slice(snap, func(i, k int) bool {
			if snap[i].file != snap[k].file {
				return snap[i].file < snap[k].file
			}
			return snap[i].offset < snap[k].offset
		})
	}

	j.iterSnap = snap
	j.iterCursor = 0
	j.iterByTime = byTime
}

// NextEvent returns the next event in the current iteration order,
// or ok=false once exhausted.
func (j *Journal) NextEvent(byTime bool, debug bool) (*Event, bool, errors.Error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.iterSnap == nil || byTime != j.iterByTime {
		j.rewindLocked(byTime)
	}

	if j.iterCursor >= len(j.iterSnap) {
		return nil, false, nil
	}

	meta := j.iterSnap[j.iterCursor]
	j.iterCursor++

	jf := j.files[meta.file]
	ev, e := jf.readEvent(j.dir, meta, debug)
	if e != nil {
		return nil, false, e
	}
	if !debug {
		ev.file = 0
		ev.offset = 0
	}
	return ev, true, nil
}

// Size returns the number of live (non-terminal) events tracked by
// the journal's index.
func (j *Journal) Size() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.index)
}

// Empty reports whether the journal currently has no live events.
func (j *Journal) Empty() bool {
	return j.Size() == 0
}

// SetCompressWhenFull reconfigures the compress_when_full toggle on a
// live journal, the way a config-reload component would apply a
// fluid-settings change without reopening the journal.
func (j *Journal) SetCompressWhenFull(enabled bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cfg.CompressWhenFull = enabled
}
