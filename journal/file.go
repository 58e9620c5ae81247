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

package journal

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nabbar/prinbee/errors"
)

// recordMeta is the in-memory index entry the journal keeps for one
// on-disk record: enough to rewrite the status byte in place and to
// re-read the full record when materializing an Event, without
// keeping attachment bytes resident.
type recordMeta struct {
	file        int
	offset      int64
	totalSize   int64
	requestID   string
	timeSec     int64
	timeNSec    int64
	status      Status
	attachCount int
}

func (m *recordMeta) key() string { return fmt.Sprintf("%d:%d", m.file, m.offset) }

// journalFile wraps one journal-<N>.events file: its handle, current
// append position, and the records recovered/appended to it.
type journalFile struct {
	index   int
	path    string
	fh      *os.File
	size    int64
	records []*recordMeta
}

func journalFileName(dir string, n int) string {
	return filepath.Join(dir, fmt.Sprintf("journal-%d.events", n))
}

// openJournalFile opens (creating if absent) file n, recovering valid
// records up to the first corrupt/truncated one. maxTimeSec bounds how
// far in the future a recovered record's event-time may lie before the
// scan treats it as garbage and stops.
func openJournalFile(dir string, n int, maxTimeSec int64) (*journalFile, errors.Error) {
	path := journalFileName(dir, n)

	fh, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		if os.IsPermission(err) {
			return nil, errors.New(uint16(ErrorPermissionDenied), err.Error())
		}
		return nil, errors.New(uint16(ErrorWrite), err.Error())
	}

	jf := &journalFile{index: n, path: path, fh: fh}

	info, err := fh.Stat()
	if err != nil {
		_ = fh.Close()
		return nil, errors.New(uint16(ErrorWrite), err.Error())
	}

	if info.Size() < fileHeaderSize {
		if e := jf.writeHeader(); e != nil {
			_ = fh.Close()
			return nil, e
		}
	} else {
		hdr := make([]byte, fileHeaderSize)
		if _, err := io.ReadFull(fh, hdr); err != nil {
			_ = fh.Close()
			return nil, errors.New(uint16(ErrorCorruptFrame), err.Error())
		}
		if e := decodeFileHeader(hdr); e != nil {
			_ = fh.Close()
			return nil, e
		}
	}

	if e := jf.recover(maxTimeSec); e != nil {
		_ = fh.Close()
		return nil, e
	}

	return jf, nil
}

func (jf *journalFile) writeHeader() errors.Error {
	if _, err := jf.fh.WriteAt(encodeFileHeader(), 0); err != nil {
		return errors.New(uint16(ErrorWrite), err.Error())
	}
	jf.size = fileHeaderSize
	if err := jf.fh.Truncate(fileHeaderSize); err != nil {
		return errors.New(uint16(ErrorWrite), err.Error())
	}
	return nil
}

// recover scans the file from just past the header, stopping at the
// first record that fails validation: a bad leading magic, an
// implausible header (zero id, attachment count or size out of range,
// unknown status, event-time unreasonably far in the future), or a
// body cut short by a truncated write. The append position is then
// truncated to that point; anything past it is considered absent.
func (jf *journalFile) recover(maxTimeSec int64) errors.Error {
	pos := int64(fileHeaderSize)

	for {
		hdr := make([]byte, recordHeaderSize)
		n, err := jf.fh.ReadAt(hdr, pos)
		if err != nil && err != io.EOF {
			return errors.New(uint16(ErrorCorruptFrame), err.Error())
		}
		if n < recordHeaderSize {
			break
		}

		status, idLen, coreSize, timeSec, timeNSec, attachCount, e := decodeRecordHeader(hdr)
		if e != nil {
			break
		}

		// With no per-record checksum on disk, a half-written or
		// scribbled record is caught by plausibility: every field the
		// header promises must be in range and fit in the file.
		if idLen == 0 ||
			attachCount == 0 || attachCount > MaxAttachments ||
			status > StatusFailed ||
			timeSec < 0 || timeNSec < 0 || timeNSec >= 1_000_000_000 ||
			timeSec > maxTimeSec ||
			int64(coreSize) < int64(recordHeaderSize+4*attachCount+idLen) {
			break
		}

		// Walk the offsets array to find where external metadata ends;
		// external entries are variable length.
		offStart := pos + recordHeaderSize
		offBytes := make([]byte, 4*attachCount)
		if _, err := jf.fh.ReadAt(offBytes, offStart); err != nil {
			break
		}
		offsets := make([]uint32, attachCount)
		for i := 0; i < attachCount; i++ {
			offsets[i] = binary.LittleEndian.Uint32(offBytes[4*i : 4*i+4])
		}

		totalSize := int64(coreSize)
		truncated := false
		for _, o := range offsets {
			if uint32(o) >= coreSize {
				ref := make([]byte, 2)
				if _, err := jf.fh.ReadAt(ref, pos+int64(o)); err != nil {
					truncated = true
					break
				}
				n := int(binary.LittleEndian.Uint16(ref))
				end := pos + int64(o) + 2 + int64(n)
				if end-pos > totalSize {
					totalSize = end - pos
				}
			}
		}
		if truncated {
			break
		}

		full := make([]byte, totalSize)
		if _, err := jf.fh.ReadAt(full, pos); err != nil {
			break
		}

		// request-id sits right after the offsets array.
		idOff := recordHeaderSize + 4*attachCount
		id := string(full[idOff : idOff+idLen])

		jf.records = append(jf.records, &recordMeta{
			file:        jf.index,
			offset:      pos,
			totalSize:   totalSize,
			requestID:   id,
			timeSec:     timeSec,
			timeNSec:    timeNSec,
			status:      status,
			attachCount: attachCount,
		})

		pos += totalSize
	}

	jf.size = pos
	if err := jf.fh.Truncate(pos); err != nil {
		return errors.New(uint16(ErrorWrite), err.Error())
	}
	return nil
}

// append writes plan at the file's current end and returns the offset
// it was written at.
func (jf *journalFile) append(plan recordPlan) (int64, errors.Error) {
	off := jf.size
	if _, err := jf.fh.WriteAt(plan.bytes, off); err != nil {
		return 0, errors.New(uint16(ErrorWrite), err.Error())
	}
	jf.size = off + int64(len(plan.bytes))
	return off, nil
}

func (jf *journalFile) sync(mode SyncMode) errors.Error {
	switch mode {
	case SyncFlush, SyncFull:
		if err := jf.fh.Sync(); err != nil {
			return errors.New(uint16(ErrorWrite), err.Error())
		}
	}
	return nil
}

// rewriteStatus overwrites the single status byte of the record at
// offset in place.
func (jf *journalFile) rewriteStatus(offset int64, status Status) errors.Error {
	if _, err := jf.fh.WriteAt([]byte{byte(status)}, offset+2); err != nil {
		return errors.New(uint16(ErrorWrite), err.Error())
	}
	return nil
}

// readEvent re-reads the full record at meta and decodes it into an
// Event, following external references against dir.
func (jf *journalFile) readEvent(dir string, meta *recordMeta, debug bool) (*Event, errors.Error) {
	full := make([]byte, meta.totalSize)
	if _, err := jf.fh.ReadAt(full, meta.offset); err != nil {
		return nil, errors.New(uint16(ErrorCorruptFrame), err.Error())
	}

	status, idLen, coreSize, timeSec, timeNSec, attachCount, e := decodeRecordHeader(full)
	if e != nil {
		return nil, e
	}

	offBytes := full[recordHeaderSize : recordHeaderSize+4*attachCount]
	offsets := make([]uint32, attachCount)
	for i := 0; i < attachCount; i++ {
		offsets[i] = binary.LittleEndian.Uint32(offBytes[4*i : 4*i+4])
	}

	idOff := recordHeaderSize + 4*attachCount
	id := string(full[idOff : idOff+idLen])

	ev := &Event{
		RequestID: id,
		TimeSec:   timeSec,
		TimeNSec:  timeNSec,
		Status:    status,
		file:      jf.index,
		offset:    meta.offset,
	}

	for i := 0; i < attachCount; i++ {
		o := offsets[i]
		if o < coreSize {
			end := uint32(coreSize)
			if i+1 < attachCount && offsets[i+1] < coreSize {
				end = offsets[i+1]
			} else {
				for j := i + 1; j < attachCount; j++ {
					if offsets[j] < coreSize {
						end = offsets[j]
						break
					}
				}
			}
			data := make([]byte, end-o)
			copy(data, full[o:end])
			ev.Attachments = append(ev.Attachments, Attachment{Data: data})
		} else {
			ref, _, e := decodeExternalRef(full[o:])
			if e != nil {
				return nil, e
			}
			ev.Attachments = append(ev.Attachments, Attachment{SourcePath: filepath.Join(dir, ref.Filename)})
		}
	}

	return ev, nil
}

func (jf *journalFile) close() error {
	return jf.fh.Close()
}

// truncateToHeader implements FileManagement=TRUNCATE.
func (jf *journalFile) truncateToHeader() errors.Error {
	if err := jf.fh.Truncate(fileHeaderSize); err != nil {
		return errors.New(uint16(ErrorWrite), err.Error())
	}
	jf.size = fileHeaderSize
	jf.records = nil
	return nil
}
