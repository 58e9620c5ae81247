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

	"github.com/nabbar/prinbee/errors"
)

// File-level constants for the bit-exact on-disk layout.
const (
	fileHeaderSize = 8
	recordHeaderSize = 32

	fileVersionMajor byte = 1
	fileVersionMinor byte = 0
)

var (
	fileMagic   = [4]byte{'E', 'V', 'T', 'J'}
	recordMagic = [2]byte{'e', 'v'}
)

// encodeFileHeader renders the 8-byte file header.
func encodeFileHeader() []byte {
	buf := make([]byte, fileHeaderSize)
	copy(buf[0:4], fileMagic[:])
	buf[4] = fileVersionMajor
	buf[5] = fileVersionMinor
	return buf
}

// decodeFileHeader validates the 8-byte file header.
func decodeFileHeader(buf []byte) errors.Error {
	if len(buf) < fileHeaderSize {
		return errors.New(uint16(ErrorCorruptFrame), ErrorCorruptFrame.Message())
	}
	if buf[0] != fileMagic[0] || buf[1] != fileMagic[1] || buf[2] != fileMagic[2] || buf[3] != fileMagic[3] {
		return errors.New(uint16(ErrorCorruptFrame), ErrorCorruptFrame.Message())
	}
	return nil
}

// externalRef is the filename-reference payload stored at an external
// attachment's offset slot: a u16 filename length followed by the
// filename relative to the journal directory.
type externalRef struct {
	Filename string
}

func encodeExternalRef(name string) []byte {
	b := make([]byte, 2+len(name))
	binary.LittleEndian.PutUint16(b[0:2], uint16(len(name)))
	copy(b[2:], name)
	return b
}

func decodeExternalRef(buf []byte) (externalRef, int, errors.Error) {
	if len(buf) < 2 {
		return externalRef{}, 0, errors.New(uint16(ErrorCorruptFrame), ErrorCorruptFrame.Message())
	}
	n := int(binary.LittleEndian.Uint16(buf[0:2]))
	if len(buf) < 2+n {
		return externalRef{}, 0, errors.New(uint16(ErrorCorruptFrame), ErrorCorruptFrame.Message())
	}
	return externalRef{Filename: string(buf[2 : 2+n])}, 2 + n, nil
}

// recordPlan is the fully laid-out byte representation of one event
// record, built once by encodeRecord for the initial write. Later
// status changes rewrite only the status byte, which sits at the fixed
// offset statusOff (see journalFile.rewriteStatus).
type recordPlan struct {
	bytes     []byte // full on-disk bytes: header+offsets+id+inline+external
	coreSize  uint32 // total_size field: header+offsets+id+inline only
	statusOff int    // offset of the status byte within bytes
}

// encodeRecord lays out one event record. The raw bytes of attachments
// staying inline come from ev.Attachments[i].Data; externalNames holds
// the sibling filenames (relative to the journal directory) for
// attachments being externalized, or "" for attachments staying
// inline, aligned by index with ev.Attachments.
func encodeRecord(ev *Event, externalNames []string) (recordPlan, errors.Error) {
	id := []byte(ev.RequestID)
	if len(id) == 0 || len(id) > MaxRequestIDLen {
		return recordPlan{}, errors.New(uint16(ErrorIDTooLarge), ErrorIDTooLarge.Message())
	}

	n := len(ev.Attachments)
	offsets := make([]uint32, n)

	// First pass: compute the core size (header+offsets+id+inline) so
	// external entries can be recognized by "offset >= core size".
	coreSize := uint32(recordHeaderSize + 4*n + len(id))
	for i, a := range ev.Attachments {
		if externalNames[i] == "" {
			offsets[i] = coreSize
			coreSize += uint32(len(a.Data))
		}
	}

	extBlocks := make([][]byte, n)
	extSize := uint32(0)
	for i := range ev.Attachments {
		if externalNames[i] != "" {
			offsets[i] = coreSize + extSize
			extBlocks[i] = encodeExternalRef(externalNames[i])
			extSize += uint32(len(extBlocks[i]))
		}
	}

	total := coreSize + extSize
	buf := make([]byte, total)

	copy(buf[0:2], recordMagic[:])
	buf[2] = byte(ev.Status)
	buf[3] = byte(len(id))
	binary.LittleEndian.PutUint32(buf[4:8], coreSize)
	putInt64(buf[8:16], ev.TimeSec)
	putInt64(buf[16:24], ev.TimeNSec)
	buf[24] = byte(n)
	// buf[25:32] left zero (pad)

	pos := recordHeaderSize
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(buf[pos:pos+4], offsets[i])
		pos += 4
	}
	copy(buf[pos:pos+len(id)], id)
	pos += len(id)

	for i, a := range ev.Attachments {
		if externalNames[i] == "" {
			copy(buf[pos:pos+len(a.Data)], a.Data)
			pos += len(a.Data)
		}
	}
	for i := range ev.Attachments {
		if externalNames[i] != "" {
			copy(buf[pos:pos+len(extBlocks[i])], extBlocks[i])
			pos += len(extBlocks[i])
		}
	}

	return recordPlan{bytes: buf, coreSize: coreSize, statusOff: 2}, nil
}

// decodeRecordHeader parses the fixed 32-byte record header; the
// caller reads it first to learn coreSize and attachCount, then reads
// enough more of the record to cover any external metadata (see
// journalFile.recover and journalFile.readEvent).
func decodeRecordHeader(buf []byte) (status Status, idLen int, coreSize uint32, timeSec, timeNSec int64, attachCount int, e errors.Error) {
	if len(buf) < recordHeaderSize {
		e = errors.New(uint16(ErrorCorruptFrame), ErrorCorruptFrame.Message())
		return
	}
	if buf[0] != recordMagic[0] || buf[1] != recordMagic[1] {
		e = errors.New(uint16(ErrorCorruptFrame), ErrorCorruptFrame.Message())
		return
	}
	status = Status(buf[2])
	idLen = int(buf[3])
	coreSize = binary.LittleEndian.Uint32(buf[4:8])
	timeSec = getInt64(buf[8:16])
	timeNSec = getInt64(buf[16:24])
	attachCount = int(buf[24])
	return
}

func putInt64(buf []byte, v int64) {
	binary.LittleEndian.PutUint64(buf, uint64(v))
}

func getInt64(buf []byte) int64 {
	return int64(binary.LittleEndian.Uint64(buf))
}
