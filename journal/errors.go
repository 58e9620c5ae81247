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

const (
	ErrorDuplicateID errors.CodeError = iota + errors.MinPkgJournal
	ErrorIDTooLarge
	ErrorNoAttachments
	ErrorTooManyAttachments
	ErrorAttachmentSourceMissing
	ErrorAttachmentNotRegular
	ErrorDestinationCollision
	ErrorJournalFull
	ErrorTimeTooFarFuture
	ErrorPermissionDenied
	ErrorWrite
	ErrorCorruptFrame
	ErrorUnknownCopyMode
	ErrorInvalidConfig
	ErrorUnknownID
	ErrorRegressiveTransition
	ErrorFileInUse
)

func init() {
	errors.RegisterIdFctMessage(ErrorDuplicateID, getMessage)
}

func getMessage(code errors.CodeError) string {
	switch code {
	case errors.UnknownError:
		return ""
	case ErrorDuplicateID:
		return "request-id already live in this journal"
	case ErrorIDTooLarge:
		return "request-id exceeds 255 bytes"
	case ErrorNoAttachments:
		return "event must carry at least one attachment"
	case ErrorTooManyAttachments:
		return "event cannot carry more than 255 attachments"
	case ErrorAttachmentSourceMissing:
		return "attachment source path does not exist"
	case ErrorAttachmentNotRegular:
		return "attachment source path is not a regular file"
	case ErrorDestinationCollision:
		return "external attachment destination path already exists"
	case ErrorJournalFull:
		return "all journal files are full of non-terminal events"
	case ErrorTimeTooFarFuture:
		return "caller-supplied time is too far in the future"
	case ErrorPermissionDenied:
		return "permission denied accessing the journal directory"
	case ErrorWrite:
		return "journal write failed"
	case ErrorCorruptFrame:
		return "event record is corrupt or truncated"
	case ErrorUnknownCopyMode:
		return "unknown attachment copy handling mode"
	case ErrorInvalidConfig:
		return "invalid journal configuration"
	case ErrorUnknownID:
		return "request-id not found in journal"
	case ErrorRegressiveTransition:
		return "status transition would regress"
	case ErrorFileInUse:
		return "journal file still in use"
	}
	return ""
}
