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

package wire

import "github.com/nabbar/prinbee/errors"

const (
	ErrorBadMagic errors.CodeError = iota + errors.MinPkgWire
	ErrorBadEndMarker
	ErrorCRCMismatch
	ErrorMessageTooLarge
	ErrorUnknownName
	ErrorShortBuffer
	ErrorTimeDifferenceTooLarge
	ErrorProtocolVersionMismatch
	ErrorResync
)

func init() {
	errors.RegisterIdFctMessage(ErrorBadMagic, getMessage)
}

func getMessage(code errors.CodeError) string {
	switch code {
	case errors.UnknownError:
		return ""
	case ErrorBadMagic:
		return "frame does not start with the expected magic bytes"
	case ErrorBadEndMarker:
		return "frame trailer end-marker is missing or corrupt"
	case ErrorCRCMismatch:
		return "frame CRC-16 does not validate"
	case ErrorMessageTooLarge:
		return "message body exceeds the configured maximum length"
	case ErrorUnknownName:
		return "message name is not part of the known name space"
	case ErrorShortBuffer:
		return "buffer is shorter than the declared frame length"
	case ErrorTimeDifferenceTooLarge:
		return "REG clock skew exceeds the allowed tolerance"
	case ErrorProtocolVersionMismatch:
		return "REG major protocol version does not match"
	case ErrorResync:
		return "reader lost frame sync and is scanning for the next magic"
	}
	return ""
}
