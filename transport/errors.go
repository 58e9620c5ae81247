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

package transport

import "github.com/nabbar/prinbee/errors"

const (
	ErrorUnknownKind errors.CodeError = iota + errors.MinPkgTransport
	ErrorHandshakeTimeout
	ErrorVersionMismatch
	ErrorTimeSkewTooLarge
	ErrorNotRegistered
	ErrorAlreadyClosed
	ErrorDialFailed
	ErrorListenFailed
	ErrorSendOnClosed
	ErrorUnknownConnection
	ErrorTLSConfig
)

func init() {
	errors.RegisterIdFctMessage(ErrorUnknownKind, getMessage)
}

func getMessage(code errors.CodeError) string {
	switch code {
	case errors.UnknownError:
		return ""
	case ErrorUnknownKind:
		return "unknown connection kind"
	case ErrorHandshakeTimeout:
		return "REG handshake did not complete before the handshake timeout"
	case ErrorVersionMismatch:
		return "peer protocol major version does not match"
	case ErrorTimeSkewTooLarge:
		return "peer clock skew exceeds the allowed tolerance"
	case ErrorNotRegistered:
		return "connection has not completed its REG handshake"
	case ErrorAlreadyClosed:
		return "connection is already closed"
	case ErrorDialFailed:
		return "failed to dial remote address"
	case ErrorListenFailed:
		return "failed to open listener"
	case ErrorSendOnClosed:
		return "attempted to send on a closed connection"
	case ErrorUnknownConnection:
		return "connection id not found"
	case ErrorTLSConfig:
		return "invalid TLS configuration"
	}
	return ""
}
