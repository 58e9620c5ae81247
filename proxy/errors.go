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

package proxy

import "github.com/nabbar/prinbee/errors"

const (
	ErrorNoDaemonAvailable errors.CodeError = iota + errors.MinPkgProxy
	ErrorUnknownConnection
	ErrorForwardFailed
	ErrorStaleConnection
)

func init() {
	errors.RegisterIdFctMessage(ErrorNoDaemonAvailable, getMessage)
}

func getMessage(code errors.CodeError) string {
	switch code {
	case errors.UnknownError:
		return ""
	case ErrorNoDaemonAvailable:
		return "no daemon connection available to forward this message"
	case ErrorUnknownConnection:
		return "message refers to a connection the proxy does not own"
	case ErrorForwardFailed:
		return "failed to forward message to the owning daemon"
	case ErrorStaleConnection:
		return "client connection never completed its handshake in time"
	}
	return ""
}
