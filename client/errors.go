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

package client

import "github.com/nabbar/prinbee/errors"

const (
	ErrorNotConnected errors.CodeError = iota + errors.MinPkgClient
	ErrorAlreadyConnected
	ErrorRequestTimeout
	ErrorUnexpectedReply
	ErrorServerError
)

func init() {
	errors.RegisterIdFctMessage(ErrorNotConnected, getMessage)
}

func getMessage(code errors.CodeError) string {
	switch code {
	case errors.UnknownError:
		return ""
	case ErrorNotConnected:
		return "client is not connected to a proxy"
	case ErrorAlreadyConnected:
		return "client is already connected"
	case ErrorRequestTimeout:
		return "request timed out waiting for a reply"
	case ErrorUnexpectedReply:
		return "proxy replied with an unexpected message"
	case ErrorServerError:
		return "proxy or daemon returned an error response"
	}
	return ""
}
