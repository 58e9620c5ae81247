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

package context

import "github.com/nabbar/prinbee/errors"

const (
	ErrorInvalidName errors.CodeError = iota + errors.MinPkgContext
	ErrorNameTooLong
	ErrorDuplicateContext
	ErrorUnknownContext
	ErrorSchemaRegression
	ErrorWrite
	ErrorPermissionDenied
	ErrorInvalidConfig
)

func init() {
	errors.RegisterIdFctMessage(ErrorInvalidName, getMessage)
}

func getMessage(code errors.CodeError) string {
	switch code {
	case errors.UnknownError:
		return ""
	case ErrorInvalidName:
		return "context name does not match [_A-Za-z][_A-Za-z0-9]*"
	case ErrorNameTooLong:
		return "context name exceeds 100 characters"
	case ErrorDuplicateContext:
		return "context already exists"
	case ErrorUnknownContext:
		return "context does not exist"
	case ErrorSchemaRegression:
		return "schema_version update must equal current+1"
	case ErrorWrite:
		return "context metadata write failed"
	case ErrorPermissionDenied:
		return "permission denied accessing the context root"
	case ErrorInvalidConfig:
		return "invalid context configuration"
	}
	return ""
}
