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

package bigint

import "github.com/nabbar/prinbee/errors"

const (
	ErrorDivideByZero errors.CodeError = iota + errors.MinPkgBigInt
	ErrorShiftNegative
	ErrorInvalidBase
	ErrorInvalidDigit
	ErrorEmptyString
	ErrorOverflow
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorDivideByZero)
	errors.RegisterIdFctMessage(ErrorDivideByZero, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UnknownError:
		return ""
	case ErrorDivideByZero:
		return "division or modulo by zero"
	case ErrorShiftNegative:
		return "shift amount must not be negative"
	case ErrorInvalidBase:
		return "base must be between 2 and 36"
	case ErrorInvalidDigit:
		return "invalid digit for the requested base"
	case ErrorEmptyString:
		return "empty string cannot be parsed"
	case ErrorOverflow:
		return "value does not fit in the target width"
	}

	return ""
}
