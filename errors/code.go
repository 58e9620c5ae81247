/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

package errors

import (
	"math"
	"sort"
	"strconv"
)

var idMsgFct = make(map[CodeError]Message)

// Message resolves a human-readable string for a CodeError.
type Message func(code CodeError) (message string)

// CodeError is a numeric error code, grouped into per-package ranges by
// the Min* constants in modules.go.
type CodeError uint16

const (
	UnknownError CodeError = 0
	UnknownMessage         = "unknown error"
	NullMessage            = ""
)

// UNK_ERROR is the legacy-cased alias used by the trace package init.
const UNK_ERROR = UnknownError

func ParseCodeError(i int64) CodeError {
	if i < 0 {
		return UnknownError
	} else if i >= int64(math.MaxUint16) {
		return math.MaxUint16
	}
	return CodeError(i)
}

func NewCodeError(code uint16) CodeError {
	return CodeError(code)
}

func (c CodeError) Uint16() uint16 {
	return uint16(c)
}

func (c CodeError) Int() int {
	return int(c)
}

func (c CodeError) String() string {
	return strconv.Itoa(c.Int())
}

// Message returns the message registered for c's package range, or
// UnknownMessage if nothing is registered.
func (c CodeError) Message() string {
	if c == UnknownError {
		return UnknownMessage
	}

	if f, ok := idMsgFct[findCodeErrorInMapMessage(c)]; ok {
		if m := f(c); m != "" {
			return m
		}
	}

	return UnknownMessage
}

func (c CodeError) Error(p ...error) Error {
	return New(c.Uint16(), c.Message(), p...)
}

func (c CodeError) IfError(e ...error) Error {
	return IfError(c.Uint16(), c.Message(), e...)
}

// RegisterIdFctMessage registers the message function covering every code
// at or above minCode until the next registered range. Each package calls
// this once from its own errors.go with its Min<Package> constant.
func RegisterIdFctMessage(minCode CodeError, fct Message) {
	if idMsgFct == nil {
		idMsgFct = make(map[CodeError]Message)
	}

	idMsgFct[minCode] = fct
	orderMapMessage()
}

// ExistInMapMessage reports whether code resolves to a non-empty message,
// used by each package's init to detect a range collision.
func ExistInMapMessage(code CodeError) bool {
	if f, ok := idMsgFct[findCodeErrorInMapMessage(code)]; ok {
		if m := f(code); m != NullMessage {
			return true
		}
	}
	return false
}

func getMapMessageKey() []CodeError {
	var keys = make([]int, 0)
	for k := range idMsgFct {
		keys = append(keys, int(k.Uint16()))
	}
	sort.Ints(keys)

	var res = make([]CodeError, 0, len(keys))
	for _, k := range keys {
		res = append(res, CodeError(k))
	}
	return res
}

func orderMapMessage() {
	var res = make(map[CodeError]Message)
	for _, k := range getMapMessageKey() {
		res[k] = idMsgFct[k]
	}
	idMsgFct = res
}

func findCodeErrorInMapMessage(code CodeError) CodeError {
	var res CodeError = 0
	for _, k := range getMapMessageKey() {
		if k <= code && k > res {
			res = k
		}
	}
	return res
}

func isCodeInSlice(code CodeError, slice []CodeError) bool {
	for _, c := range slice {
		if c == code {
			return true
		}
	}
	return false
}

func unicCodeSlice(slice []CodeError) []CodeError {
	var res = make([]CodeError, 0, len(slice))
	for _, c := range slice {
		if !isCodeInSlice(c, res) {
			res = append(res, c)
		}
	}
	return res
}
