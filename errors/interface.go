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

// Package errors provides the error handling used across every prinbee
// package: numeric error codes grouped by package range, parent/child
// error chains, and caller-frame trace capture. It extends the standard
// error interface rather than replacing it.
package errors

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// FuncMap is called for each error in a hierarchy by Error.Map. Returning
// false stops the iteration early.
type FuncMap func(e error) bool

// ReturnError receives the decomposed fields of an Error: code, message,
// file and line of the captured frame.
type ReturnError func(code int, msg string, file string, line int)

// Error extends the standard error interface with a numeric code, a
// parent/child hierarchy and caller-frame trace information.
type Error interface {
	error

	IsCode(code CodeError) bool
	HasCode(code CodeError) bool
	GetCode() CodeError
	GetParentCode() []CodeError

	Is(e error) bool
	IsError(e error) bool
	HasError(err error) bool
	HasParent() bool
	GetParent(withMainError bool) []error
	Map(fct FuncMap) bool
	ContainsString(s string) bool

	Add(parent ...error)
	SetParent(parent ...error)

	Code() uint16
	CodeSlice() []uint16

	CodeError(pattern string) string
	CodeErrorSlice(pattern string) []string

	CodeErrorTrace(pattern string) string
	CodeErrorTraceSlice(pattern string) []string

	Error() string

	StringError() string
	StringErrorSlice() []string

	GetError() error
	GetErrorSlice() []error
	Unwrap() []error

	GetTrace() string
	GetTraceSlice() []string

	Return(r Return)
	ReturnError(f ReturnError)
	ReturnParent(f ReturnError)
}

// Is reports whether e can be treated as an Error.
func Is(e error) bool {
	var err Error
	return errors.As(e, &err)
}

// Get returns e as an Error, or nil if it isn't one.
func Get(e error) Error {
	var err Error
	if errors.As(e, &err) {
		return err
	}
	return nil
}

// Has reports whether e or any of its parents carry code.
func Has(e error, code CodeError) bool {
	if err := Get(e); err == nil {
		return false
	} else {
		return err.HasCode(code)
	}
}

// ContainsString reports whether the error message (or any parent's)
// contains s.
func ContainsString(e error, s string) bool {
	if e == nil {
		return false
	} else if err := Get(e); err == nil {
		return strings.Contains(e.Error(), s)
	} else {
		return err.ContainsString(s)
	}
}

// IsCode reports whether e's own code (not a parent's) equals code.
func IsCode(e error, code CodeError) bool {
	if err := Get(e); err == nil {
		return false
	} else {
		return err.IsCode(code)
	}
}

// Make wraps a plain error as an Error (code 0) unless it already is one.
func Make(e error) Error {
	if e == nil {
		return nil
	}

	var err Error
	if errors.As(e, &err) {
		return err
	}

	return &ers{
		c: 0,
		e: e.Error(),
		p: nil,
		t: getNilFrame(),
	}
}

// MakeIfError folds a list of errors into a single Error, skipping nils.
// Returns nil if every argument was nil.
func MakeIfError(err ...error) Error {
	var e Error

	for _, p := range err {
		if p == nil {
			continue
		} else if e == nil {
			e = Make(p)
		} else {
			e.Add(p)
		}
	}

	return e
}

// AddOrNew adds errSub (and parent) onto errMain, creating errMain from
// errSub when errMain is nil.
func AddOrNew(errMain, errSub error, parent ...error) Error {
	var e Error

	if errMain != nil {
		if e = Get(errMain); e == nil {
			e = New(0, errMain.Error())
		}
		e.Add(errSub)
		e.Add(parent...)
		return e
	} else if errSub != nil {
		return New(0, errSub.Error(), parent...)
	}

	return nil
}

// New creates an Error with the given code, message and parents, capturing
// the caller's frame.
func New(code uint16, message string, parent ...error) Error {
	var p = make([]Error, 0)

	for _, e := range parent {
		if er := Make(e); er != nil {
			p = append(p, er)
		}
	}

	return &ers{
		c: code,
		e: message,
		p: p,
		t: getFrame(),
	}
}

// Newf is New with fmt.Sprintf-style message formatting.
func Newf(code uint16, pattern string, args ...any) Error {
	return &ers{
		c: code,
		e: fmt.Sprintf(pattern, args...),
		p: make([]Error, 0),
		t: getFrame(),
	}
}

// NewErrorTrace creates an Error with an explicit caller location instead
// of capturing the current one.
func NewErrorTrace(code int, msg string, file string, line int, parent ...error) Error {
	var p = make([]Error, 0)

	for _, e := range parent {
		if er := Make(e); er != nil {
			p = append(p, er)
		}
	}

	var i uint16
	if code < 0 {
		i = 0
	} else if code > math.MaxUint16 {
		i = math.MaxUint16
	} else {
		i = uint16(code)
	}

	return &ers{
		c: i,
		e: msg,
		p: p,
		t: frameOf(file, line),
	}
}

// IfError returns an Error built from code/message/parent only when at
// least one non-nil parent is given; otherwise it returns nil, so callers
// can write `return liberr.IfError(code, msg, err)` without an extra guard.
func IfError(code uint16, message string, parent ...error) Error {
	p := make([]Error, 0)

	for _, e := range parent {
		if er := Make(e); er != nil {
			p = append(p, er)
		}
	}

	if len(p) < 1 {
		return nil
	}

	return &ers{
		c: code,
		e: message,
		p: p,
		t: getFrame(),
	}
}
