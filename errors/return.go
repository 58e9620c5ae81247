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

import "encoding/json"

// Return is the target of Error.Return: a flat, wire-friendly shape an
// Error hierarchy can be copied into (e.g. the ERR message body of the
// wire protocol, see the wire package).
type Return interface {
	SetError(code int, msg string, file string, line int)
	AddParent(code int, msg string, file string, line int)
	JSON() []byte
}

// DefaultReturn is the default Return implementation: one code/message
// plus a flat list of parent code/messages, exactly what the wire
// protocol's ERR body needs.
type DefaultReturn struct {
	Code    string           `json:"code"`
	Message string           `json:"message"`
	Parents []DefaultParent  `json:"parents,omitempty"`
}

type DefaultParent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
}

func NewDefaultReturn() *DefaultReturn {
	return &DefaultReturn{
		Code:    "",
		Message: "",
	}
}

func (d *DefaultReturn) SetError(code int, msg string, _ string, _ int) {
	d.Code = CodeError(code).String()
	d.Message = msg
}

func (d *DefaultReturn) AddParent(code int, msg string, file string, line int) {
	d.Parents = append(d.Parents, DefaultParent{
		Code:    CodeError(code).String(),
		Message: msg,
		File:    file,
		Line:    line,
	})
}

func (d *DefaultReturn) JSON() []byte {
	b, _ := json.Marshal(d)
	return b
}
