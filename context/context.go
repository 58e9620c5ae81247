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

// Package context implements the named-namespace / schema manager of
// a canonicalized, on-disk-backed context directory with an
// owner/group, a description, and a monotonically-increasing schema
// version that can only ever be bumped by exactly one.
package context

import (
	"regexp"
	"strings"

	"github.com/nabbar/prinbee/errors"
)

// MaxNameLen is the longest a canonicalized context name may be.
const MaxNameLen = 100

var nameRe = regexp.MustCompile(`^[_A-Za-z][_A-Za-z0-9]*$`)

// Canonicalize lowercases name and validates it against the context
// naming grammar, returning the canonical form to store and look up by.
func Canonicalize(name string) (string, errors.Error) {
	c := strings.ToLower(name)
	if len(c) > MaxNameLen {
		return "", errors.New(uint16(ErrorNameTooLong), ErrorNameTooLong.Message())
	}
	if !nameRe.MatchString(c) {
		return "", errors.New(uint16(ErrorInvalidName), ErrorInvalidName.Message())
	}
	return c, nil
}

// Context is one named namespace: a canonical name, its path on
// disk, an owning user/group, a free-text description, and the schema
// version the namespace's data was last migrated to.
type Context struct {
	Name          string `json:"name"`
	Path          string `json:"path"`
	Owner         string `json:"owner"`
	Group         string `json:"group"`
	Description   string `json:"description"`
	SchemaVersion uint64 `json:"schema_version"`
}

// CanAdvanceSchemaTo reports whether next is the single legal next
// schema version for c (update(schema_version) must
// equal current+1).
func (c *Context) CanAdvanceSchemaTo(next uint64) bool {
	return next == c.SchemaVersion+1
}
