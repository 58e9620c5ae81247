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

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/nabbar/prinbee/errors"
	"github.com/nabbar/prinbee/logger"
)

const metadataFile = "context.json"

// Registry is the daemon-side collection of every known context,
// persisted one directory per context under root (original_source's
// prinbeed_context.cpp metadata-file behavior, supplemented here since
// the registry itself has no other durable form).
type Registry struct {
	mu   sync.RWMutex
	root string
	log  logger.Logger

	byName map[string]*Context
}

// Open scans root for existing context directories (one context.json
// per subdirectory) and returns a Registry seeded with what it finds.
// A fresh, empty root is not an error: contexts are created afterward.
func Open(root string, log logger.Logger) (*Registry, errors.Error) {
	if log == nil {
		log = logger.Nop()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.New(uint16(ErrorWrite), err.Error())
	}

	r := &Registry{
		root:   root,
		log:    log.With(logger.F("context_root", root)),
		byName: make(map[string]*Context),
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.New(uint16(ErrorWrite), err.Error())
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(root, e.Name(), metadataFile)
		buf, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.New(uint16(ErrorWrite), err.Error())
		}

		var c Context
		if err := json.Unmarshal(buf, &c); err != nil {
			return nil, errors.New(uint16(ErrorWrite), err.Error())
		}
		r.byName[c.Name] = &c
	}

	return r, nil
}

// Create canonicalizes name, creates its directory and metadata file,
// and registers it, rejecting a name already in use.
func (r *Registry) Create(name, owner, group, description string) (*Context, errors.Error) {
	canon, e := Canonicalize(name)
	if e != nil {
		return nil, e
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[canon]; exists {
		return nil, errors.New(uint16(ErrorDuplicateContext), ErrorDuplicateContext.Message())
	}

	path := filepath.Join(r.root, canon)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, errors.New(uint16(ErrorWrite), err.Error())
	}

	c := &Context{
		Name:          canon,
		Path:          path,
		Owner:         owner,
		Group:         group,
		Description:   description,
		SchemaVersion: 0,
	}

	if e := r.persist(c); e != nil {
		return nil, e
	}

	r.byName[canon] = c
	r.log.Info("context created", logger.F("context", canon))
	return c, nil
}

// Get returns the context named name (already canonicalized), and
// whether it was found.
func (r *Registry) Get(name string) (*Context, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byName[name]
	return c, ok
}

// List returns every registered context, sorted by name.
func (r *Registry) List() []*Context {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Context, 0, len(r.byName))
	for _, c := range r.byName {
		out = append(out, c)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Name < out[k].Name })
	return out
}

// UpdateSchemaVersion advances name's schema version to next, rejecting
// the update unless next == current+1 and unknown
// names.
func (r *Registry) UpdateSchemaVersion(name string, next uint64) errors.Error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byName[name]
	if !ok {
		return errors.New(uint16(ErrorUnknownContext), ErrorUnknownContext.Message())
	}
	if !c.CanAdvanceSchemaTo(next) {
		return errors.New(uint16(ErrorSchemaRegression), ErrorSchemaRegression.Message())
	}

	prev := c.SchemaVersion
	c.SchemaVersion = next
	if e := r.persist(c); e != nil {
		c.SchemaVersion = prev
		return e
	}
	return nil
}

func (r *Registry) persist(c *Context) errors.Error {
	buf, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New(uint16(ErrorWrite), err.Error())
	}
	path := filepath.Join(r.root, c.Name, metadataFile)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return errors.New(uint16(ErrorWrite), err.Error())
	}
	return nil
}
