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

package config

import "github.com/nabbar/prinbee/errors"

// Component is the minimal lifecycle contract every prinbee subsystem
// (journal, context, transport listeners, logging) plugs into the
// daemon/proxy main() through: four lifecycle verbs plus dependency
// ordering.
type Component interface {
	// Key identifies this component among its siblings.
	Key() string

	// Dependencies lists the Keys that must Init/Start before this one.
	Dependencies() []string

	// Init prepares the component from its viper-sourced configuration
	// section. Called once, before Start.
	Init(v Values) errors.Error

	// Start brings the component into its running state (e.g. opening
	// a journal, opening a listener). Called in dependency order.
	Start() errors.Error

	// Reload re-applies configuration without a full Stop/Start cycle,
	// where the component supports it.
	Reload(v Values) errors.Error

	// Stop brings the component down. Called in reverse dependency
	// order during the shutdown sequence.
	Stop() errors.Error
}

// Values is the generic key/value view of one component's
// configuration section, sourced from viper.
type Values map[string]interface{}

func (v Values) String(key, def string) string {
	if s, ok := v[key].(string); ok {
		return s
	}
	return def
}

func (v Values) Int(key string, def int) int {
	switch n := v[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return def
}

func (v Values) Bool(key string, def bool) bool {
	if b, ok := v[key].(bool); ok {
		return b
	}
	return def
}
