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

import (
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/nabbar/prinbee/errors"
)

const (
	ErrorSourceNotFound errors.CodeError = iota + errors.MinPkgConfig + 100
	ErrorSourceRead
)

func init() {
	errors.RegisterIdFctMessage(ErrorSourceNotFound, getSourceMessage)
}

func getSourceMessage(code errors.CodeError) string {
	switch code {
	case errors.UnknownError:
		return ""
	case ErrorSourceNotFound:
		return "configuration file not found"
	case ErrorSourceRead:
		return "failed to read configuration file"
	}
	return ""
}

// Source wraps spf13/viper as the file-backed source of component
// configuration sections, with fsnotify-driven live reload wired
// through viper's own WatchConfig.
type Source struct {
	v        *viper.Viper
	onChange func()
}

// LoadSource reads path (any viper-supported format: yaml/json/toml)
// into a new Source.
func LoadSource(path string) (*Source, errors.Error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.New(uint16(ErrorSourceRead), ErrorSourceRead.Message(), err)
	}
	return &Source{v: v}, nil
}

// Section extracts one component's configuration sub-tree as Values.
func (s *Source) Section(key string) Values {
	raw := s.v.GetStringMap(key)
	out := make(Values, len(raw))
	for k, val := range raw {
		out[k] = val
	}
	return out
}

// WatchReload arranges for fn to run whenever the underlying file
// changes on disk (fsnotify via viper.WatchConfig/OnConfigChange).
func (s *Source) WatchReload(fn func()) {
	s.onChange = fn
	s.v.OnConfigChange(func(_ fsnotify.Event) {
		if s.onChange != nil {
			s.onChange()
		}
	})
	s.v.WatchConfig()
}
