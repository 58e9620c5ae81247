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

// Package journal is the journal component: it parses the "journal"
// configuration section, clamps operator input into the documented
// operating ranges, and owns the service's local journal instance.
package journal

import (
	"path/filepath"

	"github.com/nabbar/prinbee/config"
	"github.com/nabbar/prinbee/errors"
	jrn "github.com/nabbar/prinbee/journal"
	"github.com/nabbar/prinbee/logger"
)

const ComponentKey = "journal"

type Component struct {
	getLog func() logger.Logger

	root string
	name string
	cfg  jrn.Config
	j    *jrn.Journal
}

// New creates the component; root/name locate the journal directory
// (<root>/<name>) and getLog resolves the shared
// logger after the log component has started.
func New(root, name string, getLog func() logger.Logger) *Component {
	return &Component{getLog: getLog, root: root, name: name, cfg: jrn.DefaultConfig()}
}

func (c *Component) Key() string            { return ComponentKey }
func (c *Component) Dependencies() []string { return []string{"log"} }

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func parseSync(s string) jrn.SyncMode {
	switch s {
	case "flush":
		return jrn.SyncFlush
	case "full":
		return jrn.SyncFull
	default:
		return jrn.SyncNone
	}
}

func parseFileManagement(s string) jrn.FileManagement {
	switch s {
	case "truncate":
		return jrn.FileTruncate
	case "delete":
		return jrn.FileDelete
	default:
		return jrn.FileKeep
	}
}

func parseCopyMode(s string) jrn.AttachmentCopyMode {
	switch s {
	case "hardlink":
		return jrn.CopyHardlink
	case "reflink":
		return jrn.CopyReflink
	case "full":
		return jrn.CopyFull
	default:
		return jrn.CopySoftlink
	}
}

// Init maps the journal configuration enumeration onto jrn.Config. This
// layer, not the journal library, is responsible for clamping
// operator-facing values into the documented ranges.
func (c *Component) Init(v config.Values) errors.Error {
	cfg := jrn.DefaultConfig()
	cfg.MaximumNumberOfFiles = clampInt(v.Int("maximum_number_of_files", cfg.MaximumNumberOfFiles), jrn.MinMaxFiles, jrn.MaxMaxFiles)
	cfg.MaximumFileSize = clampInt64(int64(v.Int("maximum_file_size", int(cfg.MaximumFileSize))), jrn.MinFileSize, jrn.MaxFileSize)
	cfg.MaximumEvents = clampInt(v.Int("maximum_events", cfg.MaximumEvents), jrn.MinMaxEvents, jrn.MaxMaxEvents)
	cfg.Sync = parseSync(v.String("sync", "none"))
	cfg.FileManagement = parseFileManagement(v.String("file_management", "keep"))
	cfg.CompressWhenFull = v.Bool("compress_when_full", cfg.CompressWhenFull)
	cfg.InlineAttachmentThreshold = clampInt64(int64(v.Int("inline_attachment_size_threshold", int(cfg.InlineAttachmentThreshold))), jrn.MinInlineThreshold, jrn.MaxInlineThreshold)
	cfg.AttachmentCopyHandling = parseCopyMode(v.String("attachment_copy_handling", "softlink"))
	c.cfg = cfg
	return nil
}

func (c *Component) Start() errors.Error {
	j, e := jrn.Open(filepath.Join(c.root, c.name), c.cfg, c.getLog())
	if e != nil {
		return e
	}
	c.j = j
	return nil
}

// Reload only picks up CompressWhenFull live; the size/rotation
// parameters of an open journal stay fixed until restart.
func (c *Component) Reload(v config.Values) errors.Error {
	if e := c.Init(v); e != nil {
		return e
	}
	if c.j != nil {
		c.j.SetCompressWhenFull(c.cfg.CompressWhenFull)
	}
	return nil
}

func (c *Component) Stop() errors.Error {
	if c.j != nil {
		_ = c.j.Close()
		c.j = nil
	}
	return nil
}

// Journal returns the open journal; nil before Start.
func (c *Component) Journal() *jrn.Journal { return c.j }
