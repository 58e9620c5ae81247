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

package daemon

import (
	"fmt"

	"github.com/nabbar/prinbee/context"
	"github.com/nabbar/prinbee/errors"
	"github.com/nabbar/prinbee/wire"
)

// Phase values carried in an ACK's body during SET_CONTEXT's
// multi-stage protocol.
const (
	PhaseContextReceived uint8 = iota + 1
	PhaseContextSaved
)

// SetContextBody is the request body of a SET_CONTEXT message: the
// target context name, its schema version, and owner/group/
// description metadata.
type SetContextBody struct {
	Name          string
	SchemaVersion uint64
	Owner         string
	Group         string
	Description   string
}

func EncodeSetContext(b SetContextBody) []byte {
	enc := wire.NewEncoder(256)
	enc.PutPString(1, b.Name).
		PutUint64(b.SchemaVersion).
		PutPString(1, b.Owner).
		PutPString(1, b.Group).
		PutPString(2, b.Description)
	return enc.Bytes()
}

func DecodeSetContext(body []byte) (SetContextBody, errors.Error) {
	dec := wire.NewDecoder(body)
	b := SetContextBody{}
	b.Name = dec.GetPString(1)
	b.SchemaVersion = dec.GetUint64()
	b.Owner = dec.GetPString(1)
	b.Group = dec.GetPString(1)
	b.Description = dec.GetPString(2)
	if e := dec.Err(); e != nil {
		return SetContextBody{}, e
	}
	return b, nil
}

// applySetContext creates or updates the named context, enforcing the
// schema_version == current+1 invariant. On a
// fresh context (no prior version), any starting version is accepted.
func applySetContext(reg *context.Registry, b SetContextBody) errors.Error {
	if existing, ok := reg.Get(b.Name); ok {
		if !existing.CanAdvanceSchemaTo(b.SchemaVersion) {
			msg := fmt.Sprintf("%s: expected=%d got=%d", ErrorUnexpectedVersion.Message(), existing.SchemaVersion+1, b.SchemaVersion)
			return errors.New(uint16(ErrorUnexpectedVersion), msg)
		}
		return reg.UpdateSchemaVersion(b.Name, b.SchemaVersion)
	}
	_, e := reg.Create(b.Name, b.Owner, b.Group, b.Description)
	return e
}

// ListContextsBody/GetContextBody encode the read-only context
// queries; both reuse the generic p-string/u64 codec primitives.
func EncodeContextSummary(enc *wire.Encoder, c *context.Context) {
	enc.PutPString(1, c.Name).PutUint64(c.SchemaVersion).PutPString(1, c.Owner).PutPString(1, c.Group)
}
