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

// This file implements the schema-driven struct layer message bodies are
// built from: fixed-width integers, bitfields, length-prefixed
// strings, connection references, protocol versions and the three time
// resolutions the protocol carries.
package wire

import (
	"encoding/binary"

	"github.com/nabbar/prinbee/bigint"
	"github.com/nabbar/prinbee/errors"
)

// Encoder appends schema-typed fields to a growing byte buffer. Every
// Put* call is infallible; the buffer grows as needed.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an Encoder with capacity hinted by size.
func NewEncoder(size int) *Encoder {
	return &Encoder{buf: make([]byte, 0, size)}
}

// Bytes returns the accumulated body.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

func (e *Encoder) PutUint8(v uint8) *Encoder {
	e.buf = append(e.buf, v)
	return e
}

func (e *Encoder) PutInt8(v int8) *Encoder {
	return e.PutUint8(uint8(v))
}

func (e *Encoder) PutUint16(v uint16) *Encoder {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	e.buf = append(e.buf, b[:]...)
	return e
}

func (e *Encoder) PutInt16(v int16) *Encoder {
	return e.PutUint16(uint16(v))
}

func (e *Encoder) PutUint32(v uint32) *Encoder {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.buf = append(e.buf, b[:]...)
	return e
}

func (e *Encoder) PutInt32(v int32) *Encoder {
	return e.PutUint32(uint32(v))
}

func (e *Encoder) PutUint64(v uint64) *Encoder {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf = append(e.buf, b[:]...)
	return e
}

func (e *Encoder) PutInt64(v int64) *Encoder {
	return e.PutUint64(uint64(v))
}

// PutUint128/256/512 write the low 16/32/64 bytes of v, little endian,
// reusing the bigint package's limb layout (there is no dedicated
// Uint128/Uint256 type; wider wire fields are modelled as a Uint512
// truncated to the field's declared width).
func (e *Encoder) PutUint128(v bigint.Uint512) *Encoder {
	return e.putLimbBytes(v, 16)
}

func (e *Encoder) PutUint256(v bigint.Uint512) *Encoder {
	return e.putLimbBytes(v, 32)
}

func (e *Encoder) PutUint512(v bigint.Uint512) *Encoder {
	return e.putLimbBytes(v, 64)
}

func (e *Encoder) PutInt128(v bigint.Int512) *Encoder {
	return e.putLimbBytes(v.Uint512(), 16)
}

func (e *Encoder) PutInt256(v bigint.Int512) *Encoder {
	return e.putLimbBytes(v.Uint512(), 32)
}

func (e *Encoder) PutInt512(v bigint.Int512) *Encoder {
	return e.putLimbBytes(v.Uint512(), 64)
}

func (e *Encoder) putLimbBytes(v bigint.Uint512, n int) *Encoder {
	b, _ := v.MarshalBinary()
	e.buf = append(e.buf, b[:n]...)
	return e
}

// PutPString writes an n-byte little endian length prefix (n is 1, 2
// or 4) followed by s's bytes - the "pN-string" schema type.
func (e *Encoder) PutPString(n int, s string) *Encoder {
	switch n {
	case 1:
		e.PutUint8(uint8(len(s)))
	case 2:
		e.PutUint16(uint16(len(s)))
	case 4:
		e.PutUint32(uint32(len(s)))
	}
	e.buf = append(e.buf, s...)
	return e
}

// PutReference writes a connection-reference handle id.
func (e *Encoder) PutReference(ref uint64) *Encoder {
	return e.PutUint64(ref)
}

// PutVersion writes a protocol version as major.minor, one byte each.
func (e *Encoder) PutVersion(major, minor uint8) *Encoder {
	return e.PutUint8(major).PutUint8(minor)
}

// PutTime writes a (seconds, nanoseconds) pair, the resolution used by
// event-time in the journal.
func (e *Encoder) PutTime(sec, nsec uint64) *Encoder {
	return e.PutUint64(sec).PutUint64(nsec)
}

// PutMSTime writes a millisecond-resolution timestamp.
func (e *Encoder) PutMSTime(ms int64) *Encoder {
	return e.PutInt64(ms)
}

// PutUSTime writes a microsecond-resolution timestamp.
func (e *Encoder) PutUSTime(us int64) *Encoder {
	return e.PutInt64(us)
}

// Decoder reads schema-typed fields back out of a frame body,
// advancing an internal cursor and sticking on the first error so
// callers can chain Get* calls and check once at the end.
type Decoder struct {
	buf []byte
	pos int
	err errors.Error
}

// NewDecoder wraps buf for sequential schema decoding.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Err returns the first error encountered, or nil.
func (d *Decoder) Err() errors.Error {
	return d.err
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.pos
}

func (d *Decoder) need(n int) bool {
	if d.err != nil {
		return false
	}
	if d.pos+n > len(d.buf) {
		d.err = errors.New(uint16(ErrorShortBuffer), ErrorShortBuffer.Message())
		return false
	}
	return true
}

func (d *Decoder) GetUint8() uint8 {
	if !d.need(1) {
		return 0
	}
	v := d.buf[d.pos]
	d.pos++
	return v
}

func (d *Decoder) GetInt8() int8 {
	return int8(d.GetUint8())
}

func (d *Decoder) GetUint16() uint16 {
	if !d.need(2) {
		return 0
	}
	v := binary.LittleEndian.Uint16(d.buf[d.pos:])
	d.pos += 2
	return v
}

func (d *Decoder) GetInt16() int16 {
	return int16(d.GetUint16())
}

func (d *Decoder) GetUint32() uint32 {
	if !d.need(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(d.buf[d.pos:])
	d.pos += 4
	return v
}

func (d *Decoder) GetInt32() int32 {
	return int32(d.GetUint32())
}

func (d *Decoder) GetUint64() uint64 {
	if !d.need(8) {
		return 0
	}
	v := binary.LittleEndian.Uint64(d.buf[d.pos:])
	d.pos += 8
	return v
}

func (d *Decoder) GetInt64() int64 {
	return int64(d.GetUint64())
}

func (d *Decoder) getLimbBytes(n int) bigint.Uint512 {
	var v bigint.Uint512
	if !d.need(n) {
		return v
	}
	full := make([]byte, bigint.ByteSize)
	copy(full, d.buf[d.pos:d.pos+n])
	_ = v.UnmarshalBinary(full)
	d.pos += n
	return v
}

func (d *Decoder) GetUint128() bigint.Uint512 { return d.getLimbBytes(16) }
func (d *Decoder) GetUint256() bigint.Uint512 { return d.getLimbBytes(32) }
func (d *Decoder) GetUint512() bigint.Uint512 { return d.getLimbBytes(64) }

func (d *Decoder) GetInt128() bigint.Int512 { return d.getLimbBytes(16).Int512() }
func (d *Decoder) GetInt256() bigint.Int512 { return d.getLimbBytes(32).Int512() }
func (d *Decoder) GetInt512() bigint.Int512 { return d.getLimbBytes(64).Int512() }

// GetPString reads an n-byte length prefix (1, 2 or 4) followed by
// that many bytes.
func (d *Decoder) GetPString(n int) string {
	var length int
	switch n {
	case 1:
		length = int(d.GetUint8())
	case 2:
		length = int(d.GetUint16())
	case 4:
		length = int(d.GetUint32())
	}
	if !d.need(length) {
		return ""
	}
	s := string(d.buf[d.pos : d.pos+length])
	d.pos += length
	return s
}

func (d *Decoder) GetReference() uint64 {
	return d.GetUint64()
}

func (d *Decoder) GetVersion() (major, minor uint8) {
	return d.GetUint8(), d.GetUint8()
}

func (d *Decoder) GetTime() (sec, nsec uint64) {
	return d.GetUint64(), d.GetUint64()
}

func (d *Decoder) GetMSTime() int64 {
	return d.GetInt64()
}

func (d *Decoder) GetUSTime() int64 {
	return d.GetInt64()
}

// PutBitfield8 packs up to 8 booleans into a single byte, bit 0 first,
// and appends it - the "bitfields" schema type.
func (e *Encoder) PutBitfield8(bits ...bool) *Encoder {
	var v uint8
	for i, b := range bits {
		if i >= 8 {
			break
		}
		if b {
			v |= 1 << uint(i)
		}
	}
	return e.PutUint8(v)
}

// GetBitfield8 unpacks a previously packed byte into up to 8 booleans.
func (d *Decoder) GetBitfield8(n int) []bool {
	v := d.GetUint8()
	if n > 8 {
		n = 8
	}
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		out[i] = v&(1<<uint(i)) != 0
	}
	return out
}
