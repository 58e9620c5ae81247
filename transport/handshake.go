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

package transport

import (
	"time"

	"github.com/nabbar/prinbee/errors"
	"github.com/nabbar/prinbee/wire"
)

// ProtocolMajor/ProtocolMinor are this build's negotiated protocol
// version, sent in every REG.
const (
	ProtocolMajor uint8 = 1
	ProtocolMinor uint8 = 0
)

// MaxClockSkew is the maximum tolerated |now - local_now| at REG
// before the accepting side replies ERR_TIME_DIFFERENCE_TOO_LARGE.
const MaxClockSkew = 10 * time.Millisecond

// RegBody is the REG message payload: sender name, protocol version
// and wall-clock time.
type RegBody struct {
	Name  string
	Major uint8
	Minor uint8
	Now   time.Time
}

// EncodeREG serializes a RegBody using the schema-driven codec.
func EncodeREG(b RegBody) []byte {
	enc := wire.NewEncoder(64)
	enc.PutPString(1, b.Name).
		PutVersion(b.Major, b.Minor).
		PutUSTime(b.Now.UnixMicro())
	return enc.Bytes()
}

// DecodeREG parses a REG body.
func DecodeREG(body []byte) (RegBody, errors.Error) {
	dec := wire.NewDecoder(body)
	name := dec.GetPString(1)
	major, minor := dec.GetVersion()
	us := dec.GetUSTime()
	if e := dec.Err(); e != nil {
		return RegBody{}, e
	}
	return RegBody{Name: name, Major: major, Minor: minor, Now: time.UnixMicro(us)}, nil
}

// ErrBody is the ERR message payload: a registered error code plus a
// human-readable message.
type ErrBody struct {
	Code    uint32
	Message string
}

func EncodeERR(b ErrBody) []byte {
	enc := wire.NewEncoder(64)
	enc.PutUint32(b.Code).PutPString(2, b.Message)
	return enc.Bytes()
}

func DecodeERR(body []byte) (ErrBody, errors.Error) {
	dec := wire.NewDecoder(body)
	code := dec.GetUint32()
	msg := dec.GetPString(2)
	if e := dec.Err(); e != nil {
		return ErrBody{}, e
	}
	return ErrBody{Code: code, Message: msg}, nil
}

// AckBody is the ACK message payload: the phase reached by a
// multi-phase operation; zero for a plain
// acknowledgment.
type AckBody struct {
	Phase uint8
}

func EncodeACK(b AckBody) []byte {
	enc := wire.NewEncoder(1)
	enc.PutUint8(b.Phase)
	return enc.Bytes()
}

func DecodeACK(body []byte) (AckBody, errors.Error) {
	dec := wire.NewDecoder(body)
	phase := dec.GetUint8()
	if e := dec.Err(); e != nil {
		return AckBody{}, e
	}
	return AckBody{Phase: phase}, nil
}

// PingBody/PongBody carry the liveness-check payload.
// PongBody's Load field carries the peer's load average.
type PingBody struct{}

func EncodePING() []byte { return nil }

type PongBody struct {
	Load float64
}

func EncodePONG(b PongBody) []byte {
	enc := wire.NewEncoder(8)
	bits := int64(b.Load * 1000)
	enc.PutInt64(bits)
	return enc.Bytes()
}

func DecodePONG(body []byte) (PongBody, errors.Error) {
	dec := wire.NewDecoder(body)
	bits := dec.GetInt64()
	if e := dec.Err(); e != nil {
		return PongBody{}, e
	}
	return PongBody{Load: float64(bits) / 1000}, nil
}

// ValidateREG checks the two REG preconditions: exact major
// version match and clock skew within MaxClockSkew.
func ValidateREG(b RegBody, localNow time.Time) errors.Error {
	if b.Major != ProtocolMajor {
		return errors.New(uint16(ErrorVersionMismatch), ErrorVersionMismatch.Message())
	}
	skew := localNow.Sub(b.Now)
	if skew < 0 {
		skew = -skew
	}
	if skew > MaxClockSkew {
		return errors.New(uint16(ErrorTimeSkewTooLarge), ErrorTimeSkewTooLarge.Message())
	}
	return nil
}

// DoHandshake runs the initiating side of the handshake: send REG,
// wait for
// ACK/ERR. On ACK, the connection is marked registered.
func DoHandshake(c *Connection, name string) errors.Error {
	serial := c.NextSerial()
	body := EncodeREG(RegBody{Name: name, Major: ProtocolMajor, Minor: ProtocolMinor, Now: time.Now()})
	msg := wire.NewMessage(wire.NameREG, serial, 0, body)
	if e := c.Send(msg); e != nil {
		return e
	}

	reply, e := c.ReadMessage()
	if e != nil {
		return e
	}
	switch reply.Header.Name {
	case wire.NameACK:
		c.markRegistered(ProtocolMajor, ProtocolMinor)
		return nil
	case wire.NameERR:
		eb, de := DecodeERR(reply.Body)
		if de != nil {
			return de
		}
		return errors.New(uint16(eb.Code), eb.Message)
	default:
		return errors.New(uint16(ErrorNotRegistered), ErrorNotRegistered.Message())
	}
}

// HandleIncomingREG runs the accepting side for a just-received
// REG message: validate and reply ACK or ERR+close.
func HandleIncomingREG(c *Connection, msg *wire.Message) errors.Error {
	reg, de := DecodeREG(msg.Body)
	if de != nil {
		errBody := EncodeERR(ErrBody{Code: uint32(de.GetCode()), Message: de.Error()})
		_ = c.Send(wire.NewMessage(wire.NameERR, msg.Header.Serial, 0, errBody))
		_ = c.Close()
		return de
	}

	if ve := ValidateREG(reg, time.Now()); ve != nil {
		errBody := EncodeERR(ErrBody{Code: uint32(ve.GetCode()), Message: ve.Error()})
		_ = c.Send(wire.NewMessage(wire.NameERR, msg.Header.Serial, 0, errBody))
		_ = c.Close()
		return ve
	}

	c.markRegistered(reg.Major, reg.Minor)
	ack := EncodeACK(AckBody{Phase: 0})
	return c.Send(wire.NewMessage(wire.NameACK, msg.Header.Serial, 0, ack))
}
