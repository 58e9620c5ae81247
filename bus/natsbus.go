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

package bus

import (
	"encoding/json"

	"github.com/nats-io/nats.go"

	"github.com/nabbar/prinbee/errors"
	"github.com/nabbar/prinbee/logger"
)

// subjectPrefix namespaces every prinbee bus subject under the NATS
// connection so the same server can carry unrelated traffic.
const subjectPrefix = "prinbee.bus."

// NatsBus is the default concrete Bus transport: the abstract
// "communicator" collaborator backed by github.com/nats-io/nats.go,
// mapping bus message names onto NATS subjects under a shared
// prefix.
type NatsBus struct {
	nc  *nats.Conn
	log logger.Logger
}

// DialNats connects to a NATS server at url (e.g. "nats://127.0.0.1:4222")
// and returns a Bus backed by it.
func DialNats(url string, log logger.Logger) (*NatsBus, errors.Error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, errors.New(uint16(ErrorNotConnected), ErrorNotConnected.Message(), err)
	}
	return &NatsBus{nc: nc, log: log}, nil
}

type wireMsg struct {
	Name   Name   `json:"name"`
	Params Params `json:"params"`
}

func (b *NatsBus) Publish(msg Message) errors.Error {
	data, err := json.Marshal(wireMsg{Name: msg.Name, Params: msg.Params})
	if err != nil {
		return errors.New(uint16(ErrorPublishFailed), ErrorPublishFailed.Message(), err)
	}
	if err = b.nc.Publish(subjectPrefix+string(msg.Name), data); err != nil {
		return errors.New(uint16(ErrorPublishFailed), ErrorPublishFailed.Message(), err)
	}
	return nil
}

type natsSub struct {
	sub *nats.Subscription
}

func (s *natsSub) Unsubscribe() errors.Error {
	if err := s.sub.Unsubscribe(); err != nil {
		return errors.New(uint16(ErrorSubscribeFailed), ErrorSubscribeFailed.Message(), err)
	}
	return nil
}

func (b *NatsBus) Subscribe(name Name, fn Handler) (Subscription, errors.Error) {
	sub, err := b.nc.Subscribe(subjectPrefix+string(name), func(m *nats.Msg) {
		var w wireMsg
		if jerr := json.Unmarshal(m.Data, &w); jerr != nil {
			if b.log != nil {
				b.log.Warn("bus: dropping malformed message", logger.F("subject", m.Subject))
			}
			return
		}
		fn(Message{Name: w.Name, Params: w.Params})
	})
	if err != nil {
		return nil, errors.New(uint16(ErrorSubscribeFailed), ErrorSubscribeFailed.Message(), err)
	}
	return &natsSub{sub: sub}, nil
}

func (b *NatsBus) Close() error {
	b.nc.Close()
	return nil
}
