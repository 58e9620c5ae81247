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

import "github.com/nabbar/prinbee/errors"

// Handler receives a delivered Message.
type Handler func(Message)

// Subscription is returned by Subscribe; Unsubscribe stops delivery.
type Subscription interface {
	Unsubscribe() errors.Error
}

// Bus is the abstract "communicator" contract: a pub/sub
// transport delivering named messages with string key/value
// parameters, used solely for discovery/gossip of node addresses and
// cluster-wide signals (firewall-up, clock-stable, lock-ready).
type Bus interface {
	// Publish broadcasts msg to every current subscriber.
	Publish(msg Message) errors.Error

	// Subscribe registers fn for every message carrying name.
	Subscribe(name Name, fn Handler) (Subscription, errors.Error)

	// Close disconnects the bus.
	Close() error
}
