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

// Name is one of the closed set of bus message names. The bus
// itself is the ambient "communicator" collaborator: this
// package specifies only the interface contract prinbee depends on,
// plus a concrete default transport so the cluster/daemon/proxy
// packages have something runnable to test against.
type Name string

const (
	NameReady                     Name = "READY"
	NameStop                      Name = "STOP"
	NameQuitting                  Name = "QUITTING"
	NameClockStable                Name = "CLOCK_STABLE"
	NameClockUnstable               Name = "CLOCK_UNSTABLE"
	NameIPWallCurrentStatus        Name = "IPWALL_CURRENT_STATUS"
	NamePrinbeeCurrentStatus       Name = "PRINBEE_CURRENT_STATUS"
	NamePrinbeeGetStatus           Name = "PRINBEE_GET_STATUS"
	NamePrinbeeProxyCurrentStatus  Name = "PRINBEE_PROXY_CURRENT_STATUS"
)

// Params is the case-sensitive string key/value parameter set carried
// by a bus message. Notable keys: status, cluster_name,
// node_name, node_ip, proxy_ip, direct_ip, cache.
type Params map[string]string

func (p Params) Get(key string) string { return p[key] }

func (p Params) With(key, value string) Params {
	out := make(Params, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	out[key] = value
	return out
}

// Message is one delivered bus event: a name plus its parameters.
type Message struct {
	Name   Name
	Params Params
}
