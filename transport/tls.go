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
	"crypto/tls"
	"crypto/x509"
	"net"
	"os"

	"github.com/nabbar/prinbee/errors"
	"github.com/nabbar/prinbee/logger"
)

// TLSConfig holds the file-based TLS material for a node/proxy link.
// Enabled is false, meaning plain TCP, only when CertFile and CAFile are
// both empty and InsecureSkipVerify is unset.
type TLSConfig struct {
	CertFile           string
	KeyFile            string
	CAFile             string
	ServerName         string
	InsecureSkipVerify bool
}

// Enabled reports whether any TLS material was configured at all.
func (t TLSConfig) Enabled() bool {
	return t.CertFile != "" || t.CAFile != "" || t.InsecureSkipVerify
}

func (t TLSConfig) caPool() (*x509.CertPool, errors.Error) {
	if t.CAFile == "" {
		return nil, nil
	}
	pem, err := os.ReadFile(t.CAFile)
	if err != nil {
		return nil, errors.New(uint16(ErrorTLSConfig), ErrorTLSConfig.Message(), err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.New(uint16(ErrorTLSConfig), ErrorTLSConfig.Message())
	}
	return pool, nil
}

// Server builds the accept-side tls.Config.
func (t TLSConfig) Server() (*tls.Config, errors.Error) {
	cert, err := tls.LoadX509KeyPair(t.CertFile, t.KeyFile)
	if err != nil {
		return nil, errors.New(uint16(ErrorTLSConfig), ErrorTLSConfig.Message(), err)
	}
	cfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	pool, e := t.caPool()
	if e != nil {
		return nil, e
	}
	if pool != nil {
		cfg.ClientCAs = pool
		cfg.ClientAuth = tls.RequireAndVerifyClientCert
	}
	return cfg, nil
}

// Client builds the dial-side tls.Config.
func (t TLSConfig) Client() (*tls.Config, errors.Error) {
	cfg := &tls.Config{
		ServerName:         t.ServerName,
		InsecureSkipVerify: t.InsecureSkipVerify,
		MinVersion:         tls.VersionTLS12,
	}
	if t.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(t.CertFile, t.KeyFile)
		if err != nil {
			return nil, errors.New(uint16(ErrorTLSConfig), ErrorTLSConfig.Message(), err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	pool, e := t.caPool()
	if e != nil {
		return nil, e
	}
	if pool != nil {
		cfg.RootCAs = pool
	}
	return cfg, nil
}

// ListenTLS opens a TLS listener for the given kind and address.
func ListenTLS(kind Kind, addr string, t TLSConfig, log logger.Logger) (*Listener, errors.Error) {
	cfg, e := t.Server()
	if e != nil {
		return nil, e
	}
	ln, err := tls.Listen("tcp", addr, cfg)
	if err != nil {
		return nil, errors.New(uint16(ErrorListenFailed), ErrorListenFailed.Message(), err)
	}
	return &Listener{kind: kind, ln: ln, log: log}, nil
}

// DialTLS opens an outbound TLS connection of the given kind to addr.
func DialTLS(kind Kind, addr string, t TLSConfig, log logger.Logger) (*Connection, errors.Error) {
	cfg, e := t.Client()
	if e != nil {
		return nil, e
	}
	if cfg.ServerName == "" && !cfg.InsecureSkipVerify {
		if host, _, err := net.SplitHostPort(addr); err == nil {
			cfg.ServerName = host
		}
	}
	conn, err := tls.Dial("tcp", addr, cfg)
	if err != nil {
		return nil, errors.New(uint16(ErrorDialFailed), ErrorDialFailed.Message(), err)
	}
	return NewConnection(kind, conn, log), nil
}
