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

// Command prinbeed is the prinbee backend daemon: it owns the on-disk
// context state and journal, accepts node/proxy/direct connections
// once the readiness gate latches, and replicates context mutations
// across the full mesh.
package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nabbar/prinbee/bus"
	"github.com/nabbar/prinbee/cluck"
	"github.com/nabbar/prinbee/cluster"
	"github.com/nabbar/prinbee/config"
	cptctx "github.com/nabbar/prinbee/config/components/context"
	cptjrn "github.com/nabbar/prinbee/config/components/journal"
	cptlisten "github.com/nabbar/prinbee/config/components/listen"
	cptlog "github.com/nabbar/prinbee/config/components/log"
	"github.com/nabbar/prinbee/daemon"
	perrors "github.com/nabbar/prinbee/errors"
	"github.com/nabbar/prinbee/logger"
	"github.com/nabbar/prinbee/metrics"
	"github.com/nabbar/prinbee/transport"
	"github.com/nabbar/prinbee/wire"
)

type options struct {
	configFile    string
	clusterName   string
	nodeName      string
	nodeIP        string
	nodeListen    string
	proxyListen   string
	clientListen  string
	prinbeePath   string
	owner         string
	pingInterval  time.Duration
	loadWarn      float64
	busURL        string
	lockPath      string
	metricsListen string
	logLevel      string
}

func main() {
	opt := &options{}

	root := &cobra.Command{
		Use:           "prinbeed",
		Short:         "prinbee backend daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opt)
		},
	}

	fl := root.Flags()
	fl.StringVar(&opt.configFile, "config", "", "configuration file (yaml/json/toml)")
	fl.StringVar(&opt.clusterName, "cluster-name", "prinbee", "cluster this node belongs to")
	fl.StringVar(&opt.nodeName, "node-name", "", "unique name of this node (defaults to the hostname)")
	fl.StringVar(&opt.nodeIP, "node-ip", "", "IP address announced to peers for the full-mesh rule")
	fl.StringVar(&opt.nodeListen, "node-listen", ":4010", "bind address for peer daemon connections")
	fl.StringVar(&opt.proxyListen, "proxy-listen", ":4011", "bind address for proxy connections")
	fl.StringVar(&opt.clientListen, "client-listen", ":4012", "bind address for direct client connections")
	fl.StringVar(&opt.prinbeePath, "prinbee-path", "/var/lib/prinbee", "root directory of contexts and journals")
	fl.StringVar(&opt.owner, "owner", "", "user[:group] owning the prinbee path")
	fl.DurationVar(&opt.pingInterval, "ping-pong-interval", transport.DefaultPingInterval, "PING interval, clamped to [1s,1h]")
	fl.Float64Var(&opt.loadWarn, "load-warn-threshold", 0, "log a warning when a peer's load average exceeds this (0 disables)")
	fl.StringVar(&opt.busURL, "bus-url", "", "communicator bus URL (empty runs standalone, ambient signals assumed present)")
	fl.StringVar(&opt.lockPath, "lock-path", "", "directory backing the cluster lock store (defaults under the prinbee path)")
	fl.StringVar(&opt.metricsListen, "metrics-listen", "", "bind address for the /metrics endpoint (empty disables)")
	fl.StringVar(&opt.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	if err := root.Execute(); err != nil {
		if isTerminal(os.Stderr) {
			fmt.Fprintln(os.Stderr, err.Error())
		}
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	st, err := f.Stat()
	if err != nil {
		return false
	}
	return st.Mode()&os.ModeCharDevice != 0
}

// chownPath applies --owner to the prinbee path, resolving the
// user and optional group name to numeric ids.
func chownPath(path, owner string) error {
	if owner == "" {
		return nil
	}
	userName, groupName, _ := strings.Cut(owner, ":")
	u, err := user.Lookup(userName)
	if err != nil {
		return err
	}
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return err
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return err
	}
	if groupName != "" {
		g, err := user.LookupGroup(groupName)
		if err != nil {
			return err
		}
		if gid, err = strconv.Atoi(g.Gid); err != nil {
			return err
		}
	}
	return os.Chown(path, uid, gid)
}

func run(opt *options) error {
	if opt.nodeName == "" {
		host, err := os.Hostname()
		if err != nil {
			return err
		}
		opt.nodeName = host
	}

	if err := os.MkdirAll(opt.prinbeePath, 0o755); err != nil {
		return err
	}
	if err := chownPath(opt.prinbeePath, opt.owner); err != nil {
		return err
	}

	logCpt := cptlog.New(os.Stderr)
	jrnCpt := cptjrn.New(opt.prinbeePath, "daemon", logCpt.Logger)
	ctxCpt := cptctx.New(opt.prinbeePath, logCpt.Logger)
	lstCpt := cptlisten.New()
	lstCpt.SetDefaults(cptlisten.Addresses{
		Node:   opt.nodeListen,
		Proxy:  opt.proxyListen,
		Direct: opt.clientListen,
	}, opt.pingInterval)

	components := config.NewComponents()
	sections := func(key string) config.Values {
		return config.Values{}
	}
	if opt.configFile != "" {
		src, e := config.LoadSource(opt.configFile)
		if e != nil {
			return e
		}
		sections = src.Section
		src.WatchReload(func() { _ = components.ReloadWith(src.Section) })
	}
	flagSection := sections("log")
	if _, ok := flagSection["level"]; !ok {
		flagSection["level"] = opt.logLevel
	}
	if e := components.Register(logCpt, flagSection); e != nil {
		return e
	}
	if e := components.Register(jrnCpt, sections("journal")); e != nil {
		return e
	}
	if e := components.Register(ctxCpt, sections("context")); e != nil {
		return e
	}
	if e := components.Register(lstCpt, sections("listen")); e != nil {
		return e
	}
	if e := components.Init(); e != nil {
		return e
	}
	if e := components.Start(); e != nil {
		return e
	}
	defer components.Stop()

	log := logCpt.Logger()

	// Bus: real NATS when a URL is given, otherwise an in-process bus
	// with every ambient signal assumed present (standalone mode).
	var b bus.Bus
	standalone := opt.busURL == ""
	if standalone {
		b = bus.NewMemBus()
	} else {
		nb, e := bus.DialNats(opt.busURL, log)
		if e != nil {
			return e
		}
		b = nb
	}
	defer b.Close()

	lockDir := opt.lockPath
	if lockDir == "" {
		lockDir = filepath.Join(opt.prinbeePath, "locks")
	}
	lock, e := cluck.OpenNutsLock(lockDir)
	if e != nil {
		return e
	}
	defer lock.Close()

	addrs := lstCpt.Addresses()
	d := daemon.New(daemon.Config{
		Name:         opt.nodeName,
		NodeListen:   addrs.Node,
		ProxyListen:  addrs.Proxy,
		DirectListen: addrs.Direct,
		PingInterval: lstCpt.PingInterval(),
		Workers:      runtime.NumCPU(),
		QueueDepth:   1024,
	}, jrnCpt.Journal(), ctxCpt.Registry(), b, lock, log)
	met := metrics.New("daemon")
	d.SetMetrics(met)

	gate := d.Gate()
	nodeIP := net.ParseIP(opt.nodeIP)
	gate.SetAddressValid(nodeIP != nil || standalone)
	lock.OnStatusChange(gate.SetLockReady)
	gate.SetLockReady(lock.IsLockReady())

	if standalone {
		gate.SetFluidSettingsReady(true)
		gate.SetIPWallUp(true)
		gate.SetClockStable(true)
	} else {
		if _, e := b.Subscribe(bus.NameReady, func(bus.Message) { gate.SetFluidSettingsReady(true) }); e != nil {
			return e
		}
		if _, e := b.Subscribe(bus.NameClockStable, func(bus.Message) { gate.SetClockStable(true) }); e != nil {
			return e
		}
		if _, e := b.Subscribe(bus.NameClockUnstable, func(bus.Message) { gate.SetClockStable(false) }); e != nil {
			return e
		}
		if _, e := b.Subscribe(bus.NameIPWallCurrentStatus, func(m bus.Message) {
			gate.SetIPWallUp(m.Params.Get("status") == "up")
		}); e != nil {
			return e
		}
	}

	if nodeIP != nil {
		m, e := cluster.NewMembership(b, opt.clusterName, opt.nodeName, nodeIP, func(peer cluster.Node) perrors.Error {
			return dialPeer(peer, addrs.Node, opt.nodeName, lstCpt.PingInterval(), opt.loadWarn, log)
		}, log)
		if e != nil {
			return e
		}
		d.SetMembership(m)
		if _, e := b.Subscribe(bus.NamePrinbeeGetStatus, func(bus.Message) { _ = m.Announce(true) }); e != nil {
			return e
		}
	}

	if opt.metricsListen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", met.Handler())
		go func() {
			if err := http.ListenAndServe(opt.metricsListen, mux); err != nil {
				log.Warn("daemon: metrics endpoint failed", logger.F("error", err.Error()))
			}
		}()
	}

	if e := d.Start(); e != nil {
		return e
	}
	log.Info("prinbeed started", logger.F("node", opt.nodeName), logger.F("cluster", opt.clusterName))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	// Shutdown order: bus first (deferred close
	// runs last in defer order, so close it here), then the daemon's
	// listeners and connections, then the components (journal last).
	_ = b.Close()
	d.Stop()
	log.Info("prinbeed stopped")
	return nil
}

// dialPeer opens the node-to-node link for the full-mesh rule: dial
// the peer on the same node port this daemon listens on, handshake,
// and keep the link alive with a ping ticker plus a reader answering
// the peer's lifecycle messages.
func dialPeer(peer cluster.Node, nodeListen, localName string, ping time.Duration, loadWarn float64, log logger.Logger) perrors.Error {
	_, port, err := net.SplitHostPort(nodeListen)
	if err != nil || port == "" {
		port = "4010"
	}
	addr := net.JoinHostPort(peer.IP.String(), port)
	c, e := transport.Dial(transport.KindNode, "tcp", addr, log)
	if e != nil {
		return e
	}
	if e := transport.DoHandshake(c, localName); e != nil {
		_ = c.Close()
		return e
	}

	ticker := transport.NewPingTicker(c, ping)
	go ticker.Run(func(dead *transport.Connection) { _ = dead.Close() })
	go func() {
		defer ticker.Stop()
		for {
			msg, re := c.ReadMessage()
			if re != nil {
				return
			}
			switch msg.Header.Name {
			case wire.NamePING:
				_ = transport.ReplyPong(c, msg.Header.Serial, 0)
			case wire.NamePONG:
				if pong, de := transport.DecodePONG(msg.Body); de == nil {
					c.NotePong(msg.Header.Serial, pong.Load)
					if loadWarn > 0 && pong.Load > loadWarn {
						log.Warn("peer load average above threshold",
							logger.F("peer", peer.Name), logger.F("load", pong.Load))
					}
				}
			}
		}
	}()
	return nil
}
