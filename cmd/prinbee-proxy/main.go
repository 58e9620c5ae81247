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

// Command prinbee-proxy fronts clients on one host: it journals every
// client write locally before forwarding it to a daemon, and folds the
// daemon's replies back to the originating client.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nabbar/prinbee/bus"
	"github.com/nabbar/prinbee/config"
	cptjrn "github.com/nabbar/prinbee/config/components/journal"
	cptlisten "github.com/nabbar/prinbee/config/components/listen"
	cptlog "github.com/nabbar/prinbee/config/components/log"
	"github.com/nabbar/prinbee/logger"
	"github.com/nabbar/prinbee/metrics"
	"github.com/nabbar/prinbee/proxy"
	"github.com/nabbar/prinbee/transport"
)

type options struct {
	configFile    string
	clusterName   string
	nodeName      string
	clientListen  string
	daemons       []string
	prinbeePath   string
	pingInterval  time.Duration
	busURL        string
	metricsListen string
	logLevel      string
}

func main() {
	opt := &options{}

	root := &cobra.Command{
		Use:           "prinbee-proxy",
		Short:         "prinbee client-facing proxy",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opt)
		},
	}

	fl := root.Flags()
	fl.StringVar(&opt.configFile, "config", "", "configuration file (yaml/json/toml)")
	fl.StringVar(&opt.clusterName, "cluster-name", "prinbee", "cluster this proxy serves")
	fl.StringVar(&opt.nodeName, "node-name", "", "unique name of this proxy (defaults to the hostname)")
	fl.StringVar(&opt.clientListen, "client-listen", ":4013", "bind address for client connections")
	fl.StringSliceVar(&opt.daemons, "daemon", nil, "daemon proxy-port address to forward to (repeatable)")
	fl.StringVar(&opt.prinbeePath, "prinbee-path", "/var/lib/prinbee-proxy", "root directory of the proxy journal")
	fl.DurationVar(&opt.pingInterval, "ping-pong-interval", transport.DefaultPingInterval, "PING interval, clamped to [1s,1h]")
	fl.StringVar(&opt.busURL, "bus-url", "", "communicator bus URL (empty disables discovery announcements)")
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

	logCpt := cptlog.New(os.Stderr)
	jrnCpt := cptjrn.New(opt.prinbeePath, "proxy", logCpt.Logger)
	lstCpt := cptlisten.New()
	lstCpt.SetDefaults(cptlisten.Addresses{Client: opt.clientListen}, opt.pingInterval)

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
	logSection := sections("log")
	if _, ok := logSection["level"]; !ok {
		logSection["level"] = opt.logLevel
	}
	if e := components.Register(logCpt, logSection); e != nil {
		return e
	}
	if e := components.Register(jrnCpt, sections("journal")); e != nil {
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

	p := proxy.New(jrnCpt.Journal(), log)
	met := metrics.New("proxy")
	p.SetMetrics(met)

	for _, addr := range opt.daemons {
		if e := connectDaemon(p, addr, opt.nodeName, lstCpt.PingInterval(), log); e != nil {
			log.Warn("proxy: failed to connect daemon", logger.F("addr", addr), logger.F("error", e.Error()))
		}
	}

	if e := p.Start(lstCpt.Addresses().Client); e != nil {
		return e
	}
	log.Info("prinbee-proxy started", logger.F("node", opt.nodeName), logger.F("listen", p.Addr().String()))

	// Announce our presence on the bus so operators watching the
	// cluster see the proxy come up.
	if opt.busURL != "" {
		nb, e := bus.DialNats(opt.busURL, log)
		if e != nil {
			return e
		}
		defer nb.Close()
		_ = nb.Publish(bus.Message{Name: bus.NamePrinbeeProxyCurrentStatus, Params: bus.Params{
			"status":       "up",
			"cluster_name": opt.clusterName,
			"node_name":    opt.nodeName,
			"proxy_ip":     p.Addr().String(),
		}})
	}

	if opt.metricsListen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", met.Handler())
		go func() {
			if err := http.ListenAndServe(opt.metricsListen, mux); err != nil {
				log.Warn("proxy: metrics endpoint failed", logger.F("error", err.Error()))
			}
		}()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	p.Stop()
	log.Info("prinbee-proxy stopped")
	return nil
}

// connectDaemon dials a daemon's proxy listener, handshakes, keeps the
// link alive, and registers it with the proxy core.
func connectDaemon(p *proxy.Proxy, addr, localName string, ping time.Duration, log logger.Logger) error {
	c, e := transport.Dial(transport.KindProxy, "tcp", addr, log)
	if e != nil {
		return e
	}
	if he := transport.DoHandshake(c, localName); he != nil {
		_ = c.Close()
		return he
	}
	ticker := transport.NewPingTicker(c, ping)
	go ticker.Run(func(dead *transport.Connection) { _ = dead.Close() })
	p.AddDaemon(c)
	return nil
}
