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

// Command prinbee is the client console: it drives a proxy over the
// binary protocol, either interactively or from --command/--file
// input.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nabbar/prinbee/client/cui"
	"github.com/nabbar/prinbee/logger"
)

type options struct {
	proxy         string
	name          string
	command       string
	file          string
	interactive   bool
	documentation string
	logLevel      string
}

func main() {
	opt := &options{}

	root := &cobra.Command{
		Use:           "prinbee",
		Short:         "prinbee client console",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opt)
		},
	}

	fl := root.Flags()
	fl.StringVar(&opt.proxy, "proxy", "", "proxy address to connect to on startup")
	fl.StringVar(&opt.name, "name", "prinbee-cli", "name sent in the REG handshake")
	fl.StringVar(&opt.command, "command", "", "run a single command and exit")
	fl.StringVar(&opt.file, "file", "", "run the commands in a file and exit")
	fl.BoolVar(&opt.interactive, "interactive", false, "read commands from the terminal")
	fl.StringVar(&opt.documentation, "documentation", "", "documentation file backing HELP")
	fl.StringVar(&opt.logLevel, "log-level", "error", "log level: debug, info, warn, error")

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
	log := logger.New(logger.ParseLevel(opt.logLevel), os.Stderr)

	var copts []cui.Option
	if opt.documentation != "" {
		copts = append(copts, cui.WithDocumentation(opt.documentation))
	}
	console := cui.New(os.Stdout, cui.DefaultDialer(log), opt.name, copts...)

	if opt.proxy != "" {
		if _, err := console.Execute("/connect " + opt.proxy); err != nil {
			return err
		}
	}

	switch {
	case opt.command != "":
		// --command may carry several semicolon-separated commands.
		for _, line := range strings.Split(opt.command, ";") {
			if _, err := console.Execute(strings.TrimSpace(line)); err != nil {
				return err
			}
		}
		return nil
	case opt.file != "":
		f, err := os.Open(opt.file)
		if err != nil {
			return err
		}
		defer f.Close()
		return console.Run(f, false)
	default:
		return console.Run(os.Stdin, opt.interactive || isTerminal(os.Stdin))
	}
}
