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

package cui

import (
	"os"
	"strings"
)

var helpSections = map[string]string{
	"connection": `/connect <host:port>   connect to a proxy
/disconnect            close the current connection
/quit                  leave the console
ping                   check the connection is alive`,
	"work": `begin-work             start batching set-context operations
commit-work            send every queued operation in order
rollback               discard the queued operations`,
	"contexts": `list-contexts                         list every context
get-context <name>                    show one context
set-context <name> [version=N] [owner=<user>[:<group>]] [description=<text>]
                                      create or update a context`,
}

var helpOrder = []string{"connection", "work", "contexts"}

// printHelp renders HELP [section]. With --documentation set, the
// named section is looked up in that file first ("## <section>"
// delimited); the built-in text is the fallback.
func (c *Console) printHelp(args []string) {
	section := ""
	if len(args) > 0 {
		section = strings.ToLower(args[0])
	}

	if c.docPath != "" {
		if text, ok := lookupDocSection(c.docPath, section); ok {
			c.infoPrint(c.out, "%s\n", text)
			return
		}
	}

	if section != "" {
		if text, ok := helpSections[section]; ok {
			c.infoPrint(c.out, "%s\n", text)
		} else {
			c.errPrint(c.out, "no help for %q; sections: %s\n", section, strings.Join(helpOrder, ", "))
		}
		return
	}
	for _, name := range helpOrder {
		c.infoPrint(c.out, "[%s]\n%s\n\n", name, helpSections[name])
	}
}

// lookupDocSection scans a documentation file for "## <section>"
// headers. An empty section returns the whole file.
func lookupDocSection(path, section string) (string, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	if section == "" {
		return strings.TrimRight(string(raw), "\n"), true
	}
	lines := strings.Split(string(raw), "\n")
	var (
		collecting bool
		out        []string
	)
	for _, line := range lines {
		if strings.HasPrefix(line, "## ") {
			if collecting {
				break
			}
			name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(line, "## ")))
			if name == section {
				collecting = true
			}
			continue
		}
		if collecting {
			out = append(out, line)
		}
	}
	if !collecting {
		return "", false
	}
	return strings.TrimSpace(strings.Join(out, "\n")), true
}
