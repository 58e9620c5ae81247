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

package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the structured-logging contract every prinbee package
// depends on, never on a concrete type. Construction always returns a
// value that call sites carry explicitly (constructor parameter or
// struct field); there is no package-level default logger.
type Logger interface {
	Debug(msg string, f ...Fields)
	Info(msg string, f ...Fields)
	Warn(msg string, f ...Fields)
	Error(msg string, f ...Fields)
	Fatal(msg string, f ...Fields)

	// With returns a derived Logger carrying f merged onto any fields
	// already bound, so a component can log "owns" fields (e.g.
	// journal=name) once at construction time.
	With(f Fields) Logger
}

type entryLogger struct {
	e *logrus.Entry
}

// New builds a Logger at the given level, writing formatted entries
// to w (os.Stderr when w is nil).
func New(level Level, w io.Writer, f ...Fields) Logger {
	if w == nil {
		w = os.Stderr
	}

	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level.toLogrus())
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	merged := Fields{}
	for _, m := range f {
		merged = merged.Merge(m)
	}

	return &entryLogger{e: l.WithFields(merged.toLogrus())}
}

func (l *entryLogger) With(f Fields) Logger {
	return &entryLogger{e: l.e.WithFields(f.toLogrus())}
}

func (l *entryLogger) Debug(msg string, f ...Fields) { l.log(logrus.DebugLevel, msg, f) }
func (l *entryLogger) Info(msg string, f ...Fields)  { l.log(logrus.InfoLevel, msg, f) }
func (l *entryLogger) Warn(msg string, f ...Fields)  { l.log(logrus.WarnLevel, msg, f) }
func (l *entryLogger) Error(msg string, f ...Fields) { l.log(logrus.ErrorLevel, msg, f) }
func (l *entryLogger) Fatal(msg string, f ...Fields) { l.log(logrus.FatalLevel, msg, f) }

func (l *entryLogger) log(lvl logrus.Level, msg string, fs []Fields) {
	e := l.e
	for _, f := range fs {
		e = e.WithFields(f.toLogrus())
	}
	e.Log(lvl, msg)
}

// Nop returns a Logger that discards everything, used by packages and
// tests that take a Logger parameter but have nothing interesting to
// attach one to.
func Nop() Logger {
	return New(FatalLevel, io.Discard)
}
