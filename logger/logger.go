/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

// Package logger provides EmberCore's structured logging sink: a thin
// wrapper around logrus that keeps the three-tag convention used throughout
// the core's log lines -- "[*]" trace, "[!]" warning, "[-]" error -- while
// still attaching structured fields (client id, phase, packet id, tick
// number), rendered as key=value pairs after the message.
package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	liberr "github.com/sabouaram/embercore/errors"
	loglvl "github.com/sabouaram/embercore/logger/level"
	"github.com/sirupsen/logrus"
)

// Fields is a structured payload attached to a single log line.
type Fields = logrus.Fields

// Logger is the logging surface used by every EmberCore component. A nil
// *Logger is valid and discards everything, matching the teacher's
// nil-receiver-safe logging convention.
type Logger struct {
	l *logrus.Logger
}

// tagFormatter renders "[tag] message" followed by any structured fields,
// one line per entry, matching spec §6's "[*]"/"[!]"/"[-]" convention.
type tagFormatter struct{}

func (tagFormatter) Format(e *logrus.Entry) ([]byte, error) {
	tag := "[*]"
	switch e.Level {
	case logrus.WarnLevel:
		tag = "[!]"
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		tag = "[-]"
	}

	buf := e.Buffer
	if buf == nil {
		buf = new(bytes.Buffer)
	}

	buf.WriteString(e.Time.Format("15:04:05.000"))
	buf.WriteString(" ")
	buf.WriteString(tag)
	buf.WriteString(" ")
	buf.WriteString(e.Message)

	for k, v := range e.Data {
		buf.WriteString(" ")
		buf.WriteString(k)
		buf.WriteString("=")
		buf.WriteString(toString(v))
	}

	buf.WriteString("\n")
	return buf.Bytes(), nil
}

// New builds a Logger writing to w at the given minimum level.
func New(w io.Writer, lvl loglvl.Level) *Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(lvl.Logrus())
	l.SetFormatter(tagFormatter{})
	return &Logger{l: l}
}

// Default builds a Logger writing to stderr at Info level, EmberCore's
// out-of-the-box configuration.
func Default() *Logger {
	return New(os.Stderr, loglvl.InfoLevel)
}

// Trace logs a "[*]" line.
func (o *Logger) Trace(message string, fields Fields) {
	if o == nil {
		return
	}
	o.l.WithFields(fields).Debug(message)
}

// Warning logs a "[!]" line.
func (o *Logger) Warning(message string, fields Fields) {
	if o == nil {
		return
	}
	o.l.WithFields(fields).Warn(message)
}

// Error logs a "[-]" line. err, if non-nil, contributes its full rethrow
// chain and trace as structured fields.
func (o *Logger) Error(message string, err error, fields Fields) {
	if o == nil {
		return
	}
	if fields == nil {
		fields = Fields{}
	}
	if err != nil {
		fields["error"] = err.Error()
		if e, ok := err.(liberr.Error); ok && e.IsError() {
			fields["trace"] = strings.Join(e.Chain(), " <- ")
		}
	}
	o.l.WithFields(fields).Error(message)
}

// Fatal logs a "[-]" line then terminates the process with exit code 1,
// matching spec §6's "non-zero on any propagated fatal error".
func (o *Logger) Fatal(message string, err error, fields Fields) {
	if o == nil {
		os.Exit(1)
	}
	if fields == nil {
		fields = Fields{}
	}
	if err != nil {
		fields["error"] = err.Error()
		if e, ok := err.(liberr.Error); ok && e.IsError() {
			fields["trace"] = strings.Join(e.Chain(), " <- ")
		}
	}
	o.l.WithFields(fields).Fatal(message)
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case error:
		return t.Error()
	default:
		return fmt.Sprintf("%v", v)
	}
}
