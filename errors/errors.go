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

package errors

import (
	"fmt"
	"runtime"
)

// None is the canonical success value: calling code on a nil *ers behaves
// like a zero-value error (IsError() == false, Error() == "").
var None Error = (*ers)(nil)

type ers struct {
	c CodeError
	e string
	p []Error
	t runtime.Frame
}

// New builds an Error with the given code and formatted message, capturing
// the caller's frame immediately.
func New(code CodeError, format string, args ...interface{}) Error {
	return &ers{
		c: code,
		e: fmt.Sprintf(format, args...),
		t: getFrame(),
	}
}

// NewCheckFailed builds an internal-invariant-violation error.
func NewCheckFailed(format string, args ...interface{}) Error {
	return New(CheckFailed, format, args...)
}

// NewProtocol builds a client-caused protocol error.
func NewProtocol(format string, args ...interface{}) Error {
	return New(Protocol, format, args...)
}

// NewOs wraps a system-call failure, carrying the original error as parent.
func NewOs(cause error) Error {
	e := &ers{
		c: OsError,
		e: "os error",
		t: getFrame(),
	}
	if cause != nil {
		e.e = cause.Error()
		e.Add(cause)
	}
	return e
}

func (e *ers) IsError() bool {
	if e == nil {
		return false
	}
	return e.c != UnknownError || e.e != ""
}

func (e *ers) Code() CodeError {
	if e == nil {
		return UnknownError
	}
	return e.c
}

func (e *ers) HasCode(code CodeError) bool {
	if e == nil {
		return false
	}
	if e.c == code {
		return true
	}
	for _, p := range e.p {
		if p.HasCode(code) {
			return true
		}
	}
	return false
}

func (e *ers) Trace() Error {
	if e == nil {
		return None
	}
	if e.t.File == "" {
		e.t = getFrame()
	}
	return e
}

func (e *ers) GetTrace() string {
	if e == nil {
		return ""
	}
	if e.t.File != "" {
		return fmt.Sprintf("%s#%d", filterPath(e.t.File), e.t.Line)
	} else if e.t.Function != "" {
		return fmt.Sprintf("%s#%d", e.t.Function, e.t.Line)
	}
	return ""
}

func (e *ers) RaiseError(code CodeError, message string) Error {
	n := &ers{
		c: code,
		e: message,
		t: getFrame(),
	}
	if e.IsError() {
		n.p = []Error{e}
	}
	return n
}

func (e *ers) Add(parent ...error) {
	if e == nil {
		return
	}
	for _, v := range parent {
		if v == nil {
			continue
		}
		if er, ok := v.(Error); ok {
			e.p = append(e.p, er)
		} else {
			e.p = append(e.p, &ers{e: v.Error()})
		}
	}
}

func (e *ers) GetParent() []Error {
	if e == nil {
		return nil
	}
	return e.p
}

func (e *ers) Map(fct FuncMap) bool {
	if e == nil {
		return true
	}
	if !fct(e) {
		return false
	}
	for _, p := range e.p {
		if !p.Map(fct) {
			return false
		}
	}
	return true
}

func (e *ers) Error() string {
	if e == nil {
		return ""
	}
	return e.e
}

func (e *ers) CodeErrorTrace() string {
	if e == nil {
		return ""
	}
	if t := e.GetTrace(); t != "" {
		return fmt.Sprintf("[%s] %s (%s)", e.c, e.e, t)
	}
	return fmt.Sprintf("[%s] %s", e.c, e.e)
}

func (e *ers) Chain() []string {
	if e == nil {
		return nil
	}
	r := []string{e.CodeErrorTrace()}
	for _, p := range e.p {
		r = append(r, p.Chain()...)
	}
	return r
}
