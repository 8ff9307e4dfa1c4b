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

// Package errors provides EmberCore's tagged error type: a numeric CodeError
// classification (success / internal invariant / protocol fault / OS error),
// a captured call-site trace, and an immutable parent chain used to carry
// rethrow context from a low-level failure up to the log line that reports
// it fatal or disconnects a client.
//
// Example:
//
//	if n < 0 {
//	    return errors.NewOs(errno).Trace()
//	}
package errors

// FuncMap iterates over an error and its parent chain; return false to stop.
type FuncMap func(e Error) bool

// Error is EmberCore's tagged error. It extends the standard error interface
// with a numeric code, a parent chain, and the call-site trace captured at
// construction.
type Error interface {
	error

	// IsError reports whether this is a real error (non-nil, non-zero code
	// or non-empty message). A freshly zero-valued Error is "None".
	IsError() bool

	// Code returns this error's own code, ignoring parents.
	Code() CodeError

	// HasCode reports whether this error or any parent carries code.
	HasCode(code CodeError) bool

	// Trace captures the caller's frame into this error if none was captured
	// yet, and returns itself. An error built by New and its helpers already
	// holds its construction site, which Trace keeps:
	//
	//	return nil, someErr.Trace()
	Trace() Error

	// GetTrace renders the captured call site as "path/file.go#line".
	GetTrace() string

	// RaiseError wraps this error as the parent of a freshly built Protocol
	// (or other code) error, preserving the original cause under a new
	// message meaningful at the new call site.
	RaiseError(code CodeError, message string) Error

	// Add appends one or more parents to this error's chain.
	Add(parent ...error)

	// GetParent returns this error's direct parents, in the order they were
	// added; use Chain or Map to walk the whole chain.
	GetParent() []Error

	// Map walks this error and its parent chain depth-first.
	Map(fct FuncMap) bool

	// CodeErrorTrace renders "[code] message (trace)" for a single log line.
	CodeErrorTrace() string

	// Chain renders every error in the chain, one per line, for a fatal log.
	Chain() []string
}
