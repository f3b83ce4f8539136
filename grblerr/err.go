/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
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

package grblerr

import (
	"fmt"
)

// Err is the concrete error type returned by a rejected or failed command.
// It carries a Kind, an optional Reason (only meaningful for KindRejected),
// the raw controller code when one was reported (error:N / ALARM:N), the
// offending line when known, and the parent error it wraps, if any.
type Err struct {
	Kind   Kind
	Reason Reason
	Code   int
	Line   string
	parent error
}

// New builds an Err of the given Kind with no parent and no controller code.
func New(kind Kind) *Err {
	return &Err{Kind: kind}
}

// Rejected builds a KindRejected Err for the given Reason.
func Rejected(reason Reason) *Err {
	return &Err{Kind: KindRejected, Reason: reason}
}

// WithCode attaches the controller-reported numeric code (error:N or
// ALARM:N) and returns the same *Err for chaining.
func (e *Err) WithCode(code int) *Err {
	if e == nil {
		return nil
	}
	e.Code = code
	return e
}

// WithLine attaches the originating command line and returns the same
// *Err for chaining.
func (e *Err) WithLine(line string) *Err {
	if e == nil {
		return nil
	}
	e.Line = line
	return e
}

// WithParent wraps the given error as the cause of e and returns the same
// *Err for chaining.
func (e *Err) WithParent(parent error) *Err {
	if e == nil {
		return nil
	}
	e.parent = parent
	return e
}

// Error implements the standard error interface.
func (e *Err) Error() string {
	if e == nil {
		return ""
	}

	var msg string

	switch e.Kind {
	case KindRejected:
		msg = fmt.Sprintf("rejected: %s", e.Reason.String())
	case KindControllerError:
		msg = fmt.Sprintf("controller error %d", e.Code)
	case KindAlarm:
		msg = fmt.Sprintf("alarm %d", e.Code)
	default:
		msg = e.Kind.String()
	}

	if e.Line != "" {
		msg = fmt.Sprintf("%s (line %q)", msg, e.Line)
	}

	if e.parent != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.parent.Error())
	}

	return msg
}

// Unwrap exposes the wrapped parent error to the standard errors package.
func (e *Err) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.parent
}

// Is reports whether target is an *Err with the same Kind (and, for
// KindRejected, the same Reason). This lets callers write
// errors.Is(err, grblerr.New(grblerr.KindTimeout)).
func (e *Err) Is(target error) bool {
	if e == nil {
		return target == nil
	}

	t, ok := target.(*Err)
	if !ok {
		return false
	}

	if e.Kind != t.Kind {
		return false
	}

	if e.Kind == KindRejected {
		return e.Reason == t.Reason
	}

	return true
}
