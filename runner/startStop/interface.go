/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

// Package startStop wraps a pair of start/stop functions into a restartable
// background task with asynchronous error capture.
package startStop

import (
	"context"
	"time"
)

// FuncRun is a function running a long-lived task. It receives a context
// cancelled when the runner is stopped and should return once it has
// unwound.
type FuncRun func(ctx context.Context) error

// StartStop manages the lifecycle of a single background task built from a
// start and a stop function. Start and Stop both return immediately; the
// underlying functions run asynchronously and any error they return is
// captured and retrievable through ErrorsLast/ErrorsList.
type StartStop interface {
	// Start launches the start function in a new goroutine, cancelling and
	// replacing any instance already running.
	Start(ctx context.Context) error

	// Stop cancels the running instance's context and runs the stop
	// function asynchronously. Calling Stop when not running is a no-op.
	Stop(ctx context.Context) error

	// Restart stops the current instance, if any, then starts a new one.
	Restart(ctx context.Context) error

	// IsRunning reports whether a start function is currently executing.
	IsRunning() bool

	// Uptime reports how long the current instance has been running, or
	// zero if not running.
	Uptime() time.Duration

	// ErrorsLast returns the most recently captured error, or nil.
	ErrorsLast() error

	// ErrorsList returns every captured error, oldest first.
	ErrorsList() []error
}

// New returns a StartStop driving the given start/stop functions. Either may
// be nil: invoking it then captures an "invalid start/stop function" error
// instead of panicking.
func New(start, stop FuncRun) StartStop {
	return &runner{
		start: start,
		stop:  stop,
	}
}
