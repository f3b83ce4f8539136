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

// Package ticker runs a function on a fixed interval until stopped, with
// error capture and a runtime-adjustable period.
package ticker

import (
	"context"
	"time"
)

// defaultDuration is used whenever the caller supplies a non-positive or
// sub-millisecond interval.
const defaultDuration = 30 * time.Second

// minDuration is the smallest interval accepted as-is.
const minDuration = time.Millisecond

// FuncTick is invoked on every tick. It receives the running context and the
// underlying time.Ticker so it can inspect or drain it if needed.
type FuncTick func(ctx context.Context, tck *time.Ticker) error

// Ticker runs FuncTick on a fixed period until stopped.
type Ticker interface {
	// Start begins ticking, replacing any instance already running. It
	// clears previously collected errors.
	Start(ctx context.Context) error

	// Stop halts the ticker. Safe to call when not running.
	Stop(ctx context.Context) error

	// Restart stops then starts the ticker, clearing collected errors.
	Restart(ctx context.Context) error

	// IsRunning reports whether the ticker is currently active.
	IsRunning() bool

	// Uptime reports how long the ticker has been running, or zero if
	// stopped.
	Uptime() time.Duration

	// SetInterval changes the tick period. A running ticker picks the new
	// period up on its next fire; a stopped one uses it on the next Start.
	SetInterval(d time.Duration)

	// ErrorsLast returns the most recent error captured from FuncTick.
	ErrorsLast() error

	// ErrorsList returns every error captured from FuncTick, oldest first.
	ErrorsList() []error
}

// New returns a Ticker invoking fn every d. A non-positive or
// sub-millisecond d falls back to defaultDuration. fn may be nil: every
// tick then captures an "invalid tick function" error.
func New(d time.Duration, fn FuncTick) Ticker {
	return &tck{
		d:  sanitizeDuration(d),
		fn: fn,
	}
}

func sanitizeDuration(d time.Duration) time.Duration {
	if d < minDuration {
		return defaultDuration
	}
	return d
}
