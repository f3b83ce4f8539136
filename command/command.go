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

// Package command is the dispatcher: a single goroutine owning the pending
// FIFO, the in-flight slot, and the immediate-query waiter slot, enforcing
// at-most-one-in-flight normal command and correlating terminal responses
// by position.
package command

import (
	"sync/atomic"
	"time"
)

// Category classifies how a Command is written and correlated.
type Category uint8

const (
	// CategoryNormal is a queued line command participating in the
	// at-most-one-in-flight serialization contract.
	CategoryNormal Category = iota

	// CategoryImmediate is written ahead of the queue. It correlates as the
	// next terminal response only if Payload is a line (e.g. "?" expects a
	// Status line); a bare real-time byte is fire-and-forget.
	CategoryImmediate

	// CategoryRealtime is a single unterminated byte (0x18, '!', '~', '?')
	// written directly with no queueing and no correlation.
	CategoryRealtime
)

var idSeq atomic.Uint64

// statusQueryByte is the only real-time byte that expects a reply (the next
// Status report).
const statusQueryByte = '?'

// realtimePayload reports whether line is exactly one single-byte real-time
// command, returning that byte when so.
func realtimePayload(line string) (byte, bool) {
	if len(line) != 1 {
		return 0, false
	}
	switch line[0] {
	case '?', '!', '~', 0x18:
		return line[0], true
	}
	return 0, false
}

// Options configures a submitted Command.
type Options struct {
	// Timeout bounds the in-flight window, starting when the command's
	// bytes are written to the transport, not when it is submitted. Zero
	// selects DefaultTimeout; a negative value means the deadline has
	// already passed, so the command completes with Timeout at dispatch
	// without ever touching the port.
	Timeout time.Duration

	// SkipSoftLimitCheck bypasses state.Manager's pre-submission soft-limit
	// validation for this command.
	SkipSoftLimitCheck bool
}

// Command is an immutable unit of work accepted by Engine.Submit /
// SubmitImmediate. Fields are unexported; construct with New.
type Command struct {
	id       uint64
	line     string
	realtime byte
	category Category
	opts     Options
}

// New builds a CategoryNormal Command from line with opts.
func New(line string, opts Options) Command {
	return Command{
		id:       idSeq.Add(1),
		line:     line,
		category: CategoryNormal,
		opts:     opts,
	}
}

// NewImmediate builds a CategoryImmediate Command carrying a line payload
// (e.g. "$$" to dump settings).
func NewImmediate(line string, opts Options) Command {
	return Command{
		id:       idSeq.Add(1),
		line:     line,
		category: CategoryImmediate,
		opts:     opts,
	}
}

// NewRealtime builds a CategoryRealtime Command carrying a single
// unterminated byte (e.g. '?', '!', '~', 0x18).
func NewRealtime(b byte) Command {
	return Command{
		id:       idSeq.Add(1),
		realtime: b,
		category: CategoryRealtime,
	}
}

// ID returns the Command's monotonically increasing identifier.
func (c Command) ID() uint64 { return c.id }

// Line returns the line payload. Empty for CategoryRealtime.
func (c Command) Line() string { return c.line }

// RealtimeByte returns the single byte payload. Zero for non-realtime
// commands.
func (c Command) RealtimeByte() byte { return c.realtime }

// Category returns the Command's Category.
func (c Command) Category() Category { return c.category }

// Options returns the Command's Options.
func (c Command) Options() Options { return c.opts }

// ExpectsLineResponse reports whether this command expects a correlated
// terminal response at all: every CategoryNormal command does, a
// CategoryImmediate command does only when it carries a line payload, and
// a CategoryRealtime command never does.
func (c Command) ExpectsLineResponse() bool {
	switch c.category {
	case CategoryNormal:
		return true
	case CategoryImmediate:
		return c.line != ""
	default:
		return false
	}
}
