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

// Package transport owns the serial device exclusively: opening it, closing
// it, writing to it, and handing back a single-consumer stream of complete
// inbound lines. It never interprets line content — that is response's job.
package transport

import (
	"time"

	libsiz "github.com/nabbar/grbl-engine/size"
)

// Settings configures the serial port and the framing/connection behavior
// layered on top of it.
type Settings struct {
	// Port is the OS device path (e.g. "/dev/ttyUSB0", "COM3").
	Port string

	// BaudRate defaults to 115200 when zero.
	BaudRate int

	// DataBits defaults to 8 when zero.
	DataBits byte

	// StopBits defaults to 1 when zero.
	StopBits byte

	// Parity is "none" (default), "odd", or "even".
	Parity string

	// ReadTimeout bounds each underlying port Read call; it does not bound
	// line assembly, which can span multiple reads.
	ReadTimeout time.Duration

	// LineEnding is appended to outbound normal/immediate line commands.
	// Defaults to "\r\n". Real-time single-byte commands never receive it.
	LineEnding string

	// ConnectionInitDelay is how long Open waits after the port is opened
	// before the first write, letting the controller emit its welcome
	// banner undisturbed.
	ConnectionInitDelay time.Duration

	// AutoOpen carries the configured auto_open flag. Neither transport nor
	// the supervisor reads it: nothing reopens the port on its own,
	// whatever its value — reopening is always an explicit caller action.
	AutoOpen bool

	// BufferSize bounds the delimited reader's line accumulation. Defaults
	// to 8 KiB, the budget required for status-report lines plus slack; a
	// line that never terminates is truncated at this size and its
	// overflow discarded rather than growing memory without bound.
	BufferSize libsiz.Size
}

const (
	defaultBaudRate    = 115200
	defaultDataBits    = 8
	defaultStopBits    = 1
	defaultLineEnding  = "\r\n"
	defaultInitDelay   = 100 * time.Millisecond
	defaultReadTimeout = 50 * time.Millisecond
)

// defaultBufferSize is the 8 KiB accumulation budget transport's framing
// honors: a line exceeding it is truncated to the budget and the overflow
// discarded through the line's terminator.
var defaultBufferSize = 8 * libsiz.SizeKilo

// withDefaults returns a copy of s with every zero-value field replaced by
// its default.
func (s Settings) withDefaults() Settings {
	if s.BaudRate == 0 {
		s.BaudRate = defaultBaudRate
	}
	if s.DataBits == 0 {
		s.DataBits = defaultDataBits
	}
	if s.StopBits == 0 {
		s.StopBits = defaultStopBits
	}
	if s.Parity == "" {
		s.Parity = "none"
	}
	if s.LineEnding == "" {
		s.LineEnding = defaultLineEnding
	}
	if s.ConnectionInitDelay == 0 {
		s.ConnectionInitDelay = defaultInitDelay
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = defaultReadTimeout
	}
	if s.BufferSize == 0 {
		s.BufferSize = defaultBufferSize
	}
	return s
}
