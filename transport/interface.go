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

package transport

import (
	"context"
	"io"
	"time"
)

// Line is one complete inbound line, already stripped of its trailing \r\n.
type Line struct {
	Raw string
	At  time.Time
}

// Port is the minimal surface transport needs from the underlying serial
// device. *serial.Port from github.com/tarm/serial satisfies it directly;
// tests substitute a PortOpener returning an in-memory fake (see the
// transporttest subpackage).
type Port io.ReadWriteCloser

// PortOpener opens the physical (or fake) serial port described by s.
type PortOpener func(s Settings) (Port, error)

// Writer is the narrow surface the command engine's dispatcher goroutine
// uses to put bytes on the wire. It is never exposed to anything outside
// command, keeping Write single-writer without a public mutex.
type Writer interface {
	// Write sends a line command, appending the configured line ending.
	Write(line string) error

	// WriteRealtime sends a single real-time byte with no line ending
	// (status query '?', feed hold '!', cycle start '~', soft reset 0x18).
	WriteRealtime(b byte) error
}

// Reader is the narrow surface consumers use to observe inbound lines.
type Reader interface {
	// Lines returns the single-consumer channel of complete inbound lines.
	// It is closed when the transport closes.
	Lines() <-chan Line
}

// Transport owns the serial device exclusively. It is a runner/startStop
// shaped lifecycle object: Open starts the reader goroutine, Close closes
// the port and drains it.
type Transport interface {
	Writer
	Reader

	// Open opens the port, waits ConnectionInitDelay, then starts the
	// inbound-line reader goroutine.
	Open(ctx context.Context) error

	// Close closes the port and stops the reader goroutine. Any pending
	// Lines() consumer sees the channel close.
	Close() error

	// IsOpen reports whether the port is currently open.
	IsOpen() bool
}
