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

// Package transporttest provides a scripted, in-memory stand-in for
// transport.Transport so command, poller, and supervisor can be exercised
// without a real serial device.
package transporttest

import (
	"io"
	"sync"

	"github.com/nabbar/grbl-engine/transport"
)

// NewFakePort returns a transport.Port whose writes are captured (read back
// with Written()) and whose reads are fed by Feed/FeedLine.
func NewFakePort() *FakePort {
	r, w := io.Pipe()
	return &FakePort{
		reader: r,
		writer: w,
	}
}

// FakePort implements transport.Port. Feed/FeedLine push bytes that will
// be read back by the transport's internal line-framing reader; Written
// returns everything written to the port so far, for assertions.
type FakePort struct {
	mu     sync.Mutex
	writes [][]byte
	reader *io.PipeReader
	writer *io.PipeWriter
	closed bool
}

var _ transport.Port = (*FakePort)(nil)

func (f *FakePort) Read(p []byte) (int, error) {
	return f.reader.Read(p)
}

func (f *FakePort) Write(p []byte) (int, error) {
	f.mu.Lock()
	cp := append([]byte(nil), p...)
	f.writes = append(f.writes, cp)
	f.mu.Unlock()
	return len(p), nil
}

func (f *FakePort) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	f.mu.Unlock()

	_ = f.writer.Close()
	return f.reader.Close()
}

// Feed pushes raw bytes into the simulated inbound stream.
func (f *FakePort) Feed(b []byte) {
	go func() {
		_, _ = f.writer.Write(b)
	}()
}

// FeedLine pushes s followed by "\r\n" into the simulated inbound stream,
// mimicking one controller response line.
func (f *FakePort) FeedLine(s string) {
	f.Feed([]byte(s + "\r\n"))
}

// Written returns every byte slice handed to Write, oldest first.
func (f *FakePort) Written() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.writes))
	copy(out, f.writes)
	return out
}

// Opener returns a transport.PortOpener that always hands back p, ignoring
// the requested Settings.Port — the typical injection point for
// transport.New in tests.
func Opener(p *FakePort) transport.PortOpener {
	return func(_ transport.Settings) (transport.Port, error) {
		return p, nil
	}
}
