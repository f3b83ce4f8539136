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
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nabbar/grbl-engine/ioutils/delim"
	"github.com/nabbar/grbl-engine/runner/startStop"
)

// ErrClosed is returned by Write/WriteRealtime when the port is not open.
var ErrClosed = errors.New("transport: port not open")

const linesChanBuffer = 64

type transport struct {
	cfg    Settings
	opener PortOpener

	run startStop.StartStop

	mu    sync.Mutex
	port  Port
	lines chan Line

	isOpen atomic.Bool
}

// New returns a Transport bound to cfg, using opener to acquire the
// underlying Port on Open. Production callers pass OpenSerialPort (backed
// by github.com/tarm/serial); tests pass a fake from transporttest.
func New(cfg Settings, opener PortOpener) Transport {
	if opener == nil {
		opener = OpenSerialPort
	}

	return &transport{
		cfg:    cfg.withDefaults(),
		opener: opener,
	}
}

func (t *transport) Open(ctx context.Context) error {
	p, err := t.opener(t.cfg)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.port = p
	t.lines = make(chan Line, linesChanBuffer)
	t.mu.Unlock()

	if t.cfg.ConnectionInitDelay > 0 {
		select {
		case <-time.After(t.cfg.ConnectionInitDelay):
		case <-ctx.Done():
			_ = p.Close()
			return ctx.Err()
		}
	}

	t.run = startStop.New(t.readLoop, t.stopLoop)
	if err = t.run.Start(ctx); err != nil {
		return err
	}

	t.isOpen.Store(true)
	return nil
}

func (t *transport) readLoop(ctx context.Context) error {
	t.mu.Lock()
	p := t.port
	out := t.lines
	t.mu.Unlock()

	if p == nil {
		return ErrClosed
	}

	bd := delim.New(io.NopCloser(p), '\n', t.cfg.BufferSize, true)
	defer close(out)
	defer bd.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		b, err := bd.ReadBytes()
		if len(b) > 0 {
			if line, ok := cleanLine(b); ok {
				select {
				case out <- Line{Raw: line, At: time.Now()}:
				case <-ctx.Done():
					return nil
				}
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func (t *transport) stopLoop(_ context.Context) error {
	t.mu.Lock()
	p := t.port
	t.port = nil
	t.mu.Unlock()

	t.isOpen.Store(false)

	if p == nil {
		return nil
	}
	return p.Close()
}

// cleanLine strips the trailing line ending and reports whether the
// remaining content is non-empty, per the "empty lines are dropped" rule.
func cleanLine(b []byte) (string, bool) {
	s := strings.TrimRight(string(b), "\r\n")
	if s == "" {
		return "", false
	}
	return s, true
}

func (t *transport) Close() error {
	if t.run == nil {
		return nil
	}
	return t.run.Stop(context.Background())
}

func (t *transport) IsOpen() bool {
	return t.isOpen.Load()
}

func (t *transport) Lines() <-chan Line {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lines
}

func (t *transport) Write(line string) error {
	if !t.isOpen.Load() {
		return ErrClosed
	}

	t.mu.Lock()
	p := t.port
	t.mu.Unlock()

	if p == nil {
		return ErrClosed
	}

	_, err := p.Write([]byte(line + t.cfg.LineEnding))
	return err
}

func (t *transport) WriteRealtime(b byte) error {
	if !t.isOpen.Load() {
		return ErrClosed
	}

	t.mu.Lock()
	p := t.port
	t.mu.Unlock()

	if p == nil {
		return ErrClosed
	}

	_, err := p.Write([]byte{b})
	return err
}
