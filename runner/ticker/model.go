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

package ticker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

type tck struct {
	mu sync.Mutex
	d  time.Duration
	fn FuncTick

	cancel context.CancelFunc

	gen       atomic.Uint64
	running   atomic.Bool
	startedAt atomic.Value // time.Time
	interval  atomic.Int64 // current period in nanoseconds, read by run()

	errMu sync.Mutex
	errs  []error
}

func (o *tck) addErr(err error) {
	if err == nil {
		return
	}
	o.errMu.Lock()
	defer o.errMu.Unlock()
	o.errs = append(o.errs, err)
}

func (o *tck) ErrorsLast() error {
	o.errMu.Lock()
	defer o.errMu.Unlock()
	if len(o.errs) == 0 {
		return nil
	}
	return o.errs[len(o.errs)-1]
}

func (o *tck) ErrorsList() []error {
	o.errMu.Lock()
	defer o.errMu.Unlock()
	out := make([]error, len(o.errs))
	copy(out, o.errs)
	return out
}

// SetInterval changes the tick period. If the ticker is running, the new
// period is picked up on the ticker's very next fire (via time.Ticker.Reset)
// rather than requiring a Stop/Start cycle — the fast/slow switch a status
// poller needs can't afford to drop ticks across a restart.
func (o *tck) SetInterval(d time.Duration) {
	d = sanitizeDuration(d)

	o.mu.Lock()
	o.d = d
	o.mu.Unlock()

	o.interval.Store(int64(d))
}

func (o *tck) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
	}
	c, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	d := o.d
	o.mu.Unlock()

	o.errMu.Lock()
	o.errs = nil
	o.errMu.Unlock()

	o.interval.Store(int64(d))
	g := o.gen.Add(1)
	o.startedAt.Store(time.Now())
	o.running.Store(true)

	go o.run(c, d, g)

	return nil
}

func (o *tck) run(ctx context.Context, d time.Duration, g uint64) {
	t := time.NewTicker(d)
	defer t.Stop()
	defer func() {
		// a replaced instance must not clear the flag of its successor
		if o.gen.Load() == g {
			o.running.Store(false)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if cur := time.Duration(o.interval.Load()); cur > 0 && cur != d {
				d = cur
				t.Reset(d)
			}

			if o.fn == nil {
				o.addErr(errors.New("ticker: invalid tick function"))
				continue
			}
			o.addErr(o.fn(ctx, t))
		}
	}
}

func (o *tck) Stop(ctx context.Context) error {
	o.mu.Lock()
	cancel := o.cancel
	o.cancel = nil
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	o.running.Store(false)
	o.startedAt.Store(time.Time{})

	return nil
}

func (o *tck) Restart(ctx context.Context) error {
	_ = o.Stop(ctx)
	return o.Start(ctx)
}

func (o *tck) IsRunning() bool {
	return o.running.Load()
}

func (o *tck) Uptime() time.Duration {
	if !o.running.Load() {
		return 0
	}
	t, ok := o.startedAt.Load().(time.Time)
	if !ok || t.IsZero() {
		return 0
	}
	return time.Since(t)
}
