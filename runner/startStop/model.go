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

package startStop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

type runner struct {
	start FuncRun
	stop  FuncRun

	mu     sync.Mutex
	cancel context.CancelFunc

	gen       atomic.Uint64
	running   atomic.Bool
	startedAt atomic.Value // time.Time

	errMu sync.Mutex
	errs  []error
}

func (o *runner) addErr(err error) {
	if err == nil {
		return
	}
	o.errMu.Lock()
	defer o.errMu.Unlock()
	o.errs = append(o.errs, err)
}

func (o *runner) ErrorsLast() error {
	o.errMu.Lock()
	defer o.errMu.Unlock()
	if len(o.errs) == 0 {
		return nil
	}
	return o.errs[len(o.errs)-1]
}

func (o *runner) ErrorsList() []error {
	o.errMu.Lock()
	defer o.errMu.Unlock()
	out := make([]error, len(o.errs))
	copy(out, o.errs)
	return out
}

func (o *runner) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
	}
	c, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.mu.Unlock()

	g := o.gen.Add(1)
	o.startedAt.Store(time.Now())
	o.running.Store(true)

	go func() {
		defer func() {
			if o.gen.Load() == g {
				o.running.Store(false)
			}
		}()

		if o.start == nil {
			o.addErr(errors.New("startStop: invalid start function"))
			return
		}

		o.addErr(o.start(c))
	}()

	return nil
}

func (o *runner) Stop(ctx context.Context) error {
	o.mu.Lock()
	cancel := o.cancel
	o.cancel = nil
	o.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	go func() {
		if o.stop == nil {
			o.addErr(errors.New("startStop: invalid stop function"))
			return
		}
		o.addErr(o.stop(ctx))
	}()

	return nil
}

func (o *runner) Restart(ctx context.Context) error {
	_ = o.Stop(ctx)
	return o.Start(ctx)
}

func (o *runner) IsRunning() bool {
	return o.running.Load()
}

func (o *runner) Uptime() time.Duration {
	if !o.running.Load() {
		return 0
	}
	t, ok := o.startedAt.Load().(time.Time)
	if !ok || t.IsZero() {
		return 0
	}
	return time.Since(t)
}
