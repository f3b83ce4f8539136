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

package semaphore

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

const unlimitedWeight = int64(1) << 32

var simultaneous atomic.Int64

// MaxSimultaneous returns the configured default concurrency limit, falling
// back to the number of logical CPUs when none was set via SetSimultaneous.
func MaxSimultaneous() int64 {
	if v := simultaneous.Load(); v > 0 {
		return v
	}
	return int64(runtime.NumCPU())
}

// SetSimultaneous overrides the default concurrency limit and returns the
// value actually stored. Non-positive values are rejected and the previous
// (or computed default) limit is returned instead.
func SetSimultaneous(n int64) int64 {
	if n <= 0 {
		return MaxSimultaneous()
	}
	simultaneous.Store(n)
	return n
}

type sem struct {
	ctx context.Context
	max int64
	wei *semaphore.Weighted
	wg  sync.WaitGroup
}

func (o *sem) NewWorker() error {
	if err := o.wei.Acquire(o.ctx, 1); err != nil {
		return err
	}
	o.wg.Add(1)
	return nil
}

func (o *sem) NewWorkerTry() bool {
	if !o.wei.TryAcquire(1) {
		return false
	}
	o.wg.Add(1)
	return true
}

func (o *sem) DeferWorker() {
	o.wei.Release(1)
	o.wg.Done()
}

func (o *sem) WaitAll() error {
	o.wg.Wait()
	return nil
}

func (o *sem) DeferMain() {
	o.wg.Wait()
}

func (o *sem) Weighted() int64 {
	return o.max
}

func (o *sem) Clone() Semaphore {
	return New(o.ctx, o.max, false)
}
