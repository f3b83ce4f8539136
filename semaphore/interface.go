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

// Package semaphore bounds the number of concurrent workers with a weighted
// semaphore, built on golang.org/x/sync/semaphore.
package semaphore

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Semaphore gates concurrent work at a fixed weight and lets a caller wait
// for every acquired worker to release.
type Semaphore interface {
	// NewWorker blocks until a slot is available or ctx is cancelled.
	NewWorker() error

	// NewWorkerTry acquires a slot without blocking, returning false if none
	// is immediately available.
	NewWorkerTry() bool

	// DeferWorker releases a slot acquired by NewWorker/NewWorkerTry.
	DeferWorker()

	// WaitAll blocks until every acquired slot has been released.
	WaitAll() error

	// DeferMain blocks until every acquired slot has been released, like
	// WaitAll without the error result; call via defer right after New.
	DeferMain()

	// Weighted returns the configured concurrency weight.
	Weighted() int64

	// Clone returns a new, independent Semaphore with the same weight.
	Clone() Semaphore
}

// New returns a Semaphore allowing at most max concurrent workers. Zero
// falls back to MaxSimultaneous; a negative max means unlimited. The
// progress flag is accepted for API compatibility but has no effect: this
// implementation never renders a progress bar.
func New(ctx context.Context, max int64, _ bool) Semaphore {
	weight := max
	if weight == 0 {
		weight = MaxSimultaneous()
	}
	if weight < 0 {
		weight = unlimitedWeight
	}

	return &sem{
		ctx: ctx,
		max: max,
		wei: semaphore.NewWeighted(weight),
	}
}
