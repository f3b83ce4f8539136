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

package command

import (
	"time"
)

// EngineStatus is a point-in-time snapshot produced by a synchronous
// request/response round-trip through the dispatcher channel — never by
// reading shared fields from another goroutine.
type EngineStatus struct {
	// QueueDepth is the number of normal commands waiting to be dispatched.
	QueueDepth int

	// InFlightID is the ID of the command currently in flight, or 0.
	InFlightID uint64

	// PendingCount is QueueDepth plus one if a command is in flight.
	PendingCount int

	// LastResponseAge is how long ago the dispatcher last correlated any
	// inbound response, or zero if none yet.
	LastResponseAge time.Duration
}
