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

package event

import (
	"sync/atomic"

	libatm "github.com/nabbar/grbl-engine/atomic"
)

// subscriberBuffer is the per-subscriber channel depth. A subscriber that
// falls this far behind starts losing events rather than blocking Publish.
const subscriberBuffer = 32

// Bus fans out Events to any number of subscribers without letting a slow
// subscriber stall the publisher. Built on atomic.NewMapTyped as a keyed
// registry of channels instead of a raw sync.Map, so Unsubscribe is a
// single Delete.
type Bus interface {
	// Publish fans out evt to every current subscriber. Publish never
	// blocks: a subscriber whose channel is full drops the event and the
	// drop is counted (see Dropped).
	Publish(evt Event)

	// Subscribe returns a channel of future Events and a cancel func that
	// unsubscribes and closes the channel. Safe to call from any goroutine.
	Subscribe() (<-chan Event, func())

	// Dropped reports the total number of events dropped across all
	// subscribers because a subscriber's channel was full.
	Dropped() uint64
}

type bus struct {
	subs    libatm.MapTyped[uint64, chan Event]
	nextID  atomic.Uint64
	dropped atomic.Uint64
}

// NewBus returns an empty Bus.
func NewBus() Bus {
	return &bus{subs: libatm.NewMapTyped[uint64, chan Event]()}
}

func (b *bus) Publish(evt Event) {
	b.subs.Range(func(id uint64, ch chan Event) bool {
		select {
		case ch <- evt:
		default:
			b.dropped.Add(1)
		}
		return true
	})
}

func (b *bus) Subscribe() (<-chan Event, func()) {
	id := b.nextID.Add(1)
	ch := make(chan Event, subscriberBuffer)
	b.subs.Store(id, ch)

	cancel := func() {
		if _, ok := b.subs.LoadAndDelete(id); ok {
			close(ch)
		}
	}

	return ch, cancel
}

func (b *bus) Dropped() uint64 {
	return b.dropped.Load()
}
