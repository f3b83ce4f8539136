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

// Package poller periodically issues the real-time status query ("?")
// through the Command Engine's immediate path, adapting its interval to the
// machine's observed run state. It is built on a runner/ticker.Ticker
// so Start/Stop/Restart/Uptime come for free; SetInterval's live-Reset
// behavior is what lets the fast/slow switch happen without losing ticks.
package poller

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/nabbar/grbl-engine/command"
	"github.com/nabbar/grbl-engine/grblerr"
	"github.com/nabbar/grbl-engine/runner/ticker"
	"github.com/nabbar/grbl-engine/state"
)

// Default intervals, missed-poll limit, poll timeout, and query line.
const (
	DefaultFastInterval   = 100 * time.Millisecond
	DefaultSlowInterval   = 500 * time.Millisecond
	DefaultMaxMissedPolls = 5
	DefaultPollTimeout    = 2 * time.Second
	StatusQueryLine       = "?"
)

// Submitter is the narrow Command Engine surface the poller drives: it only
// ever issues the immediate "?" query, never a queued command.
type Submitter interface {
	SubmitImmediate(ctx context.Context, line string, opts command.Options) grblerr.Result
}

// Config configures a Poller at construction.
type Config struct {
	Fast        time.Duration
	Slow        time.Duration
	MaxMissed   int
	PollTimeout time.Duration
	OnPollError func(err error)
	OnMaxMissed func(count int)
}

func (c Config) withDefaults() Config {
	if c.Fast <= 0 {
		c.Fast = DefaultFastInterval
	}
	if c.Slow <= 0 {
		c.Slow = DefaultSlowInterval
	}
	if c.MaxMissed <= 0 {
		c.MaxMissed = DefaultMaxMissedPolls
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = DefaultPollTimeout
	}
	return c
}

// Poller is the C4 Status Poller: a Ticker whose period tracks the live
// MachineState and whose tick body submits "?" through the immediate path,
// skipping (not queueing) a tick while one is already outstanding.
type Poller interface {
	// Start begins polling at the interval matching the current state.
	Start(ctx context.Context) error

	// Stop halts polling. Safe to call when not running, and the supervisor
	// calls it on TransportLost so polling pauses until reconnect resumes it.
	Stop() error

	// IsRunning reports whether the poller is currently ticking.
	IsRunning() bool

	// OnStateObserved re-derives the fast/slow interval from st and applies
	// it live via the underlying Ticker's SetInterval. The Supervisor calls
	// this from state.Manager's WithStateChanged hook.
	OnStateObserved(st state.MachineState)

	// MissedCount reports the current consecutive-poll-failure count.
	MissedCount() int
}

type poller struct {
	sub Submitter
	cfg Config
	t   ticker.Ticker

	outstanding atomic.Bool
	missed      atomic.Int64
}

// New returns a Poller that drives sub's immediate path. cfg's zero fields
// take the defaults above.
func New(sub Submitter, cfg Config) Poller {
	p := &poller{sub: sub, cfg: cfg.withDefaults()}
	p.t = ticker.New(p.cfg.Slow, p.tick)
	return p
}

func (p *poller) Start(ctx context.Context) error {
	p.missed.Store(0)
	return p.t.Start(ctx)
}

func (p *poller) Stop() error {
	return p.t.Stop(context.Background())
}

func (p *poller) IsRunning() bool {
	return p.t.IsRunning()
}

func (p *poller) MissedCount() int {
	return int(p.missed.Load())
}

func (p *poller) OnStateObserved(st state.MachineState) {
	if st.IsFastPoll() {
		p.t.SetInterval(p.cfg.Fast)
	} else {
		p.t.SetInterval(p.cfg.Slow)
	}
}

// tick is the Ticker's FuncTick body: the B2 coalescing rule lives here as
// a single atomic.Bool, checked and set before the query is ever submitted.
func (p *poller) tick(ctx context.Context, _ *time.Ticker) error {
	if !p.outstanding.CompareAndSwap(false, true) {
		return nil
	}
	defer p.outstanding.Store(false)

	qctx, cancel := context.WithTimeout(ctx, p.cfg.PollTimeout)
	defer cancel()

	res := p.sub.SubmitImmediate(qctx, StatusQueryLine, command.Options{Timeout: p.cfg.PollTimeout})

	if res.Err != nil {
		n := p.missed.Add(1)
		if p.cfg.OnPollError != nil {
			p.cfg.OnPollError(res.Err)
		}
		if int(n) == p.cfg.MaxMissed && p.cfg.OnMaxMissed != nil {
			p.cfg.OnMaxMissed(int(n))
		}
		return res.Err
	}

	p.missed.Store(0)
	return nil
}
