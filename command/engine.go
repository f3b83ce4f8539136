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
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nabbar/grbl-engine/grblerr"
	"github.com/nabbar/grbl-engine/response"
	"github.com/nabbar/grbl-engine/semaphore"
	"github.com/nabbar/grbl-engine/transport"
)

// DefaultTimeout is used when a Command's Options.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// DefaultMaxQueueSize is used when Engine is constructed with maxQueue <= 0.
const DefaultMaxQueueSize = 64

// Engine is the single dispatcher owning the pending FIFO, the
// terminal-response FIFO (in-flight normal command plus immediate line
// commands), and the "?" status-waiter slot. Every mutation funnels through
// one goroutine's select loop; nothing outside it touches engine state
// directly.
type Engine interface {
	// Start launches the dispatcher goroutine.
	Start(ctx context.Context) error

	// Stop stops the dispatcher, draining any pending work with Cancelled.
	Stop() error

	// Submit enqueues a normal command and blocks until it resolves, ctx is
	// cancelled, or the engine is stopped. A synchronous rejection (queue
	// full, alarm latched, not connected) never touches the transport.
	Submit(ctx context.Context, line string, opts Options) grblerr.Result

	// SubmitImmediate writes line ahead of the queue, bypassing it without
	// displacing the in-flight command. A "?" payload goes on the wire as a
	// single unterminated byte and resolves with the next Status report;
	// any other non-empty line is written with the configured ending and
	// resolves with its terminal response, in write order relative to the
	// in-flight command. The other real-time bytes ("!", "~", 0x18) are
	// written unterminated and resolve immediately, fire-and-forget.
	SubmitImmediate(ctx context.Context, line string, opts Options) grblerr.Result

	// SubmitRealtime writes a single unterminated byte with no queueing and
	// no correlation.
	SubmitRealtime(b byte) error

	// EmergencyWrite writes payload directly to the transport through the
	// dispatcher goroutine (preserving single-writer discipline) but ahead
	// of and outside the pending FIFO and in-flight slot entirely: no
	// queueing, no correlation, no SetAcceptingSubmissions/alarm-latch
	// check. isByte selects a single unterminated control byte (b) vs. a
	// line (line) written with the configured line ending. It is always
	// attempted, even after Stop, since an emergency stop must reach the
	// port at best effort regardless of lifecycle state.
	EmergencyWrite(isByte bool, b byte, line string) error

	// AbortAll drains the pending queue and any in-flight command,
	// completing each with Cancelled{reason}. It does not reset the
	// controller; an in-flight command's still-pending controller response
	// is awaited and discarded so it cannot be attributed to later work.
	AbortAll(reason string)

	// TransportLost drains the pending queue, the in-flight slot, and any
	// immediate waiter with TransportLost{reason} after the serial link has
	// failed. Unlike AbortAll nothing is left awaiting a response: none can
	// arrive.
	TransportLost(reason string)

	// Status returns a point-in-time EngineStatus.
	Status() EngineStatus

	// Feed delivers one parsed inbound Response to the dispatcher for
	// correlation. The supervisor calls this for every line read from
	// transport, in addition to forwarding the same Response to state.
	Feed(r response.Response)

	// SetAcceptingSubmissions toggles whether Submit/SubmitImmediate accept
	// new work. The supervisor sets this true on entry to Connected and
	// false on Disconnected/Draining.
	SetAcceptingSubmissions(accepting bool)

	// SetAlarmLatched toggles the synchronous AlarmLatched rejection. The
	// supervisor mirrors state.Manager's alarm latch here.
	SetAlarmLatched(latched bool)

	// InFlightPermits reports how many in-flight semaphore slots are
	// currently held (0 or 1) — a second, independently-checkable
	// enforcement point for the at-most-one-in-flight invariant.
	InFlightPermits() int64
}

// NewEngine returns an Engine writing through w, gating normal-command
// dispatch with a weight-1 semaphore, and bounding the pending queue at
// maxQueue (DefaultMaxQueueSize when <= 0).
func NewEngine(w transport.Writer, maxQueue int, onAlarm func(code int)) Engine {
	if maxQueue <= 0 {
		maxQueue = DefaultMaxQueueSize
	}

	return &engine{
		w:        w,
		maxQueue: maxQueue,
		onAlarm:  onAlarm,
		sem:      semaphore.New(context.Background(), 1, false),

		chSubmit:    make(chan submitReq),
		chImmediate: make(chan submitReq),
		chRealtime:  make(chan realtimeReq),
		chEmergency: make(chan emergencyReq),
		chAbort:     make(chan abortReq),
		chStatus:    make(chan statusReq),
		chInbound:   make(chan response.Response, 16),
		done:        closedChan(),
	}
}

// closedChan gives a fresh Engine a done channel that already reads as
// closed, so Submit and friends fail fast with NotConnected before the
// first Start instead of blocking on a dispatcher that isn't running.
func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type submitReq struct {
	cmd    Command
	result chan grblerr.Result
}

type realtimeReq struct {
	b     byte
	errCh chan error
}

type emergencyReq struct {
	isByte bool
	b      byte
	line   string
	errCh  chan error
}

type abortReq struct {
	kind   grblerr.Kind
	reason string
	done   chan struct{}
}

type statusReq struct {
	result chan EngineStatus
}

type pendingCmd struct {
	cmd       Command
	result    chan grblerr.Result
	writtenAt time.Time
	timer     *time.Timer

	// cancelled marks an in-flight command whose Cancelled result has
	// already been delivered by AbortAll. The slot stays occupied until the
	// controller's terminal response (or the deadline) arrives, so that
	// response is discarded instead of being attributed to the next queued
	// command.
	cancelled bool
}

type engine struct {
	w        transport.Writer
	maxQueue int
	onAlarm  func(code int)
	sem      semaphore.Semaphore

	accepting atomic.Bool
	alarm     atomic.Bool
	permits   atomic.Int64

	mu sync.Mutex

	chSubmit    chan submitReq
	chImmediate chan submitReq
	chRealtime  chan realtimeReq
	chEmergency chan emergencyReq
	chAbort     chan abortReq
	chStatus    chan statusReq
	chInbound   chan response.Response

	cancel context.CancelFunc
	done   chan struct{}
}

func (e *engine) Start(ctx context.Context) error {
	c, cancel := context.WithCancel(ctx)
	ch := make(chan struct{})

	e.mu.Lock()
	e.cancel = cancel
	e.done = ch
	e.mu.Unlock()

	go func() {
		defer close(ch)
		e.run(c)
	}()
	return nil
}

func (e *engine) Stop() error {
	e.mu.Lock()
	cancel, ch := e.cancel, e.done
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	<-ch
	return nil
}

// doneCh snapshots the current lifecycle channel so callers racing a
// Start/Stop observe one consistent generation.
func (e *engine) doneCh() chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.done
}

func (e *engine) rejectSync(cmd Command) *grblerr.Err {
	if !e.accepting.Load() {
		return grblerr.Rejected(grblerr.ReasonNotConnected).WithLine(cmd.Line())
	}
	if e.alarm.Load() && cmd.Category() == CategoryNormal {
		return grblerr.Rejected(grblerr.ReasonAlarmLatched).WithLine(cmd.Line())
	}
	return nil
}

func (e *engine) Submit(ctx context.Context, line string, opts Options) grblerr.Result {
	cmd := New(line, opts)

	if rej := e.rejectSync(cmd); rej != nil {
		return grblerr.Result{ID: cmd.ID(), Err: rej}
	}

	req := submitReq{cmd: cmd, result: make(chan grblerr.Result, 1)}

	select {
	case e.chSubmit <- req:
	case <-ctx.Done():
		return grblerr.Result{ID: cmd.ID(), Err: grblerr.New(grblerr.KindCancelled).WithLine(line)}
	case <-e.doneCh():
		return grblerr.Result{ID: cmd.ID(), Err: grblerr.Rejected(grblerr.ReasonNotConnected).WithLine(line)}
	}

	select {
	case res := <-req.result:
		res.ID = cmd.ID()
		return res
	case <-ctx.Done():
		return grblerr.Result{ID: cmd.ID(), Err: grblerr.New(grblerr.KindCancelled).WithLine(line)}
	}
}

func (e *engine) SubmitImmediate(ctx context.Context, line string, opts Options) grblerr.Result {
	cmd := NewImmediate(line, opts)

	if rej := e.rejectSync(cmd); rej != nil {
		return grblerr.Result{ID: cmd.ID(), Err: rej}
	}

	req := submitReq{cmd: cmd, result: make(chan grblerr.Result, 1)}

	select {
	case e.chImmediate <- req:
	case <-ctx.Done():
		return grblerr.Result{ID: cmd.ID(), Err: grblerr.New(grblerr.KindCancelled).WithLine(line)}
	case <-e.doneCh():
		return grblerr.Result{ID: cmd.ID(), Err: grblerr.Rejected(grblerr.ReasonNotConnected).WithLine(line)}
	}

	select {
	case res := <-req.result:
		res.ID = cmd.ID()
		return res
	case <-ctx.Done():
		return grblerr.Result{ID: cmd.ID(), Err: grblerr.New(grblerr.KindCancelled).WithLine(line)}
	}
}

func (e *engine) SubmitRealtime(b byte) error {
	req := realtimeReq{b: b, errCh: make(chan error, 1)}

	select {
	case e.chRealtime <- req:
	case <-e.doneCh():
		return grblerr.Rejected(grblerr.ReasonNotConnected)
	}

	return <-req.errCh
}

func (e *engine) EmergencyWrite(isByte bool, b byte, line string) error {
	req := emergencyReq{isByte: isByte, b: b, line: line, errCh: make(chan error, 1)}

	select {
	case e.chEmergency <- req:
	case <-e.doneCh():
		if isByte {
			return e.w.WriteRealtime(b)
		}
		return e.w.Write(line)
	}

	return <-req.errCh
}

func (e *engine) AbortAll(reason string) {
	e.failAll(grblerr.KindCancelled, reason)
}

func (e *engine) TransportLost(reason string) {
	e.failAll(grblerr.KindTransportLost, reason)
}

func (e *engine) failAll(kind grblerr.Kind, reason string) {
	req := abortReq{kind: kind, reason: reason, done: make(chan struct{})}

	select {
	case e.chAbort <- req:
		<-req.done
	case <-e.doneCh():
	}
}

func (e *engine) Status() EngineStatus {
	req := statusReq{result: make(chan EngineStatus, 1)}

	select {
	case e.chStatus <- req:
		return <-req.result
	case <-e.doneCh():
		return EngineStatus{}
	}
}

func (e *engine) Feed(r response.Response) {
	select {
	case e.chInbound <- r:
	case <-e.doneCh():
	}
}

func (e *engine) SetAcceptingSubmissions(accepting bool) {
	e.accepting.Store(accepting)
}

func (e *engine) SetAlarmLatched(latched bool) {
	e.alarm.Store(latched)
}

func (e *engine) InFlightPermits() int64 {
	return e.permits.Load()
}
