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
	"errors"
	"time"

	"github.com/nabbar/grbl-engine/grblerr"
	"github.com/nabbar/grbl-engine/response"
)

// run is the dispatcher goroutine body: every mutation of the pending queue,
// the terminal-response FIFO, and the status waiter happens here and nowhere
// else.
//
// Correlation model: the protocol is strictly request/response for line
// commands, so termFIFO holds, in write order, every command still owed a
// terminal response (the at-most-one in-flight normal command, plus any
// immediate line commands written ahead of it). Each inbound Ok/Error/Alarm
// pops and completes the head. The "?" query is different: it is answered by
// the next Status report, not a terminal line, so it has its own single
// waiter slot (statusWaiter) and never enters termFIFO.
func (e *engine) run(ctx context.Context) {
	var (
		queue          []*pendingCmd
		termFIFO       []*pendingCmd
		normalInFlight *pendingCmd
		statusWaiter   *pendingCmd
		lastResponseAt time.Time
		timeoutCh      = make(chan *pendingCmd, 4)
	)

	fireTimeout := func(p *pendingCmd) {
		select {
		case timeoutCh <- p:
		default:
		}
	}

	startTimer := func(p *pendingCmd) {
		d := p.cmd.Options().Timeout
		if d <= 0 {
			d = DefaultTimeout
		}
		p.timer = time.AfterFunc(d, func() { fireTimeout(p) })
	}

	releaseNormal := func(p *pendingCmd) {
		if normalInFlight == p {
			normalInFlight = nil
			e.permits.Store(0)
			e.sem.DeferWorker()
		}
	}

	removeFromTerm := func(p *pendingCmd) bool {
		for i, q := range termFIFO {
			if q == p {
				termFIFO = append(termFIFO[:i], termFIFO[i+1:]...)
				return true
			}
		}
		return false
	}

	var dispatchNext func()
	dispatchNext = func() {
		if normalInFlight != nil || len(queue) == 0 {
			return
		}

		p := queue[0]
		queue = queue[1:]

		if p.cmd.Options().Timeout < 0 {
			p.result <- grblerr.Result{Err: grblerr.New(grblerr.KindTimeout).WithLine(p.cmd.Line())}
			dispatchNext()
			return
		}

		if !e.sem.NewWorkerTry() {
			queue = append([]*pendingCmd{p}, queue...)
			return
		}

		if err := e.w.Write(p.cmd.Line()); err != nil {
			e.sem.DeferWorker()
			p.result <- grblerr.Result{Err: grblerr.New(grblerr.KindTransportLost).WithLine(p.cmd.Line()).WithParent(err)}
			dispatchNext()
			return
		}

		p.writtenAt = time.Now()
		startTimer(p)
		normalInFlight = p
		termFIFO = append(termFIFO, p)
		e.permits.Store(1)
	}

	// completeHead pops termFIFO's head and resolves it with res (unless it
	// was already cancelled by AbortAll, in which case the stale response is
	// discarded), then lets the next queued command dispatch.
	completeHead := func(res grblerr.Result) {
		if len(termFIFO) == 0 {
			return
		}
		p := termFIFO[0]
		termFIFO = termFIFO[1:]

		if p.timer != nil {
			p.timer.Stop()
		}
		if !p.cancelled {
			res.Elapsed = time.Since(p.writtenAt)
			p.result <- res
		}
		releaseNormal(p)
		dispatchNext()
	}

	// cancelAll delivers a failure to every waiter. With keepSlots (abort),
	// termFIFO entries stay occupied as cancelled zombies so the
	// controller's still-pending terminal responses are consumed in order
	// and discarded, instead of being attributed to whatever dispatches
	// next; their deadline timers keep running as the fallback for
	// responses that never come. Without keepSlots (transport lost, stop),
	// no further response can arrive, so everything is cleared outright.
	cancelAll := func(kind grblerr.Kind, reason string, keepSlots bool) {
		for _, p := range queue {
			p.result <- grblerr.Result{Err: grblerr.New(kind).WithLine(p.cmd.Line()).WithParent(errors.New(reason))}
		}
		queue = nil

		if keepSlots {
			for _, p := range termFIFO {
				if !p.cancelled {
					p.result <- grblerr.Result{Err: grblerr.New(kind).WithLine(p.cmd.Line()).WithParent(errors.New(reason))}
					p.cancelled = true
				}
			}
		} else {
			for _, p := range termFIFO {
				if p.timer != nil {
					p.timer.Stop()
				}
				if !p.cancelled {
					p.result <- grblerr.Result{Err: grblerr.New(kind).WithLine(p.cmd.Line()).WithParent(errors.New(reason))}
				}
				releaseNormal(p)
			}
			termFIFO = nil
		}

		if statusWaiter != nil {
			if statusWaiter.timer != nil {
				statusWaiter.timer.Stop()
			}
			statusWaiter.result <- grblerr.Result{Err: grblerr.New(kind).WithParent(errors.New(reason))}
			statusWaiter = nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			cancelAll(grblerr.KindCancelled, "engine stopped", false)
			return

		case req := <-e.chSubmit:
			p := &pendingCmd{cmd: req.cmd, result: req.result}
			if len(queue) >= e.maxQueue {
				p.result <- grblerr.Result{Err: grblerr.Rejected(grblerr.ReasonQueueFull).WithLine(req.cmd.Line())}
				continue
			}
			queue = append(queue, p)
			dispatchNext()

		case req := <-e.chImmediate:
			p := &pendingCmd{cmd: req.cmd, result: req.result}

			if req.cmd.Options().Timeout < 0 {
				p.result <- grblerr.Result{Err: grblerr.New(grblerr.KindTimeout).WithLine(req.cmd.Line())}
				continue
			}

			// A single real-time byte ("?", "!", "~", 0x18) goes on the
			// wire unterminated; of those only "?" expects a reply (the
			// next Status report). Anything else is a line written with
			// the configured ending and owed a terminal response.
			b, isRT := realtimePayload(req.cmd.Line())

			if isRT && b == statusQueryByte && statusWaiter != nil {
				// At most one outstanding "?": the poller coalesces its
				// own ticks, this guards everyone else.
				p.result <- grblerr.Result{Err: grblerr.Rejected(grblerr.ReasonQueueFull).WithLine(req.cmd.Line())}
				continue
			}

			var werr error
			if isRT {
				werr = e.w.WriteRealtime(b)
			} else {
				werr = e.w.Write(req.cmd.Line())
			}
			if werr != nil {
				p.result <- grblerr.Result{Err: grblerr.New(grblerr.KindTransportLost).WithLine(req.cmd.Line()).WithParent(werr)}
				continue
			}
			p.writtenAt = time.Now()

			switch {
			case isRT && b == statusQueryByte:
				startTimer(p)
				statusWaiter = p
			case !isRT && req.cmd.ExpectsLineResponse():
				startTimer(p)
				termFIFO = append(termFIFO, p)
			default:
				p.result <- grblerr.Result{}
			}

		case req := <-e.chRealtime:
			req.errCh <- e.w.WriteRealtime(req.b)

		case req := <-e.chEmergency:
			if req.isByte {
				req.errCh <- e.w.WriteRealtime(req.b)
			} else {
				req.errCh <- e.w.Write(req.line)
			}

		case req := <-e.chAbort:
			cancelAll(req.kind, req.reason, req.kind == grblerr.KindCancelled)
			close(req.done)

		case req := <-e.chStatus:
			st := EngineStatus{QueueDepth: len(queue), PendingCount: len(queue)}
			if normalInFlight != nil {
				st.InFlightID = normalInFlight.cmd.ID()
				st.PendingCount++
			}
			if !lastResponseAt.IsZero() {
				st.LastResponseAge = time.Since(lastResponseAt)
			}
			req.result <- st

		case p := <-timeoutCh:
			if statusWaiter == p {
				statusWaiter.result <- grblerr.Result{Err: grblerr.New(grblerr.KindTimeout).WithLine(p.cmd.Line())}
				statusWaiter = nil
				continue
			}
			// A stale fire (the command completed just as its timer went
			// off) finds p in neither slot and must not resolve anything
			// twice.
			if !removeFromTerm(p) {
				continue
			}
			if !p.cancelled {
				p.result <- grblerr.Result{Err: grblerr.New(grblerr.KindTimeout).WithLine(p.cmd.Line())}
			}
			releaseNormal(p)
			dispatchNext()

		case r := <-e.chInbound:
			lastResponseAt = time.Now()

			if r.Kind == response.KindAlarm && e.onAlarm != nil && r.Alarm != nil {
				e.onAlarm(*r.Alarm)
			}

			if r.Kind == response.KindStatus && statusWaiter != nil {
				if statusWaiter.timer != nil {
					statusWaiter.timer.Stop()
				}
				statusWaiter.result <- grblerr.Result{Response: r, Elapsed: time.Since(statusWaiter.writtenAt)}
				statusWaiter = nil
				continue
			}

			if !r.IsTerminal() {
				continue
			}

			switch r.Kind {
			case response.KindOk:
				completeHead(grblerr.Result{Response: r})
			case response.KindError:
				code := 0
				if r.Error != nil {
					code = *r.Error
				}
				line := ""
				if len(termFIFO) > 0 {
					line = termFIFO[0].cmd.Line()
				}
				completeHead(grblerr.Result{Err: grblerr.New(grblerr.KindControllerError).WithCode(code).WithLine(line)})
			case response.KindAlarm:
				code := 0
				if r.Alarm != nil {
					code = *r.Alarm
				}
				line := ""
				if len(termFIFO) > 0 {
					line = termFIFO[0].cmd.Line()
				}
				completeHead(grblerr.Result{Err: grblerr.New(grblerr.KindAlarm).WithCode(code).WithLine(line)})
			}
		}
	}
}
