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

package supervisor

import (
	"context"
	"errors"
	"time"

	"github.com/nabbar/grbl-engine/event"
	"github.com/nabbar/grbl-engine/response"
	"github.com/nabbar/grbl-engine/transport"
)

// ErrAlreadyConnecting is returned by Connect when the lifecycle is already
// Opening or Connected.
var ErrAlreadyConnecting = errors.New("supervisor: already connecting or connected")

// ErrNotConnected is returned by operations that require a live transport.
var ErrNotConnected = errors.New("supervisor: not connected")

func (s *supervisor) Connect(ctx context.Context, port string) error {
	s.mu.Lock()
	if cur := LifecycleState(s.lifecycle.Load()); cur == Opening || cur == Connected {
		s.mu.Unlock()
		return ErrAlreadyConnecting
	}
	s.setState(Opening)
	s.mu.Unlock()

	settings := transport.Settings{
		Port:       port,
		BaudRate:   s.cfg.Serial.BaudRate,
		DataBits:   s.cfg.Serial.DataBits,
		StopBits:   s.cfg.Serial.StopBits,
		Parity:     s.cfg.Serial.Parity,
		LineEnding: s.cfg.LineEnding,
		BufferSize: s.cfg.BufferSize,
		AutoOpen:   s.cfg.Serial.AutoOpen,
	}

	t := transport.New(settings, s.opener)
	if err := t.Open(ctx); err != nil {
		s.setState(Disconnected)
		return err
	}

	s.mu.Lock()
	s.transport = t
	s.mu.Unlock()
	s.writer.set(t)

	routeCtx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancelRoute = cancel
	s.mu.Unlock()

	welcomeCh := make(chan struct{}, 1)
	go s.routeLoop(routeCtx, welcomeCh)

	initTimeout := time.Duration(s.cfg.Timeouts.Initialization)
	if initTimeout <= 0 {
		initTimeout = 2 * time.Second
	}

	select {
	case <-welcomeCh:
	case <-time.After(initTimeout):
		s.logWarn("grbl supervisor: no welcome banner before initialization timeout", port)
	case <-ctx.Done():
		cancel()
		_ = t.Close()
		s.writer.set(nil)
		s.setState(Disconnected)
		return ctx.Err()
	}

	if err := s.engine.Start(routeCtx); err != nil {
		cancel()
		_ = t.Close()
		s.writer.set(nil)
		s.setState(Disconnected)
		return err
	}
	if err := s.poller.Start(routeCtx); err != nil {
		cancel()
		_ = t.Close()
		s.writer.set(nil)
		s.setState(Disconnected)
		return err
	}

	s.engine.SetAlarmLatched(false)
	s.engine.SetAcceptingSubmissions(true)
	s.setState(Connected)

	s.bus.Publish(event.Event{Kind: event.KindConnected, At: time.Now()})

	return nil
}

func (s *supervisor) Disconnect() error {
	s.mu.Lock()
	if LifecycleState(s.lifecycle.Load()) == Disconnected {
		s.mu.Unlock()
		return nil
	}
	s.setState(Draining)
	t := s.transport
	cancel := s.cancelRoute
	s.mu.Unlock()

	s.engine.SetAcceptingSubmissions(false)
	s.engine.AbortAll("disconnect")
	_ = s.poller.Stop()
	_ = s.engine.Stop()

	if cancel != nil {
		cancel()
	}

	var closeErr error
	if t != nil {
		closeErr = t.Close()
	}
	s.writer.set(nil)

	s.mu.Lock()
	s.transport = nil
	s.cancelRoute = nil
	s.mu.Unlock()

	s.setState(Disconnected)
	s.bus.Publish(event.Event{Kind: event.KindDisconnected, At: time.Now()})

	return closeErr
}

// routeLoop is the Supervisor's single reader goroutine: every inbound line
// is parsed once and fanned out to both the Command Engine (correlation)
// and the Machine State Manager (state mirror). welcomeCh receives one
// signal the first time a welcome banner is observed; Connect discards the
// channel afterward, so later banners (after a soft reset) only affect
// state, not Connect's own wait.
func (s *supervisor) routeLoop(ctx context.Context, welcomeCh chan<- struct{}) {
	s.mu.Lock()
	t := s.transport
	s.mu.Unlock()
	if t == nil {
		return
	}
	lines := t.Lines()

	for {
		select {
		case <-ctx.Done():
			return

		case ln, ok := <-lines:
			if !ok {
				s.handleTransportLost()
				return
			}

			unitsInch := s.state.UnitsInch()
			resp := response.ParseWithUnits(ln.Raw, unitsInch)

			if resp.Kind == response.KindWelcome {
				afterReset := s.resetPending.Swap(false)
				s.state.OnWelcome(afterReset)
				if afterReset {
					s.engine.SetAlarmLatched(false)
				}
				select {
				case welcomeCh <- struct{}{}:
				default:
				}
			} else {
				s.state.Update(resp)
			}

			s.engine.Feed(resp)
			s.metrics.SetQueueDepth(s.engine.Status().QueueDepth)
		}
	}
}

// handleTransportLost reacts to the inbound line channel closing on its
// own (the reader goroutine hit an unrecoverable I/O error or EOF) rather
// than through an explicit Disconnect call: pending work is cancelled with
// TransportLost-flavored reasons and the lifecycle drops straight to
// Disconnected without a Draining step, since there is no live port left
// to drain against.
func (s *supervisor) handleTransportLost() {
	if LifecycleState(s.lifecycle.Load()) == Disconnected {
		return
	}

	s.engine.SetAcceptingSubmissions(false)
	s.engine.TransportLost("transport lost")
	_ = s.poller.Stop()
	_ = s.engine.Stop()
	s.writer.set(nil)

	s.mu.Lock()
	s.transport = nil
	if s.cancelRoute != nil {
		s.cancelRoute()
		s.cancelRoute = nil
	}
	s.mu.Unlock()

	s.setState(Disconnected)
	s.bus.Publish(event.Event{Kind: event.KindDisconnected, At: time.Now(), Reason: "transport lost"})
}
