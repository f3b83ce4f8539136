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

// Package supervisor is the C6 Supervisor: it composes the Serial Transport,
// the Command Engine, the Status Poller, and the Machine State Manager
// behind a single lifecycle, and is the only component an implementer's
// application code talks to directly. Everything else in this module is
// reachable only through it.
package supervisor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nabbar/grbl-engine/command"
	"github.com/nabbar/grbl-engine/event"
	"github.com/nabbar/grbl-engine/grblconf"
	"github.com/nabbar/grbl-engine/grblerr"
	"github.com/nabbar/grbl-engine/logger"
	"github.com/nabbar/grbl-engine/metrics"
	"github.com/nabbar/grbl-engine/poller"
	"github.com/nabbar/grbl-engine/state"
	"github.com/nabbar/grbl-engine/transport"
)

// Status is a point-in-time snapshot of the Supervisor's own lifecycle plus
// the Command Engine's queue/in-flight state.
type Status struct {
	Lifecycle LifecycleState
	Engine    command.EngineStatus
}

// SendOptions configures one SendCommand call.
type SendOptions struct {
	// Timeout bounds the in-flight window; zero uses grblconf's command
	// timeout.
	Timeout time.Duration

	// SkipSoftLimitCheck bypasses state.Manager's pre-submission soft-limit
	// validation for this command only.
	SkipSoftLimitCheck bool

	// Confirm must be true to submit a line matching one of
	// Safety.DangerousCommands; otherwise SendCommand rejects it
	// synchronously with ReasonDangerousCommand.
	Confirm bool
}

// Supervisor is the C6 component: the single object an application holds to
// drive one GRBL controller end to end.
type Supervisor interface {
	// Connect opens port, waits for the welcome banner (or
	// Timeouts.Initialization to elapse), starts the poller, and begins
	// accepting submissions. Connect is not reentrant: calling it while
	// already Connected or Opening returns an error.
	Connect(ctx context.Context, port string) error

	// Disconnect aborts any pending/in-flight work with Cancelled, stops the
	// poller, and closes the transport. Safe to call when already
	// Disconnected.
	Disconnect() error

	// SendCommand validates, optimistically folds modal state from, and
	// submits line as a normal queued command.
	SendCommand(ctx context.Context, line string, opts SendOptions) grblerr.Result

	// RunFile submits lines in order under policy, stopping early on the
	// first failure unless policy.ContinueOnError is set.
	RunFile(ctx context.Context, lines []string, policy FilePolicy) (*FileRun, error)

	// EmergencyStop writes cfg.EmergencyStopCommand verbatim, bypassing the
	// queue entirely, at best effort regardless of lifecycle state.
	EmergencyStop() error

	// RecoverFromAlarm runs the unlock ($X) protocol and, when home is
	// true, also runs the homing cycle ($H) afterward. A no-op returning
	// nil when the Machine State Manager has no alarm latched.
	RecoverFromAlarm(ctx context.Context, home bool) error

	// Status returns the current lifecycle state and Command Engine status.
	Status() Status

	// Snapshot returns the current Machine State Manager snapshot.
	Snapshot() state.Snapshot

	// Metrics returns the current metrics.Tracker snapshot.
	Metrics() metrics.Snapshot

	// Events subscribes to the event bus; call the returned func to
	// unsubscribe.
	Events() (<-chan event.Event, func())

	// State returns the current LifecycleState.
	State() LifecycleState
}

type supervisor struct {
	cfg    grblconf.Config
	opener transport.PortOpener
	log    logger.Logger

	transport transport.Transport
	writer    *portWriter
	engine    command.Engine
	poller    poller.Poller
	state     *state.Manager
	metrics   *metrics.Tracker
	bus       event.Bus

	lifecycle atomic.Int32

	mu           sync.Mutex
	cancelRoute  context.CancelFunc
	resetPending atomic.Bool
}

// portWriter indirects the Command Engine's transport.Writer so a fresh
// transport.Transport can be swapped in on every Connect without having to
// reconstruct the Engine (and lose its queue/alarm-latch state) alongside
// it. Write/WriteRealtime on a nil current Writer fail with errNotOpen,
// which is transport.ErrClosed itself.
type portWriter struct {
	mu      sync.RWMutex
	current transport.Writer
}

// errNotOpen is returned by portWriter when no transport is currently set.
var errNotOpen = transport.ErrClosed

func (p *portWriter) set(w transport.Writer) {
	p.mu.Lock()
	p.current = w
	p.mu.Unlock()
}

func (p *portWriter) Write(line string) error {
	p.mu.RLock()
	w := p.current
	p.mu.RUnlock()
	if w == nil {
		return errNotOpen
	}
	return w.Write(line)
}

func (p *portWriter) WriteRealtime(b byte) error {
	p.mu.RLock()
	w := p.current
	p.mu.RUnlock()
	if w == nil {
		return errNotOpen
	}
	return w.WriteRealtime(b)
}

// New returns a Supervisor bound to cfg. opener is passed through to
// transport.New (nil selects the real tarm/serial port via
// transport.OpenSerialPort). log may be nil, in which case the Supervisor
// logs nothing.
func New(cfg grblconf.Config, opener transport.PortOpener, log logger.Logger) Supervisor {
	cfg = cfg.ApplyDefaults()

	s := &supervisor{
		cfg:     cfg,
		opener:  opener,
		log:     log,
		metrics: metrics.New(0),
		bus:     event.NewBus(),
	}

	s.writer = &portWriter{}

	eng := command.NewEngine(s.writer, cfg.MaxQueueSize, s.onAlarm)
	s.engine = eng

	s.poller = poller.New(eng, poller.Config{
		Fast:        time.Duration(cfg.StatusPollFast),
		Slow:        time.Duration(cfg.StatusPollSlow),
		MaxMissed:   poller.DefaultMaxMissedPolls,
		PollTimeout: poller.DefaultPollTimeout,
		OnPollError: s.onPollError,
		OnMaxMissed: s.onMaxMissedPolls,
	})

	s.state = state.NewManager(
		state.WithLimits(toStateLimits(cfg.MachineLimits)),
		state.WithPositionThreshold(cfg.PositionThreshold),
		state.WithStateChanged(s.onStateChanged),
		state.WithPositionChanged(s.onPositionChanged),
	)

	s.lifecycle.Store(int32(Disconnected))

	return s
}

func (s *supervisor) State() LifecycleState {
	return LifecycleState(s.lifecycle.Load())
}

func (s *supervisor) setState(v LifecycleState) {
	s.lifecycle.Store(int32(v))
}

func (s *supervisor) Status() Status {
	return Status{Lifecycle: s.State(), Engine: s.engine.Status()}
}

func (s *supervisor) Snapshot() state.Snapshot {
	return s.state.Snapshot()
}

func (s *supervisor) Metrics() metrics.Snapshot {
	return s.metrics.Snapshot()
}

func (s *supervisor) Events() (<-chan event.Event, func()) {
	return s.bus.Subscribe()
}

func toStateLimits(l grblconf.MachineLimits) state.Limits {
	conv := func(a grblconf.AxisLimit) state.AxisLimit {
		return state.AxisLimit{Min: a.Min, Max: a.Max, TotalTravel: a.TotalTravel}
	}
	return state.Limits{X: conv(l.X), Y: conv(l.Y), Z: conv(l.Z)}
}

func (s *supervisor) logInfo(msg string, data interface{}) {
	if s.log != nil {
		s.log.Info(msg, data)
	}
}

func (s *supervisor) logWarn(msg string, data interface{}) {
	if s.log != nil {
		s.log.Warning(msg, data)
	}
}

func (s *supervisor) onAlarm(code int) {
	s.engine.SetAlarmLatched(true)
	s.bus.Publish(event.Event{
		Kind: event.KindAlarm,
		At:   time.Now(),
		Alarm: &event.Alarm{
			Code:        code,
			Description: state.AlarmDescription(code),
		},
	})
	s.logWarn("grbl alarm", code)
}

func (s *supervisor) onStateChanged(prev, next state.MachineState) {
	s.poller.OnStateObserved(next)
	s.metrics.RecordSample(next)
	s.bus.Publish(event.Event{
		Kind:         event.KindStateChanged,
		At:           time.Now(),
		StateChanged: &event.StateChanged{Prev: prev, Next: next},
	})
}

func (s *supervisor) onPositionChanged(d state.Delta) {
	s.bus.Publish(event.Event{
		Kind:            event.KindPositionChanged,
		At:              time.Now(),
		PositionChanged: &event.PositionChanged{Delta: d},
	})
}

func (s *supervisor) onPollError(err error) {
	s.bus.Publish(event.Event{
		Kind:      event.KindPollError,
		At:        time.Now(),
		PollError: &event.PollError{Err: err},
	})
}

func (s *supervisor) onMaxMissedPolls(count int) {
	s.bus.Publish(event.Event{
		Kind:   event.KindMaxMissedPolls,
		At:     time.Now(),
		Reason: "max missed polls exceeded",
	})
	s.logWarn("grbl poller: max missed polls exceeded", count)
}

