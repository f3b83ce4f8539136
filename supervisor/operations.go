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
	"time"

	"github.com/nabbar/grbl-engine/command"
	"github.com/nabbar/grbl-engine/event"
	"github.com/nabbar/grbl-engine/grblerr"
	"github.com/nabbar/grbl-engine/state"
)

func (s *supervisor) SendCommand(ctx context.Context, line string, opts SendOptions) grblerr.Result {
	if err := s.cfg.CheckLine(line); err != nil {
		return grblerr.Result{Err: err}
	}

	if !opts.Confirm && s.cfg.IsDangerous(line) {
		return grblerr.Result{Err: grblerr.Rejected(grblerr.ReasonDangerousCommand).WithLine(line)}
	}

	if !opts.SkipSoftLimitCheck {
		if err := s.state.ValidateSoftLimit(line); err != nil {
			return grblerr.Result{Err: err}
		}
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Duration(s.cfg.Timeouts.Command)
	}

	res := s.engine.Submit(ctx, line, command.Options{
		Timeout:            timeout,
		SkipSoftLimitCheck: opts.SkipSoftLimitCheck,
	})

	// Folded only when the line actually reached the wire: GRBL's protocol
	// never echoes modal state back, so this is the only hook the
	// Supervisor has, and a synchronously rejected line must not disturb
	// the mirror.
	if res.Err == nil || res.Err.Kind != grblerr.KindRejected {
		s.state.ApplyOutboundLine(line)
	}

	s.metrics.ObserveResult(res)
	s.bus.Publish(event.Event{
		Kind:             event.KindCommandCompleted,
		At:               time.Now(),
		CommandCompleted: &event.CommandCompleted{ID: res.ID, Result: res},
	})

	// A command that completed but burned most of its deadline is the early
	// signal of a controller falling behind.
	if timeout > 0 && res.Elapsed >= timeout*3/4 {
		s.bus.Publish(event.Event{
			Kind:   event.KindPerformanceAlert,
			At:     time.Now(),
			Reason: "command response time near deadline",
		})
	}

	if st := s.engine.Status(); st.QueueDepth >= backpressureHighWater(s.cfg.MaxQueueSize) {
		s.bus.Publish(event.Event{
			Kind:         event.KindBackpressure,
			At:           time.Now(),
			EngineStatus: &st,
		})
	}

	return res
}

// backpressureHighWater is the queue depth at which the Supervisor starts
// publishing backpressure events: three quarters of the configured maximum,
// so consumers hear about pressure before Submit starts rejecting.
func backpressureHighWater(maxQueue int) int {
	hw := (maxQueue * 3) / 4
	if hw < 1 {
		hw = 1
	}
	return hw
}

// EmergencyStop writes cfg.EmergencyStopCommand byte-for-byte: a single
// control byte (value < 0x20) goes straight through WriteRealtime with no
// line ending; anything else is written as a line with the configured line
// ending. Which shape applies is never inferred beyond that one check —
// the config value itself decides.
func (s *supervisor) EmergencyStop() error {
	cmd := s.cfg.EmergencyStopCommand
	isByte := len(cmd) == 1 && cmd[0] < 0x20

	var err error
	if isByte {
		if cmd[0] == 0x18 {
			s.resetPending.Store(true)
		}
		err = s.engine.EmergencyWrite(true, cmd[0], "")
	} else {
		err = s.engine.EmergencyWrite(false, 0, cmd)
	}

	s.bus.Publish(event.Event{Kind: event.KindEmergencyStop, At: time.Now()})

	return err
}

// RecoverFromAlarm runs the unlock protocol ($X by default, or
// cfg.UnlockCommand) through the immediate path, which bypasses the
// synchronous AlarmLatched rejection that a normal command would hit. It
// is a no-op returning nil when the Machine State Manager has no alarm
// latched (R3). When home is true, the homing command runs immediately
// afterward using the same path.
func (s *supervisor) RecoverFromAlarm(ctx context.Context, home bool) error {
	if !s.state.AlarmLatched() {
		return nil
	}

	timeout := time.Duration(s.cfg.Timeouts.Command)

	res := s.engine.SubmitImmediate(ctx, s.cfg.UnlockCommand, command.Options{Timeout: timeout})
	if res.Err != nil {
		if res.Err.Kind == grblerr.KindAlarm {
			return grblerr.New(grblerr.KindAlarm).WithCode(res.Err.Code).WithParent(
				errAlarmDuringRecovery(res.Err.Code),
			)
		}
		return res.Err
	}

	s.state.ClearAlarm()
	s.engine.SetAlarmLatched(false)

	if !home {
		return nil
	}

	res = s.engine.SubmitImmediate(ctx, s.cfg.HomeCommand, command.Options{Timeout: timeout})
	if res.Err != nil {
		return res.Err
	}
	return nil
}

type alarmDuringRecoveryError struct {
	code int
}

func (e *alarmDuringRecoveryError) Error() string {
	return "grbl alarm " + state.AlarmDescription(e.code) + " during recovery"
}

func errAlarmDuringRecovery(code int) error {
	return &alarmDuringRecoveryError{code: code}
}
