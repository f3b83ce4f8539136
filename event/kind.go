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

// Package event publishes the Supervisor's lifecycle and state notifications
// on a small broadcast bus of explicit subscriber channels.
package event

import (
	"time"

	"github.com/nabbar/grbl-engine/command"
	"github.com/nabbar/grbl-engine/grblerr"
	"github.com/nabbar/grbl-engine/state"
)

// Kind identifies which variant of Event payload is populated.
type Kind uint8

const (
	KindConnected Kind = iota
	KindDisconnected
	KindStateChanged
	KindPositionChanged
	KindAlarm
	KindCommandCompleted
	KindPerformanceAlert
	KindBackpressure
	KindPollError
	KindMaxMissedPolls
	KindEmergencyStop
)

// String returns the Kind's name, used in log fields.
func (k Kind) String() string {
	switch k {
	case KindConnected:
		return "connected"
	case KindDisconnected:
		return "disconnected"
	case KindStateChanged:
		return "state_changed"
	case KindPositionChanged:
		return "position_changed"
	case KindAlarm:
		return "alarm"
	case KindCommandCompleted:
		return "command_completed"
	case KindPerformanceAlert:
		return "performance_alert"
	case KindBackpressure:
		return "backpressure"
	case KindPollError:
		return "poll_error"
	case KindMaxMissedPolls:
		return "max_missed_polls_exceeded"
	case KindEmergencyStop:
		return "emergency_stop"
	default:
		return "unknown"
	}
}

// StateChanged is the payload of a KindStateChanged event.
type StateChanged struct {
	Prev state.MachineState
	Next state.MachineState
}

// PositionChanged is the payload of a KindPositionChanged event.
type PositionChanged struct {
	Delta state.Delta
}

// Alarm is the payload of a KindAlarm event.
type Alarm struct {
	Code        int
	Description string
}

// CommandCompleted is the payload of a KindCommandCompleted event.
type CommandCompleted struct {
	ID     uint64
	Result grblerr.Result
}

// PollError is the payload of a KindPollError event.
type PollError struct {
	Err error
}

// Event is the envelope published on the Bus. Exactly one payload field is
// populated according to Kind; all others are nil.
type Event struct {
	Kind Kind
	At   time.Time

	StateChanged     *StateChanged
	PositionChanged  *PositionChanged
	Alarm            *Alarm
	CommandCompleted *CommandCompleted
	PollError        *PollError
	Reason           string

	// EngineStatus carries the queue/in-flight snapshot on a
	// KindBackpressure event.
	EngineStatus *command.EngineStatus
}
