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

// Package state tracks the live machine state derived from every parsed
// response.Response: the current MachineState, position, modal mirror,
// settings, and work-coordinate table. All mutation happens under a single
// sync.RWMutex; Snapshot copies out a value type so callers never hold the
// lock across other work.
package state

// MachineState is the controller's reported run state, mapped from
// response.StateToken. It carries its own enum (rather than reusing
// response.StateToken directly) so the zero value is meaningful
// (Unknown) and so callers get a typed Stringer independent of the wire
// text.
type MachineState uint8

const (
	Unknown MachineState = iota
	Idle
	Run
	Hold
	Jog
	Alarm
	Check
	Door
	Home
	Sleep
)

// String returns the MachineState's name.
func (m MachineState) String() string {
	switch m {
	case Idle:
		return "Idle"
	case Run:
		return "Run"
	case Hold:
		return "Hold"
	case Jog:
		return "Jog"
	case Alarm:
		return "Alarm"
	case Check:
		return "Check"
	case Door:
		return "Door"
	case Home:
		return "Home"
	case Sleep:
		return "Sleep"
	default:
		return "Unknown"
	}
}

// IsFastPoll reports whether the poller should use its fast interval while
// the machine is in this state.
func (m MachineState) IsFastPoll() bool {
	switch m {
	case Run, Jog, Home, Hold:
		return true
	default:
		return false
	}
}

// fromToken maps the wire-level response.StateToken (trimmed of any
// ":n" suffix such as "Hold:0" or "Door:1") to a MachineState.
func fromToken(tok string) MachineState {
	switch tok {
	case "Idle":
		return Idle
	case "Run":
		return Run
	case "Hold":
		return Hold
	case "Jog":
		return Jog
	case "Alarm":
		return Alarm
	case "Check":
		return Check
	case "Door":
		return Door
	case "Home":
		return Home
	case "Sleep":
		return Sleep
	default:
		return Unknown
	}
}
