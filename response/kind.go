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

// Package response turns a raw inbound line from the controller into a
// typed Response. Parse/ParseWithUnits are pure and total: every non-empty
// line maps to exactly one Response variant, falling back to Unknown.
package response

// Kind identifies which variant of Response is populated.
type Kind uint8

const (
	// KindUnknown is the catch-all; Raw holds the original line.
	KindUnknown Kind = iota

	// KindStatus is a `<...>` status report.
	KindStatus

	// KindOk is a bare "ok" terminal response.
	KindOk

	// KindError is an `error:N` terminal response.
	KindError

	// KindAlarm is an `ALARM:N` / `Alarm:N` response.
	KindAlarm

	// KindSetting is a `$N=V` settings-dump line.
	KindSetting

	// KindCoordinates is a `[G5x:...]`/`[G28:...]`/etc bracketed line.
	KindCoordinates

	// KindWelcome is the "Grbl " startup banner.
	KindWelcome
)

// String returns the Kind's name.
func (k Kind) String() string {
	switch k {
	case KindStatus:
		return "Status"
	case KindOk:
		return "Ok"
	case KindError:
		return "Error"
	case KindAlarm:
		return "Alarm"
	case KindSetting:
		return "Setting"
	case KindCoordinates:
		return "Coordinates"
	case KindWelcome:
		return "Welcome"
	default:
		return "Unknown"
	}
}

// StateToken is the machine-state word reported at the head of a status
// report (before the first `:` or `|`). It is a plain string alias local to
// this package — state.Manager maps it to its own MachineState enum — kept
// separate so response never imports state and no import cycle can form.
type StateToken string

const (
	StateIdle  StateToken = "Idle"
	StateRun   StateToken = "Run"
	StateHold  StateToken = "Hold"
	StateJog   StateToken = "Jog"
	StateAlarm StateToken = "Alarm"
	StateCheck StateToken = "Check"
	StateDoor  StateToken = "Door"
	StateHome  StateToken = "Home"
	StateSleep StateToken = "Sleep"
)
