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

package response

import "strconv"

// Axes is a machine-axis triple, x/y/z, in millimeters once normalized.
type Axes struct {
	X float64
	Y float64
	Z float64
}

// StatusReport is the decoded payload of a `<...>` status line.
type StatusReport struct {
	State StateToken

	// MPos is always present on a status line.
	MPos Axes

	// WPos is present when the controller reports it directly; when the
	// controller instead reports WCO, C5 derives WPos = MPos - WCO itself,
	// so WPos here may be nil even on a well-formed line.
	WPos *Axes

	// WCO is the active work-coordinate offset, when reported.
	WCO *Axes

	// FS is feed/speed: {feed_rate, spindle_speed}. F-only firmwares
	// populate just Feed and leave Speed at zero.
	FS *FeedSpeed

	// Ov is the override triple {feed%, rapid%, spindle%}.
	Ov *Overrides

	// Pn is the raw pin-state string (e.g. "PXY").
	Pn string

	// Bf is the planner/RX buffer pair {planner, rx}.
	Bf *BufferState
}

// FeedSpeed holds the `FS:feed,speed` status field.
type FeedSpeed struct {
	Feed  float64
	Speed float64
}

// Overrides holds the `Ov:feed,rapid,spindle` status field, as reported
// percentages.
type Overrides struct {
	Feed   int
	Rapid  int
	Spindle int
}

// BufferState holds the `Bf:planner,rx` status field.
type BufferState struct {
	Planner int
	RX      int
}

// SettingLine is the decoded payload of a `$N=V` line.
type SettingLine struct {
	Index int
	Value float64
}

// String re-serializes the setting in the controller's own `$N=V` shape, so
// a parsed line round-trips modulo insignificant zeros.
func (s SettingLine) String() string {
	return "$" + strconv.Itoa(s.Index) + "=" + strconv.FormatFloat(s.Value, 'f', -1, 64)
}

// CoordinateLine is the decoded payload of a bracketed coordinate-system
// report (`[G5x:...]`, `[G28:...]`, `[G30:...]`, `[G92:...]`, `[TLO:...]`,
// `[PRB:...]`).
type CoordinateLine struct {
	System string
	Values Axes

	// Extra holds values beyond x/y/z when the line reports more than a
	// triple (e.g. [PRB:x,y,z:1] has a trailing probe-success flag).
	Extra []float64
}

// WelcomeLine is the decoded payload of the "Grbl " startup banner.
type WelcomeLine struct {
	Firmware string
}

// Response is the typed classification of one inbound line. Exactly one of
// the pointer fields is populated according to Kind; all others are nil.
// Raw always holds the original line, trimmed of its trailing \r\n.
type Response struct {
	Kind Kind
	Raw  string

	Status      *StatusReport
	Error       *int
	Alarm       *int
	Setting     *SettingLine
	Coordinates *CoordinateLine
	Welcome     *WelcomeLine
}

// IsTerminal reports whether this Response completes an in-flight normal
// command (Ok, Error, or Alarm).
func (r Response) IsTerminal() bool {
	switch r.Kind {
	case KindOk, KindError, KindAlarm:
		return true
	default:
		return false
	}
}
