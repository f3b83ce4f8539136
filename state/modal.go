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

package state

import "strings"

// MotionMode is the modal group for G0/G1/G2/G3.
type MotionMode uint8

const (
	MotionUnknown MotionMode = iota
	MotionRapid              // G0
	MotionLinear             // G1
	MotionArcCW              // G2
	MotionArcCCW             // G3
)

// PlaneMode is the modal group for G17/G18/G19.
type PlaneMode uint8

const (
	PlaneUnknown PlaneMode = iota
	PlaneXY                // G17
	PlaneZX                // G18
	PlaneYZ                // G19
)

// UnitsMode is the modal group for G20/G21.
type UnitsMode uint8

const (
	UnitsUnknown UnitsMode = iota
	UnitsMM                // G21
	UnitsInches            // G20
)

// DistanceMode is the modal group for G90/G91.
type DistanceMode uint8

const (
	DistanceUnknown     DistanceMode = iota
	DistanceAbsolute                 // G90
	DistanceIncremental              // G91
)

// FeedRateMode is the modal group for G93/G94.
type FeedRateMode uint8

const (
	FeedRateUnknown        FeedRateMode = iota
	FeedRateUnitsPerMinute              // G94
	FeedRateInverseTime                 // G93
)

// CoolantMode is the modal group for M7/M8/M9. Flood and mist can both be
// active at once on real firmware; this mirror tracks only the last word
// seen, matching the host-side "optimistic mirror" the supervisor keeps
// since GRBL's line protocol never echoes modal state back.
type CoolantMode uint8

const (
	CoolantOff   CoolantMode = iota // M9
	CoolantMist                     // M7
	CoolantFlood                    // M8
)

// SpindleMode is the modal group for M3/M4/M5.
type SpindleMode uint8

const (
	SpindleOff SpindleMode = iota // M5
	SpindleCW                     // M3
	SpindleCCW                    // M4
)

// Modal is the mirror of the seven modal groups. It is updated
// optimistically from outbound lines as they are submitted; GRBL's line
// protocol has no inbound confirmation of modal state short of an explicit
// "$G" query, which this engine does not issue.
type Modal struct {
	Motion       MotionMode
	Plane        PlaneMode
	Units        UnitsMode
	Distance     DistanceMode
	FeedRateMode FeedRateMode
	Coolant      CoolantMode
	Spindle      SpindleMode
}

// DefaultModal is the firmware's modal state at startup / after a soft
// reset: G0 G17 G21 G90 G94 M5 M9.
func DefaultModal() Modal {
	return Modal{
		Motion:       MotionRapid,
		Plane:        PlaneXY,
		Units:        UnitsMM,
		Distance:     DistanceAbsolute,
		FeedRateMode: FeedRateUnitsPerMinute,
		Coolant:      CoolantOff,
		Spindle:      SpindleOff,
	}
}

// Tool is the active tool, when one has been selected.
type Tool struct {
	Number   int
	Length   *float64
	Diameter *float64
}

// applyModalWord updates m in place for a single recognized G/M word. It
// does not handle tool words (T<n>): applyOutboundLine threads those into
// the Tool mirror separately from the modal groups.
func applyModalWord(m *Modal, word string) {
	switch word {
	case "G0", "G00":
		m.Motion = MotionRapid
	case "G1", "G01":
		m.Motion = MotionLinear
	case "G2", "G02":
		m.Motion = MotionArcCW
	case "G3", "G03":
		m.Motion = MotionArcCCW
	case "G17":
		m.Plane = PlaneXY
	case "G18":
		m.Plane = PlaneZX
	case "G19":
		m.Plane = PlaneYZ
	case "G20":
		m.Units = UnitsInches
	case "G21":
		m.Units = UnitsMM
	case "G90":
		m.Distance = DistanceAbsolute
	case "G91":
		m.Distance = DistanceIncremental
	case "G93":
		m.FeedRateMode = FeedRateInverseTime
	case "G94":
		m.FeedRateMode = FeedRateUnitsPerMinute
	case "M3":
		m.Spindle = SpindleCW
	case "M4":
		m.Spindle = SpindleCCW
	case "M5":
		m.Spindle = SpindleOff
	case "M7":
		m.Coolant = CoolantMist
	case "M8":
		m.Coolant = CoolantFlood
	case "M9":
		m.Coolant = CoolantOff
	}
}

// applyOutboundLine walks line's whitespace-separated words (the same
// shallow lexer tokenizer.go uses) and folds every recognized modal word
// into m. Unrecognized words (axis values, comments, line numbers) are
// ignored; a T<n> word updates tool's number, leaving length/diameter
// untouched since the line protocol carries neither.
func applyOutboundLine(m *Modal, tool **Tool, line string) {
	fields := strings.Fields(strings.ToUpper(line))
	for _, f := range fields {
		if f == "" {
			continue
		}
		if f[0] == 'T' && len(f) > 1 {
			if n, ok := parseToolNumber(f[1:]); ok {
				if *tool == nil {
					*tool = &Tool{}
				}
				(*tool).Number = n
			}
			continue
		}
		applyModalWord(m, f)
	}
}

// wcsWord scans line for a work-coordinate-system selection word and
// returns it when found.
func wcsWord(line string) (string, bool) {
	for _, f := range strings.Fields(strings.ToUpper(line)) {
		switch f {
		case "G54", "G55", "G56", "G57", "G58", "G59":
			return f, true
		}
	}
	return "", false
}

func parseToolNumber(s string) (int, bool) {
	n := 0
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
