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

import (
	"strconv"
	"strings"
)

// inchToMM is the conversion factor applied to MPos/WPos/WCO triples when
// the caller reports the active units modal as inches (G20).
const inchToMM = 25.4

// Parse classifies line assuming millimeter units. It is a convenience
// wrapper around ParseWithUnits for callers that don't track the units
// modal themselves (tests, fire-and-forget tooling).
func Parse(line string) Response {
	return ParseWithUnits(line, false)
}

// ParseWithUnits classifies line into a Response, applying inch-to-mm
// normalization to MPos/WPos/WCO triples on a Status line when unitsInch is
// true. It never fails: an unrecognized line becomes KindUnknown.
//
// Rule order (must not be reordered — later rules assume earlier ones
// already failed to match):
//
//  1. starts with '<' and ends with '>'         -> Status
//  2. exactly "ok"                              -> Ok
//  3. matches "error:<digits>"                   -> Error
//  4. matches "ALARM:<digits>" / "Alarm:<digits>" -> Alarm
//  5. matches "$<index>=<value>"                 -> Setting
//  6. matches "[TAG:...]"                        -> Coordinates
//  7. starts with "Grbl "                        -> Welcome
//  8. otherwise                                  -> Unknown
func ParseWithUnits(line string, unitsInch bool) Response {
	raw := strings.TrimRight(line, "\r\n")
	trimmed := strings.TrimSpace(raw)

	switch {
	case strings.HasPrefix(trimmed, "<") && strings.HasSuffix(trimmed, ">"):
		return Response{Kind: KindStatus, Raw: raw, Status: parseStatus(trimmed, unitsInch)}

	case trimmed == "ok":
		return Response{Kind: KindOk, Raw: raw}

	case strings.HasPrefix(trimmed, "error:"):
		if code, ok := parseDigitsAfter(trimmed, "error:"); ok {
			return Response{Kind: KindError, Raw: raw, Error: &code}
		}

	case hasAlarmPrefix(trimmed):
		if code, ok := parseAlarmCode(trimmed); ok {
			return Response{Kind: KindAlarm, Raw: raw, Alarm: &code}
		}

	case strings.HasPrefix(trimmed, "$"):
		if s, ok := parseSetting(trimmed); ok {
			return Response{Kind: KindSetting, Raw: raw, Setting: &s}
		}

	case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
		if c, ok := parseCoordinates(trimmed); ok {
			return Response{Kind: KindCoordinates, Raw: raw, Coordinates: &c}
		}

	case strings.HasPrefix(trimmed, "Grbl "):
		return Response{Kind: KindWelcome, Raw: raw, Welcome: &WelcomeLine{Firmware: strings.TrimPrefix(trimmed, "Grbl ")}}
	}

	return Response{Kind: KindUnknown, Raw: raw}
}

func hasAlarmPrefix(s string) bool {
	return strings.HasPrefix(s, "ALARM:") || strings.HasPrefix(s, "Alarm:")
}

func parseAlarmCode(s string) (int, bool) {
	if strings.HasPrefix(s, "ALARM:") {
		return parseDigitsAfter(s, "ALARM:")
	}
	return parseDigitsAfter(s, "Alarm:")
}

func parseDigitsAfter(s, prefix string) (int, bool) {
	rest := strings.TrimPrefix(s, prefix)
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseSetting(s string) (SettingLine, bool) {
	body := strings.TrimPrefix(s, "$")
	idx := strings.IndexByte(body, '=')
	if idx < 0 {
		return SettingLine{}, false
	}

	index, err := strconv.Atoi(body[:idx])
	if err != nil {
		return SettingLine{}, false
	}

	value, err := strconv.ParseFloat(body[idx+1:], 64)
	if err != nil {
		return SettingLine{}, false
	}

	return SettingLine{Index: index, Value: value}, true
}

func parseCoordinates(s string) (CoordinateLine, bool) {
	body := strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")

	idx := strings.IndexByte(body, ':')
	if idx < 0 {
		return CoordinateLine{}, false
	}

	system := body[:idx]
	rest := body[idx+1:]

	// "[PRB:x,y,z:1]" carries a probe-success flag after a second colon.
	var extra []float64
	if j := strings.IndexByte(rest, ':'); j >= 0 {
		v, err := strconv.ParseFloat(rest[j+1:], 64)
		if err != nil {
			return CoordinateLine{}, false
		}
		extra = append(extra, v)
		rest = rest[:j]
	}

	// One to three numbers: "[TLO:0.000]" has a single value, the WCS and
	// predefined-position lines have three.
	fields := strings.Split(rest, ",")
	if len(fields) < 1 || len(fields) > 3 {
		return CoordinateLine{}, false
	}

	vals := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return CoordinateLine{}, false
		}
		vals = append(vals, v)
	}

	c := CoordinateLine{System: system, Extra: extra}
	c.Values.X = vals[0]
	if len(vals) > 1 {
		c.Values.Y = vals[1]
	}
	if len(vals) > 2 {
		c.Values.Z = vals[2]
	}

	return c, true
}

// parseStatus decodes the pipe-delimited body of a `<...>` line: the first
// token is the machine state, every subsequent token is `Key:value,...`.
func parseStatus(s string, unitsInch bool) *StatusReport {
	body := strings.TrimSuffix(strings.TrimPrefix(s, "<"), ">")
	sections := strings.Split(body, "|")
	if len(sections) == 0 {
		return &StatusReport{}
	}

	st := &StatusReport{}

	head := sections[0]
	if i := strings.IndexByte(head, ':'); i >= 0 {
		st.State = StateToken(head[:i])
	} else {
		st.State = StateToken(head)
	}

	for _, sec := range sections[1:] {
		i := strings.IndexByte(sec, ':')
		if i < 0 {
			continue
		}

		key := sec[:i]
		val := sec[i+1:]

		switch key {
		case "MPos":
			if a, ok := parseAxesTriple(val); ok {
				st.MPos = normalizeAxes(a, unitsInch)
			}
		case "WPos":
			if a, ok := parseAxesTriple(val); ok {
				n := normalizeAxes(a, unitsInch)
				st.WPos = &n
			}
		case "WCO":
			if a, ok := parseAxesTriple(val); ok {
				n := normalizeAxes(a, unitsInch)
				st.WCO = &n
			}
		case "FS":
			if fs, ok := parseFeedSpeed(val); ok {
				st.FS = &fs
			}
		case "F":
			parts := strings.Split(val, ",")
			if len(parts) >= 1 {
				if f, err := strconv.ParseFloat(parts[0], 64); err == nil {
					st.FS = &FeedSpeed{Feed: f}
				}
			}
		case "Ov":
			if ov, ok := parseOverrides(val); ok {
				st.Ov = &ov
			}
		case "Pn":
			st.Pn = val
		case "Bf":
			if bf, ok := parseBufferState(val); ok {
				st.Bf = &bf
			}
		}
	}

	return st
}

func parseAxesTriple(val string) (Axes, bool) {
	parts := strings.Split(val, ",")
	if len(parts) < 3 {
		return Axes{}, false
	}

	x, err1 := strconv.ParseFloat(parts[0], 64)
	y, err2 := strconv.ParseFloat(parts[1], 64)
	z, err3 := strconv.ParseFloat(parts[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return Axes{}, false
	}

	return Axes{X: x, Y: y, Z: z}, true
}

func normalizeAxes(a Axes, unitsInch bool) Axes {
	if !unitsInch {
		return a
	}
	return Axes{X: a.X * inchToMM, Y: a.Y * inchToMM, Z: a.Z * inchToMM}
}

func parseFeedSpeed(val string) (FeedSpeed, bool) {
	parts := strings.Split(val, ",")
	if len(parts) < 2 {
		return FeedSpeed{}, false
	}

	feed, err1 := strconv.ParseFloat(parts[0], 64)
	speed, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil {
		return FeedSpeed{}, false
	}

	return FeedSpeed{Feed: feed, Speed: speed}, true
}

func parseOverrides(val string) (Overrides, bool) {
	parts := strings.Split(val, ",")
	if len(parts) < 3 {
		return Overrides{}, false
	}

	feed, err1 := strconv.Atoi(parts[0])
	rapid, err2 := strconv.Atoi(parts[1])
	spindle, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return Overrides{}, false
	}

	return Overrides{Feed: feed, Rapid: rapid, Spindle: spindle}, true
}

func parseBufferState(val string) (BufferState, bool) {
	parts := strings.Split(val, ",")
	if len(parts) < 2 {
		return BufferState{}, false
	}

	planner, err1 := strconv.Atoi(parts[0])
	rx, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return BufferState{}, false
	}

	return BufferState{Planner: planner, RX: rx}, true
}
