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

// AxisLimit is one axis's travel bound, in millimeters, as configured by
// grblconf's machine_limits.
type AxisLimit struct {
	Min        float64
	Max        float64
	TotalTravel float64
}

// Limits is the three-axis travel envelope used by soft-limit
// pre-submission validation. A zero-value Limits (Max == Min == 0 on every
// axis) is treated as "unconfigured" and disables the check, since a real
// machine never has a zero-length travel.
type Limits struct {
	X AxisLimit
	Y AxisLimit
	Z AxisLimit
}

// configured reports whether any axis carries a non-zero span.
func (l Limits) configured() bool {
	return l.X.Max != l.X.Min || l.Y.Max != l.Y.Min || l.Z.Max != l.Z.Min
}

// exceeds reports whether any populated axis of target falls outside the
// configured bound for that axis.
func (l Limits) exceeds(target map[byte]float64) bool {
	for axis, v := range target {
		var lim AxisLimit
		switch axis {
		case 'X':
			lim = l.X
		case 'Y':
			lim = l.Y
		case 'Z':
			lim = l.Z
		default:
			continue
		}
		if lim.Max == lim.Min {
			continue
		}
		if v < lim.Min || v > lim.Max {
			return true
		}
	}
	return false
}
