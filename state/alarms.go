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

// alarmDescriptions names the controller alarm codes the engine recognizes.
// Codes outside this table still latch the alarm; AlarmDescription just
// falls back to "unknown alarm".
var alarmDescriptions = map[int]string{
	1: "hard limit",
	2: "soft limit exceeded",
	3: "reset while in motion",
	4: "probe fail",
	5: "probe fail",
	6: "homing fail",
	7: "homing fail",
	8: "homing fail",
	9: "homing fail",
}

// AlarmDescription returns the human-readable name for a controller alarm
// code, or "unknown alarm" if code isn't in the recognized table.
func AlarmDescription(code int) string {
	if d, ok := alarmDescriptions[code]; ok {
		return d
	}
	return "unknown alarm"
}
