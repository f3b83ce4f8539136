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

import (
	"strconv"
	"strings"
)

// extractAxisTargets is a small hand-written lexer, not a regexp. It
// walks line looking for G0/G1 with absolute positioning and pulls out any
// axis-letter/signed-float pairs it carries (X, Y, Z). It does not attempt
// full G-code grammar: modal words other than G0/G1 are ignored, and a line
// without G0/G1 yields ok=false so the caller skips the check entirely.
func extractAxisTargets(line string) (map[byte]float64, bool) {
	fields := strings.Fields(strings.ToUpper(line))
	if len(fields) == 0 {
		return nil, false
	}

	isMotion := false
	targets := make(map[byte]float64)

	for _, f := range fields {
		if f == "" {
			continue
		}

		switch f {
		case "G0", "G00", "G1", "G01":
			isMotion = true
			continue
		case "G90":
			continue
		case "G91":
			// Incremental positioning: axis words are relative offsets,
			// not absolute targets, so this line can't be checked.
			return nil, false
		}

		letter := f[0]
		if letter != 'X' && letter != 'Y' && letter != 'Z' {
			continue
		}

		v, err := strconv.ParseFloat(f[1:], 64)
		if err != nil {
			continue
		}
		targets[letter] = v
	}

	if !isMotion || len(targets) == 0 {
		return nil, false
	}
	return targets, true
}
