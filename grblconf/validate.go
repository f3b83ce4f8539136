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

package grblconf

import (
	"regexp"
	"strings"
	"sync"

	"github.com/nabbar/grbl-engine/grblerr"
)

// lineValidator caches the compiled Validation.GCodeCommandRegex so
// CheckLine doesn't recompile it on every call; Config is passed by value
// throughout this package, so the cache is keyed by the pattern text
// itself rather than held on Config.
type lineValidator struct {
	mu       sync.Mutex
	pattern  string
	compiled *regexp.Regexp
}

var validatorCache lineValidator

func (v *lineValidator) get(pattern string) (*regexp.Regexp, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if pattern == v.pattern && v.compiled != nil {
		return v.compiled, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	v.pattern = pattern
	v.compiled = re
	return re, nil
}

// CheckLine validates line against Validation.MaxCommandLength and
// Validation.GCodeCommandRegex: a too-long or grammar-failing line is
// rejected synchronously, before it ever reaches the transport. A zero
// MaxCommandLength or empty GCodeCommandRegex
// skips the corresponding check. An unparsable GCodeCommandRegex is
// treated as "no regex configured" rather than rejecting every line.
func (c Config) CheckLine(line string) *grblerr.Err {
	if c.Validation.MaxCommandLength > 0 && len(line) > c.Validation.MaxCommandLength {
		return grblerr.Rejected(grblerr.ReasonBadLine).WithLine(line)
	}

	if c.Validation.GCodeCommandRegex != "" {
		re, err := validatorCache.get(c.Validation.GCodeCommandRegex)
		if err == nil && !re.MatchString(line) {
			return grblerr.Rejected(grblerr.ReasonBadLine).WithLine(line)
		}
	}

	return nil
}

// IsDangerous reports whether line matches one of Safety.DangerousCommands.
// Each configured entry is matched as a case-insensitive prefix against
// line's trimmed, uppercased text — GRBL commands and most G-code words are
// conventionally upper-case, and a prefix match lets one entry ("M112")
// cover both a bare command and one followed by parameters.
func (c Config) IsDangerous(line string) bool {
	if len(c.Safety.DangerousCommands) == 0 {
		return false
	}

	upper := strings.ToUpper(strings.TrimSpace(line))
	for _, d := range c.Safety.DangerousCommands {
		if d == "" {
			continue
		}
		if strings.HasPrefix(upper, strings.ToUpper(strings.TrimSpace(d))) {
			return true
		}
	}
	return false
}
