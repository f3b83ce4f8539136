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

package supervisor

import (
	"context"
	"strings"
	"time"

	"github.com/nabbar/grbl-engine/grblerr"
)

// FilePolicy configures RunFile. The zero value halts at the first failing
// line.
type FilePolicy struct {
	// ContinueOnError keeps submitting the remaining lines after one fails
	// instead of halting the run.
	ContinueOnError bool

	// Timeout overrides the per-line command timeout; zero uses
	// grblconf's command timeout.
	Timeout time.Duration
}

// DefaultFilePolicy returns the halt-on-error policy RunFile defaults to:
// stop at the first failing line.
func DefaultFilePolicy() FilePolicy {
	return FilePolicy{}
}

// FileLineResult is one line's outcome within a FileRun.
type FileLineResult struct {
	Line   string
	Result grblerr.Result
}

// FileRun is RunFile's return value: every line attempted, in order, plus
// whether the run stopped early.
type FileRun struct {
	Lines  []FileLineResult
	Halted bool
}

// RunFile submits lines one at a time through SendCommand, in order,
// skipping blank lines and ';'/'(' comment lines. It stops at the first
// failing line unless policy.ContinueOnError is set, or when ctx is
// cancelled.
func (s *supervisor) RunFile(ctx context.Context, lines []string, policy FilePolicy) (*FileRun, error) {
	run := &FileRun{Lines: make([]FileLineResult, 0, len(lines))}

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "(") {
			continue
		}

		select {
		case <-ctx.Done():
			run.Halted = true
			return run, ctx.Err()
		default:
		}

		res := s.SendCommand(ctx, line, SendOptions{Timeout: policy.Timeout})
		run.Lines = append(run.Lines, FileLineResult{Line: line, Result: res})

		if !res.OK() && !policy.ContinueOnError {
			run.Halted = true
			return run, nil
		}
	}

	return run, nil
}
