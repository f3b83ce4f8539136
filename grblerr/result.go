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

package grblerr

import (
	"time"

	"github.com/nabbar/grbl-engine/response"
)

// Result is what a submitted command resolves to: either a terminal
// Response (Err nil) or a failure (Response the zero value, Err set).
// Elapsed measures from the moment the line was written to the port to
// the moment the terminal line arrived (or the deadline fired), per the
// write-time timeout rule.
type Result struct {
	// ID is the submitted command's identifier, when the failure happened
	// after submission assigned one (zero for pre-submission rejections
	// raised outside the engine).
	ID uint64

	Response response.Response
	Err      *Err
	Elapsed  time.Duration
}

// OK reports whether the command completed without error.
func (r Result) OK() bool {
	return r.Err == nil
}
