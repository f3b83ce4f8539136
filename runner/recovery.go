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

// Package runner hosts the shared helpers of the background-task packages
// runner/startStop and runner/ticker.
package runner

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"sync/atomic"
)

// FuncRecovery receives the formatted message of a recovered panic.
type FuncRecovery func(msg string)

var recoveryHandler atomic.Value // FuncRecovery

// SetRecoveryHandler replaces the sink for recovered panics. A nil handler
// restores the default, which writes the message and the goroutine stack to
// stderr.
func SetRecoveryHandler(fct FuncRecovery) {
	recoveryHandler.Store(fct)
}

// RecoveryCaller reports a panic recovered inside a background goroutine.
// recover() only stops a panic when it is called directly by a deferred
// function, so call it from a deferred closure:
//
//	defer func() {
//		runner.RecoveryCaller("grbl-engine/some/pkg", recover())
//	}()
//
// A nil rec is a no-op, so the deferred call costs nothing on the normal
// path. Optional info strings are appended to the message.
func RecoveryCaller(caller string, rec interface{}, info ...string) {
	if rec == nil {
		return
	}

	msg := fmt.Sprintf("panic recovered in %s: %v", caller, rec)
	if len(info) > 0 {
		msg += " (" + strings.Join(info, ", ") + ")"
	}

	if f, ok := recoveryHandler.Load().(FuncRecovery); ok && f != nil {
		f(msg)
		return
	}

	_, _ = fmt.Fprintf(os.Stderr, "%s\n%s", msg, debug.Stack())
}
