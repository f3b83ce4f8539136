/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

package errors

// Each package owning error codes reserves a block of 100 codes starting at
// its MinPkg constant; codes within a block are allocated with iota.
const (
	MinPkgAtomic     = 100
	MinPkgCommand    = 200
	MinPkgConfig     = 300
	MinPkgContext    = 400
	MinPkgDuration   = 500
	MinPkgEvent      = 600
	MinPkgIOUtils    = 700
	MinPkgLogger     = 800
	MinPkgMetrics    = 900
	MinPkgPoller     = 1000
	MinPkgResponse   = 1100
	MinPkgRunner     = 1200
	MinPkgSemaphore  = 1300
	MinPkgSize       = 1400
	MinPkgState      = 1500
	MinPkgSupervisor = 1600
	MinPkgTransport  = 1700

	MinAvailable = 4000

	// MIN_AVAILABLE @Deprecated use MinAvailable constant
	MIN_AVAILABLE = MinAvailable
)
