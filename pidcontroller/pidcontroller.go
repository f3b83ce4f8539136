/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

// Package pidcontroller generates a smoothed step sequence between two
// values using a classic proportional/integral/derivative feedback loop.
package pidcontroller

// Controller walks a value from a start point towards a target using
// proportional, integral and derivative gains on the remaining error.
type Controller struct {
	rateP float64
	rateI float64
	rateD float64
}

// New returns a Controller configured with the given gains.
func New(rateP, rateI, rateD float64) *Controller {
	return &Controller{
		rateP: rateP,
		rateI: rateI,
		rateD: rateD,
	}
}

const maxSteps = 64

// RangeCtx returns the sequence of intermediate values stepping from "from"
// towards "to", stopping early if ctx is done. The sequence never includes
// "from" or "to" themselves; the caller is expected to prepend/append the
// bounds as needed.
func (c *Controller) RangeCtx(ctx doneCtx, from, to float64) []float64 {
	out := make([]float64, 0, maxSteps)

	if from == to {
		return out
	}

	var (
		integral float64
		previous = from
		current  = from
	)

	for i := 0; i < maxSteps; i++ {
		select {
		case <-ctx.Done():
			return out
		default:
		}

		err := to - current
		if (to > from && current >= to) || (to < from && current <= to) {
			break
		}

		integral += err
		derivative := err - (to - previous)

		step := c.rateP*err + c.rateI*integral + c.rateD*derivative
		if step == 0 {
			break
		}

		previous = current
		current += step
		out = append(out, current)
	}

	return out
}

// doneCtx is the minimal surface of context.Context this package depends on.
type doneCtx interface {
	Done() <-chan struct{}
}
