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

// LifecycleState is the Supervisor's own state machine, distinct from the
// controller's MachineState (state.MachineState) — this one tracks whether
// the link itself is usable at all.
type LifecycleState uint8

const (
	// Disconnected is the initial state and the state Disconnect returns to.
	Disconnected LifecycleState = iota

	// Opening is entered by Connect while it waits for the port to open and
	// the welcome banner (or its timeout) to resolve.
	Opening

	// Connected means the transport is open, the poller is running, and
	// SendCommand/RunFile accept new work.
	Connected

	// Draining is entered by Disconnect: AbortAll has been issued and the
	// Supervisor is waiting for in-flight work to unwind before the
	// transport actually closes.
	Draining
)

// String returns the LifecycleState's name, used in log fields and events.
func (s LifecycleState) String() string {
	switch s {
	case Opening:
		return "Opening"
	case Connected:
		return "Connected"
	case Draining:
		return "Draining"
	default:
		return "Disconnected"
	}
}
