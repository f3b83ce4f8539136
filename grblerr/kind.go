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

// Package grblerr defines the error/result vocabulary shared by every
// Command/Response Engine component: the outcome kinds a submitted command
// can resolve to, and the synchronous-rejection reasons a command can fail
// with before it ever reaches the transport.
//
// The shape follows the errors.Error/CodeError hierarchy (numeric code,
// parent chain, Error()/Unwrap()/Is() compatible with the standard errors
// package) trimmed to this domain: no HTTP-status conventions, no error
// pool.
package grblerr

// Kind classifies how a submitted command failed. Every failure a command
// can resolve to collapses into a single Go error type carrying one of
// these kinds.
type Kind uint8

const (
	// KindNone is the zero value; Err is nil whenever Kind is KindNone.
	KindNone Kind = iota

	// KindTimeout means the command's deadline elapsed before a terminal
	// response arrived.
	KindTimeout

	// KindControllerError means the controller replied with "error:N".
	KindControllerError

	// KindAlarm means the controller replied with "ALARM:N"; the alarm is
	// additionally latched in the Machine State Manager.
	KindAlarm

	// KindCancelled means the command was drained by abort_all or a
	// disconnect before it completed.
	KindCancelled

	// KindTransportLost means the serial link failed while the command was
	// queued or in flight.
	KindTransportLost

	// KindRejected means the command was refused synchronously, before any
	// bytes were written to the port. Reason holds the specific cause.
	KindRejected
)

// String returns the Kind's name, used in log fields and error messages.
func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "Timeout"
	case KindControllerError:
		return "ControllerError"
	case KindAlarm:
		return "Alarm"
	case KindCancelled:
		return "Cancelled"
	case KindTransportLost:
		return "TransportLost"
	case KindRejected:
		return "Rejected"
	default:
		return "None"
	}
}

// Reason qualifies a KindRejected error: the synchronous pre-checks a
// command can fail without ever touching the transport.
type Reason uint8

const (
	// ReasonNone is the zero value, used when Kind is not KindRejected.
	ReasonNone Reason = iota

	// ReasonQueueFull means the pending queue was at max_queue_size.
	ReasonQueueFull

	// ReasonSoftLimit means the command's target exceeds configured
	// machine_limits for at least one axis.
	ReasonSoftLimit

	// ReasonAlarmLatched means a normal command was submitted while the
	// Machine State Manager's alarm latch is set.
	ReasonAlarmLatched

	// ReasonBadLine means the line failed validation (length or grammar)
	// before submission.
	ReasonBadLine

	// ReasonNotConnected means submit was called outside the Connected
	// lifecycle state.
	ReasonNotConnected

	// ReasonDangerousCommand means the line matched one of safety's
	// configured dangerous-command prefixes and was submitted without the
	// caller's explicit confirmation.
	ReasonDangerousCommand
)

// String returns the Reason's name.
func (r Reason) String() string {
	switch r {
	case ReasonQueueFull:
		return "QueueFull"
	case ReasonSoftLimit:
		return "SoftLimit"
	case ReasonAlarmLatched:
		return "AlarmLatched"
	case ReasonBadLine:
		return "BadLine"
	case ReasonNotConnected:
		return "NotConnected"
	case ReasonDangerousCommand:
		return "DangerousCommand"
	default:
		return "None"
	}
}
