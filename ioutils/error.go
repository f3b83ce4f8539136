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

package ioutils

import liberr "github.com/nabbar/grbl-engine/errors"

const (
	// ErrorParamsEmpty is returned when a required parameter is empty.
	ErrorParamsEmpty liberr.CodeError = iota + liberr.MinPkgIOUtils

	// ErrorIOFileStat is returned when stating a file fails.
	ErrorIOFileStat

	// ErrorIOFileOpen is returned when opening a file fails.
	ErrorIOFileOpen

	// ErrorIOFileTempNew is returned when creating a temporary file fails.
	ErrorIOFileTempNew

	// ErrorIOFileTempClose is returned when closing a temporary file fails.
	ErrorIOFileTempClose

	// ErrorIOFileTempRemove is returned when removing a temporary file fails.
	ErrorIOFileTempRemove

	// ErrorNilPointer is returned when a function is called on a nil receiver.
	ErrorNilPointer
)

func init() {
	liberr.RegisterIdFctMessage(ErrorParamsEmpty, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case liberr.UnknownError:
		return liberr.NullMessage
	case ErrorParamsEmpty:
		return "given parameters is empty"
	case ErrorIOFileStat:
		return "error occur while trying to get stat of file"
	case ErrorIOFileOpen:
		return "error occur while trying to open file"
	case ErrorIOFileTempNew:
		return "error occur while trying to create new temporary file"
	case ErrorIOFileTempClose:
		return "closing temporary file occurs error"
	case ErrorIOFileTempRemove:
		return "error occurs on removing temporary file"
	case ErrorNilPointer:
		return "cannot call function for a nil pointer"
	}

	return liberr.NullMessage
}
