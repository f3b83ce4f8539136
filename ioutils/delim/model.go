/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
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

package delim

import (
	"bytes"
	"errors"
	"io"
	"sync"

	libsiz "github.com/nabbar/grbl-engine/size"
)

// ErrInstance is returned by any operation performed on a closed or invalid BufferDelim.
var ErrInstance = errors.New("delim: closed or invalid instance")

// ErrBufferFull is returned by ReadBytes when the accumulated part reaches the
// configured maximum size without a delimiter and discard-on-overflow is off.
// The call still returns the accumulated bytes, so the caller can decide what
// to do with the oversized part.
var ErrBufferFull = errors.New("delim: buffer full before delimiter")

// defaultDiscardSize is the accumulation bound applied when discard-on-overflow
// is requested without an explicit maximum size.
const defaultDiscardSize = 32 * 1024

// chunkSize is how many bytes fill pulls from the input per read. Kept small so
// that a huge configured maximum never translates into a huge upfront
// allocation.
const chunkSize = 512

// dlm is the internal implementation of the BufferDelim interface.
// It owns a bounded byte accumulator fed from the input stream and sliced into
// delimiter-terminated parts.
//
// Fields:
//   - i: The underlying io.ReadCloser that provides the input stream
//   - r: The delimiter rune used to separate data chunks
//   - b: The internal byte accumulator holding read-but-unconsumed bytes
//   - s: The maximum size of one part (0 = unbounded)
//   - d: Flag indicating whether to discard data on buffer overflow
//   - f: Sticky input error (io.EOF once the stream is exhausted)
//
// The struct is not exported to maintain encapsulation and allow future implementation changes
// without breaking the public API.
type dlm struct {
	m sync.Mutex
	i io.ReadCloser // input io.ReadCloser
	r rune          // delimiter rune character
	b []byte        // buffer
	s libsiz.Size   // size of buffer
	d bool          // if max size is reached, discard overflow or return error
	f error         // sticky input error, io.EOF once the stream is drained
}

// Delim returns the delimiter rune configured for this BufferDelim instance.
// This value is set during construction via New() and remains constant for the lifetime of the instance.
func (o *dlm) Delim() rune {
	return o.r
}

// delimByte narrows the configured delimiter rune to the byte the accumulator
// is scanned for. Delimiters used with this package are single-byte control
// characters ('\n', 0x00, ...); for a wider rune the scan matches its low
// byte, which for UTF-8 input is the rune's final encoded byte.
func (o *dlm) delimByte() byte {
	return byte(o.r)
}

// sizeMax resolves the effective accumulation bound: the configured maximum
// when set, defaultDiscardSize when only discard-on-overflow was requested,
// zero (unbounded) otherwise.
func (o *dlm) sizeMax() int {
	if o.s > 0 {
		return o.s.Int()
	}
	if o.d {
		return defaultDiscardSize
	}
	return 0
}

// fill tops the accumulator up from the input: in bounded mode it reads until
// the accumulator holds sizeMax bytes or the input errors; in unbounded mode it
// reads until a delimiter is present or the input errors. The input is read in
// chunkSize slices so a large configured maximum never allocates its full size
// upfront. The sticky input error (io.EOF once the stream is drained) is
// returned so callers can report exhaustion alongside the data they extract.
func (o *dlm) fill() error {
	var (
		max = o.sizeMax()
		tmp [chunkSize]byte
	)

	for o.f == nil {
		if max > 0 {
			if len(o.b) >= max {
				break
			}
		} else if bytes.IndexByte(o.b, o.delimByte()) >= 0 {
			break
		}

		w := len(tmp)
		if max > 0 && max-len(o.b) < w {
			w = max - len(o.b)
		}

		n, e := o.i.Read(tmp[:w])
		if n > 0 {
			o.b = append(o.b, tmp[:n]...)
		}
		if e != nil {
			o.f = e
		}
	}

	return o.f
}

// consume slices the first n accumulated bytes off as one part. A zero n
// yields nil so callers hand a nil part back at end of stream.
func (o *dlm) consume(n int) []byte {
	if n <= 0 {
		return nil
	}
	p := o.b[:n]
	o.b = o.b[n:]
	return p
}

// extractPart pops the next part off the accumulator after a fill: the bytes
// up to and including the first delimiter, or the overflow/end-of-stream
// outcome when no delimiter is buffered. The error follows ReadBytes'
// contract: nil for a complete part, ErrBufferFull for an oversized part
// without discard, io.EOF alongside whatever remained at end of stream.
// Caller must hold the lock and have called fill first (its result is e).
func (o *dlm) extractPart(e error) ([]byte, error) {
	max := o.sizeMax()

	if i := bytes.IndexByte(o.b, o.delimByte()); i >= 0 {
		if max == 0 || i+1 <= max {
			return o.consume(i + 1), nil
		}

		// A delimiter is buffered but the part it closes is oversized
		// (leftover bytes of a previous discard can exceed the bound).
		if o.d {
			p := o.b[:max]
			p[max-1] = o.delimByte()
			o.b = o.b[i+1:]
			return p, nil
		}
		return o.consume(max), ErrBufferFull
	}

	if max > 0 && len(o.b) >= max {
		if !o.d {
			return o.consume(max), ErrBufferFull
		}
		return o.discardOverflow(max)
	}

	if e != nil {
		if errors.Is(e, io.EOF) {
			return o.consume(len(o.b)), io.EOF
		}
		return nil, e
	}

	// fill stops only on a buffered delimiter, a full accumulator, or an
	// input error, so there is nothing left to extract here.
	return nil, nil
}

// discardOverflow handles a full accumulator with no delimiter when
// discard-on-overflow is on: input bytes are dropped until the part's closing
// delimiter is found, the truncated part is returned as its first max-1 bytes
// plus the delimiter, and whatever followed the delimiter is kept for the next
// part. At end of input the accumulator is returned as-is with io.EOF.
func (o *dlm) discardOverflow(max int) ([]byte, error) {
	var tmp [chunkSize]byte

	for {
		n, e := o.i.Read(tmp[:])

		if n > 0 {
			if j := bytes.IndexByte(tmp[:n], o.delimByte()); j >= 0 {
				p := o.b[:max]
				p[max-1] = o.delimByte()
				o.b = append([]byte(nil), tmp[j+1:n]...)
				return p, nil
			}
		}

		if e != nil {
			o.f = e
			if errors.Is(e, io.EOF) {
				return o.consume(max), io.EOF
			}
			return o.consume(max), e
		}
	}
}

// readBuf copies the next delimited part into p, expanding a too-small p
// locally the way bufio-style readers do, and reports the input's exhaustion
// (io.EOF) even when the part itself came off cleanly. Caller must hold the
// lock.
func (o *dlm) readBuf(p []byte) (int, error) {
	e := o.fill()

	b, err := o.extractPart(e)

	if len(b) > 0 {
		if cap(p) < len(b) {
			p = append(p, make([]byte, len(b)-len(p))...)
		}
		copy(p, b)
	}

	if err == nil && errors.Is(e, io.EOF) && len(o.b) == 0 {
		err = io.EOF
	}

	return len(b), err
}
