// The MIT License (MIT)
//
// Copyright (c) 2026 laio authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package laio exposes the Linux libaio submission/completion surface on top
// of a completion-queue based native async I/O engine.
//
// laio acts in proactor mode, https://en.wikipedia.org/wiki/Proactor_pattern.
// Users submit batches of I/O control blocks against a context and retrieve
// completion events with min/max/timeout semantics. On Windows the native
// engine is an I/O completion port; elsewhere requests are serviced by pooled
// workers feeding an in-process completion queue with the same contract.
package laio

import (
	"github.com/brickingsoft/errors"
)

var (
	// ErrInvalidArgument means the call carried malformed parameters,
	// such as a nil context or an inverted min/max pair
	ErrInvalidArgument = errors.Define("laio: invalid argument")
	// ErrOutOfMemory means allocation or native resource exhaustion
	ErrOutOfMemory = errors.Define("laio: out of memory")
	// ErrResourceLimit means a native resource limit was reached
	ErrResourceLimit = errors.Define("laio: resource limit reached")
	// ErrIO means the native wait primitive failed for a reason other than timeout
	ErrIO = errors.Define("laio: i/o error")
	// ErrClosed means the context has been destroyed
	ErrClosed = errors.Define("laio: context destroyed")
)

// IsInvalidArgument reports whether err is an invalid-argument failure.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsClosed reports whether err is due to a destroyed context.
func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}

const (
	errMetaPkgKey = "pkg"
	errMetaPkgVal = "laio"
)

// OpCode defines the logical operation carried by an IOCB.
type OpCode int16

const (
	// OpRead reads IOCB.Buf from IOCB.Offset
	OpRead OpCode = iota
	// OpWrite writes IOCB.Buf at IOCB.Offset
	OpWrite
	// OpReadv reads the IOCB.Vecs segments starting at IOCB.Offset
	OpReadv
	// OpWritev writes the IOCB.Vecs segments starting at IOCB.Offset
	OpWritev
	// OpSync flushes file data and metadata
	OpSync
	// OpDataSync is accepted as a sync; no data/metadata distinction is made
	OpDataSync
)

func (op OpCode) String() string {
	switch op {
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	case OpReadv:
		return "readv"
	case OpWritev:
		return "writev"
	case OpSync:
		return "sync"
	case OpDataSync:
		return "datasync"
	}
	return "unknown"
}

// IOCB describes one logical operation. It is caller-owned and read-only to
// this package; the buffers it references must remain valid and unmoved from
// submission until the matching completion event has been observed. Payloads
// are never copied.
type IOCB struct {
	// Data is an opaque user tag, returned verbatim in the completion event
	Data any
	// Op selects the operation
	Op OpCode
	// Prio is accepted but not honored
	Prio int16
	// Fd is the target file handle. On Windows this is the HANDLE value.
	Fd int
	// Buf is the payload for OpRead/OpWrite
	Buf []byte
	// Offset is the file offset; for vectored operations the base offset
	Offset int64
	// Vecs is the ordered segment list for OpReadv/OpWritev
	Vecs [][]byte
}

// Event is one logical completion. Exactly one Event is produced for every
// accepted operation, except zero-segment vectored submissions which are
// accepted but eventless.
type Event struct {
	// Data is IOCB.Data, passed through unchanged
	Data any
	// IOCB points at the submitted control block
	IOCB *IOCB
	// Res is the number of bytes transferred; for a vectored operation the
	// sum across its segments
	Res int64
	// Res2 is 0 on success, else the positive native error code
	Res2 int64
}
