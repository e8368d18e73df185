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

//go:build windows

package laio

import (
	"sync"
	"syscall"
	"time"
	"unsafe"

	"github.com/brickingsoft/errors"
	"golang.org/x/sys/windows"
)

func newCompletionQueue(capacityHint int) (completionQueue, error) {
	return newPortQueue(capacityHint)
}

// portOp pins one OVERLAPPED for the kernel for the lifetime of a native
// request. The overlapped must stay the first field: completions are cast
// back to the record from the dequeued OVERLAPPED pointer.
type portOp struct {
	ov     windows.Overlapped
	req    *request
	posted int32 // error code of a synthesized completion, 0 otherwise
}

// portQueue drives an I/O completion port. NumberOfConcurrentThreads stays 0
// so the kernel sizes its own worker pool.
type portQueue struct {
	port     windows.Handle
	mu       sync.Mutex
	assoc    map[int]struct{}
	inflight map[*portOp]struct{}
}

func newPortQueue(capacityHint int) (*portQueue, error) {
	_ = capacityHint // the port is unbounded and self-scaling
	port, err := windows.CreateIoCompletionPort(windows.InvalidHandle, 0, 0, 0)
	if err != nil {
		return nil, errors.From(classifyPortError(err),
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithWrap(err),
		)
	}
	return &portQueue{
		port:     port,
		assoc:    make(map[int]struct{}),
		inflight: make(map[*portOp]struct{}),
	}, nil
}

// classifyPortError maps Win32 error codes to the portable taxonomy.
func classifyPortError(err error) error {
	switch {
	case errors.Is(err, windows.ERROR_NOT_ENOUGH_MEMORY), errors.Is(err, windows.ERROR_OUTOFMEMORY):
		return ErrOutOfMemory
	case errors.Is(err, windows.ERROR_NO_SYSTEM_RESOURCES):
		return ErrResourceLimit
	case errors.Is(err, windows.ERROR_INVALID_PARAMETER):
		return ErrInvalidArgument
	}
	return ErrIO
}

func (q *portQueue) Associate(fd int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.assoc[fd]; ok {
		return nil
	}
	if _, err := windows.CreateIoCompletionPort(windows.Handle(fd), q.port, 0, 0); err != nil {
		return err
	}
	q.assoc[fd] = struct{}{}
	return nil
}

// track registers a new inflight record so the kernel-held OVERLAPPED
// survives until its completion is dequeued.
func (q *portQueue) track(req *request, off int64) *portOp {
	op := &portOp{req: req}
	op.ov.Offset = uint32(off)
	op.ov.OffsetHigh = uint32(off >> 32)
	q.mu.Lock()
	q.inflight[op] = struct{}{}
	q.mu.Unlock()
	return op
}

func (q *portQueue) untrack(op *portOp) {
	q.mu.Lock()
	delete(q.inflight, op)
	q.mu.Unlock()
}

func (q *portQueue) SubmitRead(fd int, b []byte, off int64, req *request) error {
	op := q.track(req, off)
	err := windows.ReadFile(windows.Handle(fd), b, nil, &op.ov)
	if err != nil && err != windows.ERROR_IO_PENDING {
		q.untrack(op)
		return err
	}
	// immediate success still posts to the port; the record is consumed there
	return nil
}

func (q *portQueue) SubmitWrite(fd int, b []byte, off int64, req *request) error {
	op := q.track(req, off)
	err := windows.WriteFile(windows.Handle(fd), b, nil, &op.ov)
	if err != nil && err != windows.ERROR_IO_PENDING {
		q.untrack(op)
		return err
	}
	return nil
}

func (q *portQueue) Flush(fd int) error {
	return windows.FlushFileBuffers(windows.Handle(fd))
}

func (q *portQueue) Post(req *request, n int, errno int32) {
	op := q.track(req, 0)
	op.posted = errno
	if err := windows.PostQueuedCompletionStatus(q.port, uint32(n), 0, &op.ov); err != nil {
		q.untrack(op)
	}
}

func (q *portQueue) WaitNext(timeout time.Duration) (completion, error) {
	ms := uint32(windows.INFINITE)
	if timeout >= 0 {
		ms = uint32(timeout / time.Millisecond)
	}

	var qty uint32
	var key uintptr
	var ovp *windows.Overlapped
	err := windows.GetQueuedCompletionStatus(q.port, &qty, &key, &ovp, ms)
	if ovp == nil {
		if err == syscall.Errno(windows.WAIT_TIMEOUT) {
			return completion{}, errWaitTimeout
		}
		// fatal dequeue failure; the caller translates the native code
		return completion{}, err
	}

	op := (*portOp)(unsafe.Pointer(ovp))
	q.untrack(op)
	code := op.posted
	if code == 0 && err != nil {
		// the dequeue succeeded but the operation itself failed
		code = nativeErrno(err)
	}
	return completion{req: op.req, n: int(qty), errno: code}, nil
}

func (q *portQueue) Close() error {
	return windows.CloseHandle(q.port)
}
