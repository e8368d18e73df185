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

//go:build !windows

package laio

import (
	"context"
	"sync"
	"time"

	"github.com/brickingsoft/errors"
	"github.com/brickingsoft/rxp"
	"github.com/eapache/queue"
	"golang.org/x/sys/unix"
)

func newCompletionQueue(capacityHint int) (completionQueue, error) {
	return newPoolQueue(capacityHint)
}

// poolQueue emulates a native completion port on POSIX hosts: requests run as
// pread/pwrite on pooled rxp executors and their completions are delivered
// through an unbounded FIFO in arrival order. WaitNext hands each waiter its
// own wakeup channel, so concurrent drainers never lose a notification.
type poolQueue struct {
	exec    rxp.Executors
	mu      sync.Mutex
	ready   *queue.Queue // of completion
	waiters []chan struct{}
	closed  bool
}

func newPoolQueue(capacityHint int) (*poolQueue, error) {
	_ = capacityHint // the ready queue grows on demand
	return &poolQueue{
		exec:  rxp.New(),
		ready: queue.New(),
	}, nil
}

func (q *poolQueue) Associate(fd int) error {
	// no port to bind to; resolving the handle is the whole contract
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return err
	}
	return nil
}

func (q *poolQueue) SubmitRead(fd int, b []byte, off int64, req *request) error {
	return q.exec.Execute(context.Background(), func() {
		n, err := unix.Pread(fd, b, off)
		if n < 0 {
			n = 0
		}
		q.push(completion{req: req, n: n, errno: nativeErrno(err)})
	})
}

func (q *poolQueue) SubmitWrite(fd int, b []byte, off int64, req *request) error {
	return q.exec.Execute(context.Background(), func() {
		n, err := unix.Pwrite(fd, b, off)
		if n < 0 {
			n = 0
		}
		q.push(completion{req: req, n: n, errno: nativeErrno(err)})
	})
}

func (q *poolQueue) Flush(fd int) error {
	return unix.Fsync(fd)
}

func (q *poolQueue) Post(req *request, n int, errno int32) {
	q.push(completion{req: req, n: n, errno: errno})
}

// push delivers one completion and wakes one waiter, if any. Completions
// arriving after Close are discarded.
func (q *poolQueue) push(c completion) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.ready.Add(c)
	var w chan struct{}
	if len(q.waiters) > 0 {
		w = q.waiters[0]
		q.waiters = q.waiters[1:]
	}
	q.mu.Unlock()
	if w != nil {
		close(w)
	}
}

func (q *poolQueue) WaitNext(timeout time.Duration) (completion, error) {
	var deadline <-chan time.Time
	if timeout >= 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return completion{}, errors.From(ErrClosed, errors.WithMeta(errMetaPkgKey, errMetaPkgVal))
		}
		if q.ready.Length() > 0 {
			c := q.ready.Remove().(completion)
			q.mu.Unlock()
			return c, nil
		}
		w := make(chan struct{})
		q.waiters = append(q.waiters, w)
		q.mu.Unlock()

		select {
		case <-w:
			// signaled; loop and race for the completion
		case <-deadline:
			q.mu.Lock()
			q.dropWaiter(w)
			// re-check under the lock: a push may have raced the timer
			if !q.closed && q.ready.Length() > 0 {
				c := q.ready.Remove().(completion)
				q.mu.Unlock()
				return c, nil
			}
			q.mu.Unlock()
			return completion{}, errWaitTimeout
		}
	}
}

// dropWaiter removes w from the waiter list. Caller holds the lock.
func (q *poolQueue) dropWaiter(w chan struct{}) {
	for i, v := range q.waiters {
		if v == w {
			q.waiters = append(q.waiters[:i], q.waiters[i+1:]...)
			return
		}
	}
}

func (q *poolQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	ws := q.waiters
	q.waiters = nil
	q.mu.Unlock()
	for _, w := range ws {
		close(w)
	}
	return q.exec.Close()
}
