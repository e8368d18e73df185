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

package laio

import (
	"time"

	"github.com/brickingsoft/errors"
)

// GetEvents drains the completion queue into events, blocking until at least
// minNr logical events have been collected, at most maxNr, or the timeout
// elapses. It returns the number of events written into events, which may be
// fewer than minNr under timeout. A negative timeout blocks indefinitely;
// zero polls. With minNr and maxNr both zero it returns 0 immediately.
//
// While below minNr each wait uses the full caller timeout; once minNr is
// met the queue is only polled, so the call returns promptly even if more
// completions keep arriving. Multiple goroutines may call GetEvents on the
// same context concurrently; each native completion is consumed by exactly
// one of them.
func (c *IOContext) GetEvents(minNr, maxNr int, events []Event, timeout time.Duration) (int, error) {
	if c == nil {
		return 0, errors.From(ErrInvalidArgument, errors.WithMeta(errMetaPkgKey, errMetaPkgVal))
	}
	if c.closed() {
		return 0, errors.From(ErrClosed, errors.WithMeta(errMetaPkgKey, errMetaPkgVal))
	}
	if minNr < 0 || minNr > maxNr || maxNr > len(events) {
		return 0, errors.From(ErrInvalidArgument, errors.WithMeta(errMetaPkgKey, errMetaPkgVal))
	}
	if maxNr == 0 {
		return 0, nil
	}

	n := 0
	for n < maxNr {
		budget := timeout
		if n >= minNr {
			budget = 0
		}

		comp, err := c.queue.WaitNext(budget)
		if err != nil {
			if errors.Is(err, errWaitTimeout) {
				break
			}
			if errors.Is(err, ErrClosed) {
				return 0, err
			}
			// hard wait failure: no partial count travels with it
			return 0, errors.From(classify(err),
				errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
				errors.WithWrap(err),
			)
		}

		appended := false
		switch comp.req.kind {
		case reqSingle:
			cb := comp.req.iocb
			events[n] = Event{Data: cb.Data, IOCB: cb, Res: int64(comp.n), Res2: int64(comp.errno)}
			n++
			appended = true
		case reqSegment:
			agg := comp.req.agg
			if agg.complete(comp.n, comp.errno) {
				res, res2 := agg.result()
				cb := agg.iocb
				events[n] = Event{Data: cb.Data, IOCB: cb, Res: res, Res2: res2}
				n++
				appended = true
			}
		}

		if appended && n >= minNr && budget == 0 {
			break
		}
	}
	return n, nil
}
