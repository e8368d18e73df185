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
	"github.com/brickingsoft/errors"
)

// Submit fans each control block out into one or more native async requests
// and returns the number of operations accepted, which may be less than
// len(iocbs). Submission is best-effort per operation, not all-or-nothing:
// an operation whose handle cannot be resolved is skipped and uncounted, and
// no event will ever arrive for it. An accepted operation produces exactly
// one completion event, except a zero-segment vectored operation which is
// counted but eventless.
//
// Sync and data-sync flush inline, blocking the caller for the duration of
// the native flush; the completion is then delivered through the normal
// retrieval path as an ordinary zero-byte event. A failed flush, or a
// vectored segment whose native submission fails immediately, still counts
// and surfaces as an event with a non-zero secondary result.
func (c *IOContext) Submit(iocbs []*IOCB) (int, error) {
	if c == nil {
		return 0, errors.From(ErrInvalidArgument, errors.WithMeta(errMetaPkgKey, errMetaPkgVal))
	}
	if c.closed() {
		return 0, errors.From(ErrClosed, errors.WithMeta(errMetaPkgKey, errMetaPkgVal))
	}

	accepted := 0
	for _, cb := range iocbs {
		if cb == nil || cb.Fd < 0 {
			continue
		}
		if err := c.queue.Associate(cb.Fd); err != nil {
			continue
		}

		switch cb.Op {
		case OpSync, OpDataSync:
			req := singleRequest(cb)
			if err := c.queue.Flush(cb.Fd); err != nil {
				c.queue.Post(req, 0, nativeErrno(err))
				accepted++
				continue
			}
			// a zero-length read rides the normal completion path, so
			// the finished flush is observable as an ordinary event
			if err := c.queue.SubmitRead(cb.Fd, nil, 0, req); err != nil {
				c.queue.Post(req, 0, nativeErrno(err))
			}
			accepted++

		case OpRead:
			req := singleRequest(cb)
			if err := c.queue.SubmitRead(cb.Fd, cb.Buf, cb.Offset, req); err != nil {
				continue
			}
			accepted++

		case OpWrite:
			req := singleRequest(cb)
			if err := c.queue.SubmitWrite(cb.Fd, cb.Buf, cb.Offset, req); err != nil {
				continue
			}
			accepted++

		case OpReadv, OpWritev:
			if len(cb.Vecs) == 0 {
				// immediate no-op success: counted, no event
				accepted++
				continue
			}
			agg := newAggregator(cb, len(cb.Vecs))
			off := cb.Offset
			for _, seg := range cb.Vecs {
				req := segmentRequest(agg)
				var err error
				if cb.Op == OpReadv {
					err = c.queue.SubmitRead(cb.Fd, seg, off, req)
				} else {
					err = c.queue.SubmitWrite(cb.Fd, seg, off, req)
				}
				if err != nil {
					// the segment will never signal natively; post its
					// failure so the aggregator still reaches its total
					c.queue.Post(req, 0, nativeErrno(err))
				}
				off += int64(len(seg))
			}
			accepted++
		}
	}
	return accepted, nil
}
