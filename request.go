package laio

import "sync/atomic"

// request kinds
const (
	reqSingle int32 = iota
	reqSegment
)

// request tracks one native async operation dequeued from the completion
// queue: either a whole logical operation, or one segment of a vectored one.
// A request is consumed exactly once, by the completion that resolves to it.
type request struct {
	kind int32
	iocb *IOCB       // reqSingle
	agg  *aggregator // reqSegment
}

func singleRequest(cb *IOCB) *request {
	return &request{kind: reqSingle, iocb: cb}
}

func segmentRequest(agg *aggregator) *request {
	return &request{kind: reqSegment, agg: agg}
}

// aggregator reduces the N segment completions of one vectored operation to a
// single logical completion. Segments complete concurrently on native worker
// threads, so all fields are updated with atomics; the increment that brings
// done to total identifies the unique caller that emits the event.
type aggregator struct {
	iocb  *IOCB
	total int32
	done  int32
	bytes int64
	errno int32 // first captured native error, 0 = none
}

func newAggregator(cb *IOCB, total int) *aggregator {
	return &aggregator{iocb: cb, total: int32(total)}
}

// complete folds one segment completion into the aggregator and reports
// whether the caller is the one that finished it. Successful segments add
// their byte counts; the first failing segment to arrive wins the error slot.
func (a *aggregator) complete(n int, errno int32) bool {
	if errno == 0 {
		atomic.AddInt64(&a.bytes, int64(n))
	} else {
		atomic.CompareAndSwapInt32(&a.errno, 0, errno)
	}
	return atomic.AddInt32(&a.done, 1) == a.total
}

// result returns the consolidated byte total and error code. Only valid for
// the caller complete reported as the finisher.
func (a *aggregator) result() (res int64, res2 int64) {
	return atomic.LoadInt64(&a.bytes), int64(atomic.LoadInt32(&a.errno))
}
