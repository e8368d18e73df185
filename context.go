package laio

import (
	"sync"
	"sync/atomic"

	"github.com/brickingsoft/errors"
)

// liveContexts counts contexts set up and not yet destroyed, for resource
// accounting in tests.
var liveContexts int64

// IOContext owns one native completion queue. The queue is valid for the
// whole lifetime of the context and is shared by every operation submitted
// on it; multiple goroutines may drain it concurrently through GetEvents.
type IOContext struct {
	queue   completionQueue
	die     chan struct{}
	dieOnce sync.Once
}

// Setup creates a context backed by a fresh native completion queue, bound
// to no handle yet. capacityHint is advisory only: the underlying engine is
// unbounded and self-scaling, and both backends ignore it.
func Setup(capacityHint int) (ctx *IOContext, err error) {
	defer func() {
		if r := recover(); r != nil {
			ctx = nil
			err = errors.From(ErrOutOfMemory, errors.WithMeta(errMetaPkgKey, errMetaPkgVal))
		}
	}()
	q, qerr := newCompletionQueue(capacityHint)
	if qerr != nil {
		return nil, qerr
	}
	atomic.AddInt64(&liveContexts, 1)
	return &IOContext{queue: q, die: make(chan struct{})}, nil
}

// Destroy releases the completion queue. It always succeeds: a nil context
// is a no-op and repeated calls are harmless. Destroy does not wait for or
// cancel operations still in flight; callers must quiesce first, late native
// completions are discarded.
func (c *IOContext) Destroy() error {
	if c == nil {
		return nil
	}
	c.dieOnce.Do(func() {
		close(c.die)
		_ = c.queue.Close()
		atomic.AddInt64(&liveContexts, -1)
	})
	return nil
}

// closed reports whether Destroy has run.
func (c *IOContext) closed() bool {
	select {
	case <-c.die:
		return true
	default:
		return false
	}
}
