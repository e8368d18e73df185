package laio

import (
	"time"

	"github.com/brickingsoft/errors"
)

// errWaitTimeout reports that WaitNext exhausted its budget with no
// completion to hand out. It never escapes GetEvents.
var errWaitTimeout = errors.Define("laio: wait timed out")

// completion is one native completion notification, resolved back to the
// request that issued it.
type completion struct {
	req   *request
	n     int   // bytes transferred
	errno int32 // 0 on success, else the native error code
}

// completionQueue is the boundary with the native async engine: register a
// handle, issue handle-scoped async operations tagged by a request, and
// block-wait for the next completion up to a timeout. On Windows the engine
// is an I/O completion port; elsewhere a worker pool with identical behavior.
type completionQueue interface {
	// Associate binds fd to the queue. Idempotent: re-associating an
	// already bound handle succeeds.
	Associate(fd int) error

	// SubmitRead issues one async read of b at off. The completion will
	// carry req. A nil or empty b completes with zero bytes.
	SubmitRead(fd int, b []byte, off int64, req *request) error

	// SubmitWrite is symmetric to SubmitRead.
	SubmitWrite(fd int, b []byte, off int64, req *request) error

	// Flush synchronously flushes fd, data and metadata together.
	Flush(fd int) error

	// Post injects a synthesized completion for req, as if the native
	// engine had delivered it.
	Post(req *request, n int, errno int32)

	// WaitNext dequeues the next completion, waiting up to timeout.
	// A negative timeout waits indefinitely, zero polls. Returns
	// errWaitTimeout when the budget elapses with nothing dequeued.
	WaitNext(timeout time.Duration) (completion, error)

	// Close releases the queue. In-flight operations are not awaited;
	// their completions are discarded.
	Close() error
}
