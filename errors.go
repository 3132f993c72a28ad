package threads

import (
	"errors"
	"os"

	"github.com/NathanVRyver/preemptive-threads-sub001/internal/threaderr"
)

// ThreadError is the closed failure kind the library surface returns, per
// spec.md §7. Construct or compare values with the sentinels below and
// errors.Is, never with type assertions against the concrete type.
type ThreadError = threaderr.Error

// Sentinel values for errors.Is comparisons against returned errors.
var (
	ErrMaxThreadsReached  = threaderr.ErrMaxThreadsReached
	ErrInvalidThreadID    = threaderr.ErrInvalidThreadID
	ErrThreadNotRunnable  = threaderr.ErrThreadNotRunnable
	ErrStackOverflow      = threaderr.ErrStackOverflow
	ErrSchedulerFull      = threaderr.ErrSchedulerFull
	ErrStackPoolExhausted = threaderr.ErrStackPoolExhausted
)

// errFatalInvariant is logged alongside every fatal() call. It is not part
// of the closed ThreadError taxonomy - nothing ever returns it to a
// caller - it exists only to give the log line an Err field.
var errFatalInvariant = errors.New("threads: unrecoverable runtime invariant violated")

// fatal reports an invariant violation discovered outside the library's
// error-returning boundary - a corrupted context, a scheduler invariant
// broken in a way the runtime cannot itself repair - and aborts the
// process, per spec.md §7: "internal errors discovered at context-switch
// time... are fatal and abort the process, the invariants they represent
// cannot be restored." Unlike ErrStackOverflow (which is fatal only to
// the offending thread), these conditions compromise shared scheduler
// state and cannot be isolated to one thread.
func fatal(msg string, kv ...any) {
	getLogger().Error(msg, errFatalInvariant, kv...)
	os.Exit(2)
}
