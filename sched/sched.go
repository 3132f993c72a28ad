// Package sched defines the pluggable scheduler abstraction of spec.md
// §4.3 and its round-robin implementation. The work-stealing
// implementation lives in the sibling sched/workstealing package.
package sched

import (
	"github.com/NathanVRyver/preemptive-threads-sub001/arch"
	"github.com/NathanVRyver/preemptive-threads-sub001/internal/reclaim"
	"github.com/NathanVRyver/preemptive-threads-sub001/internal/stack"
	"github.com/NathanVRyver/preemptive-threads-sub001/internal/tcb"
)

// Scheduler is the operation set every scheduling policy implements, per
// spec.md §4.3. spec.md's operations are written without a CPU argument
// on spawn/enqueue_ready/mark_exited, implicitly relying on the calling
// carrier being identifiable from context (a CPU-local record in the
// original source). Go has no equivalent implicit carrier-local storage
// without reaching for thread-locals via cgo, so every operation here
// takes the calling carrier's index explicitly; the round-robin policy
// ignores it where its global queues make it irrelevant, and the
// work-stealing policy uses it to pick the owner deque.
type Scheduler interface {
	// Spawn constructs a TCB for a freshly bootstrapped thread at the
	// given priority and places it in the ready set, owned by carrier.
	Spawn(carrier int, priority int32, ctx *arch.Context, stk *stack.Stack) (tcb.ThreadID, error)
	// PickNext removes and returns the id of the thread carrier should run
	// next, or false if none is ready.
	PickNext(carrier int) (tcb.ThreadID, bool)
	// EnqueueReady places a previously running (or newly woken) thread
	// back into the ready set, owned by carrier.
	EnqueueReady(carrier int, id tcb.ThreadID) error
	// MarkExited transitions id to Exited. The caller is responsible for
	// releasing its stack once no carrier/deque/hazard-slot reference
	// remains, per spec.md §9.
	MarkExited(carrier int, id tcb.ThreadID) error
	// Current reports the id running on carrier, if any.
	Current(carrier int) (tcb.ThreadID, bool)
	// HasReady reports, without removing anything, whether carrier would
	// find a thread at priority minPriority or higher ready right now.
	// yield_now uses this, passing the yielding thread's own priority, to
	// decide whether rescheduling is even worth attempting: spec.md §4.6
	// only requires a voluntary yield to switch away "if a preemption is
	// requested or at least one equal-or-higher-priority thread is
	// ready" - a lower-priority thread becoming ready must not by itself
	// preempt a higher-priority one. PickNext itself may legitimately
	// block (bounded backoff) when it finds nothing, which is appropriate
	// for a carrier's own idle loop but not for this check.
	HasReady(carrier int, minPriority int32) bool
	// Table exposes the shared TCB table for id-to-TCB lookups by callers
	// that need direct access (the preemption driver, yield_now).
	Table() *tcb.Table
	// Reclaimer exposes the epoch/hazard reclamation strategy guarding
	// this scheduler's cross-carrier TCB handle reads, so an exited
	// thread's TCB can be retired through the same protocol that guards
	// stealing it, rather than freed unconditionally. Returns nil for a
	// policy with no concurrent cross-carrier readers of a TCB pointer to
	// guard (round robin: every queue is already behind a single mutex).
	Reclaimer() reclaim.Reclaimer
}
