// Package tcb implements the thread control block: per-thread state,
// saved context, and the owned stack, per spec.md §3's Data Model.
package tcb

import (
	"sync/atomic"

	"github.com/NathanVRyver/preemptive-threads-sub001/arch"
	"github.com/NathanVRyver/preemptive-threads-sub001/internal/stack"
)

// ThreadID is a dense, monotonically assigned identifier. IDs are never
// reused within a run, per spec.md §3.
type ThreadID uint64

// State is one of the four run states a TCB may occupy.
type State int32

const (
	Ready State = iota
	Running
	Blocked
	Exited
)

func (s State) String() string {
	switch s {
	case Ready:
		return "Ready"
	case Running:
		return "Running"
	case Blocked:
		return "Blocked"
	case Exited:
		return "Exited"
	default:
		return "Unknown"
	}
}

// NoAffinity marks a TCB with no preferred carrier.
const NoAffinity int32 = -1

// TCB is the thread control block. Context and Stack are readable/writable
// only by the owning carrier while Running, or by the scheduler while the
// thread is not Running - the package does not itself enforce this; callers
// must respect the discipline described in spec.md §3.
type TCB struct {
	ID      ThreadID
	state   atomic.Int32
	Priority int32

	Context *arch.Context
	Stack   *stack.Stack

	preemptRequested atomic.Bool
	cpuAffinity      atomic.Int32

	// refs counts outstanding dispatch references: one held by whichever
	// carrier currently has this TCB popped out of a ready structure,
	// for the duration of that dispatch. The table's own slice entry is
	// not itself counted - Go's GC keeps the TCB reachable regardless;
	// refs exists only to gate when the stack may return to its pool.
	// The scheduler retains on every successful pop (local or stolen)
	// and releases on the matching re-enqueue or thread exit, per
	// spec.md §9's reclamation-ordering decision.
	refs atomic.Int32
}

// New constructs a TCB in the Ready state with no outstanding dispatch
// references.
func New(id ThreadID, priority int32, ctx *arch.Context, stk *stack.Stack) *TCB {
	t := &TCB{ID: id, Priority: priority, Context: ctx, Stack: stk}
	t.state.Store(int32(Ready))
	t.cpuAffinity.Store(NoAffinity)
	return t
}

// State returns the current run state.
func (t *TCB) State() State { return State(t.state.Load()) }

// SetState stores a new run state unconditionally. Callers are responsible
// for only ever making the transitions spec.md §3 allows.
func (t *TCB) SetState(s State) { t.state.Store(int32(s)) }

// CompareAndSwapState performs an atomic transition, used by the scheduler
// to win the race to dispatch or retire a thread.
func (t *TCB) CompareAndSwapState(old, new State) bool {
	return t.state.CompareAndSwap(int32(old), int32(new))
}

// RequestPreempt sets the preempt_requested flag; cleared at the next
// yield or dispatch.
func (t *TCB) RequestPreempt() { t.preemptRequested.Store(true) }

// TakePreemptRequest atomically reads and clears the flag, reporting
// whether a preemption was pending.
func (t *TCB) TakePreemptRequest() bool {
	return t.preemptRequested.CompareAndSwap(true, false)
}

// Affinity returns the preferred carrier index, or NoAffinity.
func (t *TCB) Affinity() int32 { return t.cpuAffinity.Load() }

// SetAffinity records a preferred carrier index, used only by the
// work-stealing scheduler.
func (t *TCB) SetAffinity(carrier int32) { t.cpuAffinity.Store(carrier) }
