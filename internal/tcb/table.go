package tcb

import (
	"sync"

	"github.com/NathanVRyver/preemptive-threads-sub001/internal/threaderr"
)

// Table is the process-wide dense array of TCBs, indexed by ThreadID. It
// grows under a lock only at spawn, per spec.md §5's shared resource
// policy; lookups hold the same lock only long enough to snapshot the
// slice header.
type Table struct {
	mu       sync.Mutex
	entries  []*TCB
	maxCount int
}

// NewTable constructs an empty table capped at maxThreads entries. A
// maxThreads of zero means unbounded.
func NewTable(maxThreads int) *Table {
	return &Table{maxCount: maxThreads}
}

// Insert appends tcb at the next dense id and returns it. Returns
// MaxThreadsReached if the table is already at capacity.
func (tb *Table) Insert(newTCB func(id ThreadID) *TCB) (*TCB, error) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if tb.maxCount > 0 && len(tb.entries) >= tb.maxCount {
		return nil, threaderr.ErrMaxThreadsReached
	}

	id := ThreadID(len(tb.entries))
	t := newTCB(id)
	tb.entries = append(tb.entries, t)
	return t, nil
}

// Get returns the TCB for id, or InvalidThreadID if id was never issued or
// has since been Cleared. The slice header is read under the lock and the
// slice is only ever appended to, never shrunk, so an id inserted after
// that snapshot is reported as not-yet-visible, never as a stale pointer.
// A Cleared slot holds nil rather
// than being removed, so ids stay dense and stable.
func (tb *Table) Get(id ThreadID) (*TCB, error) {
	tb.mu.Lock()
	entries := tb.entries
	tb.mu.Unlock()

	if int(id) < 0 || int(id) >= len(entries) {
		return nil, threaderr.ErrInvalidThreadID
	}
	t := entries[id]
	if t == nil {
		return nil, threaderr.ErrInvalidThreadID
	}
	return t, nil
}

// Clear nils id's slot once its TCB is no longer reachable through any
// carrier/deque reference (the caller's retirement protocol, not Table,
// is responsible for establishing that): a subsequent Get or Range no
// longer sees it. id's slot stays allocated so later ids remain dense;
// the id itself is never reissued.
func (tb *Table) Clear(id ThreadID) error {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if int(id) < 0 || int(id) >= len(tb.entries) {
		return threaderr.ErrInvalidThreadID
	}
	tb.entries[id] = nil
	return nil
}

// Len reports the number of ids issued so far, including any since
// Cleared.
func (tb *Table) Len() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return len(tb.entries)
}

// Range calls fn for every issued, not-yet-Cleared TCB, in id order. fn
// must not call back into Insert or Clear.
func (tb *Table) Range(fn func(*TCB)) {
	tb.mu.Lock()
	entries := tb.entries
	tb.mu.Unlock()

	for _, t := range entries {
		if t == nil {
			continue
		}
		fn(t)
	}
}
