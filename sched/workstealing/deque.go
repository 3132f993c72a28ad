// Package workstealing implements spec.md §4.3's per-CPU work-stealing
// scheduler: one Chase-Lev deque per (carrier, priority level), random
// victim selection with bounded backoff, and epoch/hazard-protected
// reads of stolen TCB handles.
package workstealing

import (
	"sync/atomic"

	"github.com/NathanVRyver/preemptive-threads-sub001/internal/tcb"
)

// deque is the classic Chase-Lev bounded work-stealing deque. The owner
// pushes and pops at the bottom end as a LIFO without contending atomics
// in the common case; thieves steal from the top end as a FIFO, resolving
// the last-element race against the owner with a CAS on top.
//
// Its backing array is fixed-capacity and allocated once at construction,
// per spec.md §3's "Nodes are allocated once at scheduler construction" -
// this implementation does not grow, trading an unbounded deque for the
// simplicity of never needing to retire the backing array itself. Only
// the *tcb.TCB handles a slot briefly holds are subject to the retirement
// protocol in internal/reclaim.
// sizeOfCacheLine pads top and bottom onto separate cache lines: the
// owner hammers bottom every push/pop while thieves hammer top every
// steal attempt, and without separation the two would false-share.
const sizeOfCacheLine = 128
const sizeOfAtomicInt64 = 8

type deque struct {
	buf  []atomic.Pointer[tcb.TCB]
	mask int64

	_      [sizeOfCacheLine]byte
	top    atomic.Int64
	_      [sizeOfCacheLine - sizeOfAtomicInt64]byte
	bottom atomic.Int64
	_      [sizeOfCacheLine - sizeOfAtomicInt64]byte
}

func newDeque(capacity int) *deque {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		panic("workstealing: deque capacity must be a power of 2")
	}
	return &deque{
		buf:  make([]atomic.Pointer[tcb.TCB], capacity),
		mask: int64(capacity - 1),
	}
}

// pushBottom is the owner-only LIFO push. Returns false if the deque is
// at capacity.
func (d *deque) pushBottom(t *tcb.TCB) bool {
	b := d.bottom.Load()
	top := d.top.Load()
	if b-top >= int64(len(d.buf)) {
		return false
	}
	d.buf[b&d.mask].Store(t)
	d.bottom.Store(b + 1)
	return true
}

// popBottom is the owner-only LIFO pop. Returns nil, false if the deque
// is empty. The last remaining element races against concurrent thieves
// and is resolved with a CAS on top, per the Chase-Lev discipline.
func (d *deque) popBottom() (*tcb.TCB, bool) {
	b := d.bottom.Load() - 1
	d.bottom.Store(b)
	top := d.top.Load()

	if top > b {
		// Already empty; restore bottom to the canonical empty position.
		d.bottom.Store(b + 1)
		return nil, false
	}

	t := d.buf[b&d.mask].Load()
	if top == b {
		// Exactly one element left: race a concurrent steal via CAS.
		if !d.top.CompareAndSwap(top, top+1) {
			t = nil
		}
		d.bottom.Store(b + 1)
		return t, t != nil
	}
	return t, true
}

// stealTop is the thief-side FIFO steal. Returns nil, false on an empty
// deque or a lost race against another thief/the owner's popBottom.
func (d *deque) stealTop() (*tcb.TCB, bool) {
	top := d.top.Load()
	bottom := d.bottom.Load()
	if top >= bottom {
		return nil, false
	}

	t := d.buf[top&d.mask].Load()
	if !d.top.CompareAndSwap(top, top+1) {
		return nil, false
	}
	return t, true
}

func (d *deque) size() int64 {
	b := d.bottom.Load()
	t := d.top.Load()
	if b-t < 0 {
		return 0
	}
	return b - t
}
