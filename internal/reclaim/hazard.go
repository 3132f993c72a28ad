package reclaim

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/NathanVRyver/preemptive-threads-sub001/internal/ring"
)

// hazardSlotsPerCarrier is the fixed number of hazard pointer slots each
// carrier is given, per spec.md §4.4's "small fixed array of atomic
// pointer slots".
const hazardSlotsPerCarrier = 2

type hazardRetired struct {
	ptr  unsafe.Pointer
	free func()
}

// hazardReclaimer implements the Hazard strategy of spec.md §4.4: before
// dereferencing a node, a carrier publishes it into one of its own hazard
// slots and re-reads the owning location to confirm it still points there;
// retirement scans every carrier's slots and defers any node still named.
type hazardReclaimer struct {
	slots [][hazardSlotsPerCarrier]atomic.Pointer[byte]

	mu      sync.Mutex
	retired *ring.Buffer[hazardRetired]
}

func newHazardReclaimer(carriers int) *hazardReclaimer {
	return &hazardReclaimer{
		slots:   make([][hazardSlotsPerCarrier]atomic.Pointer[byte], carriers),
		retired: ring.New[hazardRetired](retirementBatchCapacity),
	}
}

func (r *hazardReclaimer) BeginAccess(carrier int, ptr unsafe.Pointer) {
	for i := range r.slots[carrier] {
		if r.slots[carrier][i].Load() == nil {
			r.slots[carrier][i].Store((*byte)(ptr))
			return
		}
	}
	// Every slot occupied: spec.md's slot count is a small fixed array, so
	// this indicates a caller bug (nested BeginAccess beyond the slot
	// budget) rather than a condition to recover from silently.
	panic("reclaim: hazard slots exhausted for carrier")
}

func (r *hazardReclaimer) Confirm(ptr unsafe.Pointer, reread func() unsafe.Pointer) bool {
	return reread() == ptr
}

func (r *hazardReclaimer) EndAccess(carrier int) {
	target := (*byte)(nil)
	_ = target
	for i := range r.slots[carrier] {
		// Clear the lowest-indexed occupied slot for this carrier; callers
		// pair BeginAccess/EndAccess without interleaving across carriers,
		// so clearing any one occupied slot per EndAccess keeps the count
		// balanced.
		if r.slots[carrier][i].Load() != nil {
			r.slots[carrier][i].Store(nil)
			return
		}
	}
}

func (r *hazardReclaimer) Retire(ptr unsafe.Pointer, free func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hazardousLocked(ptr) {
		if r.retired.Full() {
			// Sweep first: a slot may have cleared since this node's last
			// check, making room without growing.
			r.sweepLocked()
		}
		if !r.retired.PushBack(hazardRetired{ptr: ptr, free: free}) {
			// Still full after a sweep: every deferred node is genuinely
			// still hazardous. None of them may be freed - spec.md §4.4
			// forbids freeing a node any concurrent thief still holds a
			// reference to - so grow the queue instead of forcing it.
			r.retired.Grow()
			r.retired.PushBack(hazardRetired{ptr: ptr, free: free})
		}
		return
	}
	free()
	r.sweepLocked()
}

func (r *hazardReclaimer) hazardousLocked(ptr unsafe.Pointer) bool {
	for c := range r.slots {
		for i := range r.slots[c] {
			if unsafe.Pointer(r.slots[c][i].Load()) == ptr {
				return true
			}
		}
	}
	return false
}

// sweepLocked drains the deferred queue, freeing every node no longer
// named by any hazard slot and re-queuing the rest. Called after a
// successful immediate free, since that is the point most likely to have
// just cleared a slot.
func (r *hazardReclaimer) sweepLocked() {
	pending := r.retired.Len()
	for i := 0; i < pending; i++ {
		n, ok := r.retired.PopFront()
		if !ok {
			return
		}
		if r.hazardousLocked(n.ptr) {
			r.retired.PushBack(n)
			continue
		}
		n.free()
	}
}
