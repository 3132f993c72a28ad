package reclaim

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/NathanVRyver/preemptive-threads-sub001/internal/ring"
)

// retirementBatchCapacity is the epoch retirement queue's starting
// capacity. Under ordinary turnover this bounds worst-case deferred
// memory, per spec.md §4.4's "worst-case deferred memory is bounded by
// participant count × retirement batch size"; under sustained pinning
// (a carrier parked mid-access for longer than a full batch's worth of
// retirements) the queue grows instead of force-freeing a still-pinned
// node, per §4.4's stronger safety invariant that no node is ever freed
// while a concurrent thief holds a reference. Must be a power of two
// (internal/ring).
const retirementBatchCapacity = 1024

// unpinned is the sentinel slot value meaning "this carrier is not
// currently touching shared storage".
const unpinned uint64 = 0

type retiredNode struct {
	epoch uint64
	ptr   unsafe.Pointer
	free  func()
}

// epochReclaimer implements the Epoch strategy of spec.md §4.4: a global
// counter, one pin slot per carrier, and a retirement list collected
// whenever the minimum pinned epoch has advanced past a node's tag.
type epochReclaimer struct {
	global atomic.Uint64
	slots  []atomic.Uint64

	mu      sync.Mutex
	retired *ring.Buffer[retiredNode]
}

func newEpochReclaimer(carriers int) *epochReclaimer {
	return &epochReclaimer{
		slots:   make([]atomic.Uint64, carriers),
		retired: ring.New[retiredNode](retirementBatchCapacity),
	}
}

func (r *epochReclaimer) BeginAccess(carrier int, _ unsafe.Pointer) {
	// Publish the current epoch plus one (0 is reserved for "unpinned") so
	// a concurrent collector can tell a freshly pinned carrier apart from
	// one that has not entered yet.
	r.slots[carrier].Store(r.global.Load() + 1)
}

func (r *epochReclaimer) Confirm(unsafe.Pointer, func() unsafe.Pointer) bool {
	return true
}

func (r *epochReclaimer) EndAccess(carrier int) {
	r.slots[carrier].Store(unpinned)
}

func (r *epochReclaimer) Retire(ptr unsafe.Pointer, free func()) {
	e := r.global.Add(1)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.retired.Full() {
		// Force a collection pass before the batch overflows; if the
		// minimum pinned epoch still hasn't advanced, every remaining node
		// is still potentially visible to a pinned carrier, so none of them
		// may be force-freed (spec.md §4.4: no node is freed while any
		// concurrent thief holds a reference). Grow instead, trading
		// bounded memory for that safety invariant under sustained pinning.
		r.collectLocked()
		if r.retired.Full() {
			r.retired.Grow()
		}
	}
	r.retired.PushBack(retiredNode{epoch: e, ptr: ptr, free: free})
	r.collectLocked()
}

// collectLocked frees every retired node tagged with an epoch older than
// the minimum epoch any pinned carrier has published. Nodes are appended
// in increasing epoch order, so the oldest is always at the front. Must be
// called with mu held.
func (r *epochReclaimer) collectLocked() {
	min, anyPinned := r.minPinnedLocked()
	for {
		n, ok := r.retired.PeekFront()
		if !ok {
			return
		}
		if anyPinned && n.epoch >= min {
			return
		}
		r.retired.PopFront()
		n.free()
	}
}

func (r *epochReclaimer) minPinnedLocked() (uint64, bool) {
	var min uint64
	found := false
	for i := range r.slots {
		v := r.slots[i].Load()
		if v == unpinned {
			continue
		}
		if !found || v < min {
			min = v
			found = true
		}
	}
	return min, found
}
