// Package ring provides a bounded circular FIFO buffer, generic over
// element type, whose capacity changes only through an explicit Grow. It backs the stack pool's per-size-class free list,
// the round-robin scheduler's per-priority ready queue, and the epoch
// reclaimer's retirement batch queue.
//
// Grounded on catrate/ring.go's ringBuffer[E constraints.Ordered], with
// the ordered-search/arbitrary-index-insert machinery dropped (nothing
// here needs anything but push-back/pop-front), so the element type is
// unconstrained (any) rather than golang.org/x/exp/constraints.Ordered.
package ring

// Buffer is not safe for concurrent use. Every caller serializes access
// externally: the stack pool behind its per-size-class mutex, the
// round-robin scheduler behind its single scheduler mutex, and the epoch
// and hazard reclaimers behind their collector locks.
type Buffer[E any] struct {
	s    []E
	r, w uint
}

// New allocates a Buffer with the given power-of-two capacity.
func New[E any](capacity int) *Buffer[E] {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		panic("ring: capacity must be a power of 2")
	}
	return &Buffer[E]{s: make([]E, capacity)}
}

func (b *Buffer[E]) mask(v uint) uint { return v & (uint(len(b.s)) - 1) }

// Len returns the number of queued elements.
func (b *Buffer[E]) Len() int { return int(b.w - b.r) }

// Cap returns the buffer's current capacity.
func (b *Buffer[E]) Cap() int { return len(b.s) }

// Full reports whether the buffer has reached capacity.
func (b *Buffer[E]) Full() bool { return b.Len() == b.Cap() }

// Empty reports whether the buffer holds no elements.
func (b *Buffer[E]) Empty() bool { return b.r == b.w }

// PushBack appends v at the tail. Reports false without modifying the
// buffer if it is already full.
func (b *Buffer[E]) PushBack(v E) bool {
	if b.Full() {
		return false
	}
	b.s[b.mask(b.w)] = v
	b.w++
	return true
}

// PopFront removes and returns the head element. Reports false (with the
// zero value) if the buffer is empty.
func (b *Buffer[E]) PopFront() (E, bool) {
	var zero E
	if b.Empty() {
		return zero, false
	}
	i := b.mask(b.r)
	v := b.s[i]
	b.s[i] = zero
	b.r++
	return v, true
}

// PeekFront returns the head element without removing it.
func (b *Buffer[E]) PeekFront() (E, bool) {
	var zero E
	if b.Empty() {
		return zero, false
	}
	return b.s[b.mask(b.r)], true
}

// Grow doubles the buffer's capacity in place, preserving FIFO order.
// Callers that cannot tolerate PushBack ever reporting false under
// sustained occupancy (the epoch/hazard reclaimers' retirement queues,
// per spec.md §4.4's no-premature-free invariant) call this instead of
// force-evicting the head when Full reports true.
func (b *Buffer[E]) Grow() {
	grown := make([]E, len(b.s)*2)
	n := b.Len()
	for i := 0; i < n; i++ {
		grown[i] = b.s[b.mask(b.r+uint(i))]
	}
	b.s = grown
	b.r = 0
	b.w = uint(n)
}
