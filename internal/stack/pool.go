// Package stack implements the fixed-size pooled-stack allocator of
// spec.md §4.2: size classes, a bounded free list per class, guard-pattern
// overflow detection, and capacity planning informed by the process's
// memory ceiling.
package stack

import (
	"math"
	"runtime/debug"
	"sync"

	"github.com/KimMachineGun/automemlimit/memlimit"
	"github.com/pbnjay/memory"

	"github.com/NathanVRyver/preemptive-threads-sub001/internal/ring"
	"github.com/NathanVRyver/preemptive-threads-sub001/internal/threaderr"
)

// poolMemLimitOnce applies the cgroup-derived GOMEMLIMIT exactly once per
// process, the way automemlimit is meant to be invoked: as a startup-time
// side effect on runtime/debug's soft memory limit, not a value threaded
// through call sites.
var poolMemLimitOnce sync.Once

// defaultFreeListCapacity is the bounded free-list depth per size class
// (spec.md §4.2: "a bounded free list"); must be a power of two (ring.Buffer).
const defaultFreeListCapacity = 256

// reservedFraction is the share of the resolved memory ceiling the pool
// is willing to reserve across all size classes before Acquire starts
// refusing new allocations with StackPoolExhausted.
const reservedFraction = 0.25

// Pool owns one bounded free list per SizeClass. Acquire/Release/
// CheckGuard are the only operations, matching spec.md §4.2's public
// contract. Each class is guarded by its own mutex: spec.md §5 notes
// contention here is rare, so a single lock per size class is sufficient.
type Pool struct {
	classes  [numSizeClasses]*classPool
	maxBytes int64
}

type classPool struct {
	mu       sync.Mutex
	class    SizeClass
	free     *ring.Buffer[*Stack]
	reserved int64 // bytes currently allocated to this class (free + in-use)
	cap      int64 // this class's share of the pool-wide byte ceiling
}

// NewPool constructs a Pool serving the given size classes (defaults to
// DefaultSizeClasses if empty). The free-list depth per class is fixed at
// defaultFreeListCapacity; the total reservable bytes across all classes
// is capped at reservedFraction of the resolved process memory ceiling
// (cgroup-aware via automemlimit, falling back to total system memory via
// pbnjay/memory on bare metal).
func NewPool(classes []SizeClass) *Pool {
	if len(classes) == 0 {
		classes = DefaultSizeClasses()
	}

	p := &Pool{maxBytes: resolveMemoryCeiling()}
	perClassCap := p.maxBytes / int64(len(classes))
	for _, c := range classes {
		p.classes[c] = &classPool{
			class: c,
			free:  ring.New[*Stack](defaultFreeListCapacity),
			cap:   perClassCap,
		}
	}
	return p
}

func resolveMemoryCeiling() int64 {
	poolMemLimitOnce.Do(func() {
		_, _ = memlimit.SetGoMemLimitWithOpts(
			memlimit.WithRatio(reservedFraction+0.5),
			memlimit.WithProvider(memlimit.ApplyFallback(
				memlimit.FromCgroup,
				memlimit.FromSystem,
			)),
		)
	})

	if limit := debug.SetMemoryLimit(-1); limit > 0 && limit != math.MaxInt64 {
		return int64(float64(limit) * reservedFraction)
	}
	return int64(float64(memory.TotalMemory()) * reservedFraction)
}

// Acquire returns a stack whose usable region is at least as large as
// class, recycling from the free list when possible.
func (p *Pool) Acquire(class SizeClass) (*Stack, error) {
	cp := p.classes[class]
	if cp == nil {
		return nil, threaderr.ErrStackPoolExhausted
	}

	cp.mu.Lock()
	defer cp.mu.Unlock()

	if s, ok := cp.free.PopFront(); ok {
		return s, nil
	}

	size := int64(guardRegionSize + class.Bytes())
	if cp.cap > 0 && cp.reserved+size > cp.cap {
		return nil, threaderr.ErrStackPoolExhausted
	}

	region, mmaped, err := allocRegion(class)
	if err != nil {
		return nil, threaderr.ErrStackPoolExhausted
	}
	cp.reserved += size
	return newStack(class, region, mmaped), nil
}

// Release returns stack to its size class's free list after verifying
// the guard sentinel is intact. A corrupted guard is reported as
// StackOverflow and the stack is not recycled - it is the caller's
// responsibility to quarantine (not free, not reuse) a stack that fails
// this check, per spec.md §7.
func (p *Pool) Release(s *Stack) error {
	if !s.CheckGuard() {
		return threaderr.ErrStackOverflow
	}

	cp := p.classes[s.Class()]
	cp.mu.Lock()
	defer cp.mu.Unlock()

	if cp.free.Full() {
		freeRegion(s.region, s.mmaped)
		cp.reserved -= int64(len(s.region))
		return nil
	}
	cp.free.PushBack(s)
	return nil
}

// CheckGuard reports an overflow without releasing the stack; may be
// called at any yield point, per spec.md §4.2.
func CheckGuard(s *Stack) error {
	if !s.CheckGuard() {
		return threaderr.ErrStackOverflow
	}
	return nil
}
