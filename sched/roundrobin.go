package sched

import (
	"sync"

	"github.com/NathanVRyver/preemptive-threads-sub001/arch"
	"github.com/NathanVRyver/preemptive-threads-sub001/internal/reclaim"
	"github.com/NathanVRyver/preemptive-threads-sub001/internal/ring"
	"github.com/NathanVRyver/preemptive-threads-sub001/internal/stack"
	"github.com/NathanVRyver/preemptive-threads-sub001/internal/tcb"
	"github.com/NathanVRyver/preemptive-threads-sub001/internal/threaderr"
)

// priorityLevels matches the full range of the original source's u8
// priority field (spec.md §8's "spawn(... priority: u8)").
const priorityLevels = 256

// defaultLevelCapacity is the bounded ready-queue depth per priority
// level. Must be a power of two (internal/ring).
const defaultLevelCapacity = 1024

// RoundRobinScheduler implements spec.md §4.3's round-robin policy: one
// bounded ready queue per priority level, pick_next scanning high-to-low,
// strict FIFO within a level.
type RoundRobinScheduler struct {
	table *tcb.Table

	mu      sync.Mutex
	levels  [priorityLevels]*ring.Buffer[tcb.ThreadID]
	current []tcb.ThreadID
}

// NewRoundRobinScheduler constructs a scheduler bounding the TCB table at
// maxThreads (0 means unbounded) and serving the given number of carriers.
func NewRoundRobinScheduler(maxThreads, carriers int) *RoundRobinScheduler {
	s := &RoundRobinScheduler{
		table:   tcb.NewTable(maxThreads),
		current: make([]tcb.ThreadID, carriers),
	}
	for i := range s.current {
		s.current[i] = noCurrent
	}
	for p := range s.levels {
		s.levels[p] = ring.New[tcb.ThreadID](defaultLevelCapacity)
	}
	return s
}

// noCurrent marks a carrier slot with no assigned thread. ThreadID 0 is a
// legitimate id, so a separate out-of-band value is needed; the table
// never issues this value since ids are dense starting at 0 and this is
// the maximum uint64.
const noCurrent tcb.ThreadID = ^tcb.ThreadID(0)

func (s *RoundRobinScheduler) Table() *tcb.Table { return s.table }

// Reclaimer always returns nil: round robin's ready queues are
// process-wide and already serialized behind s.mu, so no carrier ever
// dereferences another carrier's reference to a TCB concurrently with
// its retirement - there is nothing for a reclamation protocol to guard.
func (s *RoundRobinScheduler) Reclaimer() reclaim.Reclaimer { return nil }

func (s *RoundRobinScheduler) Spawn(_ int, priority int32, ctx *arch.Context, stk *stack.Stack) (tcb.ThreadID, error) {
	t, err := s.table.Insert(func(id tcb.ThreadID) *tcb.TCB {
		return tcb.New(id, priority, ctx, stk)
	})
	if err != nil {
		return 0, err
	}
	if err := s.enqueue(t); err != nil {
		t.SetState(tcb.Exited)
		return 0, err
	}
	return t.ID, nil
}

func (s *RoundRobinScheduler) EnqueueReady(_ int, id tcb.ThreadID) error {
	t, err := s.table.Get(id)
	if err != nil {
		return err
	}
	t.SetState(tcb.Ready)
	t.Release()
	return s.enqueue(t)
}

func (s *RoundRobinScheduler) enqueue(t *tcb.TCB) error {
	level := levelIndex(t.Priority)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.levels[level].PushBack(t.ID) {
		return threaderr.ErrSchedulerFull
	}
	return nil
}

func (s *RoundRobinScheduler) PickNext(carrier int) (tcb.ThreadID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for level := priorityLevels - 1; level >= 0; level-- {
		if id, ok := s.levels[level].PopFront(); ok {
			s.current[carrier] = id
			if t, err := s.table.Get(id); err == nil {
				t.SetState(tcb.Running)
				t.Retain()
			}
			return id, true
		}
	}
	s.current[carrier] = noCurrent
	return 0, false
}

// HasReady reports whether any priority level at or above minPriority holds
// a ready thread. carrier is unused: round robin's ready queues are
// process-wide, not per-carrier.
func (s *RoundRobinScheduler) HasReady(_ int, minPriority int32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for level := priorityLevels - 1; level >= levelIndex(minPriority); level-- {
		if !s.levels[level].Empty() {
			return true
		}
	}
	return false
}

func (s *RoundRobinScheduler) MarkExited(_ int, id tcb.ThreadID) error {
	t, err := s.table.Get(id)
	if err != nil {
		return err
	}
	t.SetState(tcb.Exited)
	return nil
}

func (s *RoundRobinScheduler) Current(carrier int) (tcb.ThreadID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.current[carrier]
	return id, id != noCurrent
}

// levelIndex maps an int32 priority (higher = more eligible, per spec.md
// §3) into the fixed [0, priorityLevels) array index, clamping out-of-range
// values rather than panicking.
func levelIndex(priority int32) int {
	if priority < 0 {
		return 0
	}
	if priority >= priorityLevels {
		return priorityLevels - 1
	}
	return int(priority)
}
