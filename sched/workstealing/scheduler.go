package workstealing

import (
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/NathanVRyver/preemptive-threads-sub001/arch"
	"github.com/NathanVRyver/preemptive-threads-sub001/internal/reclaim"
	"github.com/NathanVRyver/preemptive-threads-sub001/internal/stack"
	"github.com/NathanVRyver/preemptive-threads-sub001/internal/tcb"
	"github.com/NathanVRyver/preemptive-threads-sub001/internal/threaderr"
)

// priorityLevels matches the u8 priority range of the original source,
// same as sched.RoundRobinScheduler.
const priorityLevels = 256

// defaultDequeCapacity is the fixed per-(carrier, priority) deque depth.
// Must be a power of two.
const defaultDequeCapacity = 64

// parkUnit is the duration one backoff "step" represents when a carrier's
// rescan of every victim comes up empty.
const parkUnit = 50 * time.Microsecond

// Scheduler implements spec.md §4.3's work-stealing policy: each carrier
// owns priorityLevels Chase-Lev deques (one per priority), pick_next
// probes its own deques highest-priority first, then attempts steals from
// a random permutation of other carriers before parking with bounded
// backoff.
type Scheduler struct {
	table     *tcb.Table
	reclaimer reclaim.Reclaimer
	carriers  int

	deques   [][priorityLevels]*deque
	current  []atomic.Int64 // tcb.ThreadID + 1, 0 means none
	backoffs []backoff       // per-carrier parking state between rescans

	nextPlacement atomic.Int64 // round-robin carrier for affinity-less spawns
}

// New constructs a work-stealing scheduler over the given number of
// carriers, bounding the TCB table at maxThreads (0 means unbounded) and
// using kind for retirement of stolen TCB handles.
func New(maxThreads, carriers int, kind reclaim.Kind) *Scheduler {
	s := &Scheduler{
		table:     tcb.NewTable(maxThreads),
		reclaimer: reclaim.New(kind, carriers),
		carriers:  carriers,
		deques:    make([][priorityLevels]*deque, carriers),
		current:   make([]atomic.Int64, carriers),
		backoffs:  make([]backoff, carriers),
	}
	for c := 0; c < carriers; c++ {
		for p := 0; p < priorityLevels; p++ {
			s.deques[c][p] = newDeque(defaultDequeCapacity)
		}
	}
	return s
}

func (s *Scheduler) Table() *tcb.Table { return s.table }

// Reclaimer exposes the same epoch/hazard strategy steal() guards its
// cross-carrier TCB handle reads with.
func (s *Scheduler) Reclaimer() reclaim.Reclaimer { return s.reclaimer }

func (s *Scheduler) Spawn(carrier int, priority int32, ctx *arch.Context, stk *stack.Stack) (tcb.ThreadID, error) {
	t, err := s.table.Insert(func(id tcb.ThreadID) *tcb.TCB {
		return tcb.New(id, priority, ctx, stk)
	})
	if err != nil {
		return 0, err
	}

	owner := carrier
	if owner < 0 || owner >= s.carriers {
		owner = int(s.nextPlacement.Add(1)-1) % s.carriers
	}
	t.SetAffinity(int32(owner))

	if !s.deques[owner][levelIndex(priority)].pushBottom(t) {
		t.SetState(tcb.Exited)
		return 0, threaderr.ErrSchedulerFull
	}
	return t.ID, nil
}

// EnqueueReady places t back on carrier's owner deque (LIFO end), per
// spec.md §4.3's fairness rule: "a carrier that just ran a thread places
// it at the owner end to maximize cache locality".
func (s *Scheduler) EnqueueReady(carrier int, id tcb.ThreadID) error {
	t, err := s.table.Get(id)
	if err != nil {
		return err
	}
	t.SetState(tcb.Ready)
	t.SetAffinity(int32(carrier))
	t.Release()
	if !s.deques[carrier][levelIndex(t.Priority)].pushBottom(t) {
		return threaderr.ErrSchedulerFull
	}
	return nil
}

// PickNext first probes carrier's own deques, highest priority first; on
// an empty local scan it attempts a steal from a random permutation of
// other carriers, applying bounded exponential backoff between full
// rescans.
func (s *Scheduler) PickNext(carrier int) (tcb.ThreadID, bool) {
	if t, ok := s.popLocal(carrier); ok {
		s.backoffs[carrier].reset()
		s.setCurrent(carrier, t.ID)
		t.SetState(tcb.Running)
		t.Retain()
		return t.ID, true
	}

	for _, victim := range victimOrder(carrier, s.carriers) {
		t, ok := s.steal(carrier, victim)
		if !ok {
			continue
		}
		s.backoffs[carrier].reset()
		t.SetState(tcb.Running)
		t.SetAffinity(int32(carrier))
		s.setCurrent(carrier, t.ID)
		t.Retain()
		return t.ID, true
	}

	// A full rescan of every other carrier came up empty: park briefly
	// with bounded exponential backoff before the caller's run loop
	// rescans, per spec.md §4.3.
	time.Sleep(time.Duration(s.backoffs[carrier].next()) * parkUnit)
	s.current[carrier].Store(0)
	return 0, false
}

// HasReady reports whether carrier's own deques hold a thread at
// minPriority or higher, or any other carrier's do - a size() peek only,
// never a steal attempt, so it cannot block and cannot itself move work
// between carriers.
func (s *Scheduler) HasReady(carrier int, minPriority int32) bool {
	floor := levelIndex(minPriority)
	for level := priorityLevels - 1; level >= floor; level-- {
		if s.deques[carrier][level].size() > 0 {
			return true
		}
	}
	for v := 0; v < s.carriers; v++ {
		if v == carrier {
			continue
		}
		for level := priorityLevels - 1; level >= floor; level-- {
			if s.deques[v][level].size() > 0 {
				return true
			}
		}
	}
	return false
}

func (s *Scheduler) popLocal(carrier int) (*tcb.TCB, bool) {
	for level := priorityLevels - 1; level >= 0; level-- {
		if t, ok := s.deques[carrier][level].popBottom(); ok {
			return t, true
		}
	}
	return nil, false
}

// steal attempts one steal from victim's deques, highest priority first,
// protecting the read of the stolen TCB handle with the scheduler's
// reclaimer so a concurrent retirement of that handle (after the owning
// thread exits and drains) cannot race a thief still dereferencing it.
func (s *Scheduler) steal(self, victim int) (*tcb.TCB, bool) {
	for level := priorityLevels - 1; level >= 0; level-- {
		d := s.deques[victim][level]
		if d.size() <= 0 {
			continue
		}

		t, ok := d.stealTop()
		if !ok || t == nil {
			continue
		}

		ptr := unsafe.Pointer(t)
		s.reclaimer.BeginAccess(self, ptr)
		confirmed := s.reclaimer.Confirm(ptr, func() unsafe.Pointer { return unsafe.Pointer(t) })
		s.reclaimer.EndAccess(self)
		if !confirmed {
			continue
		}
		return t, true
	}
	return nil, false
}

func (s *Scheduler) MarkExited(carrier int, id tcb.ThreadID) error {
	t, err := s.table.Get(id)
	if err != nil {
		return err
	}
	t.SetState(tcb.Exited)
	return nil
}

func (s *Scheduler) Current(carrier int) (tcb.ThreadID, bool) {
	v := s.current[carrier].Load()
	if v == 0 {
		return 0, false
	}
	return tcb.ThreadID(v - 1), true
}

func (s *Scheduler) setCurrent(carrier int, id tcb.ThreadID) {
	s.current[carrier].Store(int64(id) + 1)
}

func levelIndex(priority int32) int {
	if priority < 0 {
		return 0
	}
	if priority >= priorityLevels {
		return priorityLevels - 1
	}
	return int(priority)
}
