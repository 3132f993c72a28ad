package threads

import (
	"context"
	"errors"
	"runtime"
	"runtime/debug"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sync/errgroup"

	"github.com/NathanVRyver/preemptive-threads-sub001/arch"
	"github.com/NathanVRyver/preemptive-threads-sub001/internal/racecheck"
	"github.com/NathanVRyver/preemptive-threads-sub001/internal/stack"
	"github.com/NathanVRyver/preemptive-threads-sub001/internal/tcb"
	"github.com/NathanVRyver/preemptive-threads-sub001/preempt"
	"github.com/NathanVRyver/preemptive-threads-sub001/sched"
	"github.com/NathanVRyver/preemptive-threads-sub001/sched/workstealing"
)

// ThreadID identifies one spawned thread. Dense, unique, and never reused
// within a Runtime's lifetime, per spec.md §3.
type ThreadID = tcb.ThreadID

// idleBackoff bounds how long a carrier loop sleeps after PickNext comes
// up empty before rescanning, on top of whatever backoff the scheduler
// itself already applies (work stealing parks internally; round robin
// never blocks on its own, so this is what keeps an idle carrier from
// busy-spinning).
const idleBackoff = time.Millisecond

// carrierLoop is the state exclusive to one carrier's run-loop goroutine:
// its own saved context, used as the "prev" side of every switch into a
// dispatched user thread and the "next" side of every switch a thread
// yields or exits back to.
type carrierLoop struct {
	self arch.Context
}

// carrierRegistry maps the OS thread id of each LockOSThread'd carrier
// goroutine to its carrier index. Populated once by CarrierStart and
// consulted by YieldNow and the thread-exit path to recover which carrier
// is currently executing, since Go has no implicit CPU-local storage for
// it (see the Scheduler interface's explicit carrier parameter, same
// underlying gap).
var carrierRegistry sync.Map // osThreadID -> carrier index

func currentCarrier() (int, bool) {
	v, ok := carrierRegistry.Load(osThreadID())
	if !ok {
		return 0, false
	}
	return v.(int), true
}

// Runtime is the process-wide threading runtime of spec.md §9's design
// note: one scheduler, one stack pool, and one preemption driver, each
// owned by a single top-level value rather than re-initialized per
// carrier. Construct with New; begin running threads with Start or, for
// direct control over which OS thread becomes which carrier, CarrierStart.
type Runtime struct {
	cfg       config
	pool      *stack.Pool
	scheduler sched.Scheduler
	driver    *preempt.Driver
	checker   *racecheck.Checker

	loops []carrierLoop
}

// New constructs a Runtime from the given options. No carrier runs until
// Start or CarrierStart is called.
func New(opts ...Option) *Runtime {
	cfg := resolveOptions(opts)
	if cfg.logger != nil {
		SetLogger(cfg.logger)
	}
	if cfg.disableGC {
		// See WithGCEnabled: a dispatched thread's live stack is invisible
		// to the Go GC's stack scanner, which only ever sees a goroutine's
		// recorded g.stack bounds. debug.SetGCPercent(-1) is process-wide,
		// matching the process-wide nature of the hazard it closes.
		debug.SetGCPercent(-1)
	}

	rt := &Runtime{
		cfg:     cfg,
		pool:    stack.NewPool(cfg.sizeClasses),
		checker: racecheck.New(),
		loops:   make([]carrierLoop, cfg.carriers),
	}
	rt.driver = preempt.New(rt.onTick)

	switch cfg.schedulerKind {
	case SchedulerRoundRobin:
		rt.scheduler = sched.NewRoundRobinScheduler(cfg.maxThreads, cfg.carriers)
	default:
		rt.scheduler = workstealing.New(cfg.maxThreads, cfg.carriers, cfg.reclaimKind)
	}

	if cfg.preemptionPeriod > 0 {
		if err := rt.driver.Enable(cfg.preemptionPeriod); err != nil {
			getLogger().Warn("preemption period from options rejected", "err", err.Error())
		}
	}
	return rt
}

// Carriers reports the number of carrier slots this Runtime was
// configured with.
func (rt *Runtime) Carriers() int { return rt.cfg.carriers }

// Spawn constructs a thread running entry at the given priority (higher
// is more eligible, per spec.md §3) on a default-sized stack and places
// it in the ready set. It does not run until some carrier dispatches it.
func (rt *Runtime) Spawn(entry func(), priority uint8) (ThreadID, error) {
	return rt.SpawnSized(entry, priority, stack.Class4KiB)
}

// SpawnSized is Spawn with an explicit stack size class.
func (rt *Runtime) SpawnSized(entry func(), priority uint8, class stack.SizeClass) (ThreadID, error) {
	stk, err := rt.pool.Acquire(class)
	if err != nil {
		return 0, err
	}

	var id ThreadID
	ctx := new(arch.Context)
	arch.Bootstrap(ctx, stk.Top(), func() {
		// CarrierStart has already moved id from Ready to Running in the
		// checker before switching here.
		entry()
	}, func() {
		rt.threadExit(id)
	})

	tid, err := rt.scheduler.Spawn(-1, int32(priority), ctx, stk)
	if err != nil {
		if relErr := rt.pool.Release(stk); relErr != nil {
			getLogger().Warn("stack release failed after rejected spawn", "err", relErr.Error())
		}
		return 0, err
	}
	id = tid
	rt.checker.MarkReady(id)
	getLogger().Debug("thread spawned", "id", uint64(id), "priority", priority)
	return id, nil
}

// CurrentThreadID reports the id of the thread running on the calling
// carrier, if the calling goroutine is a carrier's run loop currently
// executing a dispatched thread.
func (rt *Runtime) CurrentThreadID() (ThreadID, bool) {
	carrier, ok := currentCarrier()
	if !ok {
		return 0, false
	}
	return rt.scheduler.Current(carrier)
}

// YieldNow voluntarily reschedules the calling thread, per spec.md §4.6:
// if a preemption is pending, or a thread of equal or higher priority is
// ready, the thread is re-enqueued as Ready and the carrier's loop
// dispatches whatever PickNext returns next. Otherwise (no preemption
// pending and only lower-priority threads, or none, ready) it returns
// immediately without switching. A corrupted guard sentinel is detected here and is fatal
// only to the calling thread (spec.md §7).
func (rt *Runtime) YieldNow() {
	carrier, ok := currentCarrier()
	if !ok {
		return
	}
	id, ok := rt.scheduler.Current(carrier)
	if !ok {
		return
	}
	t, err := rt.scheduler.Table().Get(id)
	if err != nil {
		fatal("yield: current thread id missing from table", "id", uint64(id))
	}

	if guardErr := stack.CheckGuard(t.Stack); guardErr != nil {
		rt.overflow(carrier, t)
		return
	}

	preempted := t.TakePreemptRequest()
	if !preempted && !rt.scheduler.HasReady(carrier, t.Priority) {
		return
	}

	rt.checker.ClearRunning(id)
	t.SetState(tcb.Ready)
	if err := rt.scheduler.EnqueueReady(carrier, id); err != nil {
		fatal("yield: re-enqueue of current thread failed", "id", uint64(id), "err", err.Error())
	}
	rt.checker.MarkReady(id)

	arch.ContextSwitch(t.Context, &rt.loops[carrier].self)
}

// overflow handles a guard sentinel failure discovered at a yield point:
// the offending thread is retired with StackOverflow and its stack is
// quarantined (never recycled); the carrier continues with whatever runs
// next, per spec.md §7.
func (rt *Runtime) overflow(carrier int, t *tcb.TCB) {
	getLogger().Error("stack overflow detected, quarantining thread", ErrStackOverflow, "id", uint64(t.ID))

	rt.checker.ClearRunning(t.ID)
	t.SetState(tcb.Exited)
	if err := rt.scheduler.MarkExited(carrier, t.ID); err != nil {
		fatal("overflow: mark exited failed", "id", uint64(t.ID), "err", err.Error())
	}
	rt.retireTCB(t)

	if err := rt.pool.Release(t.Stack); err != nil && !errors.Is(err, ErrStackOverflow) {
		getLogger().Warn("unexpected error quarantining overflowed stack", "id", uint64(t.ID), "err", err.Error())
	}

	arch.ContextSwitch(t.Context, &rt.loops[carrier].self)
}

// threadExit is the hook Bootstrap installs as every thread's exit
// callback: called once entry returns normally. Marks the thread Exited,
// retires its TCB handle through the scheduler's reclamation protocol,
// releases its stack once no scheduler dispatch reference remains, and
// switches back to the carrier loop. Never returns.
func (rt *Runtime) threadExit(id ThreadID) {
	carrier, _ := currentCarrier()

	t, err := rt.scheduler.Table().Get(id)
	if err != nil {
		fatal("thread_exit: id missing from table", "id", uint64(id))
	}

	rt.checker.ClearRunning(id)
	t.SetState(tcb.Exited)
	if err := rt.scheduler.MarkExited(carrier, id); err != nil {
		fatal("thread_exit: mark exited failed", "id", uint64(id), "err", err.Error())
	}
	rt.retireTCB(t)

	if t.Release() {
		if err := rt.pool.Release(t.Stack); err != nil {
			getLogger().Warn("stack release failed after thread exit", "id", uint64(id), "err", err.Error())
		}
	}

	getLogger().Debug("thread exited", "id", uint64(id))
	arch.ContextSwitch(t.Context, &rt.loops[carrier].self)
	fatal("thread_exit: resumed after abandoning its context", "id", uint64(id))
}

// retireTCB defers t's removal from the scheduler's TCB table through the
// configured Reclaimer, so a concurrent thief that read t's address out
// of a deque slot (sched/workstealing's steal, guarded by the same
// Reclaimer) just before this exit cannot have that slot's Table entry
// pulled out from under it mid-Confirm. A nil Reclaimer (round robin,
// which has no concurrent cross-carrier readers of a raw TCB pointer to
// guard) clears the table entry immediately.
func (rt *Runtime) retireTCB(t *tcb.TCB) {
	id := t.ID
	clear := func() {
		if err := rt.scheduler.Table().Clear(id); err != nil {
			getLogger().Warn("table clear failed for retired thread", "id", uint64(id), "err", err.Error())
		}
	}
	if r := rt.scheduler.Reclaimer(); r != nil {
		r.Retire(unsafe.Pointer(t), clear)
		return
	}
	clear()
}

// onTick is the preemption driver's periodic callback: it marks every
// carrier's currently running thread as having a pending preemption
// request, honored at that thread's next safe point. A single process-
// wide timer covers every carrier, since the underlying OS timer (§4.5)
// has no per-carrier granularity to exploit here.
func (rt *Runtime) onTick() {
	for c := 0; c < rt.cfg.carriers; c++ {
		id, ok := rt.scheduler.Current(c)
		if !ok {
			continue
		}
		if t, err := rt.scheduler.Table().Get(id); err == nil {
			t.RequestPreempt()
		}
	}
}

// PreemptionEnable arms the preemption driver at the given period.
func (rt *Runtime) PreemptionEnable(period time.Duration) error {
	return rt.driver.Enable(period)
}

// PreemptionDisable disarms the preemption driver.
func (rt *Runtime) PreemptionDisable() {
	rt.driver.Disable()
}

// PreemptionEnterCritical suspends delivery of pending ticks until a
// matching PreemptionLeaveCritical, per spec.md §4.5.
func (rt *Runtime) PreemptionEnterCritical() {
	rt.driver.EnterCritical()
}

// PreemptionLeaveCritical ends a critical section begun by
// PreemptionEnterCritical, delivering any tick latched while suspended.
func (rt *Runtime) PreemptionLeaveCritical() {
	rt.driver.LeaveCritical()
}

// CarrierStart pins the calling OS thread and runs carrier's top-level
// loop until ctx is cancelled: ask the scheduler for the next runnable
// thread, switch into it, and on return (yield, exit, or overflow) do the
// same again, per spec.md §4.6's run_carrier.
func (rt *Runtime) CarrierStart(ctx context.Context, carrier int) error {
	if carrier < 0 || carrier >= rt.cfg.carriers {
		return ErrInvalidThreadID
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	carrierRegistry.Store(osThreadID(), carrier)
	defer carrierRegistry.Delete(osThreadID())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		id, ok := rt.scheduler.PickNext(carrier)
		if !ok {
			time.Sleep(idleBackoff)
			continue
		}

		t, err := rt.scheduler.Table().Get(id)
		if err != nil {
			fatal("run_carrier: dispatched id missing from table", "carrier", carrier, "id", uint64(id))
		}
		rt.checker.ClearReady(id)
		rt.checker.MarkRunning(id)
		t.TakePreemptRequest() // a fresh dispatch starts with no pending request

		arch.ContextSwitch(&rt.loops[carrier].self, t.Context)
	}
}

// Start launches every carrier as a supervised goroutine and blocks until
// ctx is cancelled or a carrier returns an error, at which point every
// other carrier is cancelled too.
func (rt *Runtime) Start(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)

	for c := 0; c < rt.cfg.carriers; c++ {
		carrier := c
		group.Go(func() error {
			return rt.CarrierStart(groupCtx, carrier)
		})
	}
	return group.Wait()
}
