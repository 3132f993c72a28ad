// Package threads implements a user-space preemptive M:N threading
// runtime: many lightweight threads, each with its own pooled stack and
// saved register state, multiplexed across a small number of carrier
// goroutines both cooperatively (via [YieldNow]) and preemptively (via a
// periodic timer signal).
//
// # Architecture
//
// A [Runtime] owns three collaborating subsystems:
//   - arch: architecture-specific context save/restore and the bootstrap
//     trampoline that lands a freshly spawned thread on its own stack.
//   - sched: the pluggable [sched.Scheduler] interface, with a priority
//     round-robin implementation and a per-carrier work-stealing
//     implementation (sched/workstealing) backed by Chase-Lev deques and
//     epoch or hazard-pointer reclamation (internal/reclaim).
//   - internal/stack: a fixed-size pooled stack allocator with
//     guard-pattern (sentinel word) overflow detection.
//
// [New] constructs a Runtime from [Option] values; [Runtime.Start] or
// [Runtime.CarrierStart] then pin OS threads and run the carrier loop,
// repeatedly asking the scheduler for the next runnable thread and
// performing a context switch into it.
//
// # Spawning and Yielding
//
// [Runtime.Spawn] allocates a stack, forges its initial register state so
// the first dispatch transfers control to the entry function, and places
// the resulting thread id in the ready set. A running thread voluntarily
// gives up its carrier with [Runtime.YieldNow], which re-enqueues it only
// if a preemption is pending or another thread of equal or higher priority
// is ready; otherwise it returns immediately.
//
// # Preemption
//
// [Runtime.PreemptionEnable] arms a recurring timer; each tick marks every
// carrier's current thread as having a pending preemption request,
// honored at that thread's next yield point. [Runtime.PreemptionEnterCritical]
// and [Runtime.PreemptionLeaveCritical] bracket sections where a thread
// must not be asked to yield, latching any tick that arrives in between.
//
// # Error Types
//
// Spawn, SpawnSized and the scheduler report failures as a [ThreadError]
// whose Kind is one of a closed set of sentinels ([ErrMaxThreadsReached],
// [ErrInvalidThreadID], [ErrThreadNotRunnable], [ErrStackOverflow],
// [ErrSchedulerFull], [ErrStackPoolExhausted]), comparable with errors.Is.
// PreemptionEnable reports a non-positive period as preempt.ErrInvalidPeriod,
// and Start and CarrierStart return the context's error once it is done. Invariant
// violations discovered outside this error-returning boundary - a
// corrupted saved context, a scheduler invariant broken in a way the
// runtime cannot itself repair - are fatal and abort the process rather
// than propagate as an error.
//
// # Usage
//
//	rt := threads.New(
//	    threads.WithCarriers(4),
//	    threads.WithScheduler(threads.SchedulerWorkStealing),
//	    threads.WithPreemptionPeriod(2 * time.Millisecond),
//	)
//
//	id, err := rt.Spawn(func() {
//	    for i := 0; i < 3; i++ {
//	        fmt.Println("tick", i)
//	        rt.YieldNow()
//	    }
//	}, 0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx, cancel := context.WithCancel(context.Background())
//	go func() {
//	    time.Sleep(time.Second)
//	    cancel()
//	}()
//	if err := rt.Start(ctx); err != nil && err != context.Canceled {
//	    log.Fatal(err)
//	}
package threads
