package threads

import (
	"runtime"
	"sync"
	"time"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/NathanVRyver/preemptive-threads-sub001/internal/reclaim"
	"github.com/NathanVRyver/preemptive-threads-sub001/internal/stack"
)

// SchedulerKind selects one of the two scheduling policies spec.md §4.3
// describes.
type SchedulerKind int

const (
	SchedulerWorkStealing SchedulerKind = iota
	SchedulerRoundRobin
)

// config holds every resolved Option. Unexported: callers only ever see
// it through the functional options below, following eventloop/options.go's
// loopOptions convention.
type config struct {
	carriers         int
	schedulerKind    SchedulerKind
	reclaimKind      reclaim.Kind
	sizeClasses      []stack.SizeClass
	preemptionPeriod time.Duration
	maxThreads       int
	logger           Logger
	disableGC        bool
}

func defaultConfig() config {
	return config{
		carriers:      defaultCarrierCount(),
		schedulerKind: SchedulerWorkStealing,
		reclaimKind:   reclaim.Epoch,
		sizeClasses:   stack.DefaultSizeClasses(),
		maxThreads:    0,
		disableGC:     true,
	}
}

var carrierCountOnce sync.Once

// defaultCarrierCount is GOMAXPROCS after applying automaxprocs' cgroup
// CPU-quota correction, matching the teacher's pattern of running
// automaxprocs.Set once at process start rather than trusting the
// container runtime's reported core count.
func defaultCarrierCount() int {
	carrierCountOnce.Do(func() {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...any) {}))
	})
	return runtime.GOMAXPROCS(0)
}

// Option configures a Runtime at construction. Every field in config
// starts from defaultConfig's value; options only override.
type Option interface {
	apply(*config)
}

type optionFunc struct {
	fn func(*config)
}

func (o optionFunc) apply(c *config) { o.fn(c) }

// WithCarriers overrides the number of carrier slots (default: GOMAXPROCS
// after automaxprocs correction). Values <= 0 are ignored.
func WithCarriers(n int) Option {
	return optionFunc{fn: func(c *config) {
		if n > 0 {
			c.carriers = n
		}
	}}
}

// WithScheduler selects the scheduling policy (default: SchedulerWorkStealing).
func WithScheduler(kind SchedulerKind) Option {
	return optionFunc{fn: func(c *config) { c.schedulerKind = kind }}
}

// WithReclamation selects the reclamation strategy the work-stealing
// scheduler uses to guard stolen TCB handles (default: reclaim.Epoch).
// Ignored under SchedulerRoundRobin, which never shares raw pointers
// across carriers.
func WithReclamation(kind reclaim.Kind) Option {
	return optionFunc{fn: func(c *config) { c.reclaimKind = kind }}
}

// WithStackSizeClasses overrides the stack pool's size-class ladder
// (default: stack.DefaultSizeClasses()).
func WithStackSizeClasses(classes ...stack.SizeClass) Option {
	return optionFunc{fn: func(c *config) {
		if len(classes) > 0 {
			c.sizeClasses = classes
		}
	}}
}

// WithPreemptionPeriod arms the preemption driver at the given period as
// soon as the Runtime is constructed, instead of requiring a separate
// PreemptionEnable call. Zero (the default) leaves preemption disabled.
func WithPreemptionPeriod(d time.Duration) Option {
	return optionFunc{fn: func(c *config) { c.preemptionPeriod = d }}
}

// WithMaxThreads bounds the TCB table (default: 0, unbounded).
func WithMaxThreads(n int) Option {
	return optionFunc{fn: func(c *config) {
		if n > 0 {
			c.maxThreads = n
		}
	}}
}

// WithLogger makes New install l as the package-level logger (see
// SetLogger); it is shared by every Runtime, not kept per Runtime.
func WithLogger(l Logger) Option {
	return optionFunc{fn: func(c *config) { c.logger = l }}
}

// WithGCEnabled overrides whether New disables the Go garbage collector
// process-wide (default: false, i.e. the collector is disabled). A
// dispatched thread body executes on a stack switched to by raw
// assembly (arch.ContextSwitch); the Go runtime's stack scanner walks a
// goroutine's recorded g.stack bounds, not its live RSP, so it never
// sees anything reachable only from values live on that swapped-to
// stack. Disabling collection entirely removes the hazard outright,
// rather than merely documenting it: if no collection cycle ever scans
// anything, a pointer's invisibility to the scanner cannot matter.
// Re-enabling it is an explicit, informed opt-out, trading that
// soundness for bounded heap growth - appropriate only when the caller
// has independently verified (or doesn't care) that no thread body
// holds the only reference to a heap object across a switch.
func WithGCEnabled(enabled bool) Option {
	return optionFunc{fn: func(c *config) { c.disableGC = !enabled }}
}

func resolveOptions(opts []Option) config {
	c := defaultConfig()
	for _, opt := range opts {
		opt.apply(&c)
	}
	return c
}
