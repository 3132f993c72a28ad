//go:build amd64 && (linux || darwin)

package arch

import "golang.org/x/sys/unix"

// PreemptSignal is the signal the preemption driver arms as its periodic
// tick. User-space code has no access to a CPU's interrupt-enable flag, so
// EnableInterrupts/DisableInterrupts implement the user-space analogue:
// masking and unmasking delivery of the preemption signal to the calling
// OS thread. This is the only "interrupt" a carrier needs to control -
// everything else a real CPU IRQ would cover (page faults, other signals)
// is not part of this runtime's concern.
const PreemptSignal = unix.SIGALRM

func preemptSigset() unix.Sigset_t {
	var set unix.Sigset_t
	sigaddset(&set, PreemptSignal)
	return set
}

// EnableInterrupts unmasks the preemption signal on the calling OS thread.
func EnableInterrupts() {
	set := preemptSigset()
	_ = unix.PthreadSigmask(unix.SIG_UNBLOCK, &set, nil)
}

// DisableInterrupts masks the preemption signal on the calling OS thread,
// so a tick that arrives while masked is held pending until re-enabled.
func DisableInterrupts() {
	set := preemptSigset()
	_ = unix.PthreadSigmask(unix.SIG_BLOCK, &set, nil)
}

// InterruptsEnabled reports whether the preemption signal is currently
// unmasked on the calling OS thread.
func InterruptsEnabled() bool {
	var old unix.Sigset_t
	empty := unix.Sigset_t{}
	// Blocking the empty set changes nothing; it's a pure mask query.
	if err := unix.PthreadSigmask(unix.SIG_BLOCK, &empty, &old); err != nil {
		return true
	}
	return !sigismember(&old, PreemptSignal)
}
