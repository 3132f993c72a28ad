//go:build amd64

package arch

import "unsafe"

// Context is the AMD64 saved-register file plus stack pointer needed to
// resume a thread exactly where it stopped. Only the registers the SysV
// AMD64 ABI designates callee-saved (RBX, RBP, R12-R15) plus RSP cross a
// ContextSwitch; everything else is caller-saved and is never live across
// the call that performs the switch, because the Go compiler spills
// anything live before a call.
type Context struct {
	RSP uintptr
	RBX uintptr
	RBP uintptr
	R12 uintptr
	R13 uintptr
	R14 uintptr
	R15 uintptr
}

//go:noescape
func contextSwitch(prev, next *Context)

// ContextSwitch saves prev's callee-saved registers and stack pointer,
// then restores next's, transferring control to next. prev == next is a
// valid no-op: it returns immediately without touching either Context and
// without issuing any fence.
func ContextSwitch(prev, next *Context) {
	if prev == next {
		return
	}
	contextSwitch(prev, next)
}

// Bootstrap prepares ctx so the first ContextSwitch landing on it runs
// entry on the new stack and, once entry returns, runs exit (which must
// not return). top is the highest address of the thread's usable stack
// region (stacks grow down on amd64).
func Bootstrap(ctx *Context, top uintptr, entry, exit func()) {
	registerBoot(ctx, entry, exit)

	sp := top &^ uintptr(15) // 16-byte align per the ABI
	sp -= 16                 // reserve an aligned slot for the return address
	*(*uintptr)(unsafe.Pointer(sp)) = trampolinePC

	*ctx = Context{
		RSP: sp,
		R15: uintptr(unsafe.Pointer(ctx)), // trampolineAsm passes this to runTrampoline
	}
}

// trampolinePC is the entry address contextSwitch's RET lands on for a
// freshly bootstrapped thread. Set from trampolineAsm's address in init,
// since Go assembly symbols aren't ordinary addressable Go values.
var trampolinePC uintptr

//go:noescape
func trampolineAsm()

func init() {
	trampolinePC = funcPC(trampolineAsm)
}

// funcPC extracts the entry program counter of a Go function value. This
// relies on the layout of a func value (a pointer to a structure whose
// first word is the code pointer) and is the same trick used by a handful
// of low-level Go libraries that need a raw PC for hand-written assembly
// trampolines; it is not part of any public Go API guarantee.
func funcPC(f func()) uintptr {
	return **(**uintptr)(unsafe.Pointer(&f))
}
