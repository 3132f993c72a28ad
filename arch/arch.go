// Package arch provides the architecture-specific capability set the
// scheduler core is built on: register-context save/restore, the bootstrap
// of a freshly spawned thread onto its own stack, and interrupt-mask
// control for the preemption driver.
//
// Exactly one backend is functional per build: amd64. The arm64 and riscv64
// files in this package export the same names (Context, ContextSwitch,
// Bootstrap, EnableInterrupts, DisableInterrupts, InterruptsEnabled) but
// panic when called, mirroring the stub status of
// original_source/src/arch/{aarch64,riscv64}.rs. Selection is therefore by
// Go build constraint, not a runtime-dispatched interface value: there is
// exactly one live definition of each name per build, so ContextSwitch on
// the hot path is a direct call, never an interface method call.
package arch

import "sync"

// bootRegistry carries a freshly spawned thread's entry point across the
// first ContextSwitch into it, keyed by the Context the switch lands on.
// The landing trampoline looks itself up and deletes the entry, so no two
// threads ever observe each other's record. A never-run Context has no
// real callee-saved register state yet, so the amd64 backend also borrows
// one callee-saved slot (R15) to pass ctx itself to the trampoline; see
// context_amd64.go.
var bootRegistry struct {
	sync.Mutex
	m map[*Context]bootRecord
}

type bootRecord struct {
	entry func()
	exit  func()
}

func init() {
	bootRegistry.m = make(map[*Context]bootRecord)
}

func registerBoot(ctx *Context, entry, exit func()) {
	bootRegistry.Lock()
	bootRegistry.m[ctx] = bootRecord{entry: entry, exit: exit}
	bootRegistry.Unlock()
}

// runTrampoline is the landing pad every architecture's assembly
// trampoline calls once SP has been swapped onto the new thread's stack.
// Unexported; the asm stubs reference it by symbol name.
func runTrampoline(ctx *Context) {
	bootRegistry.Lock()
	rec := bootRegistry.m[ctx]
	delete(bootRegistry.m, ctx)
	bootRegistry.Unlock()

	if rec.entry != nil {
		rec.entry()
	}
	if rec.exit == nil {
		panic("arch: thread trampoline has no exit hook installed")
	}
	rec.exit()
	panic("arch: thread_exit hook returned, which must never happen")
}
