//go:build arm64

package arch

// Context is the AArch64 saved-register file: general-purpose registers
// x19-x30 (the AAPCS64 callee-saved set), the stack pointer, and the
// program counter. Field shape mirrors
// original_source/src/arch/aarch64.rs's Aarch64Context, minus the NEON/FPU
// state (full-fpu feature), which has no functional backend here either.
type Context struct {
	X  [12]uint64 // x19-x30
	SP uint64
	PC uint64
}

// ContextSwitch is unimplemented on this architecture: the AAPCS64 switch
// requires hand-written assembly this build does not ship. Present so the
// package satisfies the same name set as the amd64 backend (spec.md §9).
func ContextSwitch(prev, next *Context) {
	panic("arch: arm64 context switch requires assembly not implemented in this build")
}

// Bootstrap is unimplemented on this architecture; see ContextSwitch.
func Bootstrap(ctx *Context, top uintptr, entry, exit func()) {
	panic("arch: arm64 bootstrap requires assembly not implemented in this build")
}

func EnableInterrupts() {
	panic("arch: arm64 interrupt enable not implemented in this build")
}

func DisableInterrupts() {
	panic("arch: arm64 interrupt disable not implemented in this build")
}

func InterruptsEnabled() bool {
	panic("arch: arm64 interrupt query not implemented in this build")
}
