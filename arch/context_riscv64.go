//go:build riscv64

package arch

// Context is the RISC-V 64 saved-register file: the callee-saved
// general-purpose registers (s0-s11 plus ra and sp) and the program
// counter. Field shape mirrors original_source/src/arch/riscv64.rs's
// Riscv64Context, minus the floating-point registers (full-fpu feature),
// which has no functional backend here either.
type Context struct {
	X  [14]uint64 // ra, sp, s0-s11
	PC uint64
}

// ContextSwitch is unimplemented on this architecture: the RISC-V calling
// convention switch requires hand-written assembly this build does not
// ship. Present so the package satisfies the same name set as the amd64
// backend (spec.md §9).
func ContextSwitch(prev, next *Context) {
	panic("arch: riscv64 context switch requires assembly not implemented in this build")
}

// Bootstrap is unimplemented on this architecture; see ContextSwitch.
func Bootstrap(ctx *Context, top uintptr, entry, exit func()) {
	panic("arch: riscv64 bootstrap requires assembly not implemented in this build")
}

func EnableInterrupts() {
	panic("arch: riscv64 interrupt enable not implemented in this build")
}

func DisableInterrupts() {
	panic("arch: riscv64 interrupt disable not implemented in this build")
}

func InterruptsEnabled() bool {
	panic("arch: riscv64 interrupt query not implemented in this build")
}
