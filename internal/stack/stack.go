package stack

import "unsafe"

// Stack is a contiguous byte range with a known top, bottom, and guard
// region at the low end, per spec.md §3. Stacks grow down (amd64), so Top
// is the address a freshly bootstrapped context's stack pointer starts
// at, and Base is the lowest addressable byte, inside the guard region.
type Stack struct {
	class  SizeClass
	region []byte
	mmaped bool
}

// Class reports the stack's size class.
func (s *Stack) Class() SizeClass { return s.class }

// Base returns the lowest address of the stack's backing region,
// including the guard bytes.
func (s *Stack) Base() uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(s.region)))
}

// Top returns the highest address of the stack's backing region,
// exclusive - the initial stack pointer value for a freshly bootstrapped
// thread.
func (s *Stack) Top() uintptr {
	return s.Base() + uintptr(len(s.region))
}

// UsableBase returns the lowest address above the guard region that user
// code may legitimately use.
func (s *Stack) UsableBase() uintptr {
	return s.Base() + guardRegionSize
}

// UsableLen returns the number of bytes available above the guard region.
func (s *Stack) UsableLen() int {
	return len(s.region) - guardRegionSize
}

// Contains reports whether sp lies within the owned stack range, above
// the guard region - the "stack containment" testable property of
// spec.md §8.
func (s *Stack) Contains(sp uintptr) bool {
	return sp >= s.UsableBase() && sp <= s.Top()
}

// CheckGuard reports whether the guard sentinel is still intact.
func (s *Stack) CheckGuard() bool {
	return checkGuard(s.region)
}

func newStack(class SizeClass, region []byte, mmaped bool) *Stack {
	installGuard(region)
	return &Stack{class: class, region: region, mmaped: mmaped}
}
