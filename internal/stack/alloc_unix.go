//go:build linux || darwin

package stack

import "golang.org/x/sys/unix"

// mmapThreshold is the smallest size class backed by an anonymous mmap
// region rather than a plain Go byte slice. Larger pooled stacks are kept
// off the Go heap (and so off the GC's scan list) the same way a real
// fiber/green-thread runtime would reserve raw pages for them; spec.md §6
// lists "memory mappings with page-granular protection for guard regions"
// as an assumed environment capability.
const mmapThreshold = Class1MiB

func allocRegion(class SizeClass) ([]byte, bool, error) {
	n := guardRegionSize + class.Bytes()
	if class < mmapThreshold {
		return make([]byte, n), false, nil
	}
	b, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return make([]byte, n), false, nil // fall back to the heap rather than fail acquire
	}
	return b, true, nil
}

func freeRegion(region []byte, mmaped bool) {
	if mmaped {
		_ = unix.Munmap(region)
	}
}
