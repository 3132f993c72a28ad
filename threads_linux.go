//go:build linux

package threads

import "golang.org/x/sys/unix"

// osThreadID identifies the calling OS thread, used to recover which
// carrier a goroutine is executing as once it has pinned itself with
// runtime.LockOSThread - the closest Go gets to the CPU-local carrier
// record the original source reads implicitly.
func osThreadID() int { return unix.Gettid() }
