//go:build darwin

package arch

import "golang.org/x/sys/unix"

func sigaddset(set *unix.Sigset_t, sig unix.Signal) {
	*set |= 1 << (uint(sig) - 1)
}

func sigismember(set *unix.Sigset_t, sig unix.Signal) bool {
	return *set&(1<<(uint(sig)-1)) != 0
}
