//go:build linux

package arch

import "golang.org/x/sys/unix"

func sigaddset(set *unix.Sigset_t, sig unix.Signal) {
	word, bit := sigindex(sig)
	set.Val[word] |= 1 << bit
}

func sigismember(set *unix.Sigset_t, sig unix.Signal) bool {
	word, bit := sigindex(sig)
	return set.Val[word]&(1<<bit) != 0
}

func sigindex(sig unix.Signal) (word, bit uint) {
	n := uint(sig) - 1
	return n / 64, n % 64
}
