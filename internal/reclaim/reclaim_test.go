package reclaim

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestEpochReclaimer_FreesOnceUnpinned(t *testing.T) {
	r := New(Epoch, 2)

	var freed bool
	node := new(int)
	ptr := unsafe.Pointer(node)

	r.BeginAccess(0, ptr)
	r.Retire(ptr, func() { freed = true })
	require.False(t, freed, "node must not be freed while carrier 0 is pinned")

	r.EndAccess(0)
	r.Retire(unsafe.Pointer(new(int)), func() {})
	require.True(t, freed, "retiring again after unpin must sweep the earlier node")
}

func TestEpochReclaimer_ConfirmAlwaysTrue(t *testing.T) {
	r := New(Epoch, 1)
	require.True(t, r.Confirm(nil, func() unsafe.Pointer { return nil }))
}

func TestHazardReclaimer_DefersWhileHazardous(t *testing.T) {
	r := New(Hazard, 2)

	node := new(int)
	ptr := unsafe.Pointer(node)

	r.BeginAccess(0, ptr)

	var freed bool
	r.Retire(ptr, func() { freed = true })
	require.False(t, freed, "node named by a hazard slot must not be freed")

	r.EndAccess(0)
	r.Retire(unsafe.Pointer(new(int)), func() {})
	require.True(t, freed, "retiring again after the slot clears must sweep the earlier node")
}

func TestHazardReclaimer_ConfirmDetectsChange(t *testing.T) {
	r := New(Hazard, 1)
	a := new(int)

	require.True(t, r.Confirm(unsafe.Pointer(a), func() unsafe.Pointer { return unsafe.Pointer(a) }))
	require.False(t, r.Confirm(unsafe.Pointer(a), func() unsafe.Pointer { return nil }))
}

func TestHazardReclaimer_FreesImmediatelyWhenNotHazardous(t *testing.T) {
	r := New(Hazard, 1)

	var freed bool
	r.Retire(unsafe.Pointer(new(int)), func() { freed = true })
	require.True(t, freed)
}
