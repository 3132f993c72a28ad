package stack

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/NathanVRyver/preemptive-threads-sub001/internal/threaderr"
)

func TestPool_AcquireRelease_Recycles(t *testing.T) {
	p := NewPool(nil)

	s, err := p.Acquire(Class32KiB)
	require.NoError(t, err)
	require.Equal(t, Class32KiB, s.Class())

	base := s.Base()
	require.NoError(t, p.Release(s))

	s2, err := p.Acquire(Class32KiB)
	require.NoError(t, err)
	require.Equal(t, base, s2.Base(), "expected the freed stack to be recycled")
}

func TestPool_Release_QuarantinesCorruptedGuard(t *testing.T) {
	p := NewPool(nil)

	s, err := p.Acquire(Class4KiB)
	require.NoError(t, err)

	s.region[0] = 0x00 // corrupt the guard pattern

	err = p.Release(s)
	require.ErrorIs(t, err, threaderr.ErrStackOverflow)

	cp := p.classes[Class4KiB]
	require.True(t, cp.free.Empty(), "a guard-failed stack must not be recycled")
}

func TestPool_Acquire_UnknownClass(t *testing.T) {
	p := NewPool([]SizeClass{Class4KiB})

	_, err := p.Acquire(Class1MiB)
	require.ErrorIs(t, err, threaderr.ErrStackPoolExhausted)
}

func TestCheckGuard_ReportsOverflow(t *testing.T) {
	p := NewPool(nil)
	s, err := p.Acquire(Class4KiB)
	require.NoError(t, err)
	require.NoError(t, CheckGuard(s))

	s.region[20] = 0xFF // corrupt the sentinel word
	require.ErrorIs(t, CheckGuard(s), threaderr.ErrStackOverflow)
}
