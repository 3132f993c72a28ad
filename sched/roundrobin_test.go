package sched

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/NathanVRyver/preemptive-threads-sub001/internal/threaderr"
)

func TestRoundRobin_FIFOWithinPriority(t *testing.T) {
	s := NewRoundRobinScheduler(0, 1)

	t1, err := s.Spawn(0, 5, nil, nil)
	require.NoError(t, err)
	t2, err := s.Spawn(0, 5, nil, nil)
	require.NoError(t, err)

	id, ok := s.PickNext(0)
	require.True(t, ok)
	require.Equal(t, t1, id)

	id, ok = s.PickNext(0)
	require.True(t, ok)
	require.Equal(t, t2, id)

	_, ok = s.PickNext(0)
	require.False(t, ok)
}

func TestRoundRobin_HighPriorityFirst(t *testing.T) {
	s := NewRoundRobinScheduler(0, 1)

	low, err := s.Spawn(0, 1, nil, nil)
	require.NoError(t, err)
	high, err := s.Spawn(0, 10, nil, nil)
	require.NoError(t, err)

	id, ok := s.PickNext(0)
	require.True(t, ok)
	require.Equal(t, high, id)

	id, ok = s.PickNext(0)
	require.True(t, ok)
	require.Equal(t, low, id)
}

func TestRoundRobin_MaxThreadsReached(t *testing.T) {
	s := NewRoundRobinScheduler(1, 1)

	_, err := s.Spawn(0, 0, nil, nil)
	require.NoError(t, err)

	_, err = s.Spawn(0, 0, nil, nil)
	require.ErrorIs(t, err, threaderr.ErrMaxThreadsReached)
}

func TestRoundRobin_CurrentTracksDispatch(t *testing.T) {
	s := NewRoundRobinScheduler(0, 1)

	_, ok := s.Current(0)
	require.False(t, ok)

	id, err := s.Spawn(0, 0, nil, nil)
	require.NoError(t, err)

	picked, ok := s.PickNext(0)
	require.True(t, ok)
	require.Equal(t, id, picked)

	current, ok := s.Current(0)
	require.True(t, ok)
	require.Equal(t, id, current)
}

func TestRoundRobin_MarkExited(t *testing.T) {
	s := NewRoundRobinScheduler(0, 1)

	id, err := s.Spawn(0, 0, nil, nil)
	require.NoError(t, err)

	require.NoError(t, s.MarkExited(0, id))

	tcbEntry, err := s.Table().Get(id)
	require.NoError(t, err)
	require.Equal(t, "Exited", tcbEntry.State().String())
}

func TestRoundRobin_EnqueueReadyUnknownID(t *testing.T) {
	s := NewRoundRobinScheduler(0, 1)
	err := s.EnqueueReady(0, 999)
	require.ErrorIs(t, err, threaderr.ErrInvalidThreadID)
}

func TestRoundRobin_HasReadyIgnoresLowerPriority(t *testing.T) {
	s := NewRoundRobinScheduler(0, 1)

	_, err := s.Spawn(0, 1, nil, nil)
	require.NoError(t, err)

	require.True(t, s.HasReady(0, 0), "a lower minPriority must see the ready thread")
	require.True(t, s.HasReady(0, 1), "an equal minPriority must see the ready thread")
	require.False(t, s.HasReady(0, 2), "a higher minPriority must not see a lower-priority ready thread")
}
