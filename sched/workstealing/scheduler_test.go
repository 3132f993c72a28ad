package workstealing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/NathanVRyver/preemptive-threads-sub001/internal/reclaim"
)

func TestScheduler_PicksLocalBeforeStealing(t *testing.T) {
	s := New(0, 2, reclaim.Epoch)

	id, err := s.Spawn(0, 5, nil, nil)
	require.NoError(t, err)

	picked, ok := s.PickNext(0)
	require.True(t, ok)
	require.Equal(t, id, picked)
}

func TestScheduler_StealsFromOtherCarrier(t *testing.T) {
	s := New(0, 2, reclaim.Epoch)

	id, err := s.Spawn(0, 5, nil, nil)
	require.NoError(t, err)

	picked, ok := s.PickNext(1)
	require.True(t, ok, "carrier 1 must be able to steal from carrier 0's deque")
	require.Equal(t, id, picked)
}

func TestScheduler_HigherPriorityWinsLocally(t *testing.T) {
	s := New(0, 1, reclaim.Epoch)

	_, err := s.Spawn(0, 1, nil, nil)
	require.NoError(t, err)
	high, err := s.Spawn(0, 10, nil, nil)
	require.NoError(t, err)

	picked, ok := s.PickNext(0)
	require.True(t, ok)
	require.Equal(t, high, picked)
}

func TestScheduler_EnqueueReadyUsesOwnerEnd(t *testing.T) {
	s := New(0, 1, reclaim.Epoch)

	a, err := s.Spawn(0, 0, nil, nil)
	require.NoError(t, err)
	b, err := s.Spawn(0, 0, nil, nil)
	require.NoError(t, err)

	// Drain both, then re-enqueue a: it should come back ahead of b under
	// the owner's LIFO discipline.
	first, _ := s.PickNext(0)
	second, _ := s.PickNext(0)
	require.ElementsMatch(t, []uint64{uint64(a), uint64(b)}, []uint64{uint64(first), uint64(second)})

	require.NoError(t, s.EnqueueReady(0, first))
	require.NoError(t, s.EnqueueReady(0, second))

	picked, ok := s.PickNext(0)
	require.True(t, ok)
	require.Equal(t, second, picked, "the most recently enqueued thread must be picked first (LIFO)")
}

func TestScheduler_HazardReclamationVariant(t *testing.T) {
	s := New(0, 2, reclaim.Hazard)

	id, err := s.Spawn(0, 3, nil, nil)
	require.NoError(t, err)

	picked, ok := s.PickNext(1)
	require.True(t, ok)
	require.Equal(t, id, picked)
}

func TestScheduler_HasReadyIgnoresLowerPriority(t *testing.T) {
	s := New(0, 2, reclaim.Epoch)

	_, err := s.Spawn(0, 5, nil, nil)
	require.NoError(t, err)

	require.True(t, s.HasReady(0, 0), "a lower minPriority must see the ready thread")
	require.True(t, s.HasReady(0, 5), "an equal minPriority must see the ready thread")
	require.False(t, s.HasReady(0, 6), "a higher minPriority must not see a lower-priority ready thread on the carrier's own deque")
	require.False(t, s.HasReady(1, 6), "a higher minPriority must not see a lower-priority ready thread owned by a different carrier")
}
