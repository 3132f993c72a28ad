package tcb

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/NathanVRyver/preemptive-threads-sub001/internal/threaderr"
)

func TestTable_InsertAssignsDenseIDs(t *testing.T) {
	tb := NewTable(0)

	first, err := tb.Insert(func(id ThreadID) *TCB { return New(id, 0, nil, nil) })
	require.NoError(t, err)
	require.Equal(t, ThreadID(0), first.ID)

	second, err := tb.Insert(func(id ThreadID) *TCB { return New(id, 0, nil, nil) })
	require.NoError(t, err)
	require.Equal(t, ThreadID(1), second.ID)

	require.Equal(t, 2, tb.Len())
}

func TestTable_InsertRespectsMaxThreads(t *testing.T) {
	tb := NewTable(1)

	_, err := tb.Insert(func(id ThreadID) *TCB { return New(id, 0, nil, nil) })
	require.NoError(t, err)

	_, err = tb.Insert(func(id ThreadID) *TCB { return New(id, 0, nil, nil) })
	require.ErrorIs(t, err, threaderr.ErrMaxThreadsReached)
}

func TestTable_GetUnknownID(t *testing.T) {
	tb := NewTable(0)
	_, err := tb.Get(42)
	require.ErrorIs(t, err, threaderr.ErrInvalidThreadID)
}

func TestTable_ClearHidesEntryWithoutShrinking(t *testing.T) {
	tb := NewTable(0)

	first, err := tb.Insert(func(id ThreadID) *TCB { return New(id, 0, nil, nil) })
	require.NoError(t, err)
	second, err := tb.Insert(func(id ThreadID) *TCB { return New(id, 0, nil, nil) })
	require.NoError(t, err)

	require.NoError(t, tb.Clear(first.ID))

	_, err = tb.Get(first.ID)
	require.ErrorIs(t, err, threaderr.ErrInvalidThreadID)

	got, err := tb.Get(second.ID)
	require.NoError(t, err)
	require.Equal(t, second.ID, got.ID)

	require.Equal(t, 2, tb.Len(), "clearing must not shrink the table or reissue the id")

	var seen []ThreadID
	tb.Range(func(t *TCB) { seen = append(seen, t.ID) })
	require.Equal(t, []ThreadID{second.ID}, seen, "range must skip cleared entries")
}

func TestTable_ClearUnknownID(t *testing.T) {
	tb := NewTable(0)
	require.ErrorIs(t, tb.Clear(7), threaderr.ErrInvalidThreadID)
}

func TestTCB_StateTransitions(t *testing.T) {
	tcb := New(0, 5, nil, nil)
	require.Equal(t, Ready, tcb.State())

	require.True(t, tcb.CompareAndSwapState(Ready, Running))
	require.Equal(t, Running, tcb.State())

	require.False(t, tcb.CompareAndSwapState(Ready, Exited), "wrong old state must fail")
}

func TestTCB_PreemptRequest(t *testing.T) {
	tcb := New(0, 0, nil, nil)
	require.False(t, tcb.TakePreemptRequest())

	tcb.RequestPreempt()
	require.True(t, tcb.TakePreemptRequest())
	require.False(t, tcb.TakePreemptRequest(), "flag must clear after being taken")
}

func TestTCB_RefCounting(t *testing.T) {
	tcb := New(0, 0, nil, nil)
	require.Equal(t, int32(0), tcb.RefCount())

	tcb.Retain()
	require.Equal(t, int32(1), tcb.RefCount())

	tcb.Retain()
	require.Equal(t, int32(2), tcb.RefCount())

	require.False(t, tcb.Release())
	require.True(t, tcb.Release(), "dropping the last reference must report true")
}

func TestTCB_Affinity(t *testing.T) {
	tcb := New(0, 0, nil, nil)
	require.Equal(t, NoAffinity, tcb.Affinity())

	tcb.SetAffinity(3)
	require.Equal(t, int32(3), tcb.Affinity())
}
