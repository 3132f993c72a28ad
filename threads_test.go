package threads

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/NathanVRyver/preemptive-threads-sub001/internal/testconfig"
)

func runFor(t *testing.T, rt *Runtime, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	err := rt.Start(ctx)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		t.Fatalf("Start returned unexpected error: %v", err)
	}
}

func TestRuntime_SpawnRunsToCompletion(t *testing.T) {
	for _, kind := range []SchedulerKind{SchedulerWorkStealing, SchedulerRoundRobin} {
		rt := New(WithCarriers(2), WithScheduler(kind))

		var ran atomic.Bool
		var wg sync.WaitGroup
		wg.Add(1)
		_, err := rt.Spawn(func() {
			ran.Store(true)
			wg.Done()
		}, 0)
		require.NoError(t, err)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		go rt.Start(ctx)

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("spawned thread never ran")
		}
		require.True(t, ran.Load())
	}
}

func TestRuntime_YieldNowInterleaves(t *testing.T) {
	rt := New(WithCarriers(1), WithScheduler(SchedulerRoundRobin))

	var order []int
	var mu sync.Mutex
	record := func(v int) {
		mu.Lock()
		order = append(order, v)
		mu.Unlock()
	}

	var wg sync.WaitGroup
	wg.Add(2)
	_, err := rt.Spawn(func() {
		record(1)
		rt.YieldNow()
		record(3)
		wg.Done()
	}, 0)
	require.NoError(t, err)

	_, err = rt.Spawn(func() {
		record(2)
		rt.YieldNow()
		record(4)
		wg.Done()
	}, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	go rt.Start(ctx)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("threads never completed")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []int{1, 2, 3, 4}, order, "round robin must interleave yields in spawn order")
}

func TestRuntime_YieldNowDoesNotSwitchAwayForLowerPriorityReady(t *testing.T) {
	rt := New(WithCarriers(1), WithScheduler(SchedulerRoundRobin))

	var order []int
	var mu sync.Mutex
	record := func(v int) {
		mu.Lock()
		order = append(order, v)
		mu.Unlock()
	}

	var wg sync.WaitGroup
	wg.Add(2)
	_, err := rt.Spawn(func() {
		record(1)
		rt.YieldNow()
		record(2)
		wg.Done()
	}, 10)
	require.NoError(t, err)

	_, err = rt.Spawn(func() {
		record(3)
		wg.Done()
	}, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	go rt.Start(ctx)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("threads never completed")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []int{1, 2, 3}, order, "a higher-priority thread's yield must not switch away while only a lower-priority thread is ready")
}

func TestRuntime_ManyThreadsAllComplete(t *testing.T) {
	cfg := testconfig.Quick()
	rt := New(WithCarriers(4), WithScheduler(SchedulerWorkStealing))

	var completed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < cfg.StressThreadCount; i++ {
		wg.Add(1)
		_, err := rt.Spawn(func() {
			for j := 0; j < 3; j++ {
				rt.YieldNow()
			}
			completed.Add(1)
			wg.Done()
		}, uint8(i%4))
		require.NoError(t, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go rt.Start(ctx)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("only %d/%d threads completed", completed.Load(), cfg.StressThreadCount)
	}
	require.EqualValues(t, cfg.StressThreadCount, completed.Load())
}

func TestRuntime_YieldNowOutsideCarrierIsNoop(t *testing.T) {
	rt := New(WithCarriers(1))
	require.NotPanics(t, func() { rt.YieldNow() })
}

func TestRuntime_CurrentThreadIDOutsideCarrier(t *testing.T) {
	rt := New(WithCarriers(1))
	_, ok := rt.CurrentThreadID()
	require.False(t, ok)
}

func TestRuntime_PreemptionEnableDisable(t *testing.T) {
	rt := New(WithCarriers(1))
	require.NoError(t, rt.PreemptionEnable(5*time.Millisecond))
	rt.PreemptionDisable()
}

func TestRuntime_PreemptionCriticalSectionDoesNotBlockConstruction(t *testing.T) {
	rt := New(WithCarriers(1))
	rt.PreemptionEnterCritical()
	rt.PreemptionLeaveCritical()
}

func TestRuntime_CarrierStartRejectsOutOfRangeIndex(t *testing.T) {
	rt := New(WithCarriers(1))
	err := rt.CarrierStart(context.Background(), 5)
	require.ErrorIs(t, err, ErrInvalidThreadID)
}

func TestOptions_DefaultsApplyWithoutAny(t *testing.T) {
	rt := New()
	require.Greater(t, rt.Carriers(), 0)
}

func TestOptions_WithCarriersIgnoresNonPositive(t *testing.T) {
	cfg := resolveOptions([]Option{WithCarriers(0), WithCarriers(-1)})
	require.Equal(t, defaultCarrierCount(), cfg.carriers)
}

func TestOptions_WithMaxThreadsIgnoresNonPositive(t *testing.T) {
	cfg := resolveOptions([]Option{WithMaxThreads(0)})
	require.Equal(t, 0, cfg.maxThreads)
}
