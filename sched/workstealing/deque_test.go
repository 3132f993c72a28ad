package workstealing

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/NathanVRyver/preemptive-threads-sub001/internal/tcb"
)

func TestDeque_OwnerLIFO(t *testing.T) {
	d := newDeque(4)

	a := tcb.New(0, 0, nil, nil)
	b := tcb.New(1, 0, nil, nil)

	require.True(t, d.pushBottom(a))
	require.True(t, d.pushBottom(b))

	got, ok := d.popBottom()
	require.True(t, ok)
	require.Equal(t, b, got, "owner pop must be LIFO")

	got, ok = d.popBottom()
	require.True(t, ok)
	require.Equal(t, a, got)

	_, ok = d.popBottom()
	require.False(t, ok)
}

func TestDeque_ThiefFIFO(t *testing.T) {
	d := newDeque(4)

	a := tcb.New(0, 0, nil, nil)
	b := tcb.New(1, 0, nil, nil)
	d.pushBottom(a)
	d.pushBottom(b)

	got, ok := d.stealTop()
	require.True(t, ok)
	require.Equal(t, a, got, "thief steal must be FIFO, opposite the owner end")
}

func TestDeque_FullReportsFalse(t *testing.T) {
	d := newDeque(2)
	require.True(t, d.pushBottom(tcb.New(0, 0, nil, nil)))
	require.True(t, d.pushBottom(tcb.New(1, 0, nil, nil)))
	require.False(t, d.pushBottom(tcb.New(2, 0, nil, nil)))
}

func TestDeque_ConcurrentOwnerAndThieves(t *testing.T) {
	const n = 1000
	d := newDeque(1024)

	items := make([]*tcb.TCB, n)
	for i := range items {
		items[i] = tcb.New(tcb.ThreadID(i), 0, nil, nil)
		d.pushBottom(items[i])
	}

	var mu sync.Mutex
	seen := make(map[tcb.ThreadID]bool, n)
	record := func(t *tcb.TCB) {
		mu.Lock()
		seen[t.ID] = true
		mu.Unlock()
	}

	var wg sync.WaitGroup
	for thief := 0; thief < 4; thief++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				t, ok := d.stealTop()
				if !ok {
					if d.size() <= 0 {
						return
					}
					continue
				}
				record(t)
			}
		}()
	}

	for {
		t, ok := d.popBottom()
		if !ok {
			break
		}
		record(t)
	}
	wg.Wait()

	require.Len(t, seen, n, "every pushed item must be observed exactly once across owner pops and thief steals")
}
