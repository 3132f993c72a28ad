// Package racecheck implements the debug-only invariant assertions of
// spec.md §8's testable properties: Running-exclusivity and ready-queue
// membership exclusivity. It is a no-op unless built with the
// threadsdebug tag, grounded on original_source/src/mem/race_detector.rs
// being gated on debug_assertions.
package racecheck

import (
	"fmt"
	"sync"

	"github.com/NathanVRyver/preemptive-threads-sub001/internal/tcb"
)

// Checker tracks, for debug builds only, which thread ids are currently
// Running and which are currently enqueued as Ready, panicking the
// instant either invariant is violated.
type Checker struct {
	mu      sync.Mutex
	running map[tcb.ThreadID]bool
	ready   map[tcb.ThreadID]bool
}

// New constructs a Checker. Call sites hold a single process-wide
// instance; see threads.go.
func New() *Checker {
	return &Checker{
		running: make(map[tcb.ThreadID]bool),
		ready:   make(map[tcb.ThreadID]bool),
	}
}

// MarkRunning records id as Running, panicking if id is
// already Running anywhere - spec.md §8's "no TCB is in Running on two
// carriers simultaneously".
func (c *Checker) MarkRunning(id tcb.ThreadID) {
	if !enabled {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running[id] {
		panic(fmt.Sprintf("racecheck: thread %d already Running on another carrier", id))
	}
	if c.ready[id] {
		panic(fmt.Sprintf("racecheck: thread %d dispatched while still marked Ready", id))
	}
	c.running[id] = true
}

// ClearRunning records that id is no longer Running (yielded, preempted,
// blocked, or exited).
func (c *Checker) ClearRunning(id tcb.ThreadID) {
	if !enabled {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.running, id)
}

// MarkReady records id as enqueued in exactly one ready structure,
// panicking if it is already present - spec.md §8's queue membership
// exclusivity.
func (c *Checker) MarkReady(id tcb.ThreadID) {
	if !enabled {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ready[id] {
		panic(fmt.Sprintf("racecheck: thread %d enqueued Ready while already Ready elsewhere", id))
	}
	if c.running[id] {
		panic(fmt.Sprintf("racecheck: thread %d enqueued Ready while still marked Running", id))
	}
	c.ready[id] = true
}

// ClearReady records that id has left the ready set (dispatched or
// exited without ever running).
func (c *Checker) ClearReady(id tcb.ThreadID) {
	if !enabled {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.ready, id)
}
