package tcb

// Retain records that a carrier has popped t out of a ready structure
// (locally or via a steal) and is about to dispatch it. Call once per
// successful pop, matched by exactly one later Release.
func (t *TCB) Retain() { t.refs.Add(1) }

// Release drops the dispatch reference recorded by the matching Retain -
// called from the re-enqueue that follows a yield, or from thread exit -
// and reports whether t has reached zero outstanding references. A
// return of true, combined with t.State() == Exited, is the only
// condition under which the caller may return t.Stack to its pool, per
// spec.md §9.
func (t *TCB) Release() bool {
	return t.refs.Add(-1) == 0
}

// RefCount reports the current reference count; exposed for tests and
// diagnostics only, never for synchronization decisions.
func (t *TCB) RefCount() int32 { return t.refs.Load() }
