package scanner

import (
	"sort"
	"sync/atomic"
)

// State is a snapshot of the scans in flight.
type State struct {
	GIDs []string // link GIDs currently being scanned, sorted
}

// Idle reports whether no scan is active.
func (s State) Idle() bool {
	return len(s.GIDs) == 0
}

// StateTracker tracks which link GIDs have scans in flight. Updates go
// through a compare-and-swap loop over an immutable set, so unrelated scans
// never serialize behind a lock. The tracker is in-memory only; it is a
// liveness signal, not a durability guarantee.
//
// The zero value is ready to use. Each service instance owns its own tracker.
type StateTracker struct {
	active atomic.Pointer[gidSet]
}

type gidSet map[string]struct{}

// Begin marks a link GID as having a scan in flight.
func (t *StateTracker) Begin(gid string) {
	for {
		old := t.active.Load()
		next := make(gidSet, sizeOf(old)+1)
		if old != nil {
			for g := range *old {
				next[g] = struct{}{}
			}
		}
		next[gid] = struct{}{}
		if t.active.CompareAndSwap(old, &next) {
			return
		}
	}
}

// End clears the in-flight mark for a link GID. Ending a GID that was never
// begun is a no-op.
func (t *StateTracker) End(gid string) {
	for {
		old := t.active.Load()
		if old == nil {
			return
		}
		if _, ok := (*old)[gid]; !ok {
			return
		}
		next := make(gidSet, sizeOf(old))
		for g := range *old {
			if g != gid {
				next[g] = struct{}{}
			}
		}
		if t.active.CompareAndSwap(old, &next) {
			return
		}
	}
}

// CurrentState returns a snapshot of the in-flight scan set.
func (t *StateTracker) CurrentState() State {
	old := t.active.Load()
	if old == nil || len(*old) == 0 {
		return State{}
	}
	gids := make([]string, 0, len(*old))
	for g := range *old {
		gids = append(gids, g)
	}
	sort.Strings(gids)
	return State{GIDs: gids}
}

func sizeOf(s *gidSet) int {
	if s == nil {
		return 0
	}
	return len(*s)
}
