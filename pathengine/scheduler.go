/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package pathengine

import "github.com/eapache/queue"

// Scheduler holds the live ParseState set and always hands the caller
// the state with the smallest PC (spec section 4.4, "Scheduling model").
// The live set is stored in an eapache/queue.Queue — the same worklist
// primitive google/go-flow-levee uses for its SSA dataflow fixpoint — and
// priority extraction is a full scan-and-requeue on each Next() call.
// That is O(n) per extraction rather than O(log n), which is the right
// trade here: n is bounded by the number of distinct instruction offsets
// in one method (testable property 5), never large enough for the
// asymptotics to matter, and it avoids hand-rolling a heap.
type Scheduler struct {
	q *queue.Queue
}

// NewScheduler returns an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{q: queue.New()}
}

// Add enqueues a state to the live set.
func (s *Scheduler) Add(st *State) { s.q.Add(st) }

// Len reports how many states are currently live.
func (s *Scheduler) Len() int { return s.q.Length() }

// Next removes and returns the live state with the smallest PC, or nil if
// the live set is empty.
func (s *Scheduler) Next() *State {
	n := s.q.Length()
	if n == 0 {
		return nil
	}

	var min *State
	var rest []*State
	for i := 0; i < n; i++ {
		st := s.q.Remove().(*State)
		if min == nil || st.PC < min.PC {
			if min != nil {
				rest = append(rest, min)
			}
			min = st
		} else {
			rest = append(rest, st)
		}
	}
	for _, st := range rest {
		s.q.Add(st)
	}
	return min
}

// StatesAtMinPC removes and returns every live state whose PC equals the
// current minimum, for the caller to join into a single continuation
// (spec section 4.4: "States with identical pc are joined before
// stepping").
func (s *Scheduler) StatesAtMinPC() []*State {
	n := s.q.Length()
	if n == 0 {
		return nil
	}
	all := make([]*State, 0, n)
	for i := 0; i < n; i++ {
		all = append(all, s.q.Remove().(*State))
	}
	min := all[0].PC
	for _, st := range all {
		if st.PC < min {
			min = st.PC
		}
	}
	var atMin []*State
	for _, st := range all {
		if st.PC == min {
			atMin = append(atMin, st)
		} else {
			s.q.Add(st)
		}
	}
	return atMin
}
