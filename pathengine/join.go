/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package pathengine

import "github.com/dex-offload/footprint/object"

// Join merges states that have converged on the same pc into one
// continuing state (spec section 4.4: "union_method_access"). Each input
// state holds its own independent Access arena (see pathengine.State's
// package doc), so a real join has to reconcile both the arenas
// (object.UnionMethodAccess, which also establishes NullBranchFlags
// wherever one side never observed a field the other did) and the
// register-binding maps, remapping the absorbed state's register
// bindings onto the surviving arena via the union's address map.
//
// Join also tracks join depth: MaxBranchDepth caps how many times one
// lineage may pass through Join before the engine gives up precision and
// widens (spec section 4.4).
func Join(states []*State, opts Options) (*State, bool) {
	if len(states) == 0 {
		return nil, false
	}
	result := states[0]
	for _, other := range states[1:] {
		result = joinTwo(result, other)
	}
	if len(states) > 1 {
		result.joinDepth++
	}
	if result.joinDepth > opts.MaxBranchDepth {
		WidenAll(result.MA)
		return result, true // true: widening fired, caller should terminate the method
	}
	return result, false
}

func joinTwo(a, b *State) *State {
	visited := make(map[int]struct{}, len(a.Visited)+len(b.Visited))
	for o := range a.Visited {
		visited[o] = struct{}{}
	}
	for o := range b.Visited {
		visited[o] = struct{}{}
	}

	addr := object.UnionMethodAccess(a.MA, b.MA, true)

	regs := make(map[int]map[*object.Access]struct{}, len(a.Regs)+len(b.Regs))
	for reg, set := range a.Regs {
		regs[reg] = cloneSet(set)
	}
	for reg, set := range b.Regs {
		mapped := make(map[*object.Access]struct{}, len(set))
		for n := range set {
			if m, ok := addr[n]; ok {
				mapped[m] = struct{}{}
			} else {
				mapped[n] = struct{}{}
			}
		}
		if existing, ok := regs[reg]; ok {
			for n := range mapped {
				existing[n] = struct{}{}
			}
		} else {
			regs[reg] = mapped
		}
	}

	joinDepth := a.joinDepth
	if b.joinDepth > joinDepth {
		joinDepth = b.joinDepth
	}

	return &State{
		PC:         a.PC,
		LastOpcode: a.LastOpcode,
		Visited:    visited,
		AffectsTry: a.AffectsTry || b.AffectsTry,
		Regs:       regs,
		MA:         a.MA,
		joinDepth:  joinDepth,
	}
}
