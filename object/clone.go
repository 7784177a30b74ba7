/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package object

// CloneGraph deep-clones every node reachable from roots, preserving
// sharing and cycles: two roots that point at the same node before
// cloning point at the same cloned node afterward, and a cycle in the
// source graph becomes an equal cycle in the clone. This is the pattern a
// parse-state fork (branch, catch handler) and a serialization pass both
// need (design note "Cloning").
//
// github.com/mohae/deepcopy is deliberately not used here: it clones by
// reflecting over a value's fields with no notion of "already visited",
// so a cyclic or multiply-shared graph fed through it would recurse
// forever or duplicate shared nodes — exactly the two properties this
// function exists to preserve. No package of this module imports it;
// the register maps of a forked path state are copied by hand in
// pathengine (cloneSet) and remapped through the address map.
//
// Returns the address map from original node to its clone; callers that
// hold other pointers into the original graph (e.g. a ParseState's
// interest_regs) use this map to rewrite them onto the clone. Like every
// other traversal in this package, the walk is an explicit worklist with
// a "seen" set, never recursion, since the graph is cyclic in general.
func CloneGraph(roots []*Access) map[*Access]*Access {
	return CloneGraphSeeded(roots, nil)
}

// CloneGraphSeeded behaves like CloneGraph, except any root already
// present in seed clones onto the pre-allocated node supplied there
// instead of a fresh plain *Access shell. This is the hook
// MethodAccess.Clone needs: a global class's root must clone into a
// genuinely typed *ClassAccess (its Class field preserved) while still
// sharing one address map with every other node the walk discovers, so
// that anything else aliasing that root (e.g. a return value pointing
// straight at it) repoints onto the same clone.
func CloneGraphSeeded(roots []*Access, seed map[*Access]*Access) map[*Access]*Access {
	addr := make(map[*Access]*Access, len(seed))
	for k, v := range seed {
		addr[k] = v
	}

	var order []*Access
	seen := make(map[*Access]struct{}, len(addr))
	var queue []*Access
	enqueue := func(n *Access) {
		if n == nil {
			return
		}
		if _, ok := seen[n]; ok {
			return
		}
		seen[n] = struct{}{}

		clone, preseeded := addr[n]
		if !preseeded {
			clone = cloneShell(n)
			addr[n] = clone
		} else {
			clone.AllFlag = n.AllFlag
			clone.InArray = n.InArray
			for i, v := range n.NullBranchFlags {
				clone.NullBranchFlags[i] = v
			}
		}
		order = append(order, n)
		queue = append(queue, n)
	}

	for _, r := range roots {
		enqueue(r)
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, child := range n.FieldSet {
			enqueue(child)
		}
		for _, set := range n.TrackSet {
			for member := range set {
				enqueue(member)
			}
		}
	}

	// Second pass: now that every node has a clone, rewrite the clones'
	// internal pointers (FieldSet, TrackSet, Belonging) onto the clone
	// side of the address map.
	for _, orig := range order {
		clone := addr[orig]
		for i, child := range orig.FieldSet {
			clone.FieldSet[i] = addr[child]
		}
		for i, set := range orig.TrackSet {
			cloned := make(map[*Access]struct{}, len(set))
			for member := range set {
				cloned[addr[member]] = struct{}{}
			}
			clone.TrackSet[i] = cloned
		}
		if orig.Belonging != nil {
			clone.Belonging = addr[orig.Belonging]
		}
	}

	return addr
}

// CloneRoots clones each root via CloneGraph's address map and returns
// the clones in the same order as roots.
func CloneRoots(roots []*Access) ([]*Access, map[*Access]*Access) {
	addr := CloneGraph(roots)
	out := make([]*Access, len(roots))
	for i, r := range roots {
		out[i] = addr[r]
	}
	return out, addr
}

// cloneShell allocates a blank clone of n with its scalar fields
// (AllFlag, InArray, NullBranchFlags) copied and its set fields (FieldSet,
// TrackSet, MergeSet) empty — the starting point for any node a clone or
// union pass discovers, before that node's edges are rewritten onto the
// clone side of whatever address map the caller is building.
func cloneShell(n *Access) *Access {
	clone := &Access{
		AllFlag:         n.AllFlag,
		InArray:         n.InArray,
		FieldSet:        make(map[int]*Access),
		TrackSet:        make(map[int]map[*Access]struct{}),
		MergeSet:        make(map[int]map[*Access]struct{}),
		NullBranchFlags: make(map[int]bool, len(n.NullBranchFlags)),
		Idx:             -1,
	}
	for i, v := range n.NullBranchFlags {
		clone.NullBranchFlags[i] = v
	}
	return clone
}
