/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package object is the abstract-value model the interpreter and path
// engine operate over (spec section 3, component B). An ObjectAccess
// records everything the analysis has learned about one abstract object:
// whether it must be migrated wholesale (AllFlag), which fields have been
// dereferenced, and which other ObjectAccess nodes each field may
// currently point to.
//
// Graphs of ObjectAccess are cyclic in general — a field's track set can
// loop back to an ancestor. Every traversal in this package and its
// callers uses an explicit worklist and a "seen" set keyed by node
// identity (pointer equality), never unbounded recursion.
package object

// Access is the common abstract-object node. ClassAccess embeds it to add
// a class reference; MethodAccess's Args and ReturnObjs are plain *Access
// roots.
type Access struct {
	// AllFlag, once true, means the entire transitive object must be
	// migrated. All further refinement on this node is suppressed.
	AllFlag bool
	// InArray marks that this object is reachable via an array element;
	// it forces AllFlag on anything later stored into it (spec 4.3,
	// "array get/put of object").
	InArray bool

	// FieldSet holds the canonical child Access for a given field index,
	// i.e. "what has been observed about the field's representative".
	// Invariant 2: if FieldSet[i] != nil, it is also a member of
	// TrackSet[i].
	FieldSet map[int]*Access

	// TrackSet holds, per field index, the set of Access nodes the field
	// currently may point to along the path under analysis.
	TrackSet map[int]map[*Access]struct{}

	// MergeSet is scratch space used only during a join; it is swapped
	// into TrackSet when the join commits (see pathengine.Join).
	MergeSet map[int]map[*Access]struct{}

	// NullBranchFlags[i] is true when at least one explored path reached
	// the current instruction with field i unobserved, so a later join
	// knows to retain the pre-existing TrackSet instead of discarding it.
	NullBranchFlags map[int]bool

	// Belonging is the back-reference to the owning parent; walking it up
	// answers "is any ancestor of mine fully migrated".
	Belonging *Access

	// Idx is a transient id assigned by Index and cleared by ClearIndex.
	// It is only meaningful between those two calls; -1 otherwise.
	Idx int
}

// NewAccess returns a freshly constructed node with invariants established:
// empty sets, Idx == -1, AllFlag == false.
func NewAccess() *Access {
	return &Access{
		FieldSet:        make(map[int]*Access),
		TrackSet:        make(map[int]map[*Access]struct{}),
		MergeSet:        make(map[int]map[*Access]struct{}),
		NullBranchFlags: make(map[int]bool),
		Idx:             -1,
	}
}

// IsFullyMigrated walks Belonging pointers and returns true if this node
// or any ancestor has AllFlag set (invariant 1).
func (a *Access) IsFullyMigrated() bool {
	for n := a; n != nil; n = n.Belonging {
		if n.AllFlag {
			return true
		}
	}
	return false
}

// Widen sets AllFlag, the monotone widening operation (testable property
//2: once set on an ancestor, every descendant's migration decision is
// "migrate all"). Widen never needs to touch descendants directly —
// IsFullyMigrated climbs Belonging to discover it — but callers that widen
// a root because of a call-site or recursion escape hatch (spec 4.4)
// always call Widen on the root they hold, not a field child, since a
// field child's Belonging chain already terminates at that root.
func (a *Access) Widen() {
	a.AllFlag = true
}

// Field returns the canonical child for field index i, creating it (and
// wiring its Belonging pointer and TrackSet membership per invariant 2) if
// this is the first sighting of the field.
func (a *Access) Field(i int) *Access {
	if child, ok := a.FieldSet[i]; ok {
		return child
	}
	child := NewAccess()
	child.Belonging = a
	a.FieldSet[i] = child
	a.trackInsert(i, child)
	return child
}

// trackInsert adds node to TrackSet[i], creating the inner set if absent.
func (a *Access) trackInsert(i int, node *Access) {
	set, ok := a.TrackSet[i]
	if !ok {
		set = make(map[*Access]struct{})
		a.TrackSet[i] = set
	}
	set[node] = struct{}{}
}

// TrackMembers returns the current track set for field i as a slice,
// stable-ish only in that it is freshly allocated each call (TrackSet
// itself is a map, so iteration order is not meaningful — callers that
// need determinism sort by Idx after Index has run).
func (a *Access) TrackMembers(i int) []*Access {
	set := a.TrackSet[i]
	out := make([]*Access, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	return out
}

// ReplaceTrack replaces TrackSet[i] wholesale with members, used by the
// unambiguous iput-object store rule (spec 4.3): "the field's track set is
// replaced by the destination register's binding set".
func (a *Access) ReplaceTrack(i int, members map[*Access]struct{}) {
	set := make(map[*Access]struct{}, len(members))
	for n := range members {
		set[n] = struct{}{}
	}
	a.TrackSet[i] = set
}

// MergeTrack unions members into TrackSet[i] in place (used by the
// driver when grafting a callee's track members onto a caller node).
func (a *Access) MergeTrack(i int, members map[*Access]struct{}) {
	set, ok := a.TrackSet[i]
	if !ok {
		set = make(map[*Access]struct{})
		a.TrackSet[i] = set
	}
	for n := range members {
		set[n] = struct{}{}
	}
}
