/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package driver

import (
	"github.com/dex-offload/footprint/object"
	"github.com/dex-offload/footprint/pathengine"
)

// mergeCallee implements merge_method_args (spec section 4.5): it clones
// the callee's entire reachable graph once, with sharing and cycles
// preserved (object.CloneRoots's address map), then grafts each cloned
// argument root onto the caller's currently-bound registers, folds the
// callee's global classes into the caller's, and returns the cloned
// return objects for the caller to union into current_call_returns.
//
// Cloning before grafting — rather than grafting callee nodes directly —
// keeps every call site's contribution to the caller's graph disjoint: two
// call sites (or a memoized method entered from two different callers)
// must never end up sharing node identity just because they both called
// the same callee, or a mutation on behalf of one caller's path would leak
// into the other's snapshot.
//
// For each argument root, a true all_flag on the callee's root propagates
// directly onto the caller's bound node (their identities correspond), but
// track-set members grafted in under a field index carry their own
// belonging chain from the cloned subgraph, so invariant 1 (climbing
// belonging to find an all_flag ancestor) already answers "fully migrated"
// correctly for anything reached through them without further bookkeeping
// here.
//
// Before grafting, the caller's field-access set (object.FieldAccessSet)
// is computed once from the caller's own roots: nodes already pinned down
// by direct field discovery elsewhere in the caller's graph are excluded
// from receiving the callee's absorbed, approximate structure, so a call
// through a precisely-discovered field never gets its structure corrupted
// by this call site's contribution.
func mergeCallee(s *pathengine.State, argRegs []int, callee *object.MethodAccess) []*object.Access {
	globals := callee.GlobalClassesInOrder()
	roots := callee.Roots() // Args... then GlobalClasses, in that order
	roots = append(roots, callee.ReturnObjs...)
	clones, _ := object.CloneRoots(roots)

	pinned := object.FieldAccessSet(s.MA.Roots())

	for i := range callee.Args {
		if i >= len(argRegs) {
			break
		}
		graftArg(s.Binding(argRegs[i]), clones[i], pinned)
	}

	for i, gc := range globals {
		dstCA := s.MA.GlobalClass(gc.Class.Descriptor(), gc.Class)
		graftArg(map[*object.Access]struct{}{&dstCA.Access: {}}, clones[len(callee.Args)+i], pinned)
	}

	retStart := len(callee.Args) + len(globals)
	return clones[retStart:]
}

// graftArg attaches a cloned subgraph onto every node currently bound to
// the corresponding caller register (or, for a global class, the caller's
// single ClassAccess node) — except a node already in pinned, which a
// direct iget/iput somewhere else in the caller has already given precise
// field structure; absorbing this call site's coarser, merged structure
// onto it would corrupt that precision (spec 4.5's merge_method_args:
// nodes in the field-access set are "ineligible to receive absorbed
// callee track members").
func graftArg(dst map[*object.Access]struct{}, clone *object.Access, pinned map[*object.Access]struct{}) {
	for n := range dst {
		if clone.AllFlag {
			n.Widen()
		}
		if _, isPinned := pinned[n]; isPinned {
			continue
		}
		for fi := range clone.FieldSet {
			n.Field(fi)
			n.MergeTrack(fi, clone.TrackSet[fi])
		}
	}
}
