/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package object

// FieldAccessSet returns every Access that is the direct field_set child
// of some other node reachable from roots (spec section 4.5's
// merge_method_args: "the transitive closure of field_set pointers from
// all args and global classes"). Roots themselves are excluded unless one
// of them is also, independently, some other root's field child — a root
// is where the closure starts, not a node the closure discovered.
//
// The set marks nodes that were pinned down by direct field discovery:
// callers absorbing approximate structure from elsewhere (the driver's
// merge of an invoke's callee) must not let that approximation
// land on one of these nodes, or the precise structure discovered by an
// actual iget/iput would be corrupted by a coarser guess.
func FieldAccessSet(roots []*Access) map[*Access]struct{} {
	seen := make(map[*Access]struct{}, len(roots))
	pinned := make(map[*Access]struct{})
	var queue []*Access
	enqueue := func(n *Access) {
		if n == nil {
			return
		}
		if _, ok := seen[n]; ok {
			return
		}
		seen[n] = struct{}{}
		queue = append(queue, n)
	}

	for _, r := range roots {
		enqueue(r)
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, child := range n.FieldSet {
			pinned[child] = struct{}{}
			enqueue(child)
		}
	}
	return pinned
}
