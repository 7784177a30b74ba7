/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package object

// Index performs a breadth-first walk from roots, assigns each
// newly-discovered node a unique, stable Idx starting at 0, and appends
// them to list in visitation order. It is the one place the cyclic graph
// is linearized for serialization (spec section 4.6, "Serialization
// first indexes the graph via index_method_access"). Traversal order is:
// for each node, its FieldSet children in ascending field-index order,
// then its TrackSet members in ascending field-index order. Members
// within one field index are visited in Go map iteration order, which is
// not deterministic: when such a set holds more than one not-yet-visited
// member, the Idx values those members receive can differ between runs.
func Index(roots []*Access, list *[]*Access) {
	seen := make(map[*Access]struct{})
	var queue []*Access
	enqueue := func(n *Access) {
		if n == nil {
			return
		}
		if _, ok := seen[n]; ok {
			return
		}
		seen[n] = struct{}{}
		n.Idx = len(*list)
		*list = append(*list, n)
		queue = append(queue, n)
	}

	for _, r := range roots {
		enqueue(r)
	}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		for _, i := range sortedFieldIndices(n.FieldSet) {
			enqueue(n.FieldSet[i])
		}
		for _, i := range sortedTrackIndices(n.TrackSet) {
			for member := range n.TrackSet[i] {
				enqueue(member)
			}
		}
	}
}

// ClearIndex resets Idx to -1 on every node reachable from roots. Idx is
// only meaningful between a call to Index and the matching ClearIndex
// (invariant 4).
func ClearIndex(roots []*Access) {
	seen := make(map[*Access]struct{})
	var queue []*Access
	enqueue := func(n *Access) {
		if n == nil {
			return
		}
		if _, ok := seen[n]; ok {
			return
		}
		seen[n] = struct{}{}
		n.Idx = -1
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
}

func sortedFieldIndices(m map[int]*Access) []int {
	out := make([]int, 0, len(m))
	for i := range m {
		out = append(out, i)
	}
	insertionSort(out)
	return out
}

func sortedTrackIndices(m map[int]map[*Access]struct{}) []int {
	out := make([]int, 0, len(m))
	for i := range m {
		out = append(out, i)
	}
	insertionSort(out)
	return out
}

// insertionSort avoids pulling in "sort" for what is always a small
// (field-count-sized) slice; field counts on a single class are never
// large enough for this to matter asymptotically.
func insertionSort(a []int) {
	for i := 1; i < len(a); i++ {
		v := a[i]
		j := i - 1
		for j >= 0 && a[j] > v {
			a[j+1] = a[j]
			j--
		}
		a[j+1] = v
	}
}
