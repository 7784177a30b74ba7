/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package object

// UnionMethodAccess folds src into dst in place (spec section 4.4's
// union_method_access): every Access reachable from src's Args and
// GlobalClasses is merged into the corresponding dst node — matched
// positionally for Args, by descriptor for GlobalClasses — and any src
// structure dst never observed is grafted on as an independent clone, so
// dst and src never end up accidentally sharing node identity afterward.
//
// Two call sites use this with different isDstBranch values: pathengine.Join
// joins two still-live sibling paths that converged on the same offset
// (isDstBranch=true — both sides are incomplete, so a field either side
// never observed marks NullBranchFlags), and pathengine.Run folds one
// terminated path's final state into the one persistent, method-level
// result (isDstBranch=false — dst is the accumulator of everything seen
// so far, so only src's own blind spots matter).
//
// Returns the address map from src node to the dst node it was folded
// into, so a caller holding other pointers into src (a ParseState's
// register bindings) can rewrite them onto dst.
func UnionMethodAccess(dst, src *MethodAccess, isDstBranch bool) map[*Access]*Access {
	addr := make(map[*Access]*Access)

	for i := range src.Args {
		if i >= len(dst.Args) {
			break
		}
		unionFieldInfo(dst.Args[i], src.Args[i], addr, isDstBranch)
	}
	for _, desc := range src.globalClassOrder {
		sca := src.GlobalClasses[desc]
		dca := dst.GlobalClass(desc, sca.Class)
		unionFieldInfo(&dca.Access, &sca.Access, addr, isDstBranch)
	}

	unionTracks(addr)
	unionReturnObjs(dst, src, addr)

	return addr
}

// unionFieldInfo walks dst/src in lockstep over field_set edges via an
// explicit worklist (ported from unionObjectFieldInfo), recording every
// src node it visits in addr, unioning AllFlag/InArray, and establishing
// NullBranchFlags wherever either side's exploration left field i
// unobserved.
func unionFieldInfo(dstRoot, srcRoot *Access, addr map[*Access]*Access, isDstBranch bool) {
	type pair struct{ dst, src *Access }
	queue := []pair{{dstRoot, srcRoot}}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if _, ok := addr[p.src]; ok {
			continue
		}
		addr[p.src] = p.dst

		p.dst.AllFlag = p.dst.AllFlag || p.src.AllFlag
		p.dst.InArray = p.dst.InArray || p.src.InArray

		for _, i := range unionIndexSet(p.dst, p.src) {
			_, dstHasField := p.dst.FieldSet[i]
			_, dstHasTrack := p.dst.TrackSet[i]
			srcChild, srcHasField := p.src.FieldSet[i]
			_, srcHasTrack := p.src.TrackSet[i]

			if p.src.NullBranchFlags[i] {
				p.dst.NullBranchFlags[i] = true
			}
			if !p.dst.NullBranchFlags[i] {
				if !srcHasField && !srcHasTrack {
					p.dst.NullBranchFlags[i] = true
				} else if isDstBranch && !dstHasField && !dstHasTrack {
					p.dst.NullBranchFlags[i] = true
				}
			}

			if srcHasField {
				dstChild := p.dst.Field(i)
				queue = append(queue, pair{dstChild, srcChild})
			}
		}
	}
}

// unionIndexSet returns every field index appearing in either node's
// FieldSet or TrackSet, sorted ascending.
func unionIndexSet(a, b *Access) []int {
	seen := make(map[int]struct{})
	for i := range a.FieldSet {
		seen[i] = struct{}{}
	}
	for i := range b.FieldSet {
		seen[i] = struct{}{}
	}
	for i := range a.TrackSet {
		seen[i] = struct{}{}
	}
	for i := range b.TrackSet {
		seen[i] = struct{}{}
	}
	out := make([]int, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	insertionSort(out)
	return out
}

// unionTracks is the second union pass (ported from unionTracks /
// handleUnmatchTrack / createMatchTrack): for every src node the field
// pass above already matched to a dst node, fold its track_set members
// onto the dst side too, synthesizing an independent clone for any member
// not already matched. Per Access.MergeSet's doc comment, the projected
// members are staged in MergeSet and only swapped into TrackSet once
// every pair has been folded, so a dst node's pre-existing TrackSet is
// never partially visible mid-union.
func unionTracks(addr map[*Access]*Access) {
	pairs := make([]*Access, 0, len(addr))
	for src := range addr {
		pairs = append(pairs, src)
	}

	touched := make(map[*Access]struct{})
	for _, src := range pairs {
		dst := addr[src]
		for i, set := range src.TrackSet {
			for member := range set {
				mapped := matchOrClone(member, addr)
				if dst.MergeSet[i] == nil {
					seeded := make(map[*Access]struct{}, len(dst.TrackSet[i]))
					for existing := range dst.TrackSet[i] {
						seeded[existing] = struct{}{}
					}
					dst.MergeSet[i] = seeded
				}
				dst.MergeSet[i][mapped] = struct{}{}
				touched[dst] = struct{}{}
			}
		}
	}

	for n := range touched {
		for i, set := range n.MergeSet {
			n.TrackSet[i] = set
		}
		n.MergeSet = make(map[int]map[*Access]struct{})
	}
}

// matchOrClone returns addr's existing clone for n, or — if n was never
// reached by the field_set union pass (it is only an unmatched track
// member) — synthesizes one via an explicit worklist over n's own
// field_set/track_set edges, registering every node it touches in addr
// along the way (createMatchTrack).
func matchOrClone(n *Access, addr map[*Access]*Access) *Access {
	if mapped, ok := addr[n]; ok {
		return mapped
	}
	clone := cloneShell(n)
	addr[n] = clone

	queue := []*Access{n}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		dst := addr[cur]

		for i, child := range cur.FieldSet {
			childClone, ok := addr[child]
			if !ok {
				childClone = cloneShell(child)
				addr[child] = childClone
				queue = append(queue, child)
			}
			dst.FieldSet[i] = childClone
			dst.trackInsert(i, childClone)
		}
		for i, set := range cur.TrackSet {
			for member := range set {
				memberClone, ok := addr[member]
				if !ok {
					memberClone = cloneShell(member)
					addr[member] = memberClone
					queue = append(queue, member)
				}
				dst.trackInsert(i, memberClone)
			}
		}
	}
	return clone
}

// unionReturnObjs folds src.ReturnObjs into dst.ReturnObjs (ported from
// unionReturnObjs), matching through addr exactly like track members, and
// deduplicating by identity the same way AddReturn does.
func unionReturnObjs(dst, src *MethodAccess, addr map[*Access]*Access) {
	seen := make(map[*Access]struct{}, len(dst.ReturnObjs))
	for _, r := range dst.ReturnObjs {
		seen[r] = struct{}{}
	}
	for _, r := range src.ReturnObjs {
		mapped := matchOrClone(r, addr)
		if _, dup := seen[mapped]; dup {
			continue
		}
		dst.ReturnObjs = append(dst.ReturnObjs, mapped)
		seen[mapped] = struct{}{}
	}
}
