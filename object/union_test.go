/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package object

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnionMethodAccessSetsNullBranchFlagWhenOnlyOneSideObservesField(t *testing.T) {
	dst := NewMethodAccess(nil, 1)
	dst.Args[0].Field(0)

	src := NewMethodAccess(nil, 1)

	UnionMethodAccess(dst, src, true)

	require.True(t, dst.Args[0].NullBranchFlags[0], "src never observed field 0 on a live-live join")
}

func TestUnionMethodAccessLeavesNullBranchFlagClearWhenBothSidesAgree(t *testing.T) {
	dst := NewMethodAccess(nil, 1)
	dst.Args[0].Field(0)

	src := NewMethodAccess(nil, 1)
	src.Args[0].Field(0)

	UnionMethodAccess(dst, src, true)

	require.False(t, dst.Args[0].NullBranchFlags[0])
}

func TestUnionMethodAccessCommitsMergeSetIntoTrackSet(t *testing.T) {
	dst := NewMethodAccess(nil, 1)
	dst.Args[0].Field(0)

	src := NewMethodAccess(nil, 1)
	src.Args[0].Field(0)
	extra := NewAccess()
	src.Args[0].MergeTrack(0, map[*Access]struct{}{extra: {}})

	UnionMethodAccess(dst, src, true)

	require.Len(t, dst.Args[0].TrackSet[0], 2, "the original field_set member plus the grafted extra")
	require.Empty(t, dst.Args[0].MergeSet, "MergeSet must be emptied once the join commits")
}

func TestUnionMethodAccessIsDstBranchFalseOnlyFlagsSrcsBlindSpots(t *testing.T) {
	dst := NewMethodAccess(nil, 1)
	// dst has not observed field 0 at all yet (method-level accumulator,
	// first terminated path folding in).
	src := NewMethodAccess(nil, 1)
	src.Args[0].Field(0)

	UnionMethodAccess(dst, src, false)

	require.False(t, dst.Args[0].NullBranchFlags[0], "dst's own silence doesn't count against it when isDstBranch is false")
}

func TestUnionMethodAccessDedupesReturnObjsMatchedThroughArgs(t *testing.T) {
	dst := NewMethodAccess(nil, 1)
	dst.ReturnObjs = append(dst.ReturnObjs, dst.Args[0])

	src := NewMethodAccess(nil, 1)
	src.ReturnObjs = append(src.ReturnObjs, src.Args[0])

	UnionMethodAccess(dst, src, true)

	require.Len(t, dst.ReturnObjs, 1, "src.Args[0] unions onto dst.Args[0] positionally, so the returned node is the same node, not a duplicate")
	require.Same(t, dst.Args[0], dst.ReturnObjs[0])
}
