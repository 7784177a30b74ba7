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

func TestCloneGraphPreservesSharingAndCycles(t *testing.T) {
	root := NewAccess()
	shared := root.Field(0)
	other := root.Field(1)
	// other's track also points at "shared" -- sharing across two edges.
	other.MergeTrack(5, map[*Access]struct{}{shared: {}})
	// a cycle: shared's field 0 points back to root.
	shared.MergeTrack(0, map[*Access]struct{}{root: {}})

	clones, addr := CloneRoots([]*Access{root})
	cloneRoot := clones[0]
	require.NotSame(t, root, cloneRoot)

	cloneShared := addr[shared]
	cloneOther := addr[other]
	require.Same(t, cloneShared, cloneRoot.FieldSet[0])
	require.Same(t, cloneOther, cloneRoot.FieldSet[1])

	_, sharedStillShared := cloneOther.TrackSet[5][cloneShared]
	require.True(t, sharedStillShared, "sharing must survive the clone")

	_, cycleClosed := cloneShared.TrackSet[0][cloneRoot]
	require.True(t, cycleClosed, "the cycle back to root must survive the clone")

	// Mutating the clone must not affect the original.
	cloneRoot.Widen()
	require.False(t, root.AllFlag)
}

func TestCloneGraphIsIdentityPreservingAcrossMultipleRoots(t *testing.T) {
	shared := NewAccess()
	root1 := NewAccess()
	root2 := NewAccess()
	root1.FieldSet[0] = shared
	root2.FieldSet[0] = shared

	clones, addr := CloneRoots([]*Access{root1, root2})
	require.Same(t, addr[shared], clones[0].FieldSet[0])
	require.Same(t, clones[0].FieldSet[0], clones[1].FieldSet[0])
}
