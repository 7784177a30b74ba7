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

func TestNewAccessEstablishesInvariants(t *testing.T) {
	a := NewAccess()
	require.False(t, a.AllFlag)
	require.Equal(t, -1, a.Idx)
	require.Empty(t, a.FieldSet)
	require.Empty(t, a.TrackSet)
}

func TestFieldCreatesChildAndSatisfiesInvariant2(t *testing.T) {
	root := NewAccess()
	child := root.Field(0)
	require.Same(t, child, root.FieldSet[0])

	_, inTrack := root.TrackSet[0][child]
	require.True(t, inTrack, "field_set[i] must be a member of track_set[i]")
	require.Same(t, root, child.Belonging)
}

func TestFieldIsIdempotent(t *testing.T) {
	root := NewAccess()
	a := root.Field(2)
	b := root.Field(2)
	require.Same(t, a, b)
}

func TestIsFullyMigratedClimbsBelonging(t *testing.T) {
	root := NewAccess()
	child := root.Field(0)
	grandchild := child.Field(1)

	require.False(t, grandchild.IsFullyMigrated())
	root.Widen()
	require.True(t, grandchild.IsFullyMigrated(), "testable property 2: monotone widening")
	require.True(t, child.IsFullyMigrated())
}

func TestReplaceTrackOverwritesMembership(t *testing.T) {
	root := NewAccess()
	a, b, c := NewAccess(), NewAccess(), NewAccess()
	root.MergeTrack(0, map[*Access]struct{}{a: {}, b: {}})
	require.Len(t, root.TrackSet[0], 2)

	root.ReplaceTrack(0, map[*Access]struct{}{c: {}})
	require.Len(t, root.TrackSet[0], 1)
	_, ok := root.TrackSet[0][c]
	require.True(t, ok)
}
