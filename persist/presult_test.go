/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package persist

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dex-offload/footprint/object"
)

type fakeClassRef string

func (f fakeClassRef) Descriptor() string { return string(f) }

// TestEncodeDecodeRoundTripsSimpleChain exercises the acyclic case:
// arg 0's field 3 points at a freshly bound object (scenario S1/S2
// shape).
func TestEncodeDecodeRoundTripsSimpleChain(t *testing.T) {
	ma := object.NewMethodAccess(nil, 1)
	child := ma.Args[0].Field(3)
	child.Widen()

	strdict, err := OpenStrDict(filepath.Join(t.TempDir(), "strdict.bin"))
	require.NoError(t, err)

	payload := EncodeMethodAccess(ma, 1, 2, 0, strdict)
	got, err := DecodeMethodAccess(payload, "LHost;.m()V", strdict)
	require.NoError(t, err)

	require.Len(t, got.Args, 1)
	restoredChild, ok := got.Args[0].FieldSet[3]
	require.True(t, ok)
	require.True(t, restoredChild.AllFlag)
}

// TestEncodeDecodeRoundTripsCycle exercises a field track set that
// loops back to its own root, the case CloneGraph and this format both
// exist to handle without infinite recursion.
func TestEncodeDecodeRoundTripsCycle(t *testing.T) {
	ma := object.NewMethodAccess(nil, 1)
	root := ma.Args[0]
	child := root.Field(0)
	child.TrackSet[1] = map[*object.Access]struct{}{root: {}} // cycle: child.field(1) -> root

	strdict, err := OpenStrDict(filepath.Join(t.TempDir(), "strdict.bin"))
	require.NoError(t, err)

	payload := EncodeMethodAccess(ma, 1, 2, 0, strdict)
	got, err := DecodeMethodAccess(payload, "LHost;.m()V", strdict)
	require.NoError(t, err)

	restoredChild := got.Args[0].FieldSet[0]
	require.NotNil(t, restoredChild)
	members := restoredChild.TrackSet[1]
	require.Len(t, members, 1)
	for m := range members {
		require.Same(t, got.Args[0], m, "the cycle must resolve back to the same restored root, not a copy")
	}
}

// TestEncodeDecodeRoundTripsGlobalClassAndReturn exercises a touched
// static class and a return value that aliases it (scenario S6 shape).
func TestEncodeDecodeRoundTripsGlobalClassAndReturn(t *testing.T) {
	ma := object.NewMethodAccess(nil, 0)
	ca := ma.GlobalClass("LConfig;", fakeClassRef("LConfig;"))
	ca.Field(0).Widen()
	ma.AddReturn(map[*object.Access]struct{}{&ca.Access: {}})

	strdict, err := OpenStrDict(filepath.Join(t.TempDir(), "strdict.bin"))
	require.NoError(t, err)

	payload := EncodeMethodAccess(ma, 1, 2, 0, strdict)
	got, err := DecodeMethodAccess(payload, "LHost;.m()V", strdict)
	require.NoError(t, err)

	restored, ok := got.GlobalClasses["LConfig;"]
	require.True(t, ok)
	require.Equal(t, "LConfig;", restored.Class.Descriptor())
	require.True(t, restored.FieldSet[0].AllFlag)

	require.Len(t, got.ReturnObjs, 1)
	require.Same(t, &restored.Access, got.ReturnObjs[0], "the returned class access must be the same restored node, not a duplicate")
}
