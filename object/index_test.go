/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package object

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIndexAssignsUniqueIdsAndClearIndexResets(t *testing.T) {
	root := NewAccess()
	a := root.Field(0)
	b := root.Field(1)
	// a cycle: b's field 0 points back to root.
	b.MergeTrack(0, map[*Access]struct{}{root: {}})

	var list []*Access
	Index([]*Access{root}, &list)

	require.Equal(t, 0, root.Idx)
	require.NotEqual(t, a.Idx, b.Idx)
	require.Len(t, list, 3, "root, a, b each indexed exactly once despite the cycle")

	ClearIndex([]*Access{root})
	for _, n := range list {
		require.Equal(t, -1, n.Idx)
	}
}

func TestIndexTerminatesOnSelfCycle(t *testing.T) {
	root := NewAccess()
	root.MergeTrack(0, map[*Access]struct{}{root: {}})

	done := make(chan struct{})
	go func() {
		var list []*Access
		Index([]*Access{root}, &list)
		if len(list) != 1 {
			t.Errorf("expected 1 node, got %d", len(list))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Index did not terminate on a self-referential cycle")
	}
}
