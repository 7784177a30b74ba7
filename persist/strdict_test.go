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
)

func TestStrDictInternAssignsStableIDs(t *testing.T) {
	d, err := OpenStrDict(filepath.Join(t.TempDir(), "strdict.bin"))
	require.NoError(t, err)

	a := d.Intern("LFoo;")
	b := d.Intern("LBar;")
	again := d.Intern("LFoo;")
	require.Equal(t, a, again)
	require.NotEqual(t, a, b)
}

func TestStrDictFlushThenReopenPreservesIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strdict.bin")

	d, err := OpenStrDict(path)
	require.NoError(t, err)
	fooID := d.Intern("LFoo;")
	barID := d.Intern("LBar;")
	require.NoError(t, d.Flush())

	reopened, err := OpenStrDict(path)
	require.NoError(t, err)

	id, ok := reopened.ID("LFoo;")
	require.True(t, ok)
	require.Equal(t, fooID, id)

	id, ok = reopened.ID("LBar;")
	require.True(t, ok)
	require.Equal(t, barID, id)

	s, ok := reopened.Lookup(fooID)
	require.True(t, ok)
	require.Equal(t, "LFoo;", s)

	// A string interned after reopening must not collide with ids
	// already on disk.
	bazID := reopened.Intern("LBaz;")
	require.NotEqual(t, fooID, bazID)
	require.NotEqual(t, barID, bazID)
}
