/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package persist

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dex-offload/footprint/classloader"
	"github.com/dex-offload/footprint/object"
)

type mapProvider map[string]classloader.RawClass

func (p mapProvider) LoadRaw(descriptor string) (classloader.RawClass, bool) {
	c, ok := p[descriptor]
	return c, ok
}

func linkHostMethod(t *testing.T) *classloader.MethodObject {
	t.Helper()
	provider := mapProvider{
		"Ljava/lang/Object;": {Descriptor: "Ljava/lang/Object;"},
		"LHost;": {
			Descriptor:      "LHost;",
			SuperDescriptor: "Ljava/lang/Object;",
			Methods: []classloader.RawMethod{
				{Name: "readA", Descriptor: "(LFoo;)I", IsStatic: true},
			},
		},
	}
	linker := classloader.NewLinker(provider)
	host, err := linker.LinkClass("LHost;")
	require.NoError(t, err)
	return host.Methods[0]
}

// TestStorePersistThenLookupRoundTrips exercises the full memoization
// path: persist a MethodAccess to disk, reopen a fresh Store over the
// same directory, and look it up by the caller's FullName key alone
// (spec 4.6, "a hit inflates from presult.bin via random access").
func TestStorePersistThenLookupRoundTrips(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	require.NoError(t, err)

	method := linkHostMethod(t)
	ma := object.NewMethodAccess(method, 1)
	ma.Args[0].Field(2).Widen()

	key := method.FullName()
	require.NoError(t, store.Persist(key, method, ma))

	reopened, err := Open(dir)
	require.NoError(t, err)

	got, ok := reopened.Lookup(key)
	require.True(t, ok)
	require.Len(t, got.Args, 1)
	require.True(t, got.Args[0].FieldSet[2].AllFlag)
}

// TestStoreLookupMissReturnsFalse exercises the miss path parse_method's
// memoization check relies on to fall through to re-analysis.
func TestStoreLookupMissReturnsFalse(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)

	_, ok := store.Lookup("LNever;.seen()V")
	require.False(t, ok)
}
