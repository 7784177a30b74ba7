/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package driver

import (
	"github.com/dex-offload/footprint/classloader"
	"github.com/dex-offload/footprint/object"
)

// MemoStore is the on-disk half of memoization (spec section 4.6): a hit
// inflates a previously persisted MethodAccess without re-analysis; a miss
// falls back to parse_method. Declared here rather than imported from the
// persist package so driver never depends on persist's on-disk format
// details, only on this narrow contract — persist.Store implements it.
type MemoStore interface {
	Lookup(key string) (*object.MethodAccess, bool)
	Persist(key string, m *classloader.MethodObject, ma *object.MethodAccess) error
}
