/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package analyzer wires components A-G into the two run modes cmd/analyze
// exposes: the full per-method footprint pass (driver+interp+pathengine+
// object, backed by persist for memoization) and the legacy global
// reachability pass (reach). Per the design note on "global mutable
// state", AnalyzerContext is built once per run and passed explicitly —
// nothing here is a package-level singleton.
package analyzer

import (
	"os"

	"github.com/dex-offload/footprint/classloader"
	"github.com/dex-offload/footprint/driver"
	"github.com/dex-offload/footprint/internal/config"
	"github.com/dex-offload/footprint/pathengine"
	"github.com/dex-offload/footprint/persist"
	"github.com/dex-offload/footprint/reach"
)

// AnalyzerContext holds every collaborator one analysis run needs. Only
// the fields the selected mode requires are populated: Driver and Store
// are nil in global-only mode, Reach is nil in footprint mode.
type AnalyzerContext struct {
	Config config.Config

	Linker *classloader.Linker
	Dex    *classloader.Dex
	Pool   classloader.ConstPool

	Store  *persist.Store
	Driver *driver.Driver
	Reach  *reach.Engine
}

// NewAnalyzerContext constructs a Linker over provider and whichever of
// the two engines cfg.GlobalOnly selects. overrides may be nil to keep
// the Linker's default overrides, which leave the hard-coded exempt list
// unchanged.
func NewAnalyzerContext(cfg config.Config, provider classloader.ClassProvider, pool classloader.ConstPool, overrides *classloader.Overrides) (*AnalyzerContext, error) {
	linker := classloader.NewLinker(provider)
	if overrides != nil {
		linker.SetOverrides(overrides)
	}
	dex := classloader.NewDex()

	ctx := &AnalyzerContext{
		Config: cfg,
		Linker: linker,
		Dex:    dex,
		Pool:   pool,
	}

	if cfg.GlobalOnly {
		ctx.Reach = reach.NewEngine(linker, dex, pool)
		return ctx, nil
	}

	if err := os.MkdirAll(cfg.ArtifactDir(), 0o755); err != nil {
		return nil, err
	}
	store, err := persist.Open(cfg.ArtifactDir())
	if err != nil {
		return nil, err
	}
	ctx.Store = store
	ctx.Driver = driver.NewDriver(linker, dex, pool, store, pathengine.DefaultOptions)
	return ctx, nil
}

// methodsInDispatchOrder lists class's methods in the enumeration
// tie-break order the whole-program walk uses (spec section 4.1):
// virtual (vtable-placed) methods before direct/static ones, each group
// in DEX declaration order.
func methodsInDispatchOrder(class *classloader.ClassObject) []*classloader.MethodObject {
	ordered := make([]*classloader.MethodObject, 0, len(class.Methods))
	for _, m := range class.Methods {
		if m.VtIndex >= 0 {
			ordered = append(ordered, m)
		}
	}
	for _, m := range class.Methods {
		if m.VtIndex < 0 {
			ordered = append(ordered, m)
		}
	}
	return ordered
}
