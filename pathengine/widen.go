/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package pathengine

import "github.com/dex-offload/footprint/object"

// Options bounds the path engine's exploration (spec section 4.4,
// "Widening / escape hatches").
type Options struct {
	// MaxBranchDepth caps join-chain growth; exceeding it widens every
	// argument root to AllFlag and terminates the method.
	MaxBranchDepth int
	// MaxSubCount caps virtual/interface receiver fan-out; exceeding it
	// widens the registers used at that call site (enforced by the
	// driver package, which owns dispatch, but the constant lives here
	// so both packages agree on one default).
	MaxSubCount int
}

// DefaultOptions mirrors typical bounds used by whole-program DEX
// analyzers of this shape: generous enough that ordinary control flow
// never trips them, tight enough that pathological join trees and
// god-classes terminate promptly.
var DefaultOptions = Options{
	MaxBranchDepth: 64,
	MaxSubCount:    32,
}

// WidenAll sets AllFlag on every root of ma (its Args and its touched
// GlobalClasses) — the "escape safely by widening the footprint to
// migrate everything" behavior of spec section 1.
func WidenAll(ma *object.MethodAccess) {
	for _, root := range ma.Roots() {
		root.Widen()
	}
}

// WidenRegs widens every Access currently bound to any of regs — the
// call-site-scoped widening spec section 4.4/4.5 describes for native,
// abstract, exempt, recursive, or over-fanned-out targets: "widen all
// registers used at the call site" rather than the whole method.
func WidenRegs(s *State, regs []int) {
	for _, r := range regs {
		for n := range s.Binding(r) {
			n.Widen()
		}
	}
}
