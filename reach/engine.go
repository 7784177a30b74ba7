/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package reach implements component G, the legacy global reachability
// engine (spec section 4.7): a simplified interpreter that discards the
// object-value model entirely and retains only two things per method —
// which static fields it (transitively) touches, and which methods it
// (transitively) reaches. Unlike the full footprint pass (driver,
// interp, pathengine), this pass never branches, never joins, and never
// widens: reachability is a monotone set, so a single linear scan of a
// method's instruction stream already visits every sget/invoke it could
// ever execute, and a cycle in the call graph can simply stop recursing
// instead of fixpoint-iterating (spec 4.7, "no widening needed —
// reachability is monotone").
package reach

import (
	"github.com/dex-offload/footprint/classloader"
	"github.com/dex-offload/footprint/opcodes"
)

// MethodReachability is the per-method output of AnalyzeMethod: the
// transitive closure of static-field touches and reachable methods
// starting from one entry method.
type MethodReachability struct {
	Method    *classloader.MethodObject
	Statics   map[string]*classloader.RefBitmap // class descriptor -> touched static word offsets
	Reachable []string                          // FullName of every transitively reached method, first-sight order

	// StaticTouchOffsets holds the byte offsets, within Method's own
	// instruction stream only (not its callees'), at which a static
	// field was touched — reachableoffset.txt's "where" view.
	StaticTouchOffsets []int
}

// Engine is the legacy pass's analysis driver. Like driver.Driver, it is
// constructed explicitly per run (design note "Global mutable state") —
// no package-level singleton.
type Engine struct {
	Linker *classloader.Linker
	Dex    *classloader.Dex
	Pool   classloader.ConstPool

	memo  map[string]*MethodReachability
	chain map[string]bool

	// GlobalStatics accumulates every class's touched static offsets
	// across every AnalyzeMethod entry point run in this Engine's
	// lifetime, for offsetresult.txt's whole-program view.
	GlobalStatics map[string]*classloader.RefBitmap
}

// NewEngine constructs an Engine.
func NewEngine(linker *classloader.Linker, dex *classloader.Dex, pool classloader.ConstPool) *Engine {
	return &Engine{
		Linker:        linker,
		Dex:           dex,
		Pool:          pool,
		memo:          make(map[string]*MethodReachability),
		chain:         make(map[string]bool),
		GlobalStatics: make(map[string]*classloader.RefBitmap),
	}
}

// AnalyzeMethod computes (or returns the memoized) MethodReachability
// for m, recursing into every invoke target reachable from its body.
func (e *Engine) AnalyzeMethod(m *classloader.MethodObject) (*MethodReachability, error) {
	key := m.FullName()
	if r, ok := e.memo[key]; ok {
		return r, nil
	}
	if e.chain[key] {
		// A back-edge: return an empty result rather than fixpoint-
		// iterating. The caller's own union already carries everything
		// this recursive call would otherwise have contributed via the
		// non-cyclic part of the callee's body, visited on some other
		// path through the same entry's traversal.
		return &MethodReachability{Method: m, Statics: map[string]*classloader.RefBitmap{}}, nil
	}

	r := &MethodReachability{Method: m, Statics: make(map[string]*classloader.RefBitmap)}
	if m.Raw.Code == nil {
		e.memo[key] = r
		return r, nil
	}

	e.chain[key] = true
	defer delete(e.chain, key)

	seenReachable := make(map[string]bool)
	for i := range m.Raw.Code.Instructions {
		instr := &m.Raw.Code.Instructions[i]
		switch {
		case isSget(instr.Op):
			if err := e.touchStatic(m, instr, r); err != nil {
				return nil, err
			}
			r.StaticTouchOffsets = append(r.StaticTouchOffsets, instr.Offset)
		case instr.Op.IsInvoke():
			targets, err := e.resolveReachTargets(m, instr)
			if err != nil {
				continue // unresolvable symbolic reference: skip, don't abort the whole pass
			}
			for _, target := range targets {
				callee, err := e.AnalyzeMethod(target)
				if err != nil {
					return nil, err
				}
				if !seenReachable[target.FullName()] {
					seenReachable[target.FullName()] = true
					r.Reachable = append(r.Reachable, target.FullName())
				}
				for _, rm := range callee.Reachable {
					if !seenReachable[rm] {
						seenReachable[rm] = true
						r.Reachable = append(r.Reachable, rm)
					}
				}
				unionStatics(r.Statics, callee.Statics)
			}
		}
	}

	e.memo[key] = r
	return r, nil
}

func isSget(op opcodes.Opcode) bool {
	switch op {
	case opcodes.OpSGet, opcodes.OpSGetWide, opcodes.OpSGetObject:
		return true
	}
	return false
}

func (e *Engine) touchStatic(m *classloader.MethodObject, instr *classloader.Instruction, r *MethodReachability) error {
	ref := e.Pool.FieldRef(instr.FieldRef)
	fl, err := e.Linker.ResolveStaticField(e.Dex, m.Class.Descriptor(), instr.FieldRef, ref.Owner, ref.Name)
	if err != nil {
		return nil // matches handleSGet's treatment elsewhere: an unresolvable field is skipped, not fatal, for this coarser pass
	}
	markStatic(r.Statics, ref.Owner, fl.WordOffset)
	markStatic(e.GlobalStatics, ref.Owner, fl.WordOffset)
	return nil
}

func markStatic(m map[string]*classloader.RefBitmap, descriptor string, offset int) {
	b, ok := m[descriptor]
	if !ok {
		b = classloader.NewRefBitmap()
		m[descriptor] = b
	}
	b.Set(offset)
}

func unionStatics(dst, src map[string]*classloader.RefBitmap) {
	for descriptor, bits := range src {
		d, ok := dst[descriptor]
		if !ok {
			dst[descriptor] = bits.Clone()
			continue
		}
		for _, off := range bits.ToSlice() {
			d.Set(off)
		}
	}
}
