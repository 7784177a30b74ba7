/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package driver implements component E of the analyzer (spec section
// 4.5): call-site dispatch across the five invoke forms, receiver set
// expansion, memoization, and recursion widening. It ties the path engine
// (D), the interpreter (C), and the abstract-value model (B) together into
// the recursive parse_method operation: analyzing one method runs the
// interpreter over it, and every invoke instruction the interpreter
// encounters calls back into this package to resolve and (recursively)
// analyze the callee.
package driver

import (
	"github.com/dex-offload/footprint/classloader"
	"github.com/dex-offload/footprint/internal/trace"
	"github.com/dex-offload/footprint/interp"
	"github.com/dex-offload/footprint/object"
	"github.com/dex-offload/footprint/pathengine"
	"github.com/apex/log"
)

// Driver owns the per-analysis-run mutable state the design note on
// "Global mutable state" calls for encapsulating explicitly: the in-memory
// parsed-method index, the current call chain (for the recursion guard),
// and the collaborators (linker, constant pool, optional persisted store)
// every recursive parse_method call needs. Constructed once per
// AnalyzerContext, never behind a package-level singleton.
type Driver struct {
	Linker *classloader.Linker
	Dex    *classloader.Dex
	Pool   classloader.ConstPool
	Store  MemoStore // nil is valid: every method is re-analyzed, never memoized to disk
	Opts   pathengine.Options

	memo  map[string]*object.MethodAccess // parsed_method_index
	chain map[string]bool                 // methods currently being analyzed, for the recursion guard
}

// NewDriver constructs a Driver. store may be nil to disable persistence-
// backed memoization (in-memory memoization within one run still applies).
func NewDriver(linker *classloader.Linker, dex *classloader.Dex, pool classloader.ConstPool, store MemoStore, opts pathengine.Options) *Driver {
	return &Driver{
		Linker: linker,
		Dex:    dex,
		Pool:   pool,
		Store:  store,
		Opts:   opts,
		memo:   make(map[string]*object.MethodAccess),
		chain:  make(map[string]bool),
	}
}

// ParseMethod is parse_method (spec section 4.5 step 4b / section 4.6
// "memoization"): consult the in-memory index, then the persisted store,
// and only run the interpreter over m's code when both miss. Every
// successful analysis is recorded in both places before returning.
func (d *Driver) ParseMethod(m *classloader.MethodObject) (*object.MethodAccess, error) {
	key := m.FullName()
	if ma, ok := d.memo[key]; ok {
		return ma, nil // testable property 6: a second call never re-enters analysis
	}
	if d.Store != nil {
		if ma, ok := d.Store.Lookup(key); ok {
			d.memo[key] = ma
			return ma, nil
		}
	}

	ma := object.NewMethodAccess(m, argCount(m))
	if m.Raw.Code == nil {
		// A native or abstract method with no DEX body reaches here only
		// if something calls ParseMethod on it directly (Dispatch itself
		// never does — it widens at the call site instead); an empty,
		// unanalyzed MethodAccess is the only sound answer.
		d.memo[key] = ma
		return ma, nil
	}

	d.chain[key] = true
	defer delete(d.chain, key)

	initialRegs := seedArgRegs(m, ma)
	ip := interp.NewInterpreter(d.Linker, d.Dex, d.Pool, m.Class, d)
	entryPC := firstOffset(m.Raw.Code)
	if err := pathengine.Run(m.Raw.Code, ma, entryPC, initialRegs, ip, d.Opts); err != nil {
		return nil, err
	}

	d.memo[key] = ma
	if d.Store != nil {
		if err := d.Store.Persist(key, m, ma); err != nil {
			trace.Warning("memoization write failed", log.Fields{"method": key, "error": err.Error()})
		}
	}
	return ma, nil
}

// argCount derives how many ObjectAccess argument roots m's MethodAccess
// needs: one per incoming object/array register (spec's "args — one
// ObjectAccess per incoming object/array parameter, including the receiver
// for instance methods"). A primitive incoming register gets no root at
// all — it never carries an object, so it must never be eligible for the
// call-site widening escape hatches to touch it.
func argCount(m *classloader.MethodObject) int {
	if m.Raw.Code == nil {
		return 0
	}
	n := 0
	for _, isObj := range m.Raw.Code.ArgIsObject {
		if isObj {
			n++
		}
	}
	return n
}

// seedArgRegs binds each incoming object/array register — within the
// topmost InsSize registers, per DEX convention — one-to-one to ma.Args, in
// order. Primitive incoming registers are left unbound.
func seedArgRegs(m *classloader.MethodObject, ma *object.MethodAccess) map[int]map[*object.Access]struct{} {
	regs := make(map[int]map[*object.Access]struct{}, len(ma.Args))
	first := m.Raw.Code.RegistersSize - m.Raw.Code.InsSize
	next := 0
	for i, isObj := range m.Raw.Code.ArgIsObject {
		if !isObj {
			continue
		}
		regs[first+i] = map[*object.Access]struct{}{ma.Args[next]: {}}
		next++
	}
	return regs
}

func firstOffset(code *classloader.CodeItem) int {
	if len(code.Instructions) == 0 {
		return 0
	}
	return code.Instructions[0].Offset
}
