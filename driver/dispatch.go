/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package driver

import (
	"github.com/dex-offload/footprint/classloader"
	"github.com/dex-offload/footprint/internal/errs"
	"github.com/dex-offload/footprint/object"
	"github.com/dex-offload/footprint/pathengine"
)

// Dispatch implements interp.Dispatcher — the entire invoke-* transfer
// function beyond decoding (spec section 4.5).
func (d *Driver) Dispatch(s *pathengine.State, referrer *classloader.ClassObject, kind classloader.DispatchKind, methodRefIdx int, argRegs []int) error {
	ref := d.Pool.MethodRef(methodRefIdx)

	targets, _, err := d.resolveTargets(s, referrer, kind, methodRefIdx, ref, argRegs)
	if err != nil {
		return err // step 1: resolution failure terminates the current path
	}
	if targets == nil {
		// resolveTargets already widened and skipped (step 2: Object,
		// exempt, or oversized receiver set).
		return nil
	}

	var returns []*object.Access
	for _, target := range dedupe(targets) {
		key := target.FullName()
		if d.chain[key] {
			// step 4a: recursion guard.
			pathengine.WidenRegs(s, argRegs)
			continue
		}
		if target.IsNative() || target.IsAbstract() {
			pathengine.WidenRegs(s, argRegs)
			continue
		}

		calleeMA, err := d.ParseMethod(target)
		if err != nil {
			return err
		}
		returns = append(returns, mergeCallee(s, objectArgRegs(argRegs, target), calleeMA)...)
	}

	s.MA.CurrentCallReturns = returns
	return nil
}

// resolveTargets resolves the symbolic callee and enumerates concrete
// dispatch targets (spec 4.5 steps 1-3). A nil, nil-error return means the
// call site already widened and should be skipped (step 2).
func (d *Driver) resolveTargets(s *pathengine.State, referrer *classloader.ClassObject, kind classloader.DispatchKind, idx int, ref classloader.MethodRefEntry, argRegs []int) ([]*classloader.MethodObject, *classloader.ClassObject, error) {
	switch kind {
	case classloader.DispatchStatic, classloader.DispatchDirect:
		m, err := d.Linker.ResolveMethod(d.Dex, referrer.Descriptor(), idx, ref.Owner, ref.Name, ref.Descriptor)
		if err != nil {
			return nil, nil, err
		}
		return []*classloader.MethodObject{m}, m.Class, nil

	case classloader.DispatchSuper:
		m, ok := classloader.SuperTarget(referrer, ref.Name, ref.Descriptor)
		if !ok {
			return nil, nil, errs.ErrMethodNotFound
		}
		return []*classloader.MethodObject{m}, m.Class, nil

	case classloader.DispatchVirtual:
		declared, err := d.Linker.ResolveMethod(d.Dex, referrer.Descriptor(), idx, ref.Owner, ref.Name, ref.Descriptor)
		if err != nil {
			return nil, nil, err
		}
		if d.shouldWidenAndSkip(declared.Class, s, argRegs) {
			return nil, declared.Class, nil
		}
		targets := d.Linker.ConcreteDispatchTargets(declared.Class, declared.VtIndex)
		if len(targets) > d.Opts.MaxSubCount {
			pathengine.WidenRegs(s, argRegs)
			return nil, declared.Class, nil
		}
		return targets, declared.Class, nil

	case classloader.DispatchInterface:
		declared, err := d.Linker.ResolveMethod(d.Dex, referrer.Descriptor(), idx, ref.Owner, ref.Name, ref.Descriptor)
		if err != nil {
			return nil, nil, err
		}
		if d.shouldWidenAndSkip(declared.Class, s, argRegs) {
			return nil, declared.Class, nil
		}
		targets := d.Linker.InterfaceDispatchTargets(declared.Class, declared.Index)
		if len(targets) > d.Opts.MaxSubCount {
			pathengine.WidenRegs(s, argRegs)
			return nil, declared.Class, nil
		}
		return targets, declared.Class, nil

	default:
		return nil, nil, errs.ErrMethodNotFound
	}
}

// shouldWidenAndSkip applies spec 4.5 step 2: java.lang.Object and exempt
// receivers are never descended into.
func (d *Driver) shouldWidenAndSkip(declaringClass *classloader.ClassObject, s *pathengine.State, argRegs []int) bool {
	if declaringClass.Descriptor() == "Ljava/lang/Object;" || d.Linker.IsExempt(declaringClass) {
		pathengine.WidenRegs(s, argRegs)
		return true
	}
	return false
}

// objectArgRegs filters the call site's full register list down to the
// object/array-typed arguments, in order — the same subset and order
// target.ParseMethod used to size its own MethodAccess.Args (argCount),
// since a target's register list follows its own descriptor.
func objectArgRegs(argRegs []int, target *classloader.MethodObject) []int {
	if target.Raw.Code == nil {
		return nil
	}
	mask := target.Raw.Code.ArgIsObject
	out := make([]int, 0, len(argRegs))
	for i := 0; i < len(argRegs) && i < len(mask); i++ {
		if mask[i] {
			out = append(out, argRegs[i])
		}
	}
	return out
}

func dedupe(targets []*classloader.MethodObject) []*classloader.MethodObject {
	seen := make(map[*classloader.MethodObject]bool, len(targets))
	out := make([]*classloader.MethodObject, 0, len(targets))
	for _, t := range targets {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
