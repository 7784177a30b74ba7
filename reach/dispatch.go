/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package reach

import "github.com/dex-offload/footprint/classloader"

// resolveReachTargets enumerates dispatch targets for one invoke
// instruction the same way driver.resolveTargets does (spec 4.5 steps
// 1-3, reused here per spec 4.7's "enumerate dispatch targets as in
// §4.5"), minus the object-model widening: this pass has no ObjectAccess
// graph to widen, so java.lang.Object/exempt receivers are simply not
// descended into, rather than triggering a registered side effect. There
// is no cap on the receiver set: every concrete target is returned.
func (e *Engine) resolveReachTargets(referrer *classloader.MethodObject, instr *classloader.Instruction) ([]*classloader.MethodObject, error) {
	ref := e.Pool.MethodRef(instr.MethodRef)

	switch instr.InvokeKind {
	case classloader.DispatchStatic, classloader.DispatchDirect:
		m, err := e.Linker.ResolveMethod(e.Dex, referrer.Class.Descriptor(), instr.MethodRef, ref.Owner, ref.Name, ref.Descriptor)
		if err != nil {
			return nil, err
		}
		return []*classloader.MethodObject{m}, nil

	case classloader.DispatchSuper:
		m, ok := classloader.SuperTarget(referrer.Class, ref.Name, ref.Descriptor)
		if !ok {
			return nil, nil
		}
		return []*classloader.MethodObject{m}, nil

	case classloader.DispatchVirtual:
		declared, err := e.Linker.ResolveMethod(e.Dex, referrer.Class.Descriptor(), instr.MethodRef, ref.Owner, ref.Name, ref.Descriptor)
		if err != nil {
			return nil, err
		}
		if declared.Class.Descriptor() == "Ljava/lang/Object;" || e.Linker.IsExempt(declared.Class) {
			return nil, nil
		}
		return e.Linker.ConcreteDispatchTargets(declared.Class, declared.VtIndex), nil

	case classloader.DispatchInterface:
		declared, err := e.Linker.ResolveMethod(e.Dex, referrer.Class.Descriptor(), instr.MethodRef, ref.Owner, ref.Name, ref.Descriptor)
		if err != nil {
			return nil, err
		}
		if e.Linker.IsExempt(declared.Class) {
			return nil, nil
		}
		return e.Linker.InterfaceDispatchTargets(declared.Class, declared.Index), nil

	default:
		return nil, nil
	}
}
