/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package interp implements component C of the analyzer (spec section
// 4.3): the per-opcode transfer functions over the abstract-value model in
// the object package, driven one instruction at a time by the pathengine
// scheduling loop.
package interp

import (
	"github.com/dex-offload/footprint/classloader"
	"github.com/dex-offload/footprint/internal/errs"
	"github.com/dex-offload/footprint/opcodes"
	"github.com/dex-offload/footprint/pathengine"
)

// Dispatcher resolves and analyzes an invoke-* target (spec section 4.5).
// Implemented by the driver package; kept as an interface here so interp
// never imports driver, which imports interp to obtain a Stepper.
//
// Dispatch is responsible for the entire invoke transfer function beyond
// decoding: resolving the callee (methodRefIdx is the same constant-pool
// index ConstPool.MethodRef would decode — the driver owns its own
// ConstPool to do that, keeping Dex's sticky-failure cache keyed
// correctly on (referrer, idx)), handling exempt/native/abstract/
// recursion/fan-out widening in place (mutating s's bound registers
// directly when a widening escape hatch fires), merging a concrete
// callee's MethodAccess into s.MA, and setting s.MA.CurrentCallReturns
// from the union of callee return sets. It returns a non-nil error when
// the callee failed to resolve (spec 4.5 step 1), which interp treats as
// a dead path, or when analyzing a concrete target failed, which interp
// returns to the engine unless it is itself a dead-path error.
type Dispatcher interface {
	Dispatch(s *pathengine.State, referrer *classloader.ClassObject, kind classloader.DispatchKind, methodRefIdx int, argRegs []int) error
}

// Interpreter is a Stepper bound to one analyzed method: the class it
// belongs to (for resolving symbolic field/method references against that
// class's Dex) and the Dispatcher that performs inter-procedural calls.
type Interpreter struct {
	Linker     *classloader.Linker
	Dex        *classloader.Dex
	Pool       classloader.ConstPool
	Referrer   *classloader.ClassObject
	Dispatcher Dispatcher
}

// NewInterpreter builds the Stepper the path engine drives for one method
// belonging to referrer.
func NewInterpreter(linker *classloader.Linker, dex *classloader.Dex, pool classloader.ConstPool, referrer *classloader.ClassObject, dispatcher Dispatcher) *Interpreter {
	return &Interpreter{Linker: linker, Dex: dex, Pool: pool, Referrer: referrer, Dispatcher: dispatcher}
}

// Step decodes the instruction at s.PC and applies its transfer function,
// satisfying pathengine.Stepper.
func (ip *Interpreter) Step(s *pathengine.State, code *classloader.CodeItem) ([]int, error) {
	instr, ok := instructionAt(code, s.PC)
	if !ok {
		return nil, errs.ErrFieldNotFound // unreachable on well-formed input; no dedicated sentinel needed
	}
	s.LastOpcode = instr.Op
	fallthroughPC := instr.Offset + instr.Width

	switch {
	case instr.Op.IsReturn():
		ip.handleReturn(s, instr)
		return nil, nil

	case instr.Op == opcodes.OpThrow:
		return nil, nil

	case instr.Op.IsConditionalBranch():
		return branchSuccessors(instr, fallthroughPC), nil

	case instr.Op == opcodes.OpGoto || instr.Op == opcodes.OpGoto16 || instr.Op == opcodes.OpGoto32:
		return []int{instr.BranchTarget}, nil

	case instr.Op == opcodes.OpPackedSwitch || instr.Op == opcodes.OpSparseSwitch:
		return switchSuccessors(instr, fallthroughPC), nil

	case instr.Op.IsInvoke():
		if err := ip.handleInvoke(s, instr); err != nil {
			if errs.IsDeadPath(err) {
				return nil, nil
			}
			return nil, err
		}
		return []int{fallthroughPC}, nil

	case instr.Op == opcodes.OpIGet, instr.Op == opcodes.OpIGetWide, instr.Op == opcodes.OpIGetObject:
		if err := ip.handleIGet(s, instr); err != nil && !errs.IsDeadPath(err) {
			return nil, err
		} else if err != nil {
			return nil, nil
		}
		return []int{fallthroughPC}, nil

	case instr.Op == opcodes.OpIPut, instr.Op == opcodes.OpIPutWide, instr.Op == opcodes.OpIPutObject:
		if err := ip.handleIPut(s, instr); err != nil && !errs.IsDeadPath(err) {
			return nil, err
		} else if err != nil {
			return nil, nil
		}
		return []int{fallthroughPC}, nil

	case instr.Op == opcodes.OpSGet, instr.Op == opcodes.OpSGetWide, instr.Op == opcodes.OpSGetObject:
		if err := ip.handleSGet(s, instr); err != nil && !errs.IsDeadPath(err) {
			return nil, err
		} else if err != nil {
			return nil, nil
		}
		return []int{fallthroughPC}, nil

	case instr.Op == opcodes.OpSPut, instr.Op == opcodes.OpSPutWide, instr.Op == opcodes.OpSPutObject:
		if err := ip.handleSPut(s, instr); err != nil && !errs.IsDeadPath(err) {
			return nil, err
		} else if err != nil {
			return nil, nil
		}
		return []int{fallthroughPC}, nil

	case instr.Op == opcodes.OpAGetObject:
		handleAGet(s, instr)
		return []int{fallthroughPC}, nil

	case instr.Op == opcodes.OpAPutObject:
		handleAPut(s, instr)
		return []int{fallthroughPC}, nil

	case instr.Op == opcodes.OpFilledNewArray || instr.Op == opcodes.OpFilledNewArrayRange:
		handleFilledNewArray(s, instr)
		return []int{fallthroughPC}, nil

	case instr.Op == opcodes.OpMove || instr.Op == opcodes.OpMoveWide || instr.Op == opcodes.OpMoveObject:
		handleMove(s, instr)
		return []int{fallthroughPC}, nil

	case instr.Op.IsMoveResult():
		handleMoveResult(s, instr)
		return []int{fallthroughPC}, nil

	case instr.Op == opcodes.OpMoveException:
		// The caught exception object itself carries no field information
		// the analyzer can usefully track; it simply occupies the
		// destination register as an opaque, already-widened value.
		handleMoveException(s, instr)
		return []int{fallthroughPC}, nil

	case instr.Op == opcodes.OpNewInstance || instr.Op == opcodes.OpNewArray:
		// A freshly allocated object (spec section 3's Lifecycle: "Created
		// when the interpreter first encounters... a new object literal").
		// It has no footprint of its own yet, but later stores can make it
		// reachable from an argument or static's track set.
		handleNewObject(s, instr)
		return []int{fallthroughPC}, nil

	case instr.Op == opcodes.OpMonitorEnter || instr.Op == opcodes.OpMonitorExit ||
		instr.Op == opcodes.OpCheckCast || instr.Op == opcodes.OpFillArrayData:
		// No footprint effect beyond the implicit exception edge, which
		// FanOut already handles via affects_try (spec 4.3).
		return []int{fallthroughPC}, nil

	default:
		// Constants and arithmetic/conversion ops: no object ever flows
		// through these, so the destination simply drops out of the
		// interesting set (spec 4.3's catch-all rule).
		handleInert(s, instr)
		return []int{fallthroughPC}, nil
	}
}

func instructionAt(code *classloader.CodeItem, pc int) (*classloader.Instruction, bool) {
	for i := range code.Instructions {
		if code.Instructions[i].Offset == pc {
			return &code.Instructions[i], true
		}
	}
	return nil, false
}
