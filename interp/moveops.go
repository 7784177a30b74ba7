/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package interp

import (
	"github.com/dex-offload/footprint/classloader"
	"github.com/dex-offload/footprint/object"
	"github.com/dex-offload/footprint/opcodes"
	"github.com/dex-offload/footprint/pathengine"
)

// handleMove propagates the source register's binding set to the
// destination; a non-object move just drops the destination (spec 4.3).
func handleMove(s *pathengine.State, instr *classloader.Instruction) {
	destReg, srcReg := instr.Regs[0], instr.Regs[1]
	if !instr.IsObject {
		s.Unbind(destReg)
		return
	}
	if b := s.Binding(srcReg); b != nil {
		s.Bind(destReg, b)
	} else {
		s.Unbind(destReg)
	}
}

// handleMoveResult consumes the previous invoke's current_call_returns for
// move-result-object, or drops the destination for the primitive/wide
// forms (spec 4.3, 4.5 step 5).
func handleMoveResult(s *pathengine.State, instr *classloader.Instruction) {
	destReg := instr.Regs[0]
	if instr.Op == opcodes.OpMoveResultObj {
		merged := make(map[*object.Access]struct{}, len(s.MA.CurrentCallReturns))
		for _, r := range s.MA.CurrentCallReturns {
			merged[r] = struct{}{}
		}
		s.Bind(destReg, merged)
	} else {
		s.Unbind(destReg)
	}
	s.MA.CurrentCallReturns = nil
}

// handleMoveException binds the destination to a fresh, already-widened
// node: the caught exception's own field structure is never profitably
// trackable, so the conservative choice is to treat it as fully migrated
// should it ever flow into an argument or static field.
func handleMoveException(s *pathengine.State, instr *classloader.Instruction) {
	node := object.NewAccess()
	node.Widen()
	s.BindSingle(instr.Regs[0], node)
}

// handleNewObject binds the destination to a brand-new Access node with no
// observed structure yet.
func handleNewObject(s *pathengine.State, instr *classloader.Instruction) {
	s.BindSingle(instr.Regs[0], object.NewAccess())
}

// handleInert drops the destination register (if the instruction format
// has one) from the interesting set; used for constants, arithmetic, and
// conversions, none of which ever produce an object reference.
func handleInert(s *pathengine.State, instr *classloader.Instruction) {
	if len(instr.Regs) > 0 {
		s.Unbind(instr.Regs[0])
	}
}
