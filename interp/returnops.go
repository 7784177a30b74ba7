/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package interp

import (
	"github.com/dex-offload/footprint/classloader"
	"github.com/dex-offload/footprint/opcodes"
	"github.com/dex-offload/footprint/pathengine"
)

// handleReturn implements return-object/return-void/return (spec 4.3): a
// returned object's bindings are unioned into the method's return set;
// every return form terminates the current path.
func (ip *Interpreter) handleReturn(s *pathengine.State, instr *classloader.Instruction) {
	if instr.Op != opcodes.OpReturnObj {
		return
	}
	srcReg := instr.Regs[0]
	s.MA.AddReturn(s.Binding(srcReg))
}
