/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package interp

import "github.com/dex-offload/footprint/classloader"

// branchSuccessors returns the two successors of a conditional branch: the
// taken target and the fall-through (spec 4.4). Cycle suppression (not
// taking an already-visited target) is the scheduling loop's job, not the
// transfer function's.
func branchSuccessors(instr *classloader.Instruction, fallthroughPC int) []int {
	return []int{instr.BranchTarget, fallthroughPC}
}

// switchSuccessors returns one successor per packed/sparse switch entry
// plus the fall-through (the implicit default case). The data-table itself
// (magic word, size, key/target arrays, 32-bit alignment) is already
// decoded into instr.Switch by the out-of-scope container reader; this
// function only turns that decoded table into pc successors (spec 4.4).
func switchSuccessors(instr *classloader.Instruction, fallthroughPC int) []int {
	targets := make([]int, 0, len(instr.Switch.Targets)+1)
	targets = append(targets, instr.Switch.Targets...)
	targets = append(targets, fallthroughPC)
	return targets
}
