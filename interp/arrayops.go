/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package interp

import (
	"github.com/dex-offload/footprint/classloader"
	"github.com/dex-offload/footprint/pathengine"
)

// handleAGet widens every array Access bound to the array register: once
// an object is known to live behind an array element, the analyzer cannot
// precisely index into it, so it marks in_array/all_flag and the loaded
// value is conservatively treated as already migrated (spec 4.3, "array
// get/put of object: widen the array's bindings to all_flag=true with
// in_array=true; widens stored values symmetrically").
func handleAGet(s *pathengine.State, instr *classloader.Instruction) {
	destReg, arrReg := instr.Regs[0], instr.Regs[1]
	for arr := range s.Binding(arrReg) {
		arr.InArray = true
		arr.Widen()
	}
	s.Unbind(destReg)
}

// handleAPut is the store counterpart: the array and the value being
// stored into it are both widened.
func handleAPut(s *pathengine.State, instr *classloader.Instruction) {
	valueReg, arrReg := instr.Regs[0], instr.Regs[1]
	for arr := range s.Binding(arrReg) {
		arr.InArray = true
		arr.Widen()
	}
	for v := range s.Binding(valueReg) {
		v.Widen()
	}
}

// handleFilledNewArray widens every source register feeding the literal
// array (spec 4.3); the synthesized array value itself is consumed by the
// move-result-object that follows, which drops the destination since the
// array has already been fully accounted for here.
func handleFilledNewArray(s *pathengine.State, instr *classloader.Instruction) {
	for _, reg := range instr.Regs {
		for n := range s.Binding(reg) {
			n.Widen()
		}
	}
}
