/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import "github.com/dex-offload/footprint/opcodes"

// DispatchKind distinguishes the five invoke forms spec section 4.5 names.
type DispatchKind int

const (
	DispatchStatic DispatchKind = iota
	DispatchDirect
	DispatchVirtual
	DispatchSuper
	DispatchInterface
)

// Instruction is one decoded DEX instruction. The container reader that
// turns raw code units into this struct is out of scope (spec section 1);
// this is the boundary the interpreter operates across.
type Instruction struct {
	Op     opcodes.Opcode
	Offset int // byte/word offset, consistent with Width below
	Width  int // size of this instruction, for next_offset = Offset + Width

	// Regs holds the instruction's register operands. Convention: for
	// instructions with a destination register, Regs[0] is the
	// destination; for iput/sput/array-put, Regs[0] is the source value
	// being stored, matching the DEX encoding of those formats.
	Regs []int

	// FieldRef is populated for iget*/iput*/sget*/sput*: the unresolved
	// constant-pool-style index the Linker resolves against the
	// referrer's Dex.
	FieldRef int

	// MethodRef and InvokeKind are populated for invoke-*.
	MethodRef  int
	InvokeKind DispatchKind

	// BranchTarget is the absolute offset a goto/if instruction jumps to
	// when taken; for conditional branches the fall-through successor is
	// always Offset+Width.
	BranchTarget int

	// Switch is populated for packed-switch/sparse-switch.
	Switch *SwitchData

	// IsWide / IsObject refine the destination type for move and
	// field/array instructions, since the footprint rules for a wide or
	// primitive load/store differ from an object load/store (spec
	// section 4.3).
	IsObject bool
	IsWide   bool
}

// SwitchData is the packed/sparse switch data-table payload (spec section
// 4.4, "respecting the DEX data-table layout... 32-bit alignment required
// for the target array"). Keys and Targets are parallel slices.
type SwitchData struct {
	Keys    []int32
	Targets []int // absolute offsets
}
