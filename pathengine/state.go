/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package pathengine implements component D of the analyzer (spec section
// 4.4): priority-queue scheduling of ParseStates keyed by instruction
// offset, exception-handler fan-out, cycle detection, and join/widening.
//
// copy_parse_state (spec section 4.4) is a true deep copy: every State
// spawned for a branch or catch-handler fork gets its own independent
// *object.MethodAccess arena (object.MethodAccess.Clone), not a shared
// pointer. A store on one branch mutates that branch's own Access graph
// in place (object.Access.ReplaceTrack and friends are destructive), so
// without this, a sibling state exploring the branch not taken could
// observe a write it never made. Regs and Visited are remapped onto the
// clone's address map and deep-copied the same way. Two still-live states
// that converge back on the same pc are reconciled by Join, which unions
// their two independent arenas back into one (object.UnionMethodAccess).
package pathengine

import (
	"github.com/dex-offload/footprint/object"
	"github.com/dex-offload/footprint/opcodes"
)

// State is the ParseState tuple of spec section 4.4.
type State struct {
	PC         int
	LastOpcode opcodes.Opcode

	// Visited is visited_offsets: the set of offsets already executed on
	// this path, used for cycle detection.
	Visited map[int]struct{}

	// AffectsTry is set after any object-valued write; the next dispatch
	// iteration must fan out to reachable catch handlers if pc lies
	// inside a try region.
	AffectsTry bool

	// Regs is interest_regs: register number -> currently-bound Access
	// set. A register absent from this map holds no object of interest
	// (a primitive, or never written).
	Regs map[int]map[*object.Access]struct{}

	// MA is this path's own MethodAccess arena (see package doc):
	// independent of every sibling path's, until Join reconciles two
	// states that converged on the same pc.
	MA *object.MethodAccess

	// joinDepth counts how many times this path's lineage has been
	// through Join; MaxBranchDepth widens and terminates when it grows
	// too large (spec section 4.4, widening / escape hatches).
	joinDepth int
}

// NewState returns the initial ParseState for a method: pc at the first
// instruction, no offsets visited, given register bindings (the incoming
// arguments) and a freshly allocated MethodAccess.
func NewState(entryPC int, ma *object.MethodAccess, initialRegs map[int]map[*object.Access]struct{}) *State {
	regs := make(map[int]map[*object.Access]struct{}, len(initialRegs))
	for reg, set := range initialRegs {
		regs[reg] = cloneSet(set)
	}
	return &State{
		PC:      entryPC,
		Visited: make(map[int]struct{}),
		Regs:    regs,
		MA:      ma,
	}
}

// Fork produces an independent continuation of s at a new pc (used for
// conditional-branch and goto/switch successors, and for exception
// handler spawns). Per the package doc, this is copy_parse_state's deep
// copy: the Access arena is cloned (every currently-bound register's
// nodes are folded in as extra clone roots, since a freshly allocated
// object sitting in a register may not be reachable from the arena's
// Args/GlobalClasses yet), and Regs/Visited are deep-copied and remapped
// onto the clone so sibling paths can never contaminate each other's
// bookkeeping or one another's graph mutations.
func (s *State) Fork(pc int) *State {
	visited := make(map[int]struct{}, len(s.Visited))
	for o := range s.Visited {
		visited[o] = struct{}{}
	}

	var extraRoots []*object.Access
	for _, set := range s.Regs {
		for n := range set {
			extraRoots = append(extraRoots, n)
		}
	}
	clonedMA, addr := s.MA.Clone(extraRoots)

	regs := make(map[int]map[*object.Access]struct{}, len(s.Regs))
	for reg, set := range s.Regs {
		out := make(map[*object.Access]struct{}, len(set))
		for n := range set {
			if mapped, ok := addr[n]; ok {
				out[mapped] = struct{}{}
			} else {
				out[n] = struct{}{}
			}
		}
		regs[reg] = out
	}

	return &State{
		PC:         pc,
		LastOpcode: s.LastOpcode,
		Visited:    visited,
		AffectsTry: s.AffectsTry,
		Regs:       regs,
		MA:         clonedMA,
		joinDepth:  s.joinDepth,
	}
}

// MarkVisited records that this path has now executed offset.
func (s *State) MarkVisited(offset int) { s.Visited[offset] = struct{}{} }

// HasVisited reports whether this path already executed offset — the
// cycle-detection test of spec section 4.4: "a branch whose target is
// already in visited_offsets of the originating state is not taken".
func (s *State) HasVisited(offset int) bool {
	_, ok := s.Visited[offset]
	return ok
}

// Bind sets register reg's binding set, replacing whatever was there
// (used by move/iget-object/invoke-result assignment).
func (s *State) Bind(reg int, set map[*object.Access]struct{}) {
	s.Regs[reg] = cloneSet(set)
}

// BindSingle is a convenience for binding a register to exactly one node.
func (s *State) BindSingle(reg int, node *object.Access) {
	s.Regs[reg] = map[*object.Access]struct{}{node: {}}
}

// Unbind drops reg from the interesting set (used whenever a
// non-reference value is written, since no object flows through it).
func (s *State) Unbind(reg int) { delete(s.Regs, reg) }

// Binding returns the current binding set for reg (nil if unbound).
func (s *State) Binding(reg int) map[*object.Access]struct{} { return s.Regs[reg] }

func cloneSet(set map[*object.Access]struct{}) map[*object.Access]struct{} {
	out := make(map[*object.Access]struct{}, len(set))
	for n := range set {
		out[n] = struct{}{}
	}
	return out
}
