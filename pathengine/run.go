/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package pathengine

import (
	"github.com/dex-offload/footprint/classloader"
	"github.com/dex-offload/footprint/object"
)

// Stepper executes one instruction on behalf of the engine. Implemented by
// the interp package (component C); kept as an interface here so pathengine
// never imports interp, which in turn imports pathengine and driver.
//
// Step mutates s in place (register bindings, AffectsTry) to reflect the
// instruction at s.PC, and returns the offsets of every successor
// instruction reachable from it on a normal (non-exceptional) path: one
// for a straight-line or goto instruction, zero for a return/throw, two or
// more for a conditional branch or switch. Invoke instructions that need
// inter-procedural information call back into the driver package
// themselves; Step just returns the single fallthrough successor for
// those.
type Stepper interface {
	Step(s *State, code *classloader.CodeItem) (successors []int, err error)
}

// Run drives the whole-method scheduling loop of spec section 4.4: repeatedly
// pull the live state(s) at the smallest pc, join them if more than one
// converged, fan out to exception handlers if the step that produced them
// touched an object, step the instruction, and enqueue every successor that
// hasn't already been visited on that path. It returns once the live set is
// exhausted or once MaxBranchDepth widening terminates the method early.
//
// ma is the one persistent, method-level result — distinct from any live
// state's own Access arena (see pathengine.State's package doc). The
// entry state starts from its own clone of ma so that the very first
// branch fork has independent structure to copy rather than sharing ma's
// nodes by pointer. Every lineage that reaches a terminus — a return or
// throw (zero successors), a revisited offset outside a Join (a cycle
// that never re-converges), or MaxBranchDepth widening — folds its final
// per-path state into ma via object.UnionMethodAccess(ma, cur.MA, false),
// mirroring the original analyzer's endParse: a live join reconciles two
// still-exploring paths, but a terminus reconciles one finished path
// against the accumulator every other finished path has already folded
// into.
func Run(code *classloader.CodeItem, ma *object.MethodAccess, entryPC int, initialRegs map[int]map[*object.Access]struct{}, step Stepper, opts Options) error {
	sched := NewScheduler()

	entryMA, addr := ma.Clone(nil)
	entryRegs := make(map[int]map[*object.Access]struct{}, len(initialRegs))
	for reg, set := range initialRegs {
		out := make(map[*object.Access]struct{}, len(set))
		for n := range set {
			if mapped, ok := addr[n]; ok {
				out[mapped] = struct{}{}
			} else {
				out[n] = struct{}{}
			}
		}
		entryRegs[reg] = out
	}
	sched.Add(NewState(entryPC, entryMA, entryRegs))

	for sched.Len() > 0 {
		group := sched.StatesAtMinPC()
		cur, widened := Join(group, opts)
		if widened {
			object.UnionMethodAccess(ma, cur.MA, false)
			return nil
		}

		if cur.HasVisited(cur.PC) {
			// Revisiting an offset on this lineage: the path has closed a
			// cycle without converging through Join (e.g. a loop body that
			// never re-joins an outer state). Treat it like a join-depth
			// trip, widen, and fold this lineage's terminus into the
			// result rather than spin forever.
			WidenAll(cur.MA)
			object.UnionMethodAccess(ma, cur.MA, false)
			continue
		}
		cur.MarkVisited(cur.PC)

		for _, fork := range FanOut(cur, code) {
			if !fork.HasVisited(fork.PC) {
				sched.Add(fork)
			}
		}

		successors, err := step.Step(cur, code)
		if err != nil {
			return err
		}
		if len(successors) == 0 {
			// cur reached a return or throw: fold its final per-path state
			// into the method-level result.
			object.UnionMethodAccess(ma, cur.MA, false)
			continue
		}
		for _, pc := range successors {
			if cur.HasVisited(pc) {
				continue
			}
			sched.Add(cur.Fork(pc))
		}
	}
	return nil
}
