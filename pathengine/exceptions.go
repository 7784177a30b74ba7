/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package pathengine

import "github.com/dex-offload/footprint/classloader"

// FanOut spawns one forked continuation per catch handler reachable from
// pc, when s.AffectsTry is set (spec section 4.4: "exception fan-out is
// triggered only after an object-valued write, via affects_try"). The
// handlers come from every TryBlock in code whose [Start,End) contains
// pc; a try region's handlers are tried in file order, mirroring how a
// runtime dispatcher would select the first matching (or catch-all)
// handler — but since the analyzer does not know which exception type
// actually propagates, it must assume any of them could, so every
// handler in every enclosing try region gets its own forked path.
//
// The returned state's AffectsTry is cleared: the write that triggered
// this fan-out has now been accounted for.
func FanOut(s *State, code *classloader.CodeItem) []*State {
	if !s.AffectsTry {
		return nil
	}
	var forks []*State
	for _, try := range code.Tries {
		if s.PC < try.StartOffset || s.PC >= try.EndOffset {
			continue
		}
		for _, h := range try.Handlers {
			fork := s.Fork(h.HandlerOffset)
			fork.AffectsTry = false
			forks = append(forks, fork)
		}
	}
	return forks
}
