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

// handleInvoke decodes which dispatch kind an invoke-* instruction uses
// and hands the call off to the Dispatcher (spec 4.5). Everything past
// resolving the symbolic method reference — widening escape hatches,
// concrete target enumeration, memoization, and merge_method_args — is the
// driver's responsibility.
func (ip *Interpreter) handleInvoke(s *pathengine.State, instr *classloader.Instruction) error {
	return ip.Dispatcher.Dispatch(s, ip.Referrer, instr.InvokeKind, instr.MethodRef, instr.Regs)
}
