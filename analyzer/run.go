/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package analyzer

import (
	"os"
	"path/filepath"

	"github.com/apex/log"

	"github.com/dex-offload/footprint/internal/trace"
	"github.com/dex-offload/footprint/reach"
)

// RunFootprintAnalysis runs parse_method over every method reachable by
// walking entryClasses in classpath order, each class's methods in
// methodsInDispatchOrder (spec section 4.1's enumeration tie-break). A
// single method's analysis failure is logged and skipped rather than
// aborting the whole walk — the persisted store already has everything
// parse_method completed before the failure.
func (ctx *AnalyzerContext) RunFootprintAnalysis(entryClasses []string) error {
	for _, descriptor := range entryClasses {
		class, err := ctx.Linker.LinkClass(descriptor)
		if err != nil {
			return err
		}
		for _, m := range methodsInDispatchOrder(class) {
			if _, err := ctx.Driver.ParseMethod(m); err != nil {
				trace.Warning("method analysis failed", log.Fields{"method": m.FullName(), "error": err.Error()})
			}
		}
	}
	return nil
}

// RunGlobalReachability runs the legacy reachability pass over the same
// entry-point walk and writes the four debug text files spec section 6
// names under the artifact directory: staticresult.txt and
// reachablemethod.txt are per-method, blank-line-separated streams built
// incrementally as each entry method finishes; offsetresult.txt is a
// single whole-program snapshot written once at the end, since it
// coalesces across every method analyzed; reachableoffset.txt is
// per-method like the first two.
func (ctx *AnalyzerContext) RunGlobalReachability(entryClasses []string) error {
	dir := ctx.Config.ArtifactDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	staticF, err := openAppend(filepath.Join(dir, "staticresult.txt"))
	if err != nil {
		return err
	}
	defer staticF.Close()

	reachF, err := openAppend(filepath.Join(dir, "reachablemethod.txt"))
	if err != nil {
		return err
	}
	defer reachF.Close()

	offF, err := openAppend(filepath.Join(dir, "reachableoffset.txt"))
	if err != nil {
		return err
	}
	defer offF.Close()

	for _, descriptor := range entryClasses {
		class, err := ctx.Linker.LinkClass(descriptor)
		if err != nil {
			return err
		}
		for _, m := range methodsInDispatchOrder(class) {
			r, err := ctx.Reach.AnalyzeMethod(m)
			if err != nil {
				trace.Warning("reachability analysis failed", log.Fields{"method": m.FullName(), "error": err.Error()})
				continue
			}
			if err := reach.WriteStaticResult(staticF, r); err != nil {
				return err
			}
			if err := reach.WriteReachableMethod(reachF, r); err != nil {
				return err
			}
			if err := reach.WriteReachableOffset(offF, r); err != nil {
				return err
			}
		}
	}

	offsetResultF, err := os.Create(filepath.Join(dir, "offsetresult.txt"))
	if err != nil {
		return err
	}
	defer offsetResultF.Close()
	return ctx.Reach.WriteOffsetResult(offsetResultF)
}

func openAppend(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}
