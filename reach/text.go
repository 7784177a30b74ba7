/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package reach

import (
	"fmt"
	"io"
	"sort"

	"github.com/dex-offload/footprint/classloader"
)

// WriteStaticResult appends one staticresult.txt record for r: the
// classes and static word offsets touched transitively from r.Method,
// newline-terminated with a blank-line separator between method records
// (spec section 6).
func WriteStaticResult(w io.Writer, r *MethodReachability) error {
	if _, err := fmt.Fprintf(w, "METHOD %s\n", r.Method.FullName()); err != nil {
		return err
	}
	for _, descriptor := range sortedClassKeys(r.Statics) {
		if _, err := fmt.Fprintf(w, "CLASS %s OFFSETS %v\n", descriptor, r.Statics[descriptor].ToSlice()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// WriteReachableMethod appends one reachablemethod.txt record: every
// method transitively reachable from r.Method, in first-sight order.
func WriteReachableMethod(w io.Writer, r *MethodReachability) error {
	if _, err := fmt.Fprintf(w, "METHOD %s\n", r.Method.FullName()); err != nil {
		return err
	}
	for _, name := range r.Reachable {
		if _, err := fmt.Fprintf(w, "REACHES %s\n", name); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// WriteOffsetResult writes the whole-program offsetresult.txt: the
// union, across every entry point analyzed so far by e, of every
// class's touched static word offsets. Unlike staticresult.txt this is
// not blank-line-separated per method — it is one coalesced snapshot,
// rewritten wholesale each time it is asked for.
func (e *Engine) WriteOffsetResult(w io.Writer) error {
	for _, descriptor := range sortedClassKeys(e.GlobalStatics) {
		if _, err := fmt.Fprintf(w, "%s %v\n", descriptor, e.GlobalStatics[descriptor].ToSlice()); err != nil {
			return err
		}
	}
	return nil
}

// WriteReachableOffset appends one reachableoffset.txt record: the byte
// offsets, within r.Method's own instruction stream, at which a static
// field was touched — the "where", complementing staticresult.txt's
// "what".
func WriteReachableOffset(w io.Writer, r *MethodReachability) error {
	if _, err := fmt.Fprintf(w, "METHOD %s\n", r.Method.FullName()); err != nil {
		return err
	}
	sorted := append([]int{}, r.StaticTouchOffsets...)
	sort.Ints(sorted)
	for _, off := range sorted {
		if _, err := fmt.Fprintf(w, "OFFSET %d\n", off); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

func sortedClassKeys(m map[string]*classloader.RefBitmap) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
