/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package persist

import (
	"fmt"
	"io"
	"sort"

	"github.com/dex-offload/footprint/object"
)

// WriteDebugText renders ma as the human-readable presult.txt mirror
// (supplemental feature carried from original_source/'s debug tooling,
// spec section 6 "presult.txt"): one line per node, grouped under a
// method header, with a trailing blank line separating records so the
// file stays greppable without a parser.
func WriteDebugText(w io.Writer, classDescriptor, methodName string, ma *object.MethodAccess) error {
	roots := ma.Roots()
	indexRoots := append(append([]*object.Access{}, roots...), ma.ReturnObjs...)
	var nodes []*object.Access
	object.Index(indexRoots, &nodes)
	defer object.ClearIndex(nodes)

	globalStart := len(ma.Args)
	globalDescriptor := make(map[int]string, len(ma.GlobalClasses))
	for i, ca := range ma.GlobalClassesInOrder() {
		globalDescriptor[nodes[globalStart+i].Idx] = ca.Class.Descriptor()
	}

	if _, err := fmt.Fprintf(w, "METHOD %s.%s\n", classDescriptor, methodName); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "ARGS %d GLOBALS %d NODES %d\n", len(ma.Args), len(ma.GlobalClasses), len(nodes)); err != nil {
		return err
	}
	for _, n := range nodes {
		label := ""
		if d, ok := globalDescriptor[n.Idx]; ok {
			label = " global=" + d
		}
		if _, err := fmt.Fprintf(w, "NODE %d all=%t in_array=%t%s\n", n.Idx, n.AllFlag, n.InArray, label); err != nil {
			return err
		}
		for _, fi := range unionFieldIndices(n) {
			child := -1
			if c, ok := n.FieldSet[fi]; ok {
				child = c.Idx
			}
			members := sortedMembers(n.TrackSet[fi])
			idxs := make([]int, len(members))
			for i, m := range members {
				idxs[i] = m.Idx
			}
			sort.Ints(idxs)
			if _, err := fmt.Fprintf(w, "  FIELD %d child=%d null_branch=%t track=%v\n", fi, child, n.NullBranchFlags[fi], idxs); err != nil {
				return err
			}
		}
	}
	returnIdxs := make([]int, len(ma.ReturnObjs))
	for i, r := range ma.ReturnObjs {
		returnIdxs[i] = r.Idx
	}
	if _, err := fmt.Fprintf(w, "RETURNS %v\n\n", returnIdxs); err != nil {
		return err
	}
	return nil
}
