/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package persist

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/dex-offload/footprint/object"
)

// descriptorClassRef satisfies object.ClassRef from nothing but a
// descriptor string, standing in for the real classloader.ClassObject a
// deserialized ClassAccess never needs: every downstream consumer of a
// restored global class's Class field only ever calls Descriptor() on
// it (merge_method_args grafts by descriptor, never by identity).
type descriptorClassRef string

func (d descriptorClassRef) Descriptor() string { return string(d) }

// keyMethodRef satisfies object.MethodRef from the memoization key
// alone, for the same reason: a restored MethodAccess's Method field is
// only ever read back via FullName for logging/debugging.
type keyMethodRef string

func (k keyMethodRef) FullName() string { return string(k) }

// EncodeMethodAccess serializes ma into one presult.bin record (spec
// 4.6). It indexes the graph first via object.Index so every reference
// is a stable, cycle-safe idx, writes the header, one record per
// indexed node, and finally the return-object idx list (return objects
// can alias an arg or global-class node and so cannot always be
// recovered from node position alone).
func EncodeMethodAccess(ma *object.MethodAccess, classID, methodID, methodIndex uint32, strdict *StrDict) []byte {
	roots := ma.Roots()
	// ReturnObjs can introduce nodes unreached from Args/GlobalClasses (a
	// returned value never stored anywhere else); folding them into the
	// same Index call lets aliases with existing roots resolve to a
	// single idx instead of being walked and assigned a duplicate one.
	indexRoots := append(append([]*object.Access{}, roots...), ma.ReturnObjs...)
	var nodes []*object.Access
	object.Index(indexRoots, &nodes)
	defer object.ClearIndex(nodes)

	globalStart := len(ma.Args)
	globalIDs := make(map[*object.Access]uint32, len(ma.GlobalClasses))
	for i, ca := range ma.GlobalClassesInOrder() {
		globalIDs[nodes[globalStart+i]] = uint32(strdict.Intern(ca.Class.Descriptor()))
	}

	var buf bytes.Buffer
	writeU32 := func(v uint32) {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		buf.Write(b[:])
	}
	writeI32 := func(v int32) { writeU32(uint32(v)) }
	writeBool := func(v bool) {
		if v {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	}

	writeU32(classID)
	writeU32(methodID)
	writeU32(methodIndex)
	writeU32(uint32(len(ma.GlobalClasses)))
	writeU32(uint32(len(ma.Args)))
	writeU32(uint32(len(nodes)))

	for _, n := range nodes {
		writeI32(int32(n.Idx))
		writeBool(n.AllFlag)
		writeBool(n.InArray)

		fields := unionFieldIndices(n)
		writeI32(int32(len(fields)))
		for _, fi := range fields {
			writeI32(int32(fi))
			writeBool(n.NullBranchFlags[fi])
			if child, ok := n.FieldSet[fi]; ok {
				writeI32(int32(child.Idx))
			} else {
				writeI32(-1)
			}
			members := sortedMembers(n.TrackSet[fi])
			writeI32(int32(len(members)))
			for _, m := range members {
				writeI32(int32(m.Idx))
			}
		}

		if gid, ok := globalIDs[n]; ok {
			buf.WriteByte(1)
			writeU32(gid)
		} else {
			buf.WriteByte(0)
		}
	}

	writeI32(int32(len(ma.ReturnObjs)))
	for _, r := range ma.ReturnObjs {
		writeI32(int32(r.Idx))
	}

	return buf.Bytes()
}

// DecodeMethodAccess is the inverse of EncodeMethodAccess: allocate
// total_node_count blank nodes, then rebind every reference by index
// (spec 4.6, "deserialization mirrors"). key becomes the restored
// MethodAccess's Method.FullName().
func DecodeMethodAccess(payload []byte, key string, strdict *StrDict) (*object.MethodAccess, error) {
	r := &byteReader{buf: payload}

	_ = r.u32() // classID, not needed to reconstruct the graph itself
	_ = r.u32() // methodID
	_ = r.u32() // methodIndex
	globalClassCount := int(r.u32())
	argCount := int(r.u32())
	totalNodeCount := int(r.u32())
	if r.err != nil {
		return nil, r.err
	}

	nodes := make([]*object.Access, totalNodeCount)
	classNodes := make([]*object.ClassAccess, globalClassCount)
	for i := range nodes {
		if i >= argCount && i < argCount+globalClassCount {
			ca := &object.ClassAccess{Access: *object.NewAccess()}
			classNodes[i-argCount] = ca
			nodes[i] = &ca.Access
			continue
		}
		nodes[i] = object.NewAccess()
	}

	globalDescriptors := make(map[int]string, globalClassCount)

	for i := 0; i < totalNodeCount; i++ {
		idx := int(r.i32())
		if idx < 0 || idx >= totalNodeCount {
			return nil, fmt.Errorf("persist: node index %d out of range [0,%d)", idx, totalNodeCount)
		}
		n := nodes[idx]
		n.AllFlag = r.boolean()
		n.InArray = r.boolean()

		fieldCount := int(r.i32())
		for f := 0; f < fieldCount; f++ {
			fieldIdx := int(r.i32())
			n.NullBranchFlags[fieldIdx] = r.boolean()
			childIdx := int(r.i32())
			if childIdx >= 0 {
				child := nodes[childIdx]
				n.FieldSet[fieldIdx] = child
				child.Belonging = n
			}
			trackCount := int(r.i32())
			if trackCount > 0 {
				set := make(map[*object.Access]struct{}, trackCount)
				for t := 0; t < trackCount; t++ {
					set[nodes[int(r.i32())]] = struct{}{}
				}
				n.TrackSet[fieldIdx] = set
			}
		}

		if r.byte() == 1 {
			gid := int(r.u32())
			descriptor, _ := strdict.Lookup(gid)
			globalDescriptors[idx] = descriptor
		}
		if r.err != nil {
			return nil, r.err
		}
	}

	returnCount := int(r.i32())
	returnObjs := make([]*object.Access, 0, returnCount)
	for i := 0; i < returnCount; i++ {
		returnObjs = append(returnObjs, nodes[int(r.i32())])
	}
	if r.err != nil {
		return nil, r.err
	}

	ma := &object.MethodAccess{
		Method:        keyMethodRef(key),
		Args:          nodes[:argCount],
		GlobalClasses: make(map[string]*object.ClassAccess),
		ReturnObjs:    returnObjs,
	}
	for i, ca := range classNodes {
		if ca == nil {
			continue
		}
		descriptor := globalDescriptors[argCount+i]
		ca.Class = descriptorClassRef(descriptor)
		ma.RestoreGlobalClass(descriptor, ca)
	}
	return ma, nil
}

// unionFieldIndices returns the sorted set of field indices the node
// mentions in either FieldSet or TrackSet (a track can exist for a field
// never given a canonical FieldSet member, and vice versa in principle).
func unionFieldIndices(n *object.Access) []int {
	seen := make(map[int]struct{}, len(n.FieldSet)+len(n.TrackSet))
	for i := range n.FieldSet {
		seen[i] = struct{}{}
	}
	for i := range n.TrackSet {
		seen[i] = struct{}{}
	}
	out := make([]int, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	insertionSortInts(out)
	return out
}

func sortedMembers(set map[*object.Access]struct{}) []*object.Access {
	out := make([]*object.Access, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	// Idx has already been assigned by object.Index at this point, so
	// sorting by it gives a deterministic, content-derived order rather
	// than Go's randomized map iteration order (testable property 4).
	for i := 1; i < len(out); i++ {
		v := out[i]
		j := i - 1
		for j >= 0 && out[j].Idx > v.Idx {
			out[j+1] = out[j]
			j--
		}
		out[j+1] = v
	}
	return out
}

func insertionSortInts(a []int) {
	for i := 1; i < len(a); i++ {
		v := a[i]
		j := i - 1
		for j >= 0 && a[j] > v {
			a[j+1] = a[j]
			j--
		}
		a[j+1] = v
	}
}

// byteReader is a tiny cursor over an in-memory record; it never
// panics on a short buffer, it latches err instead, so a single check
// after a batch of reads suffices.
type byteReader struct {
	buf []byte
	pos int
	err error
}

func (r *byteReader) u32() uint32 {
	if r.err != nil {
		return 0
	}
	if r.pos+4 > len(r.buf) {
		r.err = fmt.Errorf("persist: truncated record at offset %d", r.pos)
		return 0
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	return v
}

func (r *byteReader) i32() int32 { return int32(r.u32()) }

func (r *byteReader) byte() byte {
	if r.err != nil {
		return 0
	}
	if r.pos+1 > len(r.buf) {
		r.err = fmt.Errorf("persist: truncated record at offset %d", r.pos)
		return 0
	}
	v := r.buf[r.pos]
	r.pos++
	return v
}

func (r *byteReader) boolean() bool { return r.byte() == 1 }
