/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package interp

import (
	"github.com/dex-offload/footprint/classloader"
	"github.com/dex-offload/footprint/object"
	"github.com/dex-offload/footprint/pathengine"
)

// handleIGet implements the instance field load rule (spec 4.3): resolve
// the field, extend every object bound to the source register with a
// field_set/track_set entry for it, and for a reference load merge the
// field's track set into the destination register; a non-reference load
// just drops the destination.
func (ip *Interpreter) handleIGet(s *pathengine.State, instr *classloader.Instruction) error {
	ref := ip.Pool.FieldRef(instr.FieldRef)
	fl, err := ip.Linker.ResolveInstanceField(ip.Dex, ip.Referrer.Descriptor(), instr.FieldRef, ref.Owner, ref.Name)
	if err != nil {
		return err
	}

	destReg, objReg := instr.Regs[0], instr.Regs[1]

	if !instr.IsObject {
		for src := range s.Binding(objReg) {
			if src.IsFullyMigrated() {
				continue
			}
			src.Field(fl.WordOffset)
		}
		s.Unbind(destReg)
		return nil
	}

	merged := make(map[*object.Access]struct{})
	for src := range s.Binding(objReg) {
		if src.IsFullyMigrated() {
			continue
		}
		src.Field(fl.WordOffset)
		for n := range src.TrackSet[fl.WordOffset] {
			merged[n] = struct{}{}
		}
	}
	s.Bind(destReg, merged)
	return nil
}

// handleIPut implements the instance field store rule (spec 4.3): the
// field's track set is replaced by the stored value's binding set, in_array
// is propagated, and null_branch_flags is cleared since this path's store
// is unambiguous (a single ParseState is, by construction, one concrete
// path; ambiguity only arises once Join merges it with a sibling that
// never performed the store).
func (ip *Interpreter) handleIPut(s *pathengine.State, instr *classloader.Instruction) error {
	ref := ip.Pool.FieldRef(instr.FieldRef)
	fl, err := ip.Linker.ResolveInstanceField(ip.Dex, ip.Referrer.Descriptor(), instr.FieldRef, ref.Owner, ref.Name)
	if err != nil {
		return err
	}
	if !instr.IsObject {
		return nil
	}

	valueReg, objReg := instr.Regs[0], instr.Regs[1]
	values := s.Binding(valueReg)

	for obj := range s.Binding(objReg) {
		if obj.IsFullyMigrated() {
			continue
		}
		obj.Field(fl.WordOffset)
		obj.ReplaceTrack(fl.WordOffset, values)
		obj.NullBranchFlags[fl.WordOffset] = false
		if obj.InArray {
			for v := range values {
				v.Widen()
			}
		}
		s.AffectsTry = true
	}
	return nil
}

// handleSGet materializes the touched class's ClassAccess (inserting on
// first sight) and applies the same load rule as handleIGet against it.
func (ip *Interpreter) handleSGet(s *pathengine.State, instr *classloader.Instruction) error {
	ref := ip.Pool.FieldRef(instr.FieldRef)
	fl, err := ip.Linker.ResolveStaticField(ip.Dex, ip.Referrer.Descriptor(), instr.FieldRef, ref.Owner, ref.Name)
	if err != nil {
		return err
	}
	owner, err := ip.Linker.ResolveClass(ip.Dex, ref.Owner)
	if err != nil {
		return err
	}
	ca := s.MA.GlobalClass(ref.Owner, owner)

	destReg := instr.Regs[0]
	if ca.IsFullyMigrated() {
		if instr.IsObject {
			s.Unbind(destReg)
		}
		return nil
	}
	ca.Field(fl.WordOffset)

	if !instr.IsObject {
		s.Unbind(destReg)
		return nil
	}
	merged := make(map[*object.Access]struct{}, len(ca.TrackSet[fl.WordOffset]))
	for n := range ca.TrackSet[fl.WordOffset] {
		merged[n] = struct{}{}
	}
	s.Bind(destReg, merged)
	return nil
}

// handleSPut is the static-field symmetric counterpart of handleIPut.
func (ip *Interpreter) handleSPut(s *pathengine.State, instr *classloader.Instruction) error {
	ref := ip.Pool.FieldRef(instr.FieldRef)
	fl, err := ip.Linker.ResolveStaticField(ip.Dex, ip.Referrer.Descriptor(), instr.FieldRef, ref.Owner, ref.Name)
	if err != nil {
		return err
	}
	owner, err := ip.Linker.ResolveClass(ip.Dex, ref.Owner)
	if err != nil {
		return err
	}
	ca := s.MA.GlobalClass(ref.Owner, owner)

	if !instr.IsObject {
		return nil
	}
	valueReg := instr.Regs[0]
	values := s.Binding(valueReg)
	ca.Field(fl.WordOffset)
	ca.ReplaceTrack(fl.WordOffset, values)
	ca.NullBranchFlags[fl.WordOffset] = false
	s.AffectsTry = true
	return nil
}
