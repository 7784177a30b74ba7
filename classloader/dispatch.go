/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

// buildDispatchTables constructs class's vtable and iftable (spec section
// 4.1): the vtable starts as a copy of the superclass's, methods
// overriding a super slot by name+descriptor reuse that slot, newly
// declared virtual methods append a slot, and any interface method left
// unimplemented gets a synthesized miranda entry (glossary: "a synthetic
// abstract method inserted into a class's vtable when an interface method
// has no implementation in that (abstract) class").
func (l *Linker) buildDispatchTables(class *ClassObject) {
	if class.Super != nil {
		class.Vtable = append(class.Vtable, class.Super.Vtable...)
	}

	isVirtual := func(m *MethodObject) bool {
		return !m.Raw.IsStatic && !m.Raw.IsPrivate && !m.Raw.IsConstruc
	}

	for _, m := range class.Methods {
		if !isVirtual(m) {
			m.VtIndex = -1
			continue
		}
		if slot := findVtableSlot(class.Vtable, m.Raw.Name, m.Raw.Descriptor); slot >= 0 {
			class.Vtable[slot] = m
			m.VtIndex = slot
		} else {
			m.VtIndex = len(class.Vtable)
			class.Vtable = append(class.Vtable, m)
		}
	}

	// Interface tables: every transitively implemented interface gets an
	// entry whose MethodIndexArray maps the interface's own vtable
	// positions onto this class's vtable, synthesizing miranda methods
	// for anything unimplemented.
	seen := make(map[string]bool)
	var collectIfaces func(c *ClassObject)
	var ifaceList []*ClassObject
	collectIfaces = func(c *ClassObject) {
		for _, iface := range c.Interfaces {
			if seen[iface.Raw.Descriptor] {
				continue
			}
			seen[iface.Raw.Descriptor] = true
			ifaceList = append(ifaceList, iface)
			collectIfaces(iface)
		}
		if c.Super != nil {
			collectIfaces(c.Super)
		}
	}
	collectIfaces(class)

	for _, iface := range ifaceList {
		entry := IfTableEntry{Iface: iface, MethodIndexArray: make([]int, len(iface.Methods))}
		for i, ifm := range iface.Methods {
			if slot := findVtableSlot(class.Vtable, ifm.Raw.Name, ifm.Raw.Descriptor); slot >= 0 {
				entry.MethodIndexArray[i] = slot
				continue
			}
			miranda := &MethodObject{
				Raw: RawMethod{
					Name:       ifm.Raw.Name,
					Descriptor: ifm.Raw.Descriptor,
					IsAbstract: true,
				},
				Class:   class,
				VtIndex: len(class.Vtable),
				Miranda: true,
			}
			class.Vtable = append(class.Vtable, miranda)
			entry.MethodIndexArray[i] = miranda.VtIndex
		}
		class.IfTable = append(class.IfTable, entry)
	}
}

func findVtableSlot(vtable []*MethodObject, name, desc string) int {
	for i, m := range vtable {
		if m.Raw.Name == name && m.Raw.Descriptor == desc {
			return i
		}
	}
	return -1
}

// VirtualTarget resolves a virtual call on receiverClass for a method
// declared with vtIndex in its static type (spec glossary: "vtable —
// per-class array of method pointers indexed by method_index; virtual
// dispatch looks up receiver.class.vtable[method_index]").
func VirtualTarget(receiverClass *ClassObject, vtIndex int) (*MethodObject, bool) {
	if vtIndex < 0 || vtIndex >= len(receiverClass.Vtable) {
		return nil, false
	}
	return receiverClass.Vtable[vtIndex], true
}

// InterfaceTarget resolves an interface call: find the matching iftable
// entry for iface, then the vtable slot it maps methodIdx to.
func InterfaceTarget(implementer *ClassObject, iface *ClassObject, methodIdx int) (*MethodObject, bool) {
	for _, entry := range implementer.IfTable {
		if entry.Iface == iface {
			if methodIdx < 0 || methodIdx >= len(entry.MethodIndexArray) {
				return nil, false
			}
			slot := entry.MethodIndexArray[methodIdx]
			return VirtualTarget(implementer, slot)
		}
	}
	return nil, false
}

// SuperTarget resolves invoke-super: the method with the same name and
// descriptor found by walking from referringClass.Super upward.
func SuperTarget(referringClass *ClassObject, name, desc string) (*MethodObject, bool) {
	for c := referringClass.Super; c != nil; c = c.Super {
		for _, m := range c.Methods {
			if m.Raw.Name == name && m.Raw.Descriptor == desc {
				return m, true
			}
		}
	}
	return nil, false
}
