/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package object

// MethodRef is the minimal view of a resolved method the object model
// needs to label a MethodAccess.
type MethodRef interface {
	FullName() string // e.g. "Lcom/app/Foo;.bar(I)V"
}

// MethodAccess is the per-method footprint accumulated by one analysis
// run (spec section 3). Args holds one Access per incoming object/array
// parameter, including the receiver for instance methods.
type MethodAccess struct {
	Method MethodRef
	Args   []*Access

	// GlobalClasses holds one ClassAccess per static class whose fields
	// were touched along any explored path, keyed by class descriptor so
	// a repeat sget/sput reuses the same node (spec 4.3, "materialize the
	// class's ClassAccess in global_classes, insert if first sight").
	GlobalClasses    map[string]*ClassAccess
	globalClassOrder []string // insertion order, for deterministic serialization

	// ReturnObjs accumulates the Access nodes that flow into any
	// return-object site.
	ReturnObjs []*Access

	// CurrentCallReturns transiently holds the most recent callee's
	// return set, consumed by the next move-result-object (spec 4.5
	// step 5).
	CurrentCallReturns []*Access
}

// NewMethodAccess allocates a MethodAccess with argCount empty argument
// roots already materialized (the driver binds each incoming object/array
// parameter register, in order, to the next Args entry; primitive
// parameters get no entry).
func NewMethodAccess(method MethodRef, argCount int) *MethodAccess {
	args := make([]*Access, argCount)
	for i := range args {
		args[i] = NewAccess()
	}
	return &MethodAccess{
		Method:        method,
		Args:          args,
		GlobalClasses: make(map[string]*ClassAccess),
	}
}

// GlobalClass returns the ClassAccess for descriptor, creating it (and
// recording insertion order) on first sight.
func (m *MethodAccess) GlobalClass(descriptor string, class ClassRef) *ClassAccess {
	if ca, ok := m.GlobalClasses[descriptor]; ok {
		return ca
	}
	ca := NewClassAccess(class)
	m.GlobalClasses[descriptor] = ca
	m.globalClassOrder = append(m.globalClassOrder, descriptor)
	return ca
}

// GlobalClassesInOrder returns the touched classes in first-sight order,
// which is what the deterministic-output property (testable property 4)
// requires for serialization.
func (m *MethodAccess) GlobalClassesInOrder() []*ClassAccess {
	out := make([]*ClassAccess, 0, len(m.globalClassOrder))
	for _, d := range m.globalClassOrder {
		out = append(out, m.GlobalClasses[d])
	}
	return out
}

// AddReturn unions a register's bindings into ReturnObjs, deduplicating by
// identity (spec 4.3, "return-object: union the returned register's
// bindings into method_access.return_objs").
func (m *MethodAccess) AddReturn(bindings map[*Access]struct{}) {
	seen := make(map[*Access]struct{}, len(m.ReturnObjs))
	for _, r := range m.ReturnObjs {
		seen[r] = struct{}{}
	}
	for b := range bindings {
		if _, dup := seen[b]; dup {
			continue
		}
		m.ReturnObjs = append(m.ReturnObjs, b)
		seen[b] = struct{}{}
	}
}

// Roots returns every root Access a traversal should start from: the
// arguments and the touched global classes. Field children and track
// members are reached transitively from these roots.
func (m *MethodAccess) Roots() []*Access {
	roots := make([]*Access, 0, len(m.Args)+len(m.GlobalClasses))
	roots = append(roots, m.Args...)
	for _, ca := range m.GlobalClassesInOrder() {
		roots = append(roots, &ca.Access)
	}
	return roots
}

// Clone returns an independent deep copy of m: every Access reachable
// from its Args, GlobalClasses, ReturnObjs and CurrentCallReturns is
// cloned with sharing and cycles preserved (object.CloneGraphSeeded), and
// the clone's own roots point at the cloned nodes. Global classes clone
// into genuinely typed *ClassAccess wrappers, not bare *Access, so the
// Class field survives and anything else aliasing &ca.Access (e.g. a
// return value that is itself the class's access node) repoints onto the
// same clone rather than a divergent copy.
//
// extraRoots lets a caller fold nodes that are not yet reachable from any
// of the above — a freshly allocated object sitting in a register that
// has not been stored into a field yet — into the same pass, so the
// returned address map covers every node the caller might need to remap
// (pathengine.State.Fork uses this for its register bindings).
func (m *MethodAccess) Clone(extraRoots []*Access) (*MethodAccess, map[*Access]*Access) {
	seeded := make(map[*Access]*Access, len(m.GlobalClasses))
	newGlobals := make(map[string]*ClassAccess, len(m.GlobalClasses))
	for desc, ca := range m.GlobalClasses {
		nca := NewClassAccess(ca.Class)
		seeded[&ca.Access] = &nca.Access
		newGlobals[desc] = nca
	}

	roots := make([]*Access, 0, len(m.Args)+len(m.GlobalClasses)+len(m.ReturnObjs)+len(m.CurrentCallReturns)+len(extraRoots))
	roots = append(roots, m.Args...)
	for _, desc := range m.globalClassOrder {
		roots = append(roots, &m.GlobalClasses[desc].Access)
	}
	roots = append(roots, m.ReturnObjs...)
	roots = append(roots, m.CurrentCallReturns...)
	roots = append(roots, extraRoots...)

	addr := CloneGraphSeeded(roots, seeded)

	clone := &MethodAccess{
		Method:           m.Method,
		Args:             make([]*Access, len(m.Args)),
		GlobalClasses:    newGlobals,
		globalClassOrder: append([]string{}, m.globalClassOrder...),
	}
	for i, a := range m.Args {
		clone.Args[i] = addr[a]
	}
	for _, r := range m.ReturnObjs {
		clone.ReturnObjs = append(clone.ReturnObjs, addr[r])
	}
	for _, r := range m.CurrentCallReturns {
		clone.CurrentCallReturns = append(clone.CurrentCallReturns, addr[r])
	}
	return clone, addr
}

// RestoreGlobalClass re-inserts a ClassAccess already materialized by a
// deserialization pass (persist.DecodeMethodAccess), preserving the
// first-sight order contract GlobalClass's normal insertion path
// maintains. Only a deserializer should call this directly; everything
// else goes through GlobalClass so a fresh, blank node is never
// confused with one carrying restored structure.
func (m *MethodAccess) RestoreGlobalClass(descriptor string, ca *ClassAccess) {
	if _, ok := m.GlobalClasses[descriptor]; ok {
		return
	}
	m.GlobalClasses[descriptor] = ca
	m.globalClassOrder = append(m.globalClassOrder, descriptor)
}
