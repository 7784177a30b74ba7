/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package object

// ClassRef is the minimal view of a loaded class the object model needs.
// classloader.ClassObject satisfies this; kept as an interface here so
// object never imports classloader (it would be the only consumer-side
// dependency of an otherwise leaf package).
type ClassRef interface {
	Descriptor() string
}

// ClassAccess is an Access node that additionally remembers which
// ClassObject its static footprint belongs to (spec section 3,
// "ClassAccess ⊂ ObjectAccess").
type ClassAccess struct {
	Access
	Class ClassRef
}

// NewClassAccess constructs a ClassAccess for class, with the same
// invariants as NewAccess.
func NewClassAccess(class ClassRef) *ClassAccess {
	return &ClassAccess{
		Access: *NewAccess(),
		Class:  class,
	}
}
