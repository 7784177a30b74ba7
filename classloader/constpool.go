/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

// FieldRefEntry is the symbolic owner/name a field constant-pool index
// names, prior to resolution.
type FieldRefEntry struct {
	Owner string
	Name  string
}

// MethodRefEntry is the symbolic owner/name/descriptor a method
// constant-pool index names, prior to resolution.
type MethodRefEntry struct {
	Owner      string
	Name       string
	Descriptor string
}

// ConstPool looks up the symbolic reference an Instruction's FieldRef or
// MethodRef index names. Decoding the raw DEX constant pool into this form
// is the external container reader's job (spec section 1, out of scope);
// the interpreter only ever sees the already-decoded owner/name/descriptor
// triple, which is what resolve_method/resolve_instance_field/
// resolve_static_field need to look the member up on the owning class.
type ConstPool interface {
	FieldRef(idx int) FieldRefEntry
	MethodRef(idx int) MethodRefEntry
}
