/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package classloader implements component A of the analyzer (spec
// section 4.1): parsing already-unpacked DEX class records into linked
// ClassObjects, resolving method/field/class references, and building the
// virtual-dispatch and interface tables the inter-procedural driver walks.
//
// Unpacking the DEX/ZIP/JAR/APK container itself is out of scope (spec
// section 1); this package starts from a RawClass already decoded from
// the container by an external loader and performs the linking pass.
package classloader

import "fmt"

// RawClass is the pre-link view of a class record as an external DEX
// container reader would hand it over: symbolic (string/index) references
// only, nothing resolved yet.
type RawClass struct {
	Descriptor       string // e.g. "Lcom/app/Foo;"
	SuperDescriptor  string // "" for java.lang.Object
	IfaceDescriptors []string
	Fields           []RawField
	Methods          []RawMethod
	IsInterface      bool
	IsAbstract       bool
}

// RawField is a field as stored in the DEX file, before layout.
type RawField struct {
	Name       string
	Descriptor string // "I", "Ljava/lang/String;", "[B", ...
	IsStatic   bool
}

// RawMethod is a method as stored in the DEX file, before linking.
type RawMethod struct {
	Name        string
	Descriptor  string // "(ILjava/lang/String;)V"
	IsStatic    bool
	IsNative    bool
	IsAbstract  bool
	IsPrivate   bool // direct dispatch
	IsConstruc  bool // <init>, also direct dispatch
	Code        *CodeItem
	MethodIndex int // position this method occupies in its declaring class's vtable, if virtual
}

// FieldLayout is a field after instance-field layout has been computed:
// its word offset and whether it is a wide (long/double) field.
type FieldLayout struct {
	RawField
	WordOffset int // stable; ordering may be by word or byte, chosen here as word
	IsWide     bool
}

// ClassObject is a fully linked class (spec section 4.1): superclass and
// interfaces resolved to pointers (replacing the symbolic indices
// RawClass stored), instance layout computed, vtable and iftable built.
type ClassObject struct {
	Raw RawClass

	Super      *ClassObject // nil for java.lang.Object
	Interfaces []*ClassObject

	InstanceFields []FieldLayout
	StaticFields   []FieldLayout
	Methods        []*MethodObject

	Vtable  []*MethodObject
	IfTable []IfTableEntry

	// RefFieldBitmap marks which instance-field word offsets hold an
	// object reference (spec section 4.1, "records reference-field
	// bitmap"). Backed by a roaring bitmap (see bitmap.go) instead of a
	// []bool: instance layouts are sparse relative to the 64-bit range a
	// wide field's alignment can push offsets into, and the analyzer
	// only ever asks "is offset k a reference" or "enumerate set bits",
	// both of which roaring serves directly.
	RefFieldBitmap *RefBitmap

	linked bool
}

func (c *ClassObject) Descriptor() string { return c.Raw.Descriptor }

// MethodObject is a fully linked method.
type MethodObject struct {
	Raw     RawMethod
	Class   *ClassObject
	Index   int // position in Class.Methods
	VtIndex int // position in Class.Vtable, -1 if never placed (static/direct)
	Miranda bool
}

func (m *MethodObject) FullName() string {
	return fmt.Sprintf("%s.%s%s", m.Class.Raw.Descriptor, m.Raw.Name, m.Raw.Descriptor)
}

func (m *MethodObject) IsNative() bool   { return m.Raw.IsNative }
func (m *MethodObject) IsAbstract() bool { return m.Raw.IsAbstract }

// IfTableEntry maps one implemented interface to the method-index array
// translating interface method positions into vtable positions (the
// "iftable" of the glossary).
type IfTableEntry struct {
	Iface            *ClassObject
	MethodIndexArray []int // len == len(Iface.Methods); value is index into owning class's Vtable
}

// CodeItem is the decoded instruction stream for one non-abstract,
// non-native method (component C operates on this).
type CodeItem struct {
	RegistersSize int
	InsSize       int // number of registers occupied by incoming arguments
	OutsSize      int
	Instructions  []Instruction
	Tries         []TryBlock

	// ArgIsObject has InsSize entries, one per incoming-argument register
	// in order (register RegistersSize-InsSize+i for entry i); true marks
	// an object/array parameter (including the receiver, for an instance
	// method). Decoding a method descriptor into this shape is the
	// out-of-scope container reader's job (spec section 1) — the driver
	// only needs the result, to know which incoming registers get an
	// ObjectAccess root at method entry and which never do (spec section
	// 3: "args — one ObjectAccess per incoming object/array parameter").
	ArgIsObject []bool
}

// TryBlock is one try region with its ordered catch handlers (spec
// section 4.4, "exception fan-out").
type TryBlock struct {
	StartOffset, EndOffset int // [start, end)
	Handlers               []CatchHandler
}

// CatchHandler is one catch entry; TypeDescriptor == "" denotes a
// catch-all.
type CatchHandler struct {
	TypeDescriptor string
	HandlerOffset  int
}
