/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import (
	"fmt"

	"github.com/dex-offload/footprint/internal/errs"
	"github.com/dex-offload/footprint/internal/trace"
	"github.com/apex/log"
)

// ClassProvider hands back the symbolic, pre-link view of a class by
// descriptor. Its implementation — reading a DEX/ZIP/JAR/APK container —
// is out of scope for this analyzer (spec section 1).
type ClassProvider interface {
	LoadRaw(descriptor string) (RawClass, bool)
}

// Dex is the per-container resolution cache spec section 4.1 describes:
// resolve_method/resolve_instance_field/resolve_static_field/resolve_class
// each idempotently cache their result here, and failures are sticky —
// a referrer that once failed to resolve symbol X never re-attempts it.
type Dex struct {
	methodCache map[cpKey]*MethodObject
	methodFail  map[cpKey]bool
	fieldCache  map[cpKey]*FieldLayout
	fieldFail   map[cpKey]bool
	classCache  map[string]*ClassObject
	classFail   map[string]bool
}

type cpKey struct {
	referrer string
	idx      int
}

// NewDex returns an empty per-container resolution cache.
func NewDex() *Dex {
	return &Dex{
		methodCache: make(map[cpKey]*MethodObject),
		methodFail:  make(map[cpKey]bool),
		fieldCache:  make(map[cpKey]*FieldLayout),
		fieldFail:   make(map[cpKey]bool),
		classCache:  make(map[string]*ClassObject),
		classFail:   make(map[string]bool),
	}
}

// Linker owns the method area (all loaded classes) and performs linking.
// Per the design note on global mutable state, a Linker is constructed
// explicitly by the caller (typically once per AnalyzerContext) rather
// than living behind a package-level variable.
type Linker struct {
	provider ClassProvider
	overrides *Overrides

	classes map[string]*ClassObject
	// classOrder is DEX-file-order-within-container, container-order-on-
	// classpath (spec section 4.1's enumeration tie-break); it is the
	// insertion order of LinkClass calls.
	classOrder []string

	subclassIdx    map[string][]*ClassObject // super descriptor -> direct subclasses, insertion order
	implementerIdx map[string][]*ClassObject // interface descriptor -> direct implementers, insertion order
}

// NewLinker constructs a Linker over provider with no overrides.
func NewLinker(provider ClassProvider) *Linker {
	return &Linker{
		provider:       provider,
		overrides:      NewOverrides(),
		classes:        make(map[string]*ClassObject),
		subclassIdx:    make(map[string][]*ClassObject),
		implementerIdx: make(map[string][]*ClassObject),
	}
}

// SetOverrides installs the supplemental CustomizedClass override list.
func (l *Linker) SetOverrides(o *Overrides) { l.overrides = o }

// LinkClass performs the minimal linking pass of spec section 4.1:
// allocate the class record, load fields/methods, resolve superclass and
// interfaces, build vtable/iftable (with miranda methods), compute
// instance layout, and record the reference-field bitmap. Returns the
// cached ClassObject on a repeat call for the same descriptor.
func (l *Linker) LinkClass(descriptor string) (*ClassObject, error) {
	if c, ok := l.classes[descriptor]; ok {
		return c, nil
	}

	raw, ok := l.provider.LoadRaw(descriptor)
	if !ok {
		return nil, errs.ErrClassNotFound
	}

	class := &ClassObject{Raw: raw}
	// Register before resolving super/interfaces: a class hierarchy with
	// a (illegal but possible in malformed input) self-reference must not
	// infinite-loop the linker.
	l.classes[descriptor] = class
	l.classOrder = append(l.classOrder, descriptor)

	if raw.SuperDescriptor != "" {
		super, err := l.LinkClass(raw.SuperDescriptor)
		if err != nil {
			trace.Warning("superclass resolution failed", log.Fields{
				"class": descriptor, "super": raw.SuperDescriptor,
			})
			return nil, err
		}
		class.Super = super
		l.subclassIdx[raw.SuperDescriptor] = append(l.subclassIdx[raw.SuperDescriptor], class)
	}

	for _, ifaceDesc := range raw.IfaceDescriptors {
		iface, err := l.LinkClass(ifaceDesc)
		if err != nil {
			trace.Warning("interface resolution failed", log.Fields{
				"class": descriptor, "iface": ifaceDesc,
			})
			return nil, err
		}
		class.Interfaces = append(class.Interfaces, iface)
		l.implementerIdx[ifaceDesc] = append(l.implementerIdx[ifaceDesc], class)
	}

	l.layoutFields(class)
	l.buildMethods(class)
	l.buildDispatchTables(class)

	class.linked = true
	return class, nil
}

// layoutFields computes instance/static field word offsets with 8-byte
// (2-word) alignment for wide (J/D) fields, and populates the
// reference-field bitmap (spec section 4.1).
func (l *Linker) layoutFields(class *ClassObject) {
	var instanceOffset, staticOffset int
	if class.Super != nil {
		instanceOffset = superInstanceSize(class.Super)
	}

	class.RefFieldBitmap = NewRefBitmap()

	assign := func(f RawField, offset *int) FieldLayout {
		wide := f.Descriptor == "J" || f.Descriptor == "D"
		if wide && *offset%2 != 0 {
			*offset++ // 8-byte alignment: round up to an even word offset
		}
		fl := FieldLayout{RawField: f, WordOffset: *offset, IsWide: wide}
		if isReferenceDescriptor(f.Descriptor) {
			class.RefFieldBitmap.Set(*offset)
		}
		if wide {
			*offset += 2
		} else {
			*offset++
		}
		return fl
	}

	for _, f := range class.Raw.Fields {
		if f.IsStatic {
			class.StaticFields = append(class.StaticFields, assign(f, &staticOffset))
		} else {
			class.InstanceFields = append(class.InstanceFields, assign(f, &instanceOffset))
		}
	}
}

func superInstanceSize(c *ClassObject) int {
	size := 0
	for _, f := range c.InstanceFields {
		end := f.WordOffset + 1
		if f.IsWide {
			end = f.WordOffset + 2
		}
		if end > size {
			size = end
		}
	}
	return size
}

func isReferenceDescriptor(d string) bool {
	if d == "" {
		return false
	}
	return d[0] == 'L' || d[0] == '['
}

func (l *Linker) buildMethods(class *ClassObject) {
	for i := range class.Raw.Methods {
		m := &MethodObject{
			Raw:     class.Raw.Methods[i],
			Class:   class,
			Index:   i,
			VtIndex: -1,
		}
		class.Methods = append(class.Methods, m)
	}
}

// resolveMethod, resolveInstanceField, resolveStaticField, resolveClass
// each idempotently cache their result on dex and treat a prior failure
// as sticky (spec section 4.1).

func (l *Linker) ResolveClass(dex *Dex, descriptor string) (*ClassObject, error) {
	if dex.classFail[descriptor] {
		return nil, errs.ErrClassNotFound
	}
	if c, ok := dex.classCache[descriptor]; ok {
		return c, nil
	}
	c, err := l.LinkClass(descriptor)
	if err != nil {
		dex.classFail[descriptor] = true
		return nil, err
	}
	dex.classCache[descriptor] = c
	return c, nil
}

func (l *Linker) ResolveMethod(dex *Dex, referrer string, idx int, owner string, name, desc string) (*MethodObject, error) {
	key := cpKey{referrer, idx}
	if dex.methodFail[key] {
		return nil, errs.ErrMethodNotFound
	}
	if m, ok := dex.methodCache[key]; ok {
		return m, nil
	}

	owningClass, err := l.ResolveClass(dex, owner)
	if err != nil {
		dex.methodFail[key] = true
		return nil, err
	}
	for _, m := range owningClass.Methods {
		if m.Raw.Name == name && m.Raw.Descriptor == desc {
			dex.methodCache[key] = m
			return m, nil
		}
	}
	dex.methodFail[key] = true
	return nil, errs.ErrMethodNotFound
}

func (l *Linker) ResolveInstanceField(dex *Dex, referrer string, idx int, owner, name string) (*FieldLayout, error) {
	return l.resolveField(dex, referrer, idx, owner, name, false)
}

func (l *Linker) ResolveStaticField(dex *Dex, referrer string, idx int, owner, name string) (*FieldLayout, error) {
	return l.resolveField(dex, referrer, idx, owner, name, true)
}

func (l *Linker) resolveField(dex *Dex, referrer string, idx int, owner, name string, static bool) (*FieldLayout, error) {
	key := cpKey{referrer, idx}
	if dex.fieldFail[key] {
		return nil, errs.ErrFieldNotFound
	}
	if f, ok := dex.fieldCache[key]; ok {
		return f, nil
	}

	owningClass, err := l.ResolveClass(dex, owner)
	if err != nil {
		dex.fieldFail[key] = true
		return nil, err
	}
	fields := owningClass.InstanceFields
	if static {
		fields = owningClass.StaticFields
	}
	for i := range fields {
		if fields[i].Name == name {
			dex.fieldCache[key] = &fields[i]
			return &fields[i], nil
		}
	}
	dex.fieldFail[key] = true
	return nil, errs.ErrFieldNotFound
}

// ClassByDescriptor is a lookup into the method area without triggering a
// link; used by callers that already know the class must be loaded
// (e.g. the global reachability engine inspecting a resolved sget).
func (l *Linker) ClassByDescriptor(descriptor string) (*ClassObject, bool) {
	c, ok := l.classes[descriptor]
	return c, ok
}

func (l *Linker) String() string {
	return fmt.Sprintf("Linker{%d classes loaded}", len(l.classOrder))
}
