/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package driver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dex-offload/footprint/classloader"
	"github.com/dex-offload/footprint/opcodes"
	"github.com/dex-offload/footprint/pathengine"
)

type mapProvider map[string]classloader.RawClass

func (p mapProvider) LoadRaw(descriptor string) (classloader.RawClass, bool) {
	c, ok := p[descriptor]
	return c, ok
}

type fakePool struct {
	fields  map[int]classloader.FieldRefEntry
	methods map[int]classloader.MethodRefEntry
}

func (p fakePool) FieldRef(idx int) classloader.FieldRefEntry   { return p.fields[idx] }
func (p fakePool) MethodRef(idx int) classloader.MethodRefEntry { return p.methods[idx] }

// TestParseMethodMergesCalleeFieldAccess exercises the cross-method half of
// scenario S1/S2: a static helper dereferences field "a" of its own
// argument; the caller passes its own argument straight through via
// invoke-static, and merge_method_args must graft that field access back
// onto the caller's argument root.
func TestParseMethodMergesCalleeFieldAccess(t *testing.T) {
	calleeCode := &classloader.CodeItem{
		RegistersSize: 1,
		InsSize:       1,
		ArgIsObject:   []bool{true},
		Instructions: []classloader.Instruction{
			{Op: opcodes.OpIGet, Offset: 0, Width: 1, Regs: []int{0, 0}, FieldRef: 0, IsObject: false},
			{Op: opcodes.OpReturnVoid, Offset: 1, Width: 1},
		},
	}
	callerCode := &classloader.CodeItem{
		RegistersSize: 1,
		InsSize:       1,
		ArgIsObject:   []bool{true},
		Instructions: []classloader.Instruction{
			{Op: opcodes.OpInvokeStatic, Offset: 0, Width: 1, Regs: []int{0}, MethodRef: 0, InvokeKind: classloader.DispatchStatic},
			{Op: opcodes.OpReturnVoid, Offset: 1, Width: 1},
		},
	}

	provider := mapProvider{
		"Ljava/lang/Object;": {Descriptor: "Ljava/lang/Object;"},
		"LFoo;": {
			Descriptor:      "LFoo;",
			SuperDescriptor: "Ljava/lang/Object;",
			Fields:          []classloader.RawField{{Name: "a", Descriptor: "I"}},
		},
		"LHost;": {
			Descriptor:      "LHost;",
			SuperDescriptor: "Ljava/lang/Object;",
			Methods: []classloader.RawMethod{
				{Name: "readA", Descriptor: "(LFoo;)I", IsStatic: true, Code: calleeCode},
				{Name: "call", Descriptor: "(LFoo;)V", IsStatic: true, Code: callerCode},
			},
		},
	}
	linker := classloader.NewLinker(provider)
	host, err := linker.LinkClass("LHost;")
	require.NoError(t, err)

	dex := classloader.NewDex()
	pool := fakePool{
		fields:  map[int]classloader.FieldRefEntry{0: {Owner: "LFoo;", Name: "a"}},
		methods: map[int]classloader.MethodRefEntry{0: {Owner: "LHost;", Name: "readA", Descriptor: "(LFoo;)I"}},
	}
	d := NewDriver(linker, dex, pool, nil, pathengine.DefaultOptions)

	var callMethod *classloader.MethodObject
	for _, m := range host.Methods {
		if m.Raw.Name == "call" {
			callMethod = m
		}
	}
	require.NotNil(t, callMethod)

	ma, err := d.ParseMethod(callMethod)
	require.NoError(t, err)
	require.Len(t, ma.Args, 1)
	_, touched := ma.Args[0].FieldSet[0]
	require.True(t, touched, "field 0 read inside the callee must be visible on the caller's argument root")
}

// TestParseMethodWidensOnDirectRecursion exercises scenario S5: a method
// that calls itself widens the object argument at the recursive call site
// and leaves the primitive argument untouched.
func TestParseMethodWidensOnDirectRecursion(t *testing.T) {
	factCode := &classloader.CodeItem{
		RegistersSize: 2,
		InsSize:       2,
		ArgIsObject:   []bool{false, true}, // v0 = n (int), v1 = acc (object)
		Instructions: []classloader.Instruction{
			{Op: opcodes.OpInvokeStatic, Offset: 0, Width: 1, Regs: []int{0, 1}, MethodRef: 0, InvokeKind: classloader.DispatchStatic},
			{Op: opcodes.OpReturnVoid, Offset: 1, Width: 1},
		},
	}
	provider := mapProvider{
		"Ljava/lang/Object;": {Descriptor: "Ljava/lang/Object;"},
		"LHost;": {
			Descriptor:      "LHost;",
			SuperDescriptor: "Ljava/lang/Object;",
			Methods: []classloader.RawMethod{
				{Name: "fact", Descriptor: "(ILAcc;)I", IsStatic: true, Code: factCode},
			},
		},
	}
	linker := classloader.NewLinker(provider)
	host, err := linker.LinkClass("LHost;")
	require.NoError(t, err)

	dex := classloader.NewDex()
	pool := fakePool{
		methods: map[int]classloader.MethodRefEntry{0: {Owner: "LHost;", Name: "fact", Descriptor: "(ILAcc;)I"}},
	}
	d := NewDriver(linker, dex, pool, nil, pathengine.DefaultOptions)

	factMethod := host.Methods[0]
	ma, err := d.ParseMethod(factMethod)
	require.NoError(t, err)
	require.Len(t, ma.Args, 1, "only the object parameter gets an ObjectAccess root")
	require.True(t, ma.Args[0].AllFlag, "recursion guard must widen the accumulator")
}
