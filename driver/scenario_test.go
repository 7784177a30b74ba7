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

// mapProvider and fakePool are declared in driver_test.go and shared by
// every test file in this package.

// TestNullCheckBranchThenChainedDereference exercises scenario S3: void
// m(Foo f){ if (f == null) return; int x = f.b.a; } — the null-check
// branch returns on one arm; the only live path reaching the chained
// dereference must end up with the same footprint as S2.
func TestNullCheckBranchThenChainedDereference(t *testing.T) {
	code := &classloader.CodeItem{
		RegistersSize: 3,
		InsSize:       1,
		ArgIsObject:   []bool{true},
		Instructions: []classloader.Instruction{
			// v2 (the last of the InsSize incoming registers) holds the Foo argument.
			{Op: opcodes.OpIfEqz, Offset: 0, Width: 1, Regs: []int{2}, BranchTarget: 2},
			{Op: opcodes.OpReturnVoid, Offset: 1, Width: 1},
			// v0 = v2.b (object); v1 = v0.a (primitive)
			{Op: opcodes.OpIGetObject, Offset: 2, Width: 1, Regs: []int{0, 2}, FieldRef: 0, IsObject: true},
			{Op: opcodes.OpIGet, Offset: 3, Width: 1, Regs: []int{1, 0}, FieldRef: 1, IsObject: false},
			{Op: opcodes.OpReturnVoid, Offset: 4, Width: 1},
		},
	}
	provider := mapProvider{
		"Ljava/lang/Object;": {Descriptor: "Ljava/lang/Object;"},
		"LFoo;": {
			Descriptor:      "LFoo;",
			SuperDescriptor: "Ljava/lang/Object;",
			Fields: []classloader.RawField{
				{Name: "a", Descriptor: "I"},
				{Name: "b", Descriptor: "LFoo;"},
			},
		},
		"LHost;": {
			Descriptor:      "LHost;",
			SuperDescriptor: "Ljava/lang/Object;",
			Methods: []classloader.RawMethod{
				{Name: "m", Descriptor: "(LFoo;)V", IsStatic: true, Code: code},
			},
		},
	}
	linker := classloader.NewLinker(provider)
	host, err := linker.LinkClass("LHost;")
	require.NoError(t, err)

	dex := classloader.NewDex()
	pool := fakePool{fields: map[int]classloader.FieldRefEntry{
		0: {Owner: "LFoo;", Name: "b"},
		1: {Owner: "LFoo;", Name: "a"},
	}}
	d := NewDriver(linker, dex, pool, nil, pathengine.DefaultOptions)

	ma, err := d.ParseMethod(host.Methods[0])
	require.NoError(t, err)
	require.Len(t, ma.Args, 1)

	child := ma.Args[0].FieldSet[1] // field "b" is word offset 1 (after "a" at 0)
	require.NotNil(t, child, "the non-null path's chained dereference must still reach the engine")
	_, grandchildSeen := child.FieldSet[0]
	require.True(t, grandchildSeen, "footprint must reach field 0 (\"a\") under field 1 (\"b\"), matching S2")
}

// TestVirtualDispatchTwoImplementations exercises scenario S4: a base
// class B with two subclasses C and D both overriding run(); C.run reads
// this.x, D.run reads this.y. Analyzing a caller that invokes b.run()
// virtually must merge both concrete targets' field touches onto the
// receiver.
func TestVirtualDispatchTwoImplementations(t *testing.T) {
	cRun := &classloader.CodeItem{
		RegistersSize: 1,
		InsSize:       1,
		ArgIsObject:   []bool{true},
		Instructions: []classloader.Instruction{
			{Op: opcodes.OpIGet, Offset: 0, Width: 1, Regs: []int{0, 0}, FieldRef: 0, IsObject: false},
			{Op: opcodes.OpReturnVoid, Offset: 1, Width: 1},
		},
	}
	dRun := &classloader.CodeItem{
		RegistersSize: 1,
		InsSize:       1,
		ArgIsObject:   []bool{true},
		Instructions: []classloader.Instruction{
			{Op: opcodes.OpIGet, Offset: 0, Width: 1, Regs: []int{0, 0}, FieldRef: 1, IsObject: false},
			{Op: opcodes.OpReturnVoid, Offset: 1, Width: 1},
		},
	}
	callerCode := &classloader.CodeItem{
		RegistersSize: 1,
		InsSize:       1,
		ArgIsObject:   []bool{true},
		Instructions: []classloader.Instruction{
			{Op: opcodes.OpInvokeVirtual, Offset: 0, Width: 1, Regs: []int{0}, MethodRef: 0, InvokeKind: classloader.DispatchVirtual},
			{Op: opcodes.OpReturnVoid, Offset: 1, Width: 1},
		},
	}

	provider := mapProvider{
		"Ljava/lang/Object;": {Descriptor: "Ljava/lang/Object;"},
		"LB;": {
			Descriptor:      "LB;",
			SuperDescriptor: "Ljava/lang/Object;",
			IsAbstract:      true,
			Methods: []classloader.RawMethod{
				{Name: "run", Descriptor: "()V", IsAbstract: true},
			},
		},
		"LC;": {
			Descriptor:      "LC;",
			SuperDescriptor: "LB;",
			Fields:          []classloader.RawField{{Name: "x", Descriptor: "I"}},
			Methods: []classloader.RawMethod{
				{Name: "run", Descriptor: "()V", Code: cRun},
			},
		},
		"LD;": {
			Descriptor:      "LD;",
			SuperDescriptor: "LB;",
			Fields:          []classloader.RawField{{Name: "y", Descriptor: "I"}},
			Methods: []classloader.RawMethod{
				{Name: "run", Descriptor: "()V", Code: dRun},
			},
		},
		"LHost;": {
			Descriptor:      "LHost;",
			SuperDescriptor: "Ljava/lang/Object;",
			Methods: []classloader.RawMethod{
				{Name: "m", Descriptor: "(LB;)V", IsStatic: true, Code: callerCode},
			},
		},
	}
	linker := classloader.NewLinker(provider)
	// Every class on the classpath is linked up front, exactly as the
	// whole-program entry-point walk would do; subclassIdx only sees a
	// class once it has been linked.
	_, err := linker.LinkClass("LB;")
	require.NoError(t, err)
	_, err = linker.LinkClass("LC;")
	require.NoError(t, err)
	_, err = linker.LinkClass("LD;")
	require.NoError(t, err)
	host, err := linker.LinkClass("LHost;")
	require.NoError(t, err)

	dex := classloader.NewDex()
	pool := fakePool{
		fields: map[int]classloader.FieldRefEntry{
			0: {Owner: "LC;", Name: "x"},
			1: {Owner: "LD;", Name: "y"},
		},
		methods: map[int]classloader.MethodRefEntry{
			0: {Owner: "LB;", Name: "run", Descriptor: "()V"},
		},
	}
	d := NewDriver(linker, dex, pool, nil, pathengine.DefaultOptions)

	ma, err := d.ParseMethod(host.Methods[0])
	require.NoError(t, err)
	require.Len(t, ma.Args, 1)

	receiver := ma.Args[0]
	require.NotNil(t, receiver.FieldSet[0], "both concrete targets' sole instance field shares word offset 0")
	require.Len(t, receiver.TrackSet[0], 2, "one distinct child node per concrete dispatch target (C.run's x, D.run's y)")
}

// TestStaticFieldFootprint exercises scenario S6: int m(){ return C.X +
// C.Y; } — two primitive static reads, no argument footprints, one
// global_classes entry for C with both static indices set.
func TestStaticFieldFootprint(t *testing.T) {
	code := &classloader.CodeItem{
		RegistersSize: 2,
		InsSize:       0,
		Instructions: []classloader.Instruction{
			{Op: opcodes.OpSGet, Offset: 0, Width: 1, Regs: []int{0}, FieldRef: 0, IsObject: false},
			{Op: opcodes.OpSGet, Offset: 1, Width: 1, Regs: []int{1}, FieldRef: 1, IsObject: false},
			{Op: opcodes.OpReturn, Offset: 2, Width: 1},
		},
	}
	provider := mapProvider{
		"Ljava/lang/Object;": {Descriptor: "Ljava/lang/Object;"},
		"LC;": {
			Descriptor:      "LC;",
			SuperDescriptor: "Ljava/lang/Object;",
			Fields: []classloader.RawField{
				{Name: "X", Descriptor: "I", IsStatic: true},
				{Name: "Y", Descriptor: "I", IsStatic: true},
			},
		},
		"LHost;": {
			Descriptor:      "LHost;",
			SuperDescriptor: "Ljava/lang/Object;",
			Methods: []classloader.RawMethod{
				{Name: "m", Descriptor: "()I", IsStatic: true, Code: code},
			},
		},
	}
	linker := classloader.NewLinker(provider)
	host, err := linker.LinkClass("LHost;")
	require.NoError(t, err)

	dex := classloader.NewDex()
	pool := fakePool{fields: map[int]classloader.FieldRefEntry{
		0: {Owner: "LC;", Name: "X"},
		1: {Owner: "LC;", Name: "Y"},
	}}
	d := NewDriver(linker, dex, pool, nil, pathengine.DefaultOptions)

	ma, err := d.ParseMethod(host.Methods[0])
	require.NoError(t, err)
	require.Empty(t, ma.Args, "no object/array parameters at all")
	require.Len(t, ma.GlobalClasses, 1)

	ca := ma.GlobalClasses["LC;"]
	require.NotNil(t, ca)
	_, hasX := ca.FieldSet[0]
	_, hasY := ca.FieldSet[1]
	require.True(t, hasX)
	require.True(t, hasY)
}
