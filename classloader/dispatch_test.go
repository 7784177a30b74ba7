/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// buildS4Hierarchy builds the scenario S4 fixture (spec testable
// properties, end-to-end scenario S4): abstract base class B with two
// subclasses C and D, both overriding run().
func buildS4Hierarchy(t *testing.T) (*Linker, *ClassObject, *ClassObject, *ClassObject) {
	provider := mapProvider{
		"Ljava/lang/Object;": objectRaw(),
		"LB;": {
			Descriptor:      "LB;",
			SuperDescriptor: "Ljava/lang/Object;",
			IsAbstract:      true,
			Methods:         []RawMethod{{Name: "run", Descriptor: "()V", IsAbstract: true}},
		},
		"LC;": {
			Descriptor:      "LC;",
			SuperDescriptor: "LB;",
			Methods:         []RawMethod{{Name: "run", Descriptor: "()V"}},
		},
		"LD;": {
			Descriptor:      "LD;",
			SuperDescriptor: "LB;",
			Methods:         []RawMethod{{Name: "run", Descriptor: "()V"}},
		},
	}
	l := NewLinker(provider)
	b, err := l.LinkClass("LB;")
	require.NoError(t, err)
	c, err := l.LinkClass("LC;")
	require.NoError(t, err)
	d, err := l.LinkClass("LD;")
	require.NoError(t, err)
	return l, b, c, d
}

func TestVtableOverrideSharesSlot(t *testing.T) {
	_, b, c, d := buildS4Hierarchy(t)
	bSlot := findVtableSlot(b.Vtable, "run", "()V")
	require.GreaterOrEqual(t, bSlot, 0)
	require.Equal(t, bSlot, findVtableSlot(c.Vtable, "run", "()V"))
	require.Equal(t, bSlot, findVtableSlot(d.Vtable, "run", "()V"))
}

func TestFindSubclassesIsInsertionOrdered(t *testing.T) {
	l, b, c, d := buildS4Hierarchy(t)
	subs := l.FindSubclasses(b)
	require.Equal(t, []*ClassObject{c, d}, subs)
}

func TestConcreteDispatchTargetsYieldsBothOverrides(t *testing.T) {
	l, b, c, d := buildS4Hierarchy(t)
	bSlot := findVtableSlot(b.Vtable, "run", "()V")
	targets := l.ConcreteDispatchTargets(b, bSlot)
	require.Len(t, targets, 2)
	require.Equal(t, c.Methods[0], targets[0])
	require.Equal(t, d.Methods[0], targets[1])
}

func TestMirandaMethodSynthesizedForUnimplementedInterfaceMethod(t *testing.T) {
	provider := mapProvider{
		"Ljava/lang/Object;": objectRaw(),
		"LRunnable;": {
			Descriptor:  "LRunnable;",
			IsInterface: true,
			Methods:     []RawMethod{{Name: "run", Descriptor: "()V", IsAbstract: true}},
		},
		"LAbsTask;": {
			Descriptor:       "LAbsTask;",
			SuperDescriptor:  "Ljava/lang/Object;",
			IfaceDescriptors: []string{"LRunnable;"},
			IsAbstract:       true,
		},
	}
	l := NewLinker(provider)
	absTask, err := l.LinkClass("LAbsTask;")
	require.NoError(t, err)

	require.Len(t, absTask.IfTable, 1)
	slot := absTask.IfTable[0].MethodIndexArray[0]
	require.True(t, absTask.Vtable[slot].Miranda)
	require.True(t, absTask.Vtable[slot].Raw.IsAbstract)
}
