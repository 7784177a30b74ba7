/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

// FindSubclasses enumerates every (transitive) subclass of class, in
// insertion order — the order classes were loaded, which is DEX-file
// order within a container and container order on the classpath (spec
// section 4.1's tie-break). Design note "Dynamic dispatch" calls for
// precomputed inverse-lookup maps instead of a subtype test against every
// loaded class; subclassIdx (populated by LinkClass) is exactly that map,
// so the subclasses are found by a walk over the k actual subclasses, and
// only when there is more than one are they put back into load order
// using each class's position in classOrder.
func (l *Linker) FindSubclasses(class *ClassObject) []*ClassObject {
	var out []*ClassObject
	var walk func(c *ClassObject)
	walk = func(c *ClassObject) {
		for _, sub := range l.subclassIdx[c.Raw.Descriptor] {
			out = append(out, sub)
			walk(sub)
		}
	}
	walk(class)
	if len(out) > 1 {
		pos := make(map[string]int, len(l.classOrder))
		for i, d := range l.classOrder {
			pos[d] = i
		}
		for i := 1; i < len(out); i++ {
			for j := i; j > 0 && pos[out[j].Raw.Descriptor] < pos[out[j-1].Raw.Descriptor]; j-- {
				out[j], out[j-1] = out[j-1], out[j]
			}
		}
	}
	return out
}

// FindImplementers enumerates every class that implements iface, directly
// or through a superclass/super-interface chain, in insertion order.
func (l *Linker) FindImplementers(iface *ClassObject) []*ClassObject {
	var out []*ClassObject
	seen := make(map[string]bool)
	add := func(c *ClassObject) {
		if seen[c.Raw.Descriptor] {
			return
		}
		seen[c.Raw.Descriptor] = true
		out = append(out, c)
	}

	for _, impl := range l.implementerIdx[iface.Raw.Descriptor] {
		add(impl)
		for _, sub := range l.FindSubclasses(impl) {
			add(sub)
		}
	}
	// An interface can extend another interface; classes implementing the
	// child interface also implement iface.
	for _, child := range l.subInterfaces(iface) {
		for _, impl := range l.implementerIdx[child.Raw.Descriptor] {
			add(impl)
			for _, sub := range l.FindSubclasses(impl) {
				add(sub)
			}
		}
	}
	return out
}

// subInterfaces returns every loaded interface that directly or
// transitively extends iface.
func (l *Linker) subInterfaces(iface *ClassObject) []*ClassObject {
	var out []*ClassObject
	found := map[string]bool{iface.Raw.Descriptor: true}
	for grew := true; grew; {
		grew = false
		for _, desc := range l.classOrder {
			c := l.classes[desc]
			if !c.Raw.IsInterface || found[desc] {
				continue
			}
			for _, parent := range c.Interfaces {
				if found[parent.Raw.Descriptor] {
					found[desc] = true
					out = append(out, c)
					grew = true
					break
				}
			}
		}
	}
	return out
}

// ConcreteDispatchTargets enumerates the non-abstract, non-interface
// subclasses that can answer a virtual call, in insertion order (spec
// section 4.5 step 3).
func (l *Linker) ConcreteDispatchTargets(receiverClass *ClassObject, vtIndex int) []*MethodObject {
	candidates := append([]*ClassObject{receiverClass}, l.FindSubclasses(receiverClass)...)
	var targets []*MethodObject
	seen := make(map[*MethodObject]bool)
	for _, c := range candidates {
		if c.Raw.IsAbstract || c.Raw.IsInterface {
			continue
		}
		if m, ok := VirtualTarget(c, vtIndex); ok && !m.Raw.IsAbstract {
			if !seen[m] {
				seen[m] = true
				targets = append(targets, m)
			}
		}
	}
	return targets
}

// InterfaceDispatchTargets enumerates the concrete implementers' resolved
// methods for an interface call (spec section 4.5 step 3, "interface").
func (l *Linker) InterfaceDispatchTargets(iface *ClassObject, methodIdx int) []*MethodObject {
	var targets []*MethodObject
	seen := make(map[*MethodObject]bool)
	for _, impl := range l.FindImplementers(iface) {
		if impl.Raw.IsAbstract || impl.Raw.IsInterface {
			continue
		}
		if m, ok := InterfaceTarget(impl, iface, methodIdx); ok && !m.Raw.IsAbstract {
			if !seen[m] {
				seen[m] = true
				targets = append(targets, m)
			}
		}
	}
	return targets
}
