/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

// exemptClasses and exemptInterfaces are the hard-coded JDK/Android types
// a call-site targeting them refuses to descend into (spec section 4.1).
// Open Question 2 in the design notes leaves whether this list is part of
// the specification or configuration to the implementer; this
// implementation treats the hard-coded list as the specification default
// and layers Overrides (the supplemental CustomizedClass feature) on top
// of it as the configuration knob.
var exemptClasses = map[string]bool{
	"Ljava/lang/Object;":            true,
	"Ljava/lang/String;":            true,
	"Ljava/lang/CharSequence;":      true,
	"Ljava/io/InputStream;":         true,
	"Ljava/io/OutputStream;":        true,
	"Ljava/io/Reader;":              true,
	"Ljava/io/Writer;":              true,
	"Ljava/util/ArrayList;":         true,
	"Ljava/util/HashMap;":           true,
	"Ljava/util/HashSet;":           true,
	"Ljava/util/LinkedList;":        true,
	"Landroid/os/Parcelable;":       true,
	"Landroid/os/Parcel;":           true,
}

var exemptInterfaces = map[string]bool{
	"Ljava/util/Collection;": true,
	"Ljava/util/List;":       true,
	"Ljava/util/Map;":        true,
	"Ljava/util/Set;":        true,
	"Ljava/lang/CharSequence;": true,
	"Landroid/os/Parcelable;":  true,
}

// Overrides is the supplemental CustomizedClass allow/deny list (see
// SPEC_FULL.md, "Supplemental feature: CustomizedClass override list"),
// grounded on original_source/apkanalysis/CustomizedClass.cpp. ForceInclude
// strips a class of exempt status even if it matches the hard-coded list
// or extends an exempt ancestor; ForceExempt adds exempt status to a class
// that would not otherwise have it.
type Overrides struct {
	ForceInclude map[string]bool
	ForceExempt  map[string]bool
}

// NewOverrides returns an empty override set (no overrides applied).
func NewOverrides() *Overrides {
	return &Overrides{
		ForceInclude: make(map[string]bool),
		ForceExempt:  make(map[string]bool),
	}
}

// IsExempt reports whether class should be treated as exempt: a call
// site targeting it as a receiver refuses to descend and widens instead
// (spec section 4.1 and 4.5 step 2). Membership includes the hard-coded
// list, any class that extends/implements an already-exempt class, and
// the Overrides layered on top.
func (l *Linker) IsExempt(class *ClassObject) bool {
	desc := class.Raw.Descriptor
	if l.overrides.ForceInclude[desc] {
		return false
	}
	if l.overrides.ForceExempt[desc] {
		return true
	}
	if exemptClasses[desc] {
		return true
	}
	if class.Raw.IsInterface && exemptInterfaces[desc] {
		return true
	}
	for _, iface := range class.Interfaces {
		if exemptInterfaces[iface.Raw.Descriptor] {
			return true
		}
	}
	for c := class.Super; c != nil; c = c.Super {
		if c.Raw.Descriptor == "Ljava/lang/Object;" {
			break // every class extends Object; that alone does not make a class exempt
		}
		if l.overrides.ForceExempt[c.Raw.Descriptor] {
			return true
		}
		if !l.overrides.ForceInclude[c.Raw.Descriptor] && exemptClasses[c.Raw.Descriptor] {
			return true
		}
	}
	return false
}
