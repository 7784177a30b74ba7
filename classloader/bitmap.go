/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import "github.com/RoaringBitmap/roaring"

// RefBitmap is a compact, sparse set of word offsets, used for the
// reference-field bitmap computed at link time (spec section 4.1) and
// reused by the global reachability engine for per-class static-field
// touch sets (spec section 4.7).
type RefBitmap struct {
	bits *roaring.Bitmap
}

func NewRefBitmap() *RefBitmap {
	return &RefBitmap{bits: roaring.New()}
}

func (b *RefBitmap) Set(offset int)      { b.bits.Add(uint32(offset)) }
func (b *RefBitmap) Has(offset int) bool { return b.bits.Contains(uint32(offset)) }

// ToSlice returns the set offsets in ascending order, the form the
// reachability pass's debug-text mirrors serialize.
func (b *RefBitmap) ToSlice() []int {
	arr := b.bits.ToArray()
	out := make([]int, len(arr))
	for i, v := range arr {
		out[i] = int(v)
	}
	return out
}

func (b *RefBitmap) Clone() *RefBitmap {
	return &RefBitmap{bits: b.bits.Clone()}
}
