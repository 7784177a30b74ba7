/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package persist

import (
	"encoding/binary"
	"io"
	"os"
)

// methodOffsetRecordSize is exactly 20 bytes: five little-endian uint32
// fields (spec 4.6, "Each record is exactly 20 bytes").
const methodOffsetRecordSize = 20

// MethodOffsetRecord is one poff.bin entry. ClassNameID is the strdict
// id of the declaring class's descriptor; MethodNameID is the strdict
// id of the method's name concatenated with its descriptor (disambiguating
// overloads, which a bare name id could not); MethodIndex is carried for
// display/debugging parity with the class's method table position.
type MethodOffsetRecord struct {
	ClassNameID  uint32
	MethodNameID uint32
	MethodIndex  uint32
	StartOffset  uint32
	Length       uint32
}

func (r MethodOffsetRecord) encode() [methodOffsetRecordSize]byte {
	var buf [methodOffsetRecordSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], r.ClassNameID)
	binary.LittleEndian.PutUint32(buf[4:8], r.MethodNameID)
	binary.LittleEndian.PutUint32(buf[8:12], r.MethodIndex)
	binary.LittleEndian.PutUint32(buf[12:16], r.StartOffset)
	binary.LittleEndian.PutUint32(buf[16:20], r.Length)
	return buf
}

func decodeMethodOffsetRecord(buf [methodOffsetRecordSize]byte) MethodOffsetRecord {
	return MethodOffsetRecord{
		ClassNameID:  binary.LittleEndian.Uint32(buf[0:4]),
		MethodNameID: binary.LittleEndian.Uint32(buf[4:8]),
		MethodIndex:  binary.LittleEndian.Uint32(buf[8:12]),
		StartOffset:  binary.LittleEndian.Uint32(buf[12:16]),
		Length:       binary.LittleEndian.Uint32(buf[16:20]),
	}
}

// poffKey identifies a method for memoization purposes. MethodIndex is
// deliberately excluded: MethodNameID already disambiguates overloads
// (it is interned from name+descriptor), and excluding it lets Lookup
// work from a FullName string alone, without needing the MethodObject
// poff.bin was originally written against.
type poffKey struct {
	classNameID, methodNameID uint32
}

// PoffIndex is the in-memory, append-backed view of poff.bin (spec 4.6,
// "gives O(1) lookup into the graph file").
type PoffIndex struct {
	path    string
	records []MethodOffsetRecord
	byKey   map[poffKey]int
}

// OpenPoffIndex loads an existing poff.bin, or returns an empty index.
func OpenPoffIndex(path string) (*PoffIndex, error) {
	idx := &PoffIndex{path: path, byKey: make(map[poffKey]int)}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return idx, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	for {
		var buf [methodOffsetRecordSize]byte
		if _, err := io.ReadFull(f, buf[:]); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		rec := decodeMethodOffsetRecord(buf)
		idx.byKey[poffKey{rec.ClassNameID, rec.MethodNameID}] = len(idx.records)
		idx.records = append(idx.records, rec)
	}
	return idx, nil
}

// Lookup returns the most recently appended record for the given
// (class, method) pair, if any.
func (idx *PoffIndex) Lookup(classNameID, methodNameID uint32) (MethodOffsetRecord, bool) {
	i, ok := idx.byKey[poffKey{classNameID, methodNameID}]
	if !ok {
		return MethodOffsetRecord{}, false
	}
	return idx.records[i], true
}

// Append writes rec to poff.bin and records it in the in-memory index.
func (idx *PoffIndex) Append(rec MethodOffsetRecord) error {
	f, err := os.OpenFile(idx.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := rec.encode()
	if _, err := f.Write(buf[:]); err != nil {
		return err
	}
	idx.byKey[poffKey{rec.ClassNameID, rec.MethodNameID}] = len(idx.records)
	idx.records = append(idx.records, rec)
	return nil
}
