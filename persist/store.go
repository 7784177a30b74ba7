/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package persist

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dex-offload/footprint/classloader"
	"github.com/dex-offload/footprint/object"
)

// Store ties strdict.bin, poff.bin, and presult.bin together and
// implements driver.MemoStore (duck-typed: persist never imports driver,
// matching the design note on keeping the interior packages free of
// import cycles). A nil *Store is never constructed; a run that wants no
// persistence passes a nil driver.MemoStore instead.
type Store struct {
	dir      string
	strdict  *StrDict
	poff     *PoffIndex
	graphPath string
	textPath  string
}

// Open opens (or creates) the three artifacts under dir: strdict.bin,
// poff.bin, and presult.bin, plus the presult.txt debug mirror.
func Open(dir string) (*Store, error) {
	strdict, err := OpenStrDict(filepath.Join(dir, "strdict.bin"))
	if err != nil {
		return nil, err
	}
	poff, err := OpenPoffIndex(filepath.Join(dir, "poff.bin"))
	if err != nil {
		return nil, err
	}
	return &Store{
		dir:       dir,
		strdict:   strdict,
		poff:      poff,
		graphPath: filepath.Join(dir, "presult.bin"),
		textPath:  filepath.Join(dir, "presult.txt"),
	}, nil
}

// Lookup implements driver.MemoStore. key is a MethodObject.FullName():
// "<classDescriptor>.<name><descriptor>". Splitting at the ";." boundary
// every DEX class descriptor carries recovers the two strdict lookups
// without needing the MethodObject itself.
func (s *Store) Lookup(key string) (*object.MethodAccess, bool) {
	classDescriptor, nameDesc, ok := splitFullName(key)
	if !ok {
		return nil, false
	}
	classID, ok := s.strdict.ID(classDescriptor)
	if !ok {
		return nil, false
	}
	nameDescID, ok := s.strdict.ID(nameDesc)
	if !ok {
		return nil, false
	}
	rec, ok := s.poff.Lookup(uint32(classID), uint32(nameDescID))
	if !ok {
		return nil, false
	}

	payload := make([]byte, rec.Length)
	f, err := os.Open(s.graphPath)
	if err != nil {
		return nil, false
	}
	defer f.Close()
	if _, err := f.Seek(int64(rec.StartOffset), io.SeekStart); err != nil {
		return nil, false
	}
	if _, err := io.ReadFull(f, payload); err != nil {
		return nil, false
	}

	ma, err := DecodeMethodAccess(payload, key, s.strdict)
	if err != nil {
		return nil, false
	}
	return ma, true
}

// Persist implements driver.MemoStore: encode ma, append it to
// presult.bin, record its (offset, length) in poff.bin, flush any newly
// interned strings, and append a human-readable mirror to presult.txt.
func (s *Store) Persist(key string, m *classloader.MethodObject, ma *object.MethodAccess) error {
	classID := uint32(s.strdict.Intern(m.Class.Descriptor()))
	nameDescID := uint32(s.strdict.Intern(m.Raw.Name + m.Raw.Descriptor))

	payload := EncodeMethodAccess(ma, classID, nameDescID, uint32(m.Index), s.strdict)

	startOffset, err := s.appendGraph(payload)
	if err != nil {
		return err
	}

	if err := s.poff.Append(MethodOffsetRecord{
		ClassNameID:  classID,
		MethodNameID: nameDescID,
		MethodIndex:  uint32(m.Index),
		StartOffset:  uint32(startOffset),
		Length:       uint32(len(payload)),
	}); err != nil {
		return err
	}

	if err := s.strdict.Flush(); err != nil {
		return err
	}

	return s.appendDebugText(m, ma)
}

func (s *Store) appendGraph(payload []byte) (int64, error) {
	f, err := os.OpenFile(s.graphPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	offset, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := f.Write(payload); err != nil {
		return 0, err
	}
	return offset, nil
}

func (s *Store) appendDebugText(m *classloader.MethodObject, ma *object.MethodAccess) error {
	f, err := os.OpenFile(s.textPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteDebugText(f, m.Class.Descriptor(), m.Raw.Name+m.Raw.Descriptor, ma)
}

// splitFullName recovers (classDescriptor, nameAndDescriptor) from a
// MethodObject.FullName() string. A class descriptor always ends in
// ";", so the first occurrence of ";." is the unambiguous boundary
// between the two halves.
func splitFullName(key string) (classDescriptor, nameDesc string, ok bool) {
	i := strings.Index(key, ";.")
	if i < 0 {
		return "", "", false
	}
	return key[:i+1], key[i+2:], true
}
