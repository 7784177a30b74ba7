/*
 * Migration Footprint Analyzer
 * Copyright (c) 2026 the dex-offload authors. All rights reserved.
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package persist implements component F of the analyzer (spec section
// 4.6): the three paired on-disk artifacts a run accumulates —
// strdict.bin (string interning), poff.bin (method offset index), and
// presult.bin (the cyclic Access graphs themselves) — plus the
// presult.txt debug mirror. encoding/binary is used for the exact,
// cross-run-deterministic record layouts on purpose: this is the one
// place in the repository where a general-purpose serialization library
// would fight the byte-for-byte determinism the format requires rather
// than serve it (see DESIGN.md).
package persist

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
)

// StrDict is the string-intern table backing strdict.bin: every unique
// class descriptor and method name-plus-descriptor touched during a run
// gets a stable integer id, assigned once and reused on every
// subsequent sighting (spec 4.6, "built once; loaded and inverted into
// two maps on subsequent runs").
type StrDict struct {
	path    string
	toID    map[string]int
	fromID  map[int]string
	nextID  int
	pending []string // interned since the last Flush, not yet on disk
}

// OpenStrDict loads an existing strdict.bin, or returns an empty table
// if path does not exist yet (first run against a fresh output
// directory).
func OpenStrDict(path string) (*StrDict, error) {
	d := &StrDict{path: path, toID: make(map[string]int), fromID: make(map[int]string)}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return d, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for {
		s, err := readCString(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		var idBuf [4]byte
		if _, err := io.ReadFull(r, idBuf[:]); err != nil {
			return nil, err
		}
		id := int(binary.LittleEndian.Uint32(idBuf[:]))
		d.toID[s] = id
		d.fromID[id] = s
		if id >= d.nextID {
			d.nextID = id + 1
		}
	}
	return d, nil
}

func readCString(r *bufio.Reader) (string, error) {
	b, err := r.ReadBytes(0)
	if err != nil {
		return "", err
	}
	return string(b[:len(b)-1]), nil
}

// Intern returns s's id, allocating and staging a pending append if s
// has never been seen by this table.
func (d *StrDict) Intern(s string) int {
	if id, ok := d.toID[s]; ok {
		return id
	}
	id := d.nextID
	d.nextID++
	d.toID[s] = id
	d.fromID[id] = s
	d.pending = append(d.pending, s)
	return id
}

// ID looks up s's id without interning it; the second return is false
// if s was never seen.
func (d *StrDict) ID(s string) (int, bool) {
	id, ok := d.toID[s]
	return id, ok
}

// Lookup is the inverse of ID.
func (d *StrDict) Lookup(id int) (string, bool) {
	s, ok := d.fromID[id]
	return s, ok
}

// Flush appends every string interned since the last Flush to
// strdict.bin, each entry written as the raw bytes, a NUL terminator,
// and the assigned id as a 4-byte little-endian integer.
func (d *StrDict) Flush() error {
	if len(d.pending) == 0 {
		return nil
	}
	f, err := os.OpenFile(d.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, s := range d.pending {
		id := d.toID[s]
		if _, err := w.WriteString(s); err != nil {
			return err
		}
		if err := w.WriteByte(0); err != nil {
			return err
		}
		var idBuf [4]byte
		binary.LittleEndian.PutUint32(idBuf[:], uint32(id))
		if _, err := w.Write(idBuf[:]); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	d.pending = d.pending[:0]
	return nil
}
