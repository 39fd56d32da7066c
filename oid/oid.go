// Copyright (C) 2015-2016  Nexedi SA and Contributors.
//                          Kirill Smelkov <kirr@nexedi.com>
//
// This program is free software: you can Use, Study, Modify and Redistribute
// it under the terms of the GNU General Public License version 3, or (at your
// option) any later version, as published by the Free Software Foundation.
//
// This program is distributed WITHOUT ANY WARRANTY; without even the implied
// warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//
// See COPYING file for full licensing terms.

// Package oid provides ObjectId - the 20-byte content digest that identifies
// every object in a git repository.
package oid

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// RawSize is the length, in bytes, of an ObjectId in its binary form.
const RawSize = 20

// HexSize is the length, in bytes, of an ObjectId in its hex-displayable form.
const HexSize = 2 * RawSize

// ID is a 20-byte binary object digest.
//
// NOTE zero value of ID{} is the null object id - it never denotes a real
// object but is used as a sentinel by callers that need an "absent" value
// without an extra bool.
type ID [RawSize]byte

var _ fmt.Stringer = ID{}

// String returns the 40-char lowercase hex representation of id.
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero reports whether id is the null object id.
func (id ID) IsZero() bool {
	return id == ID{}
}

// Parse decodes a 40-char hex string into an ID.
//
// Parse is strict: it accepts exactly HexSize hex characters, lowercase or
// uppercase, and nothing else.
func Parse(hexstr string) (ID, error) {
	var id ID
	if len(hexstr) != HexSize {
		return ID{}, fmt.Errorf("oid: %q: invalid length (want %d, got %d)", hexstr, HexSize, len(hexstr))
	}
	_, err := hex.Decode(id[:], []byte(hexstr))
	if err != nil {
		return ID{}, fmt.Errorf("oid: %q: invalid hex: %w", hexstr, err)
	}
	return id, nil
}

// MustParse is like Parse but panics on error. It is meant for tests and
// compile-time-known constants, not for parsing untrusted input.
func MustParse(hexstr string) ID {
	id, err := Parse(hexstr)
	if err != nil {
		panic(err)
	}
	return id
}

// FromBytes copies a RawSize-byte slice into an ID.
func FromBytes(b []byte) (ID, error) {
	var id ID
	if len(b) != RawSize {
		return ID{}, fmt.Errorf("oid: invalid raw length (want %d, got %d)", RawSize, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// ByHex sorts a slice of IDs by their hex (== byte) representation.
type ByHex []ID

func (v ByHex) Len() int      { return len(v) }
func (v ByHex) Swap(i, j int) { v[i], v[j] = v[j], v[i] }
func (v ByHex) Less(i, j int) bool {
	return bytes.Compare(v[i][:], v[j][:]) < 0
}
