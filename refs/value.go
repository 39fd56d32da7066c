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

package refs

import (
	"fmt"
	"strings"

	"lab.nexedi.com/kirr/gogit/oid"
)

// Kind discriminates the two shapes a reference slot's content can take.
type Kind int

const (
	// Direct means the slot holds an ObjectId.
	Direct Kind = iota
	// Symbolic means the slot holds the name of another reference.
	Symbolic
)

// symrefPrefix is the textual marker a loose ref file carries when it is
// symbolic, as opposed to a direct 40-hex id.
const symrefPrefix = "ref: "

// Value is the content of a reference slot: either a direct ObjectId or a
// symbolic pointer at another ref name. It is never represented as a bare
// byte string elsewhere in this package's API.
type Value struct {
	Kind   Kind
	ID     oid.ID // valid iff Kind == Direct
	Target string // valid iff Kind == Symbolic
}

// NewDirect builds a Value pointing directly at id.
func NewDirect(id oid.ID) Value {
	return Value{Kind: Direct, ID: id}
}

// NewSymbolic builds a Value pointing at another ref named target.
func NewSymbolic(target string) Value {
	return Value{Kind: Symbolic, Target: target}
}

// Encode returns the on-disk textual form of v, as written to a loose ref
// file: "<40-hex>\n" for a direct value, "ref: <target>\n" for a symbolic
// one.
func (v Value) Encode() string {
	switch v.Kind {
	case Direct:
		return v.ID.String() + "\n"
	case Symbolic:
		return symrefPrefix + v.Target + "\n"
	default:
		panic("refs: invalid Value.Kind")
	}
}

// DecodeValue parses the content of a loose ref file: either the literal
// prefix "ref: " followed by a ref name, or exactly 40 hex bytes, in both
// cases after trailing CR/LF is stripped. raw is taken whole; it is not cut
// at the first newline.
func DecodeValue(raw string) (Value, error) {
	if strings.HasPrefix(raw, symrefPrefix) {
		target := strings.TrimRight(raw[len(symrefPrefix):], "\r\n")
		return NewSymbolic(target), nil
	}
	hex := strings.TrimRight(raw, "\r\n")
	id, err := oid.Parse(hex)
	if err != nil {
		return Value{}, fmt.Errorf("refs: invalid ref value %q: %w", raw, err)
	}
	return NewDirect(id), nil
}

func (v Value) String() string {
	switch v.Kind {
	case Direct:
		return v.ID.String()
	case Symbolic:
		return symrefPrefix + v.Target
	default:
		return "<invalid refs.Value>"
	}
}
