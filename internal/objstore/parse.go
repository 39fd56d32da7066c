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

package objstore

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"lab.nexedi.com/kirr/gogit/object"
	"lab.nexedi.com/kirr/gogit/oid"
)

// ParseError reports malformed raw object content - the equivalent of the
// teacher's TagLoadError/InvalidLstreeEntry, generalized across all four
// object kinds instead of being specific to tag-as-commit encoding.
type ParseError struct {
	ID   oid.ID
	Kind object.Kind
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("object %s: invalid %s: %s", e.ID, e.Kind, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseCommit(id oid.ID, data []byte) (*commitObject, error) {
	c := &commitObject{id: id}
	body := string(data)

	headers, message, ok := strings.Cut(body, "\n\n")
	if !ok {
		return nil, &ParseError{ID: id, Kind: object.KindCommit, Err: fmt.Errorf("missing header/message separator")}
	}
	c.message = message

	sawTree := false
	for _, line := range strings.Split(headers, "\n") {
		key, rest, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}
		switch key {
		case "tree":
			treeID, err := oid.Parse(rest)
			if err != nil {
				return nil, &ParseError{ID: id, Kind: object.KindCommit, Err: err}
			}
			c.treeID = treeID
			sawTree = true
		case "parent":
			parentID, err := oid.Parse(rest)
			if err != nil {
				return nil, &ParseError{ID: id, Kind: object.KindCommit, Err: err}
			}
			c.parentIDs = append(c.parentIDs, parentID)
		case "author":
			sig, err := parseSignature(rest)
			if err != nil {
				return nil, &ParseError{ID: id, Kind: object.KindCommit, Err: err}
			}
			c.author = sig
		case "committer":
			sig, err := parseSignature(rest)
			if err != nil {
				return nil, &ParseError{ID: id, Kind: object.KindCommit, Err: err}
			}
			c.committer = sig
		}
	}
	if !sawTree {
		return nil, &ParseError{ID: id, Kind: object.KindCommit, Err: fmt.Errorf("missing tree header")}
	}
	return c, nil
}

// parseSignature decodes "Name <email> <unix-seconds> <+hhmm>".
func parseSignature(line string) (object.Signature, error) {
	nameEmail, rest, ok := strings.Cut(line, "> ")
	if !ok {
		return object.Signature{}, fmt.Errorf("invalid signature %q", line)
	}
	name, email, ok := strings.Cut(nameEmail, " <")
	if !ok {
		return object.Signature{}, fmt.Errorf("invalid signature %q", line)
	}

	fields := strings.Fields(rest)
	if len(fields) != 2 {
		return object.Signature{}, fmt.Errorf("invalid signature timestamp %q", rest)
	}
	secs, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return object.Signature{}, err
	}
	offsetMinutes, err := parseTZOffset(fields[1])
	if err != nil {
		return object.Signature{}, err
	}
	loc := time.FixedZone(fields[1], offsetMinutes*60)

	return object.Signature{Name: name, Email: email, When: time.Unix(secs, 0).In(loc)}, nil
}

func parseTZOffset(tz string) (int, error) {
	if len(tz) != 5 || (tz[0] != '+' && tz[0] != '-') {
		return 0, fmt.Errorf("invalid timezone %q", tz)
	}
	hh, err := strconv.Atoi(tz[1:3])
	if err != nil {
		return 0, err
	}
	mm, err := strconv.Atoi(tz[3:5])
	if err != nil {
		return 0, err
	}
	total := hh*60 + mm
	if tz[0] == '-' {
		total = -total
	}
	return total, nil
}

func parseTree(id oid.ID, data []byte) (*treeObject, error) {
	t := &treeObject{id: id}
	for len(data) > 0 {
		sp := indexByte(data, ' ')
		if sp < 0 {
			return nil, &ParseError{ID: id, Kind: object.KindTree, Err: fmt.Errorf("truncated entry")}
		}
		mode, err := strconv.ParseUint(string(data[:sp]), 8, 32)
		if err != nil {
			return nil, &ParseError{ID: id, Kind: object.KindTree, Err: err}
		}
		data = data[sp+1:]

		nul := indexByte(data, 0)
		if nul < 0 || len(data) < nul+1+oid.RawSize {
			return nil, &ParseError{ID: id, Kind: object.KindTree, Err: fmt.Errorf("truncated entry")}
		}
		name := string(data[:nul])
		entryID, err := oid.FromBytes(data[nul+1 : nul+1+oid.RawSize])
		if err != nil {
			return nil, &ParseError{ID: id, Kind: object.KindTree, Err: err}
		}
		t.entries = append(t.entries, object.TreeEntry{Name: name, Mode: uint32(mode), ID: entryID})
		data = data[nul+1+oid.RawSize:]
	}
	return t, nil
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}

func parseTag(id oid.ID, data []byte) (*tagObject, error) {
	t := &tagObject{id: id}
	headers, message, ok := strings.Cut(string(data), "\n\n")
	if !ok {
		headers, message = string(data), ""
	}
	t.message = message

	for _, line := range strings.Split(headers, "\n") {
		key, rest, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}
		switch key {
		case "object":
			targetID, err := oid.Parse(rest)
			if err != nil {
				return nil, &ParseError{ID: id, Kind: object.KindTag, Err: err}
			}
			t.targetID = targetID
		case "type":
			kind, err := parseKindName(rest)
			if err != nil {
				return nil, &ParseError{ID: id, Kind: object.KindTag, Err: err}
			}
			t.targetKind = kind
		case "tag":
			t.name = rest
		case "tagger":
			sig, err := parseSignature(rest)
			if err != nil {
				return nil, &ParseError{ID: id, Kind: object.KindTag, Err: err}
			}
			t.tagger = sig
		}
	}
	return t, nil
}

func parseKindName(name string) (object.Kind, error) {
	switch name {
	case "commit":
		return object.KindCommit, nil
	case "tree":
		return object.KindTree, nil
	case "blob":
		return object.KindBlob, nil
	case "tag":
		return object.KindTag, nil
	default:
		return 0, fmt.Errorf("unknown object type %q", name)
	}
}
