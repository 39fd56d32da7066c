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
	"strings"
	"testing"
	"time"

	"lab.nexedi.com/kirr/gogit/object"
	"lab.nexedi.com/kirr/gogit/oid"
)

func x40(c byte) string {
	b := make([]byte, oid.HexSize)
	for i := range b {
		b[i] = c
	}
	return string(b)
}

func TestEncodeParseTreeRoundtrip(t *testing.T) {
	entries := []object.TreeEntry{
		{Name: "zebra", Mode: 0100644, ID: oid.MustParse(x40('a'))},
		{Name: "apple", Mode: 0100644, ID: oid.MustParse(x40('b'))},
		{Name: "bdir", Mode: 040000, ID: oid.MustParse(x40('c'))},
		{Name: "b", Mode: 0100644, ID: oid.MustParse(x40('d'))},
	}
	raw := encodeTree(entries)

	parsed, err := parseTree(oid.MustParse(x40('e')), raw)
	if err != nil {
		t.Fatalf("parseTree: %v", err)
	}
	if len(parsed.entries) != len(entries) {
		t.Fatalf("parsed %d entries, want %d", len(parsed.entries), len(entries))
	}

	// "bdir" sorts as "bdir/" (directory entries compare with a trailing
	// slash), so it must land after the literal "b" blob.
	names := make([]string, len(parsed.entries))
	for i, e := range parsed.entries {
		names[i] = e.Name
	}
	want := []string{"apple", "b", "bdir", "zebra"}
	for i, n := range want {
		if names[i] != n {
			t.Fatalf("entry order = %v, want %v", names, want)
		}
	}
}

func TestEncodeParseCommitRoundtrip(t *testing.T) {
	treeID := oid.MustParse(x40('1'))
	parentID := oid.MustParse(x40('2'))
	when := time.Unix(1234567890, 0).In(time.FixedZone("", 3600))
	author := object.Signature{Name: "kirr", Email: "kirr@nexedi.com", When: when}
	committer := object.Signature{Name: "ci", Email: "ci@nexedi.com", When: when}

	raw := encodeCommit(treeID, []oid.ID{parentID}, author, committer, "a message\n")

	id := oid.MustParse(x40('3'))
	c, err := parseCommit(id, raw)
	if err != nil {
		t.Fatalf("parseCommit: %v", err)
	}
	if c.TreeID() != treeID {
		t.Fatalf("tree = %s, want %s", c.TreeID(), treeID)
	}
	if len(c.ParentIDs()) != 1 || c.ParentIDs()[0] != parentID {
		t.Fatalf("parents = %v, want [%s]", c.ParentIDs(), parentID)
	}
	if c.Message() != "a message\n" {
		t.Fatalf("message = %q", c.Message())
	}
	if c.Author().Name != author.Name || c.Author().Email != author.Email {
		t.Fatalf("author = %+v, want name/email %q/%q", c.Author(), author.Name, author.Email)
	}
	if c.Author().When.Unix() != when.Unix() {
		t.Fatalf("author time = %v, want unix %d", c.Author().When, when.Unix())
	}
}

func TestEncodeCommitNoParentsOmitsParentLines(t *testing.T) {
	treeID := oid.MustParse(x40('1'))
	sig := object.Signature{Name: "kirr", Email: "kirr@nexedi.com", When: time.Unix(0, 0)}
	raw := encodeCommit(treeID, nil, sig, sig, "root commit\n")
	if strings.Contains(string(raw), "parent ") {
		t.Fatalf("encodeCommit with no parents should not emit a parent line:\n%s", raw)
	}
}

func TestParseTagRoundtrip(t *testing.T) {
	targetID := oid.MustParse(x40('9'))
	sig := object.Signature{Name: "kirr", Email: "kirr@nexedi.com", When: time.Unix(42, 0)}
	raw := "object " + targetID.String() + "\n" +
		"type commit\n" +
		"tag v1.0\n" +
		"tagger " + formatSignature(sig) + "\n" +
		"\n" +
		"release notes\n"

	id := oid.MustParse(x40('8'))
	tag, err := parseTag(id, []byte(raw))
	if err != nil {
		t.Fatalf("parseTag: %v", err)
	}
	if tag.TargetID() != targetID {
		t.Fatalf("target = %s, want %s", tag.TargetID(), targetID)
	}
	if tag.TargetKind() != object.KindCommit {
		t.Fatalf("target kind = %v, want commit", tag.TargetKind())
	}
	if tag.TagName() != "v1.0" {
		t.Fatalf("tag name = %q", tag.TagName())
	}
	if tag.Message() != "release notes\n" {
		t.Fatalf("message = %q", tag.Message())
	}
}

func TestParseCommitRejectsMissingTree(t *testing.T) {
	id := oid.MustParse(x40('1'))
	_, err := parseCommit(id, []byte("author a <a@b.c> 1 +0000\ncommitter a <a@b.c> 1 +0000\n\nmsg"))
	if _, ok := err.(*ParseError); !ok {
		t.Fatalf("parseCommit without a tree header: got %v, want *ParseError", err)
	}
}

func TestParseTreeRejectsTruncatedEntry(t *testing.T) {
	id := oid.MustParse(x40('1'))
	_, err := parseTree(id, []byte("100644 onlyname\x00"))
	if _, ok := err.(*ParseError); !ok {
		t.Fatalf("parseTree with a truncated id: got %v, want *ParseError", err)
	}
}
