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
	"sort"
	"strings"

	"lab.nexedi.com/kirr/gogit/object"
	"lab.nexedi.com/kirr/gogit/oid"
)

// encodeTree serializes entries in git's canonical tree format: for each
// entry, in sort order, "<mode-octal-no-leading-zero> <name>\0" followed by
// the entry id's 20 raw bytes.
func encodeTree(entries []object.TreeEntry) []byte {
	sorted := make([]object.TreeEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return treeSortKey(sorted[i]) < treeSortKey(sorted[j]) })

	var buf strings.Builder
	for _, e := range sorted {
		fmt.Fprintf(&buf, "%o %s\x00", e.Mode, e.Name)
		buf.Write(e.ID[:])
	}
	return []byte(buf.String())
}

// treeSortKey implements git's tree entry ordering: names compare as if a
// directory entry's name carried a trailing "/".
func treeSortKey(e object.TreeEntry) string {
	const modeDir = 040000
	if e.Mode == modeDir {
		return e.Name + "/"
	}
	return e.Name
}

func formatSignature(s object.Signature) string {
	_, offset := s.When.Zone()
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	return fmt.Sprintf("%s <%s> %d %s%02d%02d", s.Name, s.Email, s.When.Unix(), sign, offset/3600, (offset%3600)/60)
}

// encodeCommit serializes a commit in git's plain-text object format:
// tree, zero or more parent lines, author, committer, a blank line, then
// the message verbatim.
func encodeCommit(treeID oid.ID, parentIDs []oid.ID, author, committer object.Signature, message string) []byte {
	var buf strings.Builder
	fmt.Fprintf(&buf, "tree %s\n", treeID)
	for _, p := range parentIDs {
		fmt.Fprintf(&buf, "parent %s\n", p)
	}
	fmt.Fprintf(&buf, "author %s\n", formatSignature(author))
	fmt.Fprintf(&buf, "committer %s\n", formatSignature(committer))
	buf.WriteByte('\n')
	buf.WriteString(message)
	return []byte(buf.String())
}

// encodeTag serializes an annotated tag in git's plain-text object format:
// object, type, tag, tagger, a blank line, then the message verbatim -
// the mirror image of parseTag in parse.go.
func encodeTag(targetID oid.ID, targetKind object.Kind, name string, tagger object.Signature, message string) []byte {
	var buf strings.Builder
	fmt.Fprintf(&buf, "object %s\n", targetID)
	fmt.Fprintf(&buf, "type %s\n", targetKind)
	fmt.Fprintf(&buf, "tag %s\n", name)
	fmt.Fprintf(&buf, "tagger %s\n", formatSignature(tagger))
	buf.WriteByte('\n')
	buf.WriteString(message)
	return []byte(buf.String())
}
