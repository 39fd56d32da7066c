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
	orderedset "github.com/emirpasic/gods/sets/linkedhashset"
	"lab.nexedi.com/kirr/gogit/oid"
)

// maxFollowDepth bounds symbolic-reference resolution. A counter, not a
// visited-set, is used to stay O(1) in memory (spec.md §9).
const maxFollowDepth = 5

// Container is the reference-store contract both the disk and in-memory
// implementations satisfy - spec.md §4.C.
type Container interface {
	// ReadLoose returns the raw, un-followed content of name's loose slot,
	// or (Value{}, false) if no loose file/entry exists for it.
	ReadLoose(name string) (Value, bool, error)

	// ReadPacked returns the container's (cached) packed table.
	ReadPacked() (PackedTable, error)

	// ReadRef resolves name via loose-then-packed precedence, without
	// following symrefs.
	ReadRef(name string) (Value, bool, error)

	// Follow iterates symbolic references up to maxFollowDepth hops and
	// returns the terminal name and the id it resolves to.
	Follow(name string) (terminal string, id oid.ID, ok bool, err error)

	// Resolve is Follow, failing if the chain does not resolve.
	Resolve(name string) (oid.ID, error)

	// Contains reports whether name resolves to anything (loose or packed).
	Contains(name string) bool

	// Keys enumerates well-formed ref names under base (or all, if base is
	// ""), merging loose and packed namespaces, deduplicated.
	Keys(base string) ([]string, error)

	// AsDict is Keys resolved to ids, dropping names that fail to resolve.
	AsDict(base string) (map[string]oid.ID, error)

	// GetPeeled returns the cached peeled id for name, if the packed table
	// advertises peeling and knows about name; see spec.md §4.C.
	GetPeeled(name string) (oid.ID, bool, error)

	// SetIfEquals performs the central CAS write: name (after following
	// symrefs) is set to newID only if its current value equals expected.
	// expectedAny selects "expected = any" (unconditional write).
	SetIfEquals(name string, expected oid.ID, expectedAny bool, newID oid.ID) (bool, error)

	// AddIfNew adds name -> id only if no loose or packed entry exists for it.
	AddIfNew(name string, id oid.ID) (bool, error)

	// RemoveIfEquals deletes name (loose and packed) only if its current
	// value equals expected. expectedAny selects unconditional deletion.
	RemoveIfEquals(name string, expected oid.ID, expectedAny bool) (bool, error)

	// SetSymbolicRef unconditionally writes name as a symbolic ref pointing
	// at target.
	SetSymbolicRef(name, target string) error

	// Set is SetIfEquals with expected = any.
	Set(name string, id oid.ID) error

	// Remove is RemoveIfEquals with expected = any.
	Remove(name string) error
}

// checkName validates name against CheckRefFormat, the gate every container
// mutation applies (spec.md §4.C "_check_refname").
func checkName(name string) error {
	if !CheckRefFormat(name) {
		return &InvalidNameError{Name: name}
	}
	return nil
}

// follow implements the shared symref-resolution algorithm (spec.md §4.C
// Follow / §9 cyclic symref chains) against any readRef primitive. It is
// called by both DiskRefsContainer and MemoryRefsContainer so the depth
// bound and loop shape live in exactly one place.
func follow(name string, readRef func(string) (Value, bool, error)) (terminal string, id oid.ID, ok bool, err error) {
	if err := checkName(name); err != nil {
		return "", oid.ID{}, false, err
	}

	cur := name
	for depth := 0; depth < maxFollowDepth; depth++ {
		v, found, err := readRef(cur)
		if err != nil {
			return "", oid.ID{}, false, err
		}
		if !found {
			return cur, oid.ID{}, false, nil
		}
		if v.Kind == Direct {
			return cur, v.ID, true, nil
		}
		cur = v.Target
	}
	// exceeded maxFollowDepth hops without reaching a direct value: a cycle
	// or an over-long chain, reported as "unknown" per spec.md §3 and §7.
	return cur, oid.ID{}, false, nil
}

// mergeNames merges the loose-namespace names and the packed table's names
// into a deduplicated, well-formed set, optionally filtered to those under
// base. Built on an insertion-ordered set (grounded on
// liudonghua123-reposurgeon's use of emirpasic/gods/sets/linkedhashset for
// the same "dedup while scanning, then hand back a plain collection" shape)
// so iteration order is deterministic for tests, even though spec.md treats
// Keys() as an unsorted set.
func mergeNames(loose []string, packed PackedTable, base string, includeHead bool) []string {
	set := orderedset.New()
	for _, n := range loose {
		if matchesBase(n, base) {
			set.Add(n)
		}
	}
	for _, e := range packed.Entries {
		if matchesBase(e.Name, base) {
			set.Add(e.Name)
		}
	}
	if includeHead && matchesBase("HEAD", base) {
		set.Add("HEAD")
	}

	out := make([]string, 0, set.Size())
	for _, v := range set.Values() {
		out = append(out, v.(string))
	}
	return out
}

func matchesBase(name, base string) bool {
	if base == "" {
		return true
	}
	if len(name) < len(base) {
		return false
	}
	return name[:len(base)] == base
}
