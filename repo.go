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

package gogit

import (
	"fmt"
	"sort"
	"strings"

	"lab.nexedi.com/kirr/gogit/oid"
	"lab.nexedi.com/kirr/gogit/refs"
)

// maxPeelDepth bounds Repo.GetPeeled's tag-unwrap loop. spec.md §4.F notes
// the traversal "has no inherent bound but in practice terminates" and
// allows capping at a small depth with a cycle error.
const maxPeelDepth = 10

// Repo is the repository façade: an ObjectStore plus a refs.Container, bound
// together with typed object access, tag peeling, history walk and fetch
// negotiation (spec.md §4.F).
type Repo struct {
	Store ObjectStore
	Refs  refs.Container

	// Config is the parsed contents of the control directory's "config"
	// file ({section: {key: value}}), or nil if this Repo was built
	// without one (e.g. NewRepo called directly, against a non-disk
	// ref/object store pairing).
	Config map[string]map[string]string
}

// NewRepo binds an already-open object store and ref container into a Repo.
func NewRepo(store ObjectStore, refcontainer refs.Container) *Repo {
	return &Repo{Store: store, Refs: refcontainer}
}

// Get retrieves id without verifying its kind.
func (r *Repo) Get(id oid.ID) (GitObject, error) {
	return r.Store.Get(id)
}

// GetAs retrieves id and verifies it is of kind want.
func (r *Repo) GetAs(id oid.ID, want Kind) (GitObject, error) {
	return GetAs(r.Store, id, want)
}

// GetRefs returns every well-formed ref name mapped to the id it resolves
// to, dropping any name that does not resolve.
func (r *Repo) GetRefs() (map[string]oid.ID, error) {
	return r.Refs.AsDict("")
}

// CyclicPeelError reports that GetPeeled's tag-unwrap loop exceeded
// maxPeelDepth without reaching a non-tag object.
type CyclicPeelError struct {
	Name string
}

func (e *CyclicPeelError) Error() string {
	return fmt.Sprintf("refs: %s: tag chain exceeds %d hops", e.Name, maxPeelDepth)
}

// GetPeeled resolves name to the id of the first non-tag object reachable
// by unwrapping annotated tags. It consults the ref container's peeled
// cache first (spec.md §4.C get_peeled); on a cache miss it resolves name
// directly and walks tag objects itself.
func (r *Repo) GetPeeled(name string) (oid.ID, error) {
	if cached, ok, err := r.Refs.GetPeeled(name); err != nil {
		return oid.ID{}, err
	} else if ok {
		return cached, nil
	}

	id, err := r.Refs.Resolve(name)
	if err != nil {
		return oid.ID{}, err
	}

	for depth := 0; depth < maxPeelDepth; depth++ {
		obj, err := r.Store.Get(id)
		if err != nil {
			return oid.ID{}, err
		}
		tag, ok := obj.(Tag)
		if !ok {
			return id, nil
		}
		id = tag.TargetID()
	}
	return oid.ID{}, &CyclicPeelError{Name: name}
}

// Delete removes name from the ref container. Only "HEAD" and names under
// "refs/" are accepted; anything else is rejected outright instead of
// silently falling through (spec.md §9's first Open Question - the
// original's __delitem__ dispatcher ran the delete and then always raised
// afterwards; this does not reproduce that).
func (r *Repo) Delete(name string) error {
	if name != "HEAD" && !strings.HasPrefix(name, "refs/") {
		return &refs.InvalidNameError{Name: name}
	}
	return r.Refs.Remove(name)
}

// RevisionHistory walks the ancestry of head and returns it newest-first,
// per spec.md §4.F: a worklist seeded with head, results inserted in
// ascending-commit-time order, then reversed.
func (r *Repo) RevisionHistory(head oid.ID) ([]Commit, error) {
	seen := make(map[oid.ID]bool)
	var result []Commit
	worklist := []oid.ID{head}

	for len(worklist) > 0 {
		id := worklist[0]
		worklist = worklist[1:]

		if seen[id] {
			continue
		}

		obj, err := r.Store.Get(id)
		if err != nil {
			return nil, &MissingCommitError{ID: id}
		}
		c, ok := obj.(Commit)
		if !ok {
			return nil, &NotCommitError{ID: id, Got: obj.Kind(), Want: KindCommit}
		}
		seen[id] = true

		pos := sort.Search(len(result), func(i int) bool {
			return result[i].Committer().When.Unix() > c.Committer().When.Unix()
		})
		result = append(result, nil)
		copy(result[pos+1:], result[pos:])
		result[pos] = c

		worklist = append(worklist, c.ParentIDs()...)
	}

	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result, nil
}
