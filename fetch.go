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
	"lab.nexedi.com/kirr/gogit/object"
	"lab.nexedi.com/kirr/gogit/oid"
)

// GraphWalker and ObjectIter are declared in package object (see
// object/object.go for why) and aliased here for callers at this package's
// root.
type (
	GraphWalker = object.GraphWalker
	ObjectIter  = object.ObjectIter
)

// NewObjectIter adapts a concrete list of ids, resolved lazily against
// store as Next is called, into an ObjectIter.
func NewObjectIter(store ObjectStore, ids []oid.ID) ObjectIter {
	return object.NewObjectIter(store, ids)
}

// WantFunc selects, given the full set of refs this Repo advertises, the
// set of object ids a fetch should request.
type WantFunc func(refs map[string]oid.ID) []oid.ID

// FetchObjects performs the want/have negotiation of spec.md §4.F:
// want_fn selects the wanted ids from this repo's current refs; haves is
// computed by walking graphWalker's acknowledgements against the object
// store; the result is the lazy iterator of objects the peer is missing.
// progress, if non-nil, receives free-form textual progress messages;
// getTagged additionally includes the objects any wanted annotated tags
// point at.
func (r *Repo) FetchObjects(wantFn WantFunc, graphWalker GraphWalker, progress func(string), getTagged bool) (ObjectIter, error) {
	refsNow, err := r.GetRefs()
	if err != nil {
		return nil, err
	}
	wants := wantFn(refsNow)
	if len(wants) == 0 {
		return NewObjectIter(r.Store, nil), nil
	}

	haves, err := r.Store.FindCommonRevisions(graphWalker)
	if err != nil {
		return nil, err
	}

	return r.Store.FindMissingObjects(haves, wants, progress, getTagged)
}

// Fetch drives FetchObjects against this Repo and ingests every yielded
// object into target's object store via AddObjects, returning this repo's
// refs as seen at negotiation time (spec.md §4.F step 3: fetch(target, …)
// consumes the iterator into target.object_store.add_objects(…)).
func (r *Repo) Fetch(target *Repo, wantFn WantFunc, graphWalker GraphWalker, progress func(string)) (map[string]oid.ID, error) {
	it, err := r.FetchObjects(wantFn, graphWalker, progress, false)
	if err != nil {
		return nil, err
	}
	var objs []GitObject
	for {
		_, obj, ok, err := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		objs = append(objs, obj)
	}
	if err := target.Store.AddObjects(objs); err != nil {
		return nil, err
	}
	return r.GetRefs()
}
