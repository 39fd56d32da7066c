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

// Package objstore implements object.ObjectStore on top of git2go's Odb:
// loose and packed object read/write, with no opinion on refs (those are
// refs.Container's job) or the working tree (the index's).
//
// git2go hands out objects backed by cgo-owned memory that does not
// survive its Go wrapper being garbage collected - see the discussion in
// the teacher's internal/git/git.go, whose "clone at the boundary, then
// KeepAlive" discipline this package carries over: every OdbObject's bytes
// are copied out and parsed into a plain Go struct (commitObject,
// treeObject, blobObject, tagObject) before Get returns, so nothing this
// package hands to a caller aliases git2go memory.
package objstore

import (
	"fmt"
	"os"
	"runtime"

	git2go "github.com/libgit2/git2go/v31"

	"lab.nexedi.com/kirr/gogit/object"
	"lab.nexedi.com/kirr/gogit/oid"
)

// Store is the concrete object.ObjectStore backed by a git2go object
// database rooted at a single "objects" directory.
type Store struct {
	path string
	odb  *git2go.Odb
}

var _ object.ObjectStore = (*Store)(nil)

// Open binds a Store to an existing objects directory.
func Open(objectsDir string) (*Store, error) {
	odb, err := git2go.NewOdb()
	if err != nil {
		return nil, err
	}
	if err := odb.AddDiskAlternate(objectsDir); err != nil {
		return nil, err
	}
	return &Store{path: objectsDir, odb: odb}, nil
}

// Init is Open against a freshly created, empty objects directory; git2go
// creates the loose-object fan-out subdirectories lazily on first Write.
func Init(objectsDir string) (*Store, error) {
	if err := os.MkdirAll(objectsDir, 0777); err != nil {
		return nil, err
	}
	return Open(objectsDir)
}

func (s *Store) Path() string { return s.path }

func toGitOid(id oid.ID) git2go.Oid {
	var g git2go.Oid
	copy(g[:], id[:])
	return g
}

func fromGitOid(g *git2go.Oid) oid.ID {
	var id oid.ID
	copy(id[:], g[:])
	return id
}

func (s *Store) Has(id oid.ID) bool {
	gid := toGitOid(id)
	ok := s.odb.Exists(&gid)
	runtime.KeepAlive(s)
	return ok
}

// Get reads id's raw content, clones it out of cgo-owned memory, and
// parses it into the typed object.GitObject matching its stored kind.
func (s *Store) Get(id oid.ID) (object.GitObject, error) {
	gid := toGitOid(id)
	raw, err := s.odb.Read(&gid)
	if err != nil {
		return nil, &object.MissingObjectError{ID: id}
	}
	data := append([]byte(nil), raw.Data()...)
	kind := raw.Type()
	runtime.KeepAlive(raw)
	runtime.KeepAlive(s)

	switch kind {
	case git2go.ObjectCommit:
		return parseCommit(id, data)
	case git2go.ObjectTree:
		return parseTree(id, data)
	case git2go.ObjectBlob:
		return &blobObject{id: id, data: data}, nil
	case git2go.ObjectTag:
		return parseTag(id, data)
	default:
		return nil, &object.MissingObjectError{ID: id}
	}
}

func (s *Store) WriteBlob(data []byte) (oid.ID, error) {
	gid, err := s.odb.Write(data, git2go.ObjectBlob)
	runtime.KeepAlive(s)
	if err != nil {
		return oid.ID{}, err
	}
	return fromGitOid(gid), nil
}

func (s *Store) WriteTree(entries []object.TreeEntry) (oid.ID, error) {
	gid, err := s.odb.Write(encodeTree(entries), git2go.ObjectTree)
	runtime.KeepAlive(s)
	if err != nil {
		return oid.ID{}, err
	}
	return fromGitOid(gid), nil
}

func (s *Store) WriteCommit(treeID oid.ID, parentIDs []oid.ID, author, committer object.Signature, message string) (oid.ID, error) {
	gid, err := s.odb.Write(encodeCommit(treeID, parentIDs, author, committer, message), git2go.ObjectCommit)
	runtime.KeepAlive(s)
	if err != nil {
		return oid.ID{}, err
	}
	return fromGitOid(gid), nil
}

// WriteTag stores a new annotated tag object and returns its id.
func (s *Store) WriteTag(targetID oid.ID, targetKind object.Kind, name string, tagger object.Signature, message string) (oid.ID, error) {
	gid, err := s.odb.Write(encodeTag(targetID, targetKind, name, tagger, message), git2go.ObjectTag)
	runtime.KeepAlive(s)
	if err != nil {
		return oid.ID{}, err
	}
	return fromGitOid(gid), nil
}

// AddObject stores obj, dispatching on its concrete kind to the matching
// WriteBlob/WriteTree/WriteCommit/WriteTag, and returns the id it is stored
// under - the re-write-by-content path spec.md §6's add_object names,
// letting a caller ingest a GitObject fetched from another store without
// that store's raw bytes ever crossing the ObjectStore interface.
func (s *Store) AddObject(obj object.GitObject) (oid.ID, error) {
	switch o := obj.(type) {
	case object.Blob:
		return s.WriteBlob(o.Data())
	case object.Tree:
		return s.WriteTree(o.Entries())
	case object.Commit:
		return s.WriteCommit(o.TreeID(), o.ParentIDs(), o.Author(), o.Committer(), o.Message())
	case object.Tag:
		return s.WriteTag(o.TargetID(), o.TargetKind(), o.TagName(), o.Tagger(), o.Message())
	default:
		return oid.ID{}, fmt.Errorf("objstore: AddObject: unknown object kind %T", obj)
	}
}

// AddObjects is AddObject applied to every element of objs in order,
// stopping at the first error (spec.md §6's add_objects(iterable)).
func (s *Store) AddObjects(objs []object.GitObject) error {
	for _, obj := range objs {
		if _, err := s.AddObject(obj); err != nil {
			return err
		}
	}
	return nil
}

// IterShas adapts ids into a lazy, length-known ObjectIter resolved against
// this store - the second half of fetch's "iter_shas(find_missing_objects(
// ...))" pipeline (spec.md §4.F step 3, §9).
func (s *Store) IterShas(ids []oid.ID) object.ObjectIter {
	return object.NewObjectIter(s, ids)
}

// FindCommonRevisions drains graphWalker, acknowledging every id this store
// already has and collecting those into the negotiated "haves" set
// (spec.md §4.F step 2).
func (s *Store) FindCommonRevisions(walker object.GraphWalker) ([]oid.ID, error) {
	var haves []oid.ID
	for {
		id, ok := walker.Next()
		if !ok {
			break
		}
		if s.Has(id) {
			walker.Ack(id)
			haves = append(haves, id)
		}
	}
	return haves, nil
}

// FindMissingObjects walks the object graph reachable from wants - commit
// parents, a commit's tree, a tree's entries, a wanted tag's target when
// getTagged - skipping anything already listed in haves, and returns the
// resulting set as a lazy iterator.
func (s *Store) FindMissingObjects(haves, wants []oid.ID, progress func(string), getTagged bool) (object.ObjectIter, error) {
	have := make(map[oid.ID]bool, len(haves))
	for _, id := range haves {
		have[id] = true
	}

	visited := make(map[oid.ID]bool)
	var result []oid.ID
	worklist := append([]oid.ID(nil), wants...)

	for len(worklist) > 0 {
		id := worklist[0]
		worklist = worklist[1:]
		if visited[id] || have[id] {
			continue
		}
		visited[id] = true

		obj, err := s.Get(id)
		if err != nil {
			continue // unresolvable id: skip rather than fail the whole negotiation
		}
		result = append(result, id)

		switch o := obj.(type) {
		case object.Commit:
			worklist = append(worklist, o.TreeID())
			worklist = append(worklist, o.ParentIDs()...)
		case object.Tree:
			for _, e := range o.Entries() {
				worklist = append(worklist, e.ID)
			}
		case object.Tag:
			if getTagged {
				worklist = append(worklist, o.TargetID())
			}
		}
	}

	if progress != nil {
		progress("counting objects: done")
	}
	return object.NewObjectIter(s, result), nil
}

// localGraphWalker is the store's own GraphWalker: it starts at heads and,
// as each id is Ack'd, queues that commit's parents - a breadth-first
// walk outward from the tips, the same shape git's negotiation walker
// uses to narrow in on a common ancestor set.
type localGraphWalker struct {
	store *Store
	queue []oid.ID
	acked map[oid.ID]bool
}

func (s *Store) GetGraphWalker(heads []oid.ID) object.GraphWalker {
	return &localGraphWalker{
		store: s,
		queue: append([]oid.ID(nil), heads...),
		acked: make(map[oid.ID]bool),
	}
}

func (w *localGraphWalker) Next() (oid.ID, bool) {
	if len(w.queue) == 0 {
		return oid.ID{}, false
	}
	id := w.queue[0]
	w.queue = w.queue[1:]
	return id, true
}

func (w *localGraphWalker) Ack(id oid.ID) {
	if w.acked[id] {
		return
	}
	w.acked[id] = true
	obj, err := w.store.Get(id)
	if err != nil {
		return
	}
	c, ok := obj.(object.Commit)
	if !ok {
		return
	}
	for _, p := range c.ParentIDs() {
		if !w.acked[p] {
			w.queue = append(w.queue, p)
		}
	}
}
