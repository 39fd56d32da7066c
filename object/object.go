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

// Package object defines the object-kind vocabulary (GitObject, Kind,
// ObjectStore, ...) shared between the repository façade (package gogit)
// and the concrete object store (internal/objstore). It is split out, the
// same way oid is split out of refs, purely to avoid an import cycle: the
// façade binds an ObjectStore, the store implementation needs the same
// GitObject/Kind vocabulary the façade exposes to callers.
package object

import (
	"fmt"
	"time"

	"lab.nexedi.com/kirr/gogit/oid"
)

// Kind identifies which of the four git object types a GitObject is.
type Kind int

const (
	KindCommit Kind = iota
	KindTree
	KindBlob
	KindTag
)

func (k Kind) String() string {
	switch k {
	case KindCommit:
		return "commit"
	case KindTree:
		return "tree"
	case KindBlob:
		return "blob"
	case KindTag:
		return "tag"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// GitObject is satisfied by every concrete object type this package
// exposes (Commit, Tree, Blob, Tag).
type GitObject interface {
	ID() oid.ID
	Kind() Kind
}

// Signature is a named actor with a point in time - an author or committer
// line, or a tagger line.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// TreeEntry is one row of a Tree: a name, the mode under which it is
// recorded, and the id of the blob/tree/commit (for submodules) it names.
type TreeEntry struct {
	Name string
	Mode uint32
	ID   oid.ID
}

// Tree is a GitObject holding an ordered list of TreeEntry.
type Tree interface {
	GitObject
	Entries() []TreeEntry
	EntryByName(name string) (TreeEntry, bool)
}

// Blob is a GitObject holding opaque file content.
type Blob interface {
	GitObject
	Data() []byte
}

// Commit is a GitObject recording one point in a project's history: the
// tree it describes, the commit(s) it follows, and who/when/why.
type Commit interface {
	GitObject
	TreeID() oid.ID
	ParentIDs() []oid.ID
	Author() Signature
	Committer() Signature
	Message() string
}

// Tag is a GitObject naming an annotated tag: a signed pointer at another
// object, with its own message independent of the object it targets.
type Tag interface {
	GitObject
	TargetID() oid.ID
	TargetKind() Kind
	TagName() string
	Tagger() Signature
	Message() string
}

// GraphWalker is the remote-supplied negotiation primitive fetch_objects
// consumes to learn which objects the peer already has (spec.md §6, §4.F
// step 2). Next yields the next id the peer claims to have, until
// exhausted; Ack tells the walker that id (and, transitively, its
// ancestors) is confirmed common.
type GraphWalker interface {
	Next() (oid.ID, bool)
	Ack(id oid.ID)
}

// ObjectIter is a lazy, length-known sequence of (id, object) pairs - the
// shape spec.md §9 asks fetch to use "so large fetches do not materialize".
type ObjectIter interface {
	Len() int
	Next() (oid.ID, GitObject, bool, error)
}

// ObjectStore is the storage backend a Repository is built on: content
// addressed read/write access to the four object kinds, keyed by their id,
// plus the fetch-negotiation primitives spec.md §6 lists as external
// collaborator interfaces. internal/objstore provides the concrete,
// git2go-backed implementation.
type ObjectStore interface {
	// Get returns the object named by id, in whichever of the four kinds
	// it actually is.
	Get(id oid.ID) (GitObject, error)

	// Has reports whether id names an object this store can Get.
	Has(id oid.ID) bool

	// WriteBlob stores data as a new blob object and returns its id.
	WriteBlob(data []byte) (oid.ID, error)

	// WriteTree stores entries as a new tree object and returns its id.
	// entries must already be in git's tree sort order.
	WriteTree(entries []TreeEntry) (oid.ID, error)

	// WriteCommit stores a new commit object and returns its id.
	WriteCommit(treeID oid.ID, parentIDs []oid.ID, author, committer Signature, message string) (oid.ID, error)

	// WriteTag stores a new annotated tag object and returns its id.
	WriteTag(targetID oid.ID, targetKind Kind, name string, tagger Signature, message string) (oid.ID, error)

	// AddObject stores obj, whichever of Blob/Tree/Commit/Tag it concretely
	// is, and returns the id it is stored under (spec.md §6's add_object).
	AddObject(obj GitObject) (oid.ID, error)

	// AddObjects is AddObject applied to every element of objs in order,
	// stopping at the first error (spec.md §6's add_objects(iterable)).
	AddObjects(objs []GitObject) error

	// IterShas adapts ids into a lazy, length-known ObjectIter resolved
	// against this store (spec.md §6's iter_shas(ids)).
	IterShas(ids []oid.ID) ObjectIter

	// Path returns the on-disk object database location, for diagnostics.
	Path() string

	// FindCommonRevisions drains graphWalker, returning the ids it
	// acknowledges as already present on the peer (spec.md §4.F step 2).
	FindCommonRevisions(graphWalker GraphWalker) ([]oid.ID, error)

	// FindMissingObjects returns a lazy iterator over every object
	// reachable from wants but not from haves. progress, if non-nil,
	// receives free-form progress text; getTagged additionally walks the
	// targets of any wanted annotated tags.
	FindMissingObjects(haves, wants []oid.ID, progress func(string), getTagged bool) (ObjectIter, error)

	// GetGraphWalker returns a GraphWalker seeded at heads, for use as the
	// local side of a fetch negotiation against a remote store.
	GetGraphWalker(heads []oid.ID) GraphWalker
}

// GetAs fetches id from store and verifies it has the expected kind,
// returning a KindMismatchError instead of the object if not.
func GetAs(store ObjectStore, id oid.ID, want Kind) (GitObject, error) {
	obj, err := store.Get(id)
	if err != nil {
		return nil, err
	}
	if obj.Kind() != want {
		return nil, &KindMismatchError{ID: id, Got: obj.Kind(), Want: want}
	}
	return obj, nil
}

// sliceObjectIter is the simplest ObjectIter: a fully materialized slice,
// resolved lazily against store as Next is called.
type sliceObjectIter struct {
	store ObjectStore
	ids   []oid.ID
	pos   int
}

// NewObjectIter adapts a concrete list of ids into an ObjectIter.
func NewObjectIter(store ObjectStore, ids []oid.ID) ObjectIter {
	return &sliceObjectIter{store: store, ids: ids}
}

func (it *sliceObjectIter) Len() int { return len(it.ids) - it.pos }

func (it *sliceObjectIter) Next() (oid.ID, GitObject, bool, error) {
	if it.pos >= len(it.ids) {
		return oid.ID{}, nil, false, nil
	}
	id := it.ids[it.pos]
	it.pos++
	obj, err := it.store.Get(id)
	if err != nil {
		return oid.ID{}, nil, false, err
	}
	return id, obj, true, nil
}

// NotGitRepository reports that a directory does not look like a git
// control directory (spec.md §4.G discovery).
type NotGitRepository struct {
	Path string
}

func (e *NotGitRepository) Error() string {
	return fmt.Sprintf("%s: not a git repository", e.Path)
}

// NoIndexPresent reports that a non-bare repository has no index file where
// one was required.
type NoIndexPresent struct {
	Path string
}

func (e *NoIndexPresent) Error() string {
	return fmt.Sprintf("%s: no index present", e.Path)
}

// MissingObjectError reports that an id could not be found in the object
// store at all.
type MissingObjectError struct {
	ID oid.ID
}

func (e *MissingObjectError) Error() string {
	return fmt.Sprintf("object %s: not found", e.ID)
}

// MissingCommitError reports that an id expected to name a commit (e.g. a
// revision-history starting point) is missing entirely.
type MissingCommitError struct {
	ID oid.ID
}

func (e *MissingCommitError) Error() string {
	return fmt.Sprintf("commit %s: not found", e.ID)
}

// KindMismatchError reports that an object exists but is not of the kind
// the caller required.
type KindMismatchError struct {
	ID   oid.ID
	Got  Kind
	Want Kind
}

func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("object %s: is %s, expected %s", e.ID, e.Got, e.Want)
}

// NotCommitError, NotTreeError, NotBlobError and NotTagError are the
// KindMismatchError specializations callers most often need to test for by
// type instead of by comparing Got/Want fields.
type (
	NotCommitError KindMismatchError
	NotTreeError   KindMismatchError
	NotBlobError   KindMismatchError
	NotTagError    KindMismatchError
)

func (e *NotCommitError) Error() string { return (*KindMismatchError)(e).Error() }
func (e *NotTreeError) Error() string   { return (*KindMismatchError)(e).Error() }
func (e *NotBlobError) Error() string   { return (*KindMismatchError)(e).Error() }
func (e *NotTagError) Error() string    { return (*KindMismatchError)(e).Error() }
