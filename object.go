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

// Package gogit implements a content-addressed, git-compatible version
// control repository: a reference store (refs) plus a typed object façade
// on top of it.
package gogit

import (
	"lab.nexedi.com/kirr/gogit/object"
	"lab.nexedi.com/kirr/gogit/oid"
)

// The object-kind vocabulary lives in package object so that
// internal/objstore can implement ObjectStore without importing this
// package (which itself needs internal/objstore to build an on-disk
// Repo) - see object/object.go. These aliases let every other file at
// this package's root spell the bare names (GitObject, Kind, Commit, ...)
// as if they were declared here directly.
type (
	Kind        = object.Kind
	GitObject   = object.GitObject
	Signature   = object.Signature
	TreeEntry   = object.TreeEntry
	Tree        = object.Tree
	Blob        = object.Blob
	Commit      = object.Commit
	Tag         = object.Tag
	ObjectStore = object.ObjectStore

	NotGitRepository  = object.NotGitRepository
	NoIndexPresent    = object.NoIndexPresent
	MissingObjectError = object.MissingObjectError
	MissingCommitError = object.MissingCommitError
	KindMismatchError  = object.KindMismatchError
	NotCommitError     = object.NotCommitError
	NotTreeError       = object.NotTreeError
	NotBlobError       = object.NotBlobError
	NotTagError        = object.NotTagError
)

const (
	KindCommit = object.KindCommit
	KindTree   = object.KindTree
	KindBlob   = object.KindBlob
	KindTag    = object.KindTag
)

// GetAs fetches id from store and verifies it has the expected kind.
func GetAs(store ObjectStore, id oid.ID, want Kind) (GitObject, error) {
	return object.GetAs(store, id, want)
}
