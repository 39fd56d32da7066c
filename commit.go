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
	"errors"
	"time"

	"lab.nexedi.com/kirr/gogit/oid"
)

// Index is the working-tree index: an external collaborator (spec.md §6)
// that knows how to materialize its currently staged paths into a tree.
type Index interface {
	// Commit writes every blob/tree this index's staged paths require into
	// store and returns the id of the resulting root tree.
	Commit(store ObjectStore) (oid.ID, error)
}

// CommitParams carries the optional fields of DoCommit; zero values select
// the defaults spec.md §4.F "Commit authoring" describes.
type CommitParams struct {
	Author      *Signature // defaults to Committer
	CommitTime  time.Time  // defaults to now
	AuthorTime  time.Time  // defaults to CommitTime
	Tree        *oid.ID    // defaults to committing Index
}

var errNoCommitter = errors.New("gogit: DoCommit: committer is required")

// DoCommit assembles a commit object and advances HEAD to it (spec.md
// §4.F). If params.Tree is nil, index is finalized into a tree first
// (index.Commit); committer is mandatory, author defaults to committer,
// commit_time defaults to now, author_time defaults to commit_time, and
// both signatures' timezone offsets default to UTC by virtue of Go's
// time.Time carrying its own location unless the caller cleared it.
func (r *Repo) DoCommit(message string, committer Signature, index Index, params CommitParams) (oid.ID, error) {
	if committer.Name == "" && committer.Email == "" {
		return oid.ID{}, errNoCommitter
	}

	author := committer
	if params.Author != nil {
		author = *params.Author
	}

	commitTime := params.CommitTime
	if commitTime.IsZero() {
		commitTime = time.Now().UTC()
	}
	authorTime := params.AuthorTime
	if authorTime.IsZero() {
		authorTime = commitTime
	}
	committer.When = commitTime
	author.When = authorTime

	var treeID oid.ID
	if params.Tree != nil {
		treeID = *params.Tree
	} else {
		if index == nil {
			return oid.ID{}, &NoIndexPresent{}
		}
		id, err := index.Commit(r.Store)
		if err != nil {
			return oid.ID{}, err
		}
		treeID = id
	}

	var parents []oid.ID
	headID, headErr := r.Refs.Resolve("HEAD")
	if headErr == nil {
		parents = []oid.ID{headID}
	}

	commitID, err := r.Store.WriteCommit(treeID, parents, author, committer, message)
	if err != nil {
		return oid.ID{}, err
	}

	expected := headID
	expectedAny := headErr != nil
	if ok, err := r.Refs.SetIfEquals("HEAD", expected, expectedAny, commitID); err != nil {
		return oid.ID{}, err
	} else if !ok {
		return oid.ID{}, errors.New("gogit: DoCommit: HEAD moved concurrently")
	}

	return commitID, nil
}
