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
	"lab.nexedi.com/kirr/gogit/object"
	"lab.nexedi.com/kirr/gogit/oid"
)

// commitObject, treeObject, blobObject and tagObject are the concrete
// object.Commit/Tree/Blob/Tag implementations this store hands back from
// Get - plain structs holding the already-parsed fields, not a live handle
// into git2go's cgo memory (that unsafety is fully absorbed at the Get/Write
// boundary in git2go.go, the same layering teacher's internal/git wrapper
// applies one level down, at the Odb/OdbObject boundary).
type commitObject struct {
	id        oid.ID
	treeID    oid.ID
	parentIDs []oid.ID
	author    object.Signature
	committer object.Signature
	message   string
}

func (c *commitObject) ID() oid.ID                { return c.id }
func (c *commitObject) Kind() object.Kind         { return object.KindCommit }
func (c *commitObject) TreeID() oid.ID            { return c.treeID }
func (c *commitObject) ParentIDs() []oid.ID       { return c.parentIDs }
func (c *commitObject) Author() object.Signature  { return c.author }
func (c *commitObject) Committer() object.Signature { return c.committer }
func (c *commitObject) Message() string           { return c.message }

type treeObject struct {
	id      oid.ID
	entries []object.TreeEntry
}

func (t *treeObject) ID() oid.ID            { return t.id }
func (t *treeObject) Kind() object.Kind     { return object.KindTree }
func (t *treeObject) Entries() []object.TreeEntry { return t.entries }

func (t *treeObject) EntryByName(name string) (object.TreeEntry, bool) {
	for _, e := range t.entries {
		if e.Name == name {
			return e, true
		}
	}
	return object.TreeEntry{}, false
}

type blobObject struct {
	id   oid.ID
	data []byte
}

func (b *blobObject) ID() oid.ID        { return b.id }
func (b *blobObject) Kind() object.Kind { return object.KindBlob }
func (b *blobObject) Data() []byte      { return b.data }

type tagObject struct {
	id         oid.ID
	targetID   oid.ID
	targetKind object.Kind
	name       string
	tagger     object.Signature
	message    string
}

func (t *tagObject) ID() oid.ID            { return t.id }
func (t *tagObject) Kind() object.Kind     { return object.KindTag }
func (t *tagObject) TargetID() oid.ID      { return t.targetID }
func (t *tagObject) TargetKind() object.Kind { return t.targetKind }
func (t *tagObject) TagName() string       { return t.name }
func (t *tagObject) Tagger() object.Signature { return t.tagger }
func (t *tagObject) Message() string       { return t.message }
