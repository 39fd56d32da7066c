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
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"lab.nexedi.com/kirr/gogit/lockfile"
	"lab.nexedi.com/kirr/gogit/oid"
)

// DiskRefsContainer is a Container backed by loose ref files and an optional
// packed-refs file under a repository's control directory (spec.md §4.D).
type DiskRefsContainer struct {
	root string // control directory: holds "HEAD", "refs/...", "packed-refs"

	mu          sync.Mutex
	packed      PackedTable
	packedValid bool
}

var _ Container = (*DiskRefsContainer)(nil)

// NewDiskRefsContainer returns a Container rooted at root, the repository's
// control directory (what git calls GIT_DIR - "/path/to/repo/.git" for a
// non-bare repository, or the repository itself if bare).
func NewDiskRefsContainer(root string) *DiskRefsContainer {
	return &DiskRefsContainer{root: root}
}

func (d *DiskRefsContainer) refPath(name string) string {
	return filepath.Join(d.root, filepath.FromSlash(name))
}

func (d *DiskRefsContainer) ReadLoose(name string) (Value, bool, error) {
	raw, err := os.ReadFile(d.refPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return Value{}, false, nil
		}
		return Value{}, false, err
	}
	v, err := DecodeValue(string(raw))
	if err != nil {
		return Value{}, false, err
	}
	return v, true, nil
}

// ReadPacked returns the parsed packed-refs table, caching it across calls
// until a mutation through this container invalidates the cache. A
// packed-refs file that does not exist at all parses as an empty,
// non-peeling table.
func (d *DiskRefsContainer) ReadPacked() (PackedTable, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readPackedLocked()
}

func (d *DiskRefsContainer) readPackedLocked() (PackedTable, error) {
	if d.packedValid {
		return d.packed, nil
	}
	f, err := os.Open(filepath.Join(d.root, "packed-refs"))
	if err != nil {
		if os.IsNotExist(err) {
			d.packed = PackedTable{}
			d.packedValid = true
			return d.packed, nil
		}
		return PackedTable{}, err
	}
	defer f.Close()
	table, err := Parse(f)
	if err != nil {
		return PackedTable{}, err
	}
	d.packed = table
	d.packedValid = true
	return d.packed, nil
}

func (d *DiskRefsContainer) invalidatePacked() {
	d.mu.Lock()
	d.packedValid = false
	d.mu.Unlock()
}

func (d *DiskRefsContainer) ReadRef(name string) (Value, bool, error) {
	v, found, err := d.ReadLoose(name)
	if err != nil || found {
		return v, found, err
	}
	packed, err := d.ReadPacked()
	if err != nil {
		return Value{}, false, err
	}
	entry, found := packed.Lookup(name)
	if !found {
		return Value{}, false, nil
	}
	return NewDirect(entry.ID), true, nil
}

func (d *DiskRefsContainer) Follow(name string) (string, oid.ID, bool, error) {
	return follow(name, d.ReadRef)
}

func (d *DiskRefsContainer) Resolve(name string) (oid.ID, error) {
	_, id, ok, err := d.Follow(name)
	if err != nil {
		return oid.ID{}, err
	}
	if !ok {
		return oid.ID{}, &NotFoundError{Name: name}
	}
	return id, nil
}

func (d *DiskRefsContainer) Contains(name string) bool {
	_, _, ok, _ := follow(name, d.ReadRef)
	return ok
}

// Keys enumerates loose ref files under root/refs by walking the directory
// tree, merges them with the packed table's names, and with "HEAD" when the
// HEAD file exists and matches base.
func (d *DiskRefsContainer) Keys(base string) ([]string, error) {
	var loose []string
	refsDir := filepath.Join(d.root, "refs")
	err := filepath.WalkDir(refsDir, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if de.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(d.root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if CheckRefFormat(name) {
			loose = append(loose, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	packed, err := d.ReadPacked()
	if err != nil {
		return nil, err
	}
	_, headErr := os.Lstat(d.refPath("HEAD"))
	headExists := headErr == nil
	return mergeNames(loose, packed, base, headExists), nil
}

func (d *DiskRefsContainer) AsDict(base string) (map[string]oid.ID, error) {
	names, err := d.Keys(base)
	if err != nil {
		return nil, err
	}
	out := make(map[string]oid.ID, len(names))
	for _, n := range names {
		id, err := d.Resolve(n)
		if err != nil {
			continue
		}
		out[n] = id
	}
	return out, nil
}

// GetPeeled reports the cached peeled id of name's packed entry. It returns
// ok = false when the packed table carries no peeling information at all, or
// when name has no packed entry - both are "unknown, caller must peel
// itself" per spec.md §4.C, distinguished from "known, and not a tag" where
// the entry's own id is returned unchanged.
func (d *DiskRefsContainer) GetPeeled(name string) (oid.ID, bool, error) {
	packed, err := d.ReadPacked()
	if err != nil {
		return oid.ID{}, false, err
	}
	if !packed.Peeling {
		return oid.ID{}, false, nil
	}
	entry, found := packed.Lookup(name)
	if !found {
		return oid.ID{}, false, nil
	}
	if entry.Peeled != nil {
		return *entry.Peeled, true, nil
	}
	return entry.ID, true, nil
}

func (d *DiskRefsContainer) SetIfEquals(name string, expected oid.ID, expectedAny bool, newID oid.ID) (bool, error) {
	if err := checkName(name); err != nil {
		return false, err
	}
	terminal, curID, curOK, err := d.Follow(name)
	if err != nil {
		return false, err
	}
	if terminal == "" {
		terminal = name
	}

	lf, err := lockfile.Create(d.refPath(terminal))
	if err != nil {
		return false, nil // lost the race to another writer
	}
	committed := false
	defer func() {
		if !committed {
			lf.Abort()
		}
	}()

	if !expectedAny {
		v, found, err := d.ReadRef(terminal)
		if err != nil {
			return false, err
		}
		curID, curOK = oid.ID{}, found
		if found && v.Kind == Direct {
			curID = v.ID
		}
		if !curOK || curID != expected {
			return false, nil
		}
	}

	if err := lf.Write([]byte(NewDirect(newID).Encode())); err != nil {
		return false, err
	}
	if err := lf.Commit(); err != nil {
		return false, err
	}
	committed = true
	return true, nil
}

// AddIfNew adds name -> id only if it names nothing yet. Existence is
// re-checked after the lock is held, not only before, closing the race where
// two writers both observe "absent" and both proceed to create the ref.
func (d *DiskRefsContainer) AddIfNew(name string, id oid.ID) (bool, error) {
	if err := checkName(name); err != nil {
		return false, err
	}

	lf, err := lockfile.Create(d.refPath(name))
	if err != nil {
		return false, nil
	}
	committed := false
	defer func() {
		if !committed {
			lf.Abort()
		}
	}()

	_, found, err := d.ReadRef(name)
	if err != nil {
		return false, err
	}
	if found {
		return false, nil
	}

	if err := lf.Write([]byte(NewDirect(id).Encode())); err != nil {
		return false, err
	}
	if err := lf.Commit(); err != nil {
		return false, err
	}
	committed = true
	return true, nil
}

func (d *DiskRefsContainer) RemoveIfEquals(name string, expected oid.ID, expectedAny bool) (bool, error) {
	if err := checkName(name); err != nil {
		return false, err
	}

	lf, err := lockfile.Create(d.refPath(name))
	if err != nil {
		return false, nil
	}
	committed := false
	defer func() {
		if !committed {
			lf.Abort()
		}
	}()

	if !expectedAny {
		v, found, err := d.ReadRef(name)
		if err != nil {
			return false, err
		}
		curID := oid.ID{}
		if found && v.Kind == Direct {
			curID = v.ID
		}
		if !found || curID != expected {
			return false, nil
		}
	}

	looseErr := os.Remove(d.refPath(name))
	if looseErr != nil && !os.IsNotExist(looseErr) {
		return false, looseErr
	}
	if err := lf.Abort(); err != nil {
		return false, err
	}
	committed = true

	if err := d.removeFromPacked(name); err != nil {
		return false, err
	}
	return true, nil
}

// removeFromPacked rewrites packed-refs without name's entry, if it has one.
// The rewrite happens under packed-refs' own lock, mirroring
// go-git's dotgit.rewritePackedRefsWithoutRef.
func (d *DiskRefsContainer) removeFromPacked(name string) error {
	packed, err := d.ReadPacked()
	if err != nil {
		return err
	}
	if _, found := packed.Lookup(name); !found {
		return nil
	}

	lf, err := lockfile.Create(filepath.Join(d.root, "packed-refs"))
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			lf.Abort()
		}
	}()

	kept := PackedTable{Peeling: packed.Peeling}
	for _, e := range packed.Entries {
		if e.Name != name {
			kept.Entries = append(kept.Entries, e)
		}
	}

	var buf strings.Builder
	if err := Write(&buf, kept); err != nil {
		return err
	}
	if err := lf.Write([]byte(buf.String())); err != nil {
		return err
	}
	if err := lf.Commit(); err != nil {
		return err
	}
	committed = true
	d.invalidatePacked()
	return nil
}

func (d *DiskRefsContainer) SetSymbolicRef(name, target string) error {
	if err := checkName(name); err != nil {
		return err
	}
	lf, err := lockfile.Create(d.refPath(name))
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			lf.Abort()
		}
	}()
	if err := lf.Write([]byte(NewSymbolic(target).Encode())); err != nil {
		return err
	}
	if err := lf.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func (d *DiskRefsContainer) Set(name string, id oid.ID) error {
	_, err := d.SetIfEquals(name, oid.ID{}, true, id)
	return err
}

func (d *DiskRefsContainer) Remove(name string) error {
	_, err := d.RemoveIfEquals(name, oid.ID{}, true)
	return err
}
