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

// Package lockfile implements the locked-write primitive spec.md §4.D
// relies on for atomic reference updates: a "<path>.lock" file is
// exclusively created, written to, and either renamed over the target (on
// Commit) or removed (on Abort). The lock file itself is the mutual
// exclusion token - concurrent writers race to create it, and exactly one
// wins.
package lockfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// Lockfile is a scoped exclusive-write handle over a single target path.
type Lockfile struct {
	path     string // the target path this lock protects
	lockpath string // path + ".lock"
	f        *os.File
	done     bool
}

// Create acquires the lock for path: it creates path's parent directories
// (spec.md §4.D: "Directory creation along the ref path is performed before
// lock acquisition"), then exclusively creates "<path>.lock". If that file
// already exists, Create fails - another writer currently holds the lock.
func Create(path string) (*Lockfile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0777); err != nil {
		return nil, err
	}
	lockpath := path + ".lock"
	f, err := os.OpenFile(lockpath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0666)
	if err != nil {
		return nil, fmt.Errorf("lockfile: %s: %w", path, err)
	}
	return &Lockfile{path: path, lockpath: lockpath, f: f}, nil
}

// Write appends data to the lock file's content.
func (l *Lockfile) Write(data []byte) error {
	_, err := l.f.Write(data)
	return err
}

// Commit closes the lock file and renames it over the target path,
// publishing its content atomically to any reader of path.
func (l *Lockfile) Commit() error {
	if l.done {
		return nil
	}
	l.done = true
	if err := l.f.Close(); err != nil {
		os.Remove(l.lockpath)
		return err
	}
	return os.Rename(l.lockpath, l.path)
}

// Abort closes and removes the lock file without touching the target path.
// It is always safe to call, including after Commit (a no-op then).
func (l *Lockfile) Abort() error {
	if l.done {
		return nil
	}
	l.done = true
	l.f.Close()
	return os.Remove(l.lockpath)
}
