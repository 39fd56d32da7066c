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
	"os"
	"path/filepath"
	"testing"
)

func TestInitNonBareLayout(t *testing.T) {
	root := t.TempDir()

	r, err := Init(root)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if r == nil {
		t.Fatal("Init returned a nil Repo")
	}

	control := filepath.Join(root, ".git")
	for _, d := range []string{"objects", "refs", "refs/heads", "refs/tags", "branches", "hooks", "info"} {
		if fi, err := os.Stat(filepath.Join(control, d)); err != nil || !fi.IsDir() {
			t.Fatalf("expected directory %s to exist: %v", d, err)
		}
	}
	for _, f := range []string{"description", "config", "info/exclude", "HEAD"} {
		if _, err := os.Stat(filepath.Join(control, f)); err != nil {
			t.Fatalf("expected file %s to exist: %v", f, err)
		}
	}

	head, err := os.ReadFile(filepath.Join(control, "HEAD"))
	if err != nil {
		t.Fatalf("reading HEAD: %v", err)
	}
	if got, want := string(head), "ref: refs/heads/master\n"; got != want {
		t.Fatalf("HEAD = %q, want %q", got, want)
	}
}

func TestInitBareLayout(t *testing.T) {
	root := t.TempDir()

	if _, err := InitBare(root); err != nil {
		t.Fatalf("InitBare: %v", err)
	}
	for _, d := range []string{"objects", "refs", "refs/heads"} {
		if fi, err := os.Stat(filepath.Join(root, d)); err != nil || !fi.IsDir() {
			t.Fatalf("expected directory %s to exist: %v", d, err)
		}
	}
}

func TestOpenDiscoversNonBareLayout(t *testing.T) {
	root := t.TempDir()
	if _, err := Init(root); err != nil {
		t.Fatalf("Init: %v", err)
	}

	r, err := Open(root)
	if err != nil {
		t.Fatalf("Open(non-bare): %v", err)
	}
	if r.Store == nil || r.Refs == nil {
		t.Fatalf("Open returned a Repo with a nil Store/Refs: %+v", r)
	}
}

func TestOpenDiscoversBareLayout(t *testing.T) {
	root := t.TempDir()
	if _, err := InitBare(root); err != nil {
		t.Fatalf("InitBare: %v", err)
	}

	r, err := Open(root)
	if err != nil {
		t.Fatalf("Open(bare): %v", err)
	}
	if r.Store == nil || r.Refs == nil {
		t.Fatalf("Open returned a Repo with a nil Store/Refs: %+v", r)
	}
}

func TestOpenRejectsNonRepository(t *testing.T) {
	root := t.TempDir()
	_, err := Open(root)
	if _, ok := err.(*NotGitRepository); !ok {
		t.Fatalf("Open(empty dir): got %v, want *NotGitRepository", err)
	}
}
