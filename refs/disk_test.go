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
	"os"
	"path/filepath"
	"testing"

	"lab.nexedi.com/kirr/gogit/oid"
)

func TestDiskInitHead(t *testing.T) {
	root := t.TempDir()
	d := NewDiskRefsContainer(root)

	if err := d.SetSymbolicRef("HEAD", "refs/heads/master"); err != nil {
		t.Fatalf("SetSymbolicRef: %v", err)
	}
	id := oid.MustParse(x40('a'))
	if err := d.Set("refs/heads/master", id); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := d.Resolve("HEAD")
	if err != nil || got != id {
		t.Fatalf("Resolve(HEAD) = %v, %v; want %s, nil", got, err, id)
	}

	raw, err := os.ReadFile(filepath.Join(root, "HEAD"))
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != "ref: refs/heads/master\n" {
		t.Errorf("HEAD file content = %q", raw)
	}
}

func TestDiskAtomicCAS(t *testing.T) {
	root := t.TempDir()
	d := NewDiskRefsContainer(root)
	a := oid.MustParse(x40('a'))
	b := oid.MustParse(x40('b'))
	c := oid.MustParse(x40('c'))

	if _, err := d.AddIfNew("refs/heads/m", a); err != nil {
		t.Fatal(err)
	}

	ok, err := d.SetIfEquals("refs/heads/m", b, false, c)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("SetIfEquals with wrong expected value succeeded")
	}

	ok, err = d.SetIfEquals("refs/heads/m", a, false, c)
	if err != nil || !ok {
		t.Fatalf("SetIfEquals with correct expected value: %v %v", ok, err)
	}

	got, err := d.Resolve("refs/heads/m")
	if err != nil || got != c {
		t.Fatalf("Resolve after CAS = %v, %v; want %s", got, err, c)
	}
}

func TestDiskSymrefResolution(t *testing.T) {
	root := t.TempDir()
	d := NewDiskRefsContainer(root)
	id := oid.MustParse(x40('d'))

	if err := d.Set("refs/heads/main", id); err != nil {
		t.Fatal(err)
	}
	if err := d.SetSymbolicRef("refs/heads/alias", "refs/heads/main"); err != nil {
		t.Fatal(err)
	}

	terminal, got, ok, err := d.Follow("refs/heads/alias")
	if err != nil || !ok || terminal != "refs/heads/main" || got != id {
		t.Fatalf("Follow(alias) = %q %v %v %v", terminal, got, ok, err)
	}
}

func TestDiskReadsPackedWhenNoLoose(t *testing.T) {
	root := t.TempDir()
	id := oid.MustParse(x40('e'))
	content := id.String() + " refs/heads/packed-only\n"
	if err := os.WriteFile(filepath.Join(root, "packed-refs"), []byte(content), 0666); err != nil {
		t.Fatal(err)
	}

	d := NewDiskRefsContainer(root)
	got, err := d.Resolve("refs/heads/packed-only")
	if err != nil || got != id {
		t.Fatalf("Resolve(packed-only) = %v, %v; want %s", got, err, id)
	}
}

func TestDiskLooseShadowsPacked(t *testing.T) {
	root := t.TempDir()
	packedID := oid.MustParse(x40('1'))
	looseID := oid.MustParse(x40('2'))

	content := packedID.String() + " refs/heads/m\n"
	if err := os.WriteFile(filepath.Join(root, "packed-refs"), []byte(content), 0666); err != nil {
		t.Fatal(err)
	}

	d := NewDiskRefsContainer(root)
	if err := d.Set("refs/heads/m", looseID); err != nil {
		t.Fatal(err)
	}

	got, err := d.Resolve("refs/heads/m")
	if err != nil || got != looseID {
		t.Fatalf("Resolve(m) = %v, %v; want loose value %s", got, err, looseID)
	}
}

func TestDiskGetPeeledTriState(t *testing.T) {
	root := t.TempDir()
	tagID := oid.MustParse(x40('3'))
	commitID := oid.MustParse(x40('4'))
	branchID := oid.MustParse(x40('5'))

	content := "# pack-refs with: peeled\n" +
		tagID.String() + " refs/tags/v1\n" +
		"^" + commitID.String() + "\n" +
		branchID.String() + " refs/heads/master\n"
	if err := os.WriteFile(filepath.Join(root, "packed-refs"), []byte(content), 0666); err != nil {
		t.Fatal(err)
	}

	d := NewDiskRefsContainer(root)

	got, ok, err := d.GetPeeled("refs/tags/v1")
	if err != nil || !ok || got != commitID {
		t.Fatalf("GetPeeled(v1) = %v %v %v; want %s true nil", got, ok, err, commitID)
	}

	got, ok, err = d.GetPeeled("refs/heads/master")
	if err != nil || !ok || got != branchID {
		t.Fatalf("GetPeeled(master) = %v %v %v; want %s true nil (not a tag)", got, ok, err, branchID)
	}

	_, ok, err = d.GetPeeled("refs/heads/unknown")
	if err != nil || ok {
		t.Fatalf("GetPeeled(unknown) = %v %v; want false nil", ok, err)
	}
}

func TestDiskGetPeeledUnknownWithoutHeader(t *testing.T) {
	root := t.TempDir()
	id := oid.MustParse(x40('6'))
	content := id.String() + " refs/tags/v1\n"
	if err := os.WriteFile(filepath.Join(root, "packed-refs"), []byte(content), 0666); err != nil {
		t.Fatal(err)
	}

	d := NewDiskRefsContainer(root)
	_, ok, err := d.GetPeeled("refs/tags/v1")
	if err != nil || ok {
		t.Fatalf("GetPeeled without peeled header = %v %v; want unknown", ok, err)
	}
}

func TestDiskAddIfNewConflict(t *testing.T) {
	root := t.TempDir()
	d := NewDiskRefsContainer(root)
	id := oid.MustParse(x40('a'))

	ok, err := d.AddIfNew("refs/heads/m", id)
	if err != nil || !ok {
		t.Fatalf("first AddIfNew: %v %v", ok, err)
	}
	ok, err = d.AddIfNew("refs/heads/m", id)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("AddIfNew succeeded on an existing name")
	}
}

func TestDiskRemoveIfEqualsAlsoStripsPacked(t *testing.T) {
	root := t.TempDir()
	id := oid.MustParse(x40('7'))
	content := id.String() + " refs/heads/m\n"
	if err := os.WriteFile(filepath.Join(root, "packed-refs"), []byte(content), 0666); err != nil {
		t.Fatal(err)
	}

	d := NewDiskRefsContainer(root)
	ok, err := d.RemoveIfEquals("refs/heads/m", id, false)
	if err != nil || !ok {
		t.Fatalf("RemoveIfEquals: %v %v", ok, err)
	}
	if d.Contains("refs/heads/m") {
		t.Fatal("ref still resolvable after RemoveIfEquals stripped it from packed-refs")
	}
}

func TestDiskKeysMergesLooseAndPacked(t *testing.T) {
	root := t.TempDir()
	packedID := oid.MustParse(x40('8'))
	content := packedID.String() + " refs/heads/packed\n"
	if err := os.WriteFile(filepath.Join(root, "packed-refs"), []byte(content), 0666); err != nil {
		t.Fatal(err)
	}

	d := NewDiskRefsContainer(root)
	if err := d.Set("refs/heads/loose", oid.MustParse(x40('9'))); err != nil {
		t.Fatal(err)
	}

	names, err := d.Keys("refs/heads/")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]bool{"refs/heads/packed": true, "refs/heads/loose": true}
	if len(names) != len(want) {
		t.Fatalf("Keys() = %v; want %v", names, want)
	}
	for _, n := range names {
		if !want[n] {
			t.Errorf("unexpected key %q", n)
		}
	}
}
