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
	"bytes"
	"strings"
	"testing"

	"lab.nexedi.com/kirr/gogit/oid"
)

func x40(c byte) string {
	return strings.Repeat(string(c), 40)
}

func TestParsePeeledFixture(t *testing.T) {
	input := "# pack-refs with: peeled\n" +
		x40('1') + " refs/tags/v1\n" +
		"^" + x40('2') + "\n" +
		x40('3') + " refs/heads/x\n"

	table, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !table.Peeling {
		t.Fatal("Parse: Peeling = false; want true")
	}
	if len(table.Entries) != 2 {
		t.Fatalf("Parse: got %d entries; want 2", len(table.Entries))
	}

	id1 := oid.MustParse(x40('1'))
	id2 := oid.MustParse(x40('2'))
	id3 := oid.MustParse(x40('3'))

	e0, e1 := table.Entries[0], table.Entries[1]
	if e0.Name != "refs/tags/v1" || e0.ID != id1 || e0.Peeled == nil || *e0.Peeled != id2 {
		t.Errorf("entry 0 = %+v; want refs/tags/v1 %s peeled %s", e0, id1, id2)
	}
	if e1.Name != "refs/heads/x" || e1.ID != id3 || e1.Peeled != nil {
		t.Errorf("entry 1 = %+v; want refs/heads/x %s peeled none", e1, id3)
	}
}

func TestParseNoPeelHeader(t *testing.T) {
	input := x40('1') + " refs/heads/master\n"
	table, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if table.Peeling {
		t.Fatal("Parse: Peeling = true for input with no header")
	}
	if len(table.Entries) != 1 || table.Entries[0].Peeled != nil {
		t.Fatalf("Parse without header: got %+v", table.Entries)
	}
}

func TestParseStrayCaret(t *testing.T) {
	var tests = []string{
		x40('1') + " refs/heads/master\n^" + x40('2') + "\n", // ^ in no-peel mode
		"# pack-refs with: peeled\n^" + x40('1') + "\n",      // ^ with no predecessor
		"# pack-refs with: peeled\n" + x40('1') + " refs/heads/a\n^" + x40('2') + "\n^" + x40('3') + "\n", // two consecutive ^
	}
	for _, input := range tests {
		_, err := Parse(strings.NewReader(input))
		if err == nil {
			t.Errorf("Parse(%q) succeeded; want PackedRefsError", input)
		}
	}
}

func TestWriteSortsAndRoundtrips(t *testing.T) {
	idA := oid.MustParse(x40('a'))
	idB := oid.MustParse(x40('b'))
	idC := oid.MustParse(x40('c'))

	table := PackedTable{
		Peeling: true,
		Entries: []PackedEntry{
			{Name: "refs/heads/zzz", ID: idC},
			{Name: "refs/heads/aaa", ID: idA, Peeled: &idB},
		},
	}

	var buf bytes.Buffer
	if err := Write(&buf, table); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse(Write(table)): %v", err)
	}
	if !got.Peeling {
		t.Fatal("roundtrip lost the peeled header")
	}
	if len(got.Entries) != 2 {
		t.Fatalf("roundtrip: got %d entries; want 2", len(got.Entries))
	}
	if got.Entries[0].Name != "refs/heads/aaa" || got.Entries[1].Name != "refs/heads/zzz" {
		t.Errorf("Write did not sort ascending by name: got %q, %q", got.Entries[0].Name, got.Entries[1].Name)
	}
	if got.Entries[0].Peeled == nil || *got.Entries[0].Peeled != idB {
		t.Errorf("roundtrip lost peeled value for %q", got.Entries[0].Name)
	}
	if got.Entries[1].Peeled != nil {
		t.Errorf("roundtrip invented a peeled value for %q", got.Entries[1].Name)
	}
}

func TestWriteNoPeeledOmitsHeader(t *testing.T) {
	table := PackedTable{Entries: []PackedEntry{
		{Name: "refs/heads/master", ID: oid.MustParse(x40('1'))},
	}}
	var buf bytes.Buffer
	if err := Write(&buf, table); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if strings.Contains(buf.String(), "peeled") {
		t.Errorf("Write emitted peeled header with no peeled entries: %q", buf.String())
	}
}
