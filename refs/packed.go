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
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"lab.nexedi.com/kirr/go123/mem"
	"lab.nexedi.com/kirr/gogit/oid"
)

// PackedRefsError reports a malformed packed-refs stream: invalid hex,
// invalid ref name, or a structurally misplaced '^' line.
type PackedRefsError struct {
	Line string
	Err  error
}

func (e *PackedRefsError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("packed-refs: %q: %s", e.Line, e.Err)
	}
	return fmt.Sprintf("packed-refs: invalid line %q", e.Line)
}

func (e *PackedRefsError) Unwrap() error { return e.Err }

// PackedEntry is one row of a PackedTable.
type PackedEntry struct {
	Name   string
	ID     oid.ID
	Peeled *oid.ID // non-nil only when Table.Peeling and Name names a tag
}

// PackedTable is the parsed contents of a packed-refs file: an ordered list
// of entries, unique by Name, plus whether the file advertised peeled
// annotations at all.
//
// Peeling is tracked separately from "does any entry have a non-nil
// Peeled": a file can carry the "# pack-refs with: peeled" header and still
// have zero tags in it, in which case every entry's Peeled is nil but
// GetPeeled must still treat them as "known not a tag" rather than
// "unknown" (spec.md §3 "Peeled cache entries are authoritative only when
// the packed header advertised peeling").
type PackedTable struct {
	Entries []PackedEntry
	Peeling bool
}

// Lookup returns the entry for name, if present.
func (t PackedTable) Lookup(name string) (PackedEntry, bool) {
	for _, e := range t.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return PackedEntry{}, false
}

const peeledHeader = "# pack-refs with: peeled"

// Parse decodes the packed-refs textual format described in spec.md §4.B.
//
// Lines starting with '#' are skipped (only the peeled-header line, if
// present and first, changes parsing mode). A line starting with '^'
// supplies the peeled id of the immediately preceding data line; two
// consecutive '^' lines, or a '^' line with no preceding data line, is a
// PackedRefsError, as is any '^' line seen while not in peeling mode. End
// of stream flushes any buffered entry with Peeled = nil.
func Parse(r io.Reader) (PackedTable, error) {
	sc := bufio.NewScanner(r)

	var entries []PackedEntry
	var pending *PackedEntry
	peeling := false
	first := true

	flush := func() {
		if pending != nil {
			entries = append(entries, *pending)
			pending = nil
		}
	}

	for sc.Scan() {
		// mem.String casts the scanner's line buffer to a string without
		// copying; the buffer is not reused until the next Scan, and every
		// string we keep past that point (ref names, hex) is derived via
		// further byte copies (oid.Parse, CheckRefFormat don't alias it).
		line := mem.String(sc.Bytes())
		if first {
			first = false
			if line == peeledHeader {
				peeling = true
				continue
			}
		}
		if line == "" {
			continue
		}
		if line[0] == '#' {
			continue
		}
		if line[0] == '^' {
			if !peeling {
				return PackedTable{}, &PackedRefsError{Line: line, Err: fmt.Errorf("found peeled ref in packed-refs without peeled")}
			}
			if pending == nil {
				return PackedTable{}, &PackedRefsError{Line: line, Err: fmt.Errorf("unexpected peeled ref line")}
			}
			pid, err := oid.Parse(line[1:])
			if err != nil {
				return PackedTable{}, &PackedRefsError{Line: line, Err: err}
			}
			pending.Peeled = &pid
			flush()
			continue
		}
		flush()
		name, id, err := splitRefLine(line)
		if err != nil {
			return PackedTable{}, err
		}
		pending = &PackedEntry{Name: name, ID: id}
	}
	if err := sc.Err(); err != nil {
		return PackedTable{}, err
	}
	flush()
	return PackedTable{Entries: entries, Peeling: peeling}, nil
}

func splitRefLine(line string) (name string, id oid.ID, err error) {
	fields := strings.SplitN(line, " ", 2)
	if len(fields) != 2 {
		return "", oid.ID{}, &PackedRefsError{Line: line, Err: fmt.Errorf("invalid ref line")}
	}
	id, err = oid.Parse(fields[0])
	if err != nil {
		return "", oid.ID{}, &PackedRefsError{Line: line, Err: err}
	}
	// strings.Clone: fields[1] aliases the scanner's line buffer (itself a
	// zero-copy cast via mem.String), which is overwritten on the next
	// Scan - name must outlive this call as part of a PackedEntry.
	name = strings.Clone(fields[1])
	if !CheckRefFormat(name) {
		return "", oid.ID{}, &PackedRefsError{Line: line, Err: fmt.Errorf("invalid ref name %q", name)}
	}
	return name, id, nil
}

// Write serializes table in ascending name order. The peeled header is
// emitted iff table.Peeling, matching dulwich's write_packed_refs, which
// keys header emission off of whether a peeled map was supplied at all,
// not off of whether it is non-empty.
func Write(w io.Writer, table PackedTable) error {
	sorted := make([]PackedEntry, len(table.Entries))
	copy(sorted, table.Entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	if table.Peeling {
		if _, err := fmt.Fprintln(w, peeledHeader); err != nil {
			return err
		}
	}
	for _, e := range sorted {
		if _, err := fmt.Fprintf(w, "%s %s\n", e.ID, e.Name); err != nil {
			return err
		}
		if e.Peeled != nil {
			if _, err := fmt.Fprintf(w, "^%s\n", e.Peeled); err != nil {
				return err
			}
		}
	}
	return nil
}
