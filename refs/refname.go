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

// Package refs implements the git reference store: ref-name validation, the
// packed-refs codec, and the disk/memory ref containers that map ref names
// to object ids.
package refs

import "strings"

// IsValid reports whether name satisfies the ref-name grammar, the same
// grammar git-check-ref-format implements, applied to a name *without* the
// "refs/" prefix (see CheckRefFormat for the prefixed variant a container
// actually stores names under).
func IsValid(name string) bool {
	if strings.Contains(name, "/.") {
		return false
	}
	if strings.HasPrefix(name, ".") {
		return false
	}
	if !strings.Contains(name, "/") {
		return false
	}
	if strings.Contains(name, "..") {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < 040 || c == 0177 {
			return false
		}
		switch c {
		case ' ', '~', '^', ':', '?', '*', '[', '\\':
			return false
		}
	}
	if strings.HasSuffix(name, "/") || strings.HasSuffix(name, ".") {
		return false
	}
	if strings.HasSuffix(name, ".lock") {
		return false
	}
	if strings.Contains(name, "@{") {
		return false
	}
	return true
}

// CheckRefFormat reports whether name is a valid, fully-qualified reference
// name as accepted by a RefsContainer: either the literal "HEAD", or a name
// starting with "refs/" whose suffix (after that prefix) satisfies IsValid.
func CheckRefFormat(name string) bool {
	if name == "HEAD" {
		return true
	}
	if !strings.HasPrefix(name, "refs/") {
		return false
	}
	return IsValid(name[len("refs/"):])
}
