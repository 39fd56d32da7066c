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

import "testing"

func TestCheckRefFormat(t *testing.T) {
	var tests = []struct {
		name string
		ok   bool
	}{
		{"foo", false},                   // no /
		{"refs/.hidden", false},          // /.
		{"refs/heads/master", true},
		{"refs/heads/master.lock", false},
		{"refs/heads/a..b", false},
		{"HEAD", true},
		{"refs/heads/", false},           // trailing /
		{"refs/heads/foo.", false},       // trailing .
		{"refs/heads/foo bar", false},    // space
		{"refs/heads/foo~bar", false},
		{"refs/heads/foo^bar", false},
		{"refs/heads/foo:bar", false},
		{"refs/heads/foo?bar", false},
		{"refs/heads/foo*bar", false},
		{"refs/heads/foo[bar", false},
		{"refs/heads/foo\\bar", false},
		{"refs/heads/foo@{bar", false},
		{"refs/tags/v1.0", true},
		{"refs/remotes/origin/master", true},
		{"other/heads/master", false}, // no refs/ prefix
	}

	for _, tt := range tests {
		got := CheckRefFormat(tt.name)
		if got != tt.ok {
			t.Errorf("CheckRefFormat(%q) = %v; want %v", tt.name, got, tt.ok)
		}
	}
}

func TestIsValidControlChars(t *testing.T) {
	if IsValid("heads/foo\x1fbar") {
		t.Error("IsValid accepted a control character below 0x20")
	}
	if IsValid("heads/foo\x7fbar") {
		t.Error("IsValid accepted DEL (0x7f)")
	}
	if !IsValid("heads/foo\xc2\xa0bar") {
		t.Error("IsValid rejected a byte >= 0x20 that is not otherwise forbidden")
	}
}
