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
	"fmt"
	"path/filepath"

	"github.com/go-git/gcfg"
)

// gitConfig mirrors the sections a repository's "config" file actually
// carries: gcfg matches a struct field to an INI section by name
// case-insensitively (so Core -> "[core]"), and a map[string]*struct field
// to a subsectioned section (so Remote -> `[remote "origin"]`, keyed by
// "origin"). A field literally named "Section" (the shape this file used to
// have) never matches anything real - ReadConfig would always come back
// empty against an actual git config.
type gitConfig struct {
	Core struct {
		RepositoryFormatVersion string
		FileMode                bool
		Bare                    bool
		LogAllRefUpdates        bool
	}
	Remote map[string]*struct {
		URL    string
		Fetch  string
	}
	Branch map[string]*struct {
		Remote string
		Merge  string
	}
}

// ReadConfig reads controldir/config as an INI file and returns it as
// {section: {key: value}} (spec.md §4.F, §6 - dulwich's get_config
// re-targeted at gcfg, the INI parser the go-git ecosystem uses for this
// exact file). Only the sections gitConfig models are reported; a config
// file with no "config" file at all is reported as a read error, same as
// dulwich's get_config against a missing file.
func ReadConfig(controldir string) (map[string]map[string]string, error) {
	var cfg gitConfig
	// gcfg reports sections and keys gitConfig does not model as non-fatal
	// errors; FatalOnly drops those so such entries are simply ignored.
	if err := gcfg.FatalOnly(gcfg.ReadFileInto(&cfg, filepath.Join(controldir, "config"))); err != nil {
		return nil, err
	}

	out := map[string]map[string]string{
		"core": {
			"repositoryformatversion": cfg.Core.RepositoryFormatVersion,
			"filemode":                fmt.Sprint(cfg.Core.FileMode),
			"bare":                    fmt.Sprint(cfg.Core.Bare),
			"logallrefupdates":        fmt.Sprint(cfg.Core.LogAllRefUpdates),
		},
	}
	for name, remote := range cfg.Remote {
		if remote == nil {
			continue
		}
		out[fmt.Sprintf("remote %q", name)] = map[string]string{
			"url":   remote.URL,
			"fetch": remote.Fetch,
		}
	}
	for name, branch := range cfg.Branch {
		if branch == nil {
			continue
		}
		out[fmt.Sprintf("branch %q", name)] = map[string]string{
			"remote": branch.Remote,
			"merge":  branch.Merge,
		}
	}
	return out, nil
}
