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

	"lab.nexedi.com/kirr/gogit/internal/objstore"
	"lab.nexedi.com/kirr/gogit/refs"
)

const defaultDescription = "Unnamed repository; edit this file 'description' to name the repository.\n"

const defaultConfig = `[core]
	repositoryformatversion = 0
	filemode = true
	bare = false
	logallrefupdates = true
`

// Open discovers the control directory for the repository rooted at path
// and binds a disk-backed Repo over it (spec.md §4.G). A non-bare layout is
// recognized by "<path>/.git/objects"; a bare layout by "<path>/objects"
// and "<path>/refs" both existing.
func Open(path string) (*Repo, error) {
	control, err := discoverControlDir(path)
	if err != nil {
		return nil, err
	}
	store, err := objstore.Open(filepath.Join(control, "objects"))
	if err != nil {
		return nil, err
	}
	r := NewRepo(store, refs.NewDiskRefsContainer(control))
	cfg, err := ReadConfig(control)
	if err != nil {
		return nil, err
	}
	r.Config = cfg
	return r, nil
}

func discoverControlDir(path string) (string, error) {
	nonBare := filepath.Join(path, ".git")
	if isDir(filepath.Join(nonBare, "objects")) {
		return nonBare, nil
	}
	if isDir(filepath.Join(path, "objects")) && isDir(filepath.Join(path, "refs")) {
		return path, nil
	}
	return "", &NotGitRepository{Path: path}
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// InitBare creates the directory skeleton of a bare repository rooted at
// control (spec.md §4.G "init_bare"): branches/, refs/, refs/tags/,
// refs/heads/, hooks/, info/, an initialized object store, HEAD symbolic to
// refs/heads/master, a default description, a default config, and an empty
// info/exclude.
func InitBare(control string) (*Repo, error) {
	for _, d := range []string{"branches", "refs", "refs/tags", "refs/heads", "hooks", "info"} {
		if err := os.MkdirAll(filepath.Join(control, d), 0777); err != nil {
			return nil, err
		}
	}

	store, err := objstore.Init(filepath.Join(control, "objects"))
	if err != nil {
		return nil, err
	}

	refcontainer := refs.NewDiskRefsContainer(control)
	if err := refcontainer.SetSymbolicRef("HEAD", "refs/heads/master"); err != nil {
		return nil, err
	}

	if err := os.WriteFile(filepath.Join(control, "description"), []byte(defaultDescription), 0666); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(control, "config"), []byte(defaultConfig), 0666); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(control, "info", "exclude"), nil, 0666); err != nil {
		return nil, err
	}

	r := NewRepo(store, refcontainer)
	cfg, err := ReadConfig(control)
	if err != nil {
		return nil, err
	}
	r.Config = cfg
	return r, nil
}

// Init wraps InitBare after creating path/.git, for a non-bare repository.
func Init(path string) (*Repo, error) {
	control := filepath.Join(path, ".git")
	if err := os.MkdirAll(control, 0777); err != nil {
		return nil, err
	}
	return InitBare(control)
}
