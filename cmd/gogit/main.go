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

// Command gogit is a thin porcelain over package gogit: init, show-ref,
// cat-file and commit, exercising the façade the way the teacher's
// git-backup.go main exercised its own backup/restore verbs.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lab.nexedi.com/kirr/gogit"
	internallog "lab.nexedi.com/kirr/gogit/internal/log"
	"lab.nexedi.com/kirr/gogit/oid"
)

var logger = internallog.New()

func initCmd() *cobra.Command {
	var bare bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create an empty repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			var err error
			if bare {
				_, err = gogit.InitBare(path)
			} else {
				_, err = gogit.Init(path)
			}
			if err != nil {
				return err
			}
			logger.WithField("path", path).Info("initialized repository")
			return nil
		},
	}
	cmd.Flags().BoolVar(&bare, "bare", false, "create a bare repository")
	return cmd
}

func showRefCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show-ref [path]",
		Short: "List every ref and the id it resolves to",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			repo, err := gogit.Open(path)
			if err != nil {
				return err
			}
			refs, err := repo.GetRefs()
			if err != nil {
				return err
			}
			for name, id := range refs {
				fmt.Printf("%s %s\n", id, name)
			}
			return nil
		},
	}
	return cmd
}

func catFileCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "cat-file <sha>",
		Short: "Print the content of an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := oid.Parse(args[0])
			if err != nil {
				return err
			}
			repo, err := gogit.Open(path)
			if err != nil {
				return err
			}
			obj, err := repo.Get(id)
			if err != nil {
				return err
			}
			switch o := obj.(type) {
			case gogit.Blob:
				os.Stdout.Write(o.Data())
			case gogit.Commit:
				fmt.Printf("tree %s\n", o.TreeID())
				for _, p := range o.ParentIDs() {
					fmt.Printf("parent %s\n", p)
				}
				fmt.Printf("\n%s", o.Message())
			case gogit.Tree:
				for _, e := range o.Entries() {
					fmt.Printf("%06o %s %s\n", e.Mode, e.ID, e.Name)
				}
			case gogit.Tag:
				fmt.Printf("object %s\ntype %s\ntag %s\n\n%s", o.TargetID(), o.TargetKind(), o.TagName(), o.Message())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "repo", "r", ".", "path to repository")
	return cmd
}

func commitCmd() *cobra.Command {
	var (
		path      string
		message   string
		author    string
		email     string
		treeHex   string
	)
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Create a commit from an explicit tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			if treeHex == "" {
				return fmt.Errorf("gogit commit: --tree is required (no working-tree index support)")
			}
			treeID, err := oid.Parse(treeHex)
			if err != nil {
				return err
			}
			repo, err := gogit.Open(path)
			if err != nil {
				return err
			}
			committer := gogit.Signature{Name: author, Email: email}
			id, err := repo.DoCommit(message, committer, nil, gogit.CommitParams{Tree: &treeID})
			if err != nil {
				return err
			}
			fmt.Println(id)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "repo", "r", ".", "path to repository")
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().StringVar(&author, "author", "", "author name")
	cmd.Flags().StringVar(&email, "email", "", "author email")
	cmd.Flags().StringVar(&treeHex, "tree", "", "tree id to commit")
	return cmd
}

func main() {
	root := &cobra.Command{
		Use:   "gogit",
		Short: "A content-addressed, git-compatible repository library, exercised from the command line",
	}
	root.AddCommand(initCmd(), showRefCmd(), catFileCmd(), commitCmd())

	if err := root.Execute(); err != nil {
		logger.WithError(err).Error("gogit")
		os.Exit(1)
	}
}
