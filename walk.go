// Package ctx assembles selected files from a directory tree into one
// formatted Markdown document. The packages tree, fzf and session hold
// the interactive selection core; this package provides its
// collaborators: traversal, classification, configuration, formatting
// and output delivery.
package ctx

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/ctxtool/ctx/ignore"
	"github.com/ctxtool/ctx/tree"
)

// hiddenAllowlist names dotfiles that stay visible even when hidden
// entries are skipped.
var hiddenAllowlist = map[string]bool{
	".gitignore":     true,
	".gitattributes": true,
	".editorconfig":  true,
	".env":           true,
	".env.example":   true,
}

// Scanner walks a root directory into the ordered entry list the tree
// package builds from. Ignore rules, the hidden-file policy, the size
// cap and text classification are all applied here; the selection core
// receives an already-filtered tree.
type Scanner struct {
	RespectGitignore bool
	ShowHidden       bool
	MaxFileSize      int64
}

// Scan returns the traversal result for rootPath, in lexical walk
// order, paths relative to the root and slash-separated.
func (s *Scanner) Scan(rootPath string) ([]tree.Entry, error) {
	var walker *ignore.Walker
	var err error
	if s.RespectGitignore {
		walker, err = ignore.NewWalker(rootPath)
		if err != nil {
			return nil, err
		}
	} else {
		walker = ignore.NewPlainWalker(rootPath)
	}

	var entries []tree.Entry
	err = walker.Walk(func(path string, d fs.DirEntry, isDir bool) error {
		rel, err := filepath.Rel(rootPath, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil // Build synthesizes the root
		}

		if !s.ShowHidden && hiddenName(d.Name()) {
			if isDir {
				return filepath.SkipDir
			}
			return nil
		}

		e := tree.Entry{Path: rel, IsDir: isDir}
		if !isDir {
			if !IsTextPath(rel) {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil // vanished mid-walk, skip
			}
			if s.MaxFileSize > 0 && info.Size() > s.MaxFileSize {
				return nil
			}
			e.Size = info.Size()
		}

		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func hiddenName(name string) bool {
	if !strings.HasPrefix(name, ".") || name == "." || name == ".." {
		return false
	}
	return !hiddenAllowlist[name]
}
