// Package ignore walks a directory tree while honoring gitignore rules,
// using go-git's gitignore matcher so nested .gitignore files behave the
// way git itself behaves.
package ignore

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Walker walks a root directory. With a nil matcher (see NewPlainWalker)
// only the .git directory is skipped.
type Walker struct {
	rootPath string
	matcher  gitignore.Matcher
}

// NewWalker reads every .gitignore under rootPath and returns a Walker
// that skips ignored entries.
func NewWalker(rootPath string) (*Walker, error) {
	patterns, err := gitignore.ReadPatterns(osfs.New(rootPath), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read gitignore patterns: %w", err)
	}
	return &Walker{
		rootPath: rootPath,
		matcher:  gitignore.NewMatcher(patterns),
	}, nil
}

// NewPlainWalker returns a Walker that ignores gitignore files entirely.
func NewPlainWalker(rootPath string) *Walker {
	return &Walker{rootPath: rootPath}
}

// Ignored reports whether path is excluded from the walk. The .git
// directory is always excluded.
func (w *Walker) Ignored(path string, isDir bool) (bool, error) {
	if isDir && filepath.Base(path) == ".git" {
		return true, nil
	}
	if w.matcher == nil {
		return false, nil
	}

	relPath, err := filepath.Rel(w.rootPath, path)
	if err != nil {
		return false, err
	}
	if relPath == "." {
		return false, nil
	}

	parts := strings.Split(relPath, string(os.PathSeparator))
	return w.matcher.Match(parts, isDir), nil
}

// Walk calls fn for every surviving file and directory under the root,
// including the root itself, in lexical walk order. fn may return
// fs.SkipDir to prune a subtree.
func (w *Walker) Walk(fn func(path string, d fs.DirEntry, isDir bool) error) error {
	return filepath.WalkDir(w.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		isDir := d.IsDir()
		ignored, err := w.Ignored(path, isDir)
		if err != nil {
			return err
		}
		if ignored {
			if isDir {
				return filepath.SkipDir
			}
			return nil
		}

		return fn(path, d, isDir)
	})
}
