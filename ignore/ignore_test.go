package ignore

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDir(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func collect(t *testing.T, w *Walker, root string) []string {
	t.Helper()
	var got []string
	err := w.Walk(func(path string, d fs.DirEntry, isDir bool) error {
		rel, err := filepath.Rel(root, path)
		require.NoError(t, err)
		got = append(got, filepath.ToSlash(rel))
		return nil
	})
	require.NoError(t, err)
	return got
}

func TestWalkerGitignore(t *testing.T) {
	root := setupDir(t, map[string]string{
		".gitignore":    "build/\n*.tmp\n",
		"build/out.txt": "generated",
		"src/main.go":   "package main",
		"scratch.tmp":   "temp",
	})

	w, err := NewWalker(root)
	require.NoError(t, err)

	got := collect(t, w, root)
	assert.Contains(t, got, "src/main.go")
	assert.Contains(t, got, ".gitignore")
	assert.NotContains(t, got, "build")
	assert.NotContains(t, got, "build/out.txt")
	assert.NotContains(t, got, "scratch.tmp")
}

// Nested .gitignore files scope to their own directory, like git.
func TestWalkerNestedGitignore(t *testing.T) {
	root := setupDir(t, map[string]string{
		"sub/.gitignore": "local.txt\n",
		"sub/local.txt":  "ignored here",
		"local.txt":      "not ignored at the root",
	})

	w, err := NewWalker(root)
	require.NoError(t, err)

	got := collect(t, w, root)
	assert.Contains(t, got, "local.txt")
	assert.NotContains(t, got, "sub/local.txt")
}

func TestPlainWalker(t *testing.T) {
	root := setupDir(t, map[string]string{
		".gitignore":    "build/\n",
		"build/out.txt": "still walked",
	})

	w := NewPlainWalker(root)
	got := collect(t, w, root)
	assert.Contains(t, got, "build/out.txt")
}

func TestWalkerAlwaysSkipsGit(t *testing.T) {
	root := setupDir(t, map[string]string{
		".git/HEAD": "ref: refs/heads/main",
		"a.txt":     "x",
	})

	w := NewPlainWalker(root)
	got := collect(t, w, root)
	assert.Contains(t, got, "a.txt")
	assert.NotContains(t, got, ".git")
	assert.NotContains(t, got, ".git/HEAD")
}

func TestWalkerSkipDirPruning(t *testing.T) {
	root := setupDir(t, map[string]string{
		"skip/inner.txt": "x",
		"keep/inner.txt": "y",
	})

	w := NewPlainWalker(root)
	var got []string
	err := w.Walk(func(path string, d fs.DirEntry, isDir bool) error {
		rel, rerr := filepath.Rel(root, path)
		require.NoError(t, rerr)
		rel = filepath.ToSlash(rel)
		if rel == "skip" {
			return filepath.SkipDir
		}
		got = append(got, rel)
		return nil
	})
	require.NoError(t, err)
	assert.Contains(t, got, "keep/inner.txt")
	assert.NotContains(t, got, "skip/inner.txt")
}
