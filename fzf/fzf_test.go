package fzf

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctxtool/ctx/tree"
)

func buildTree(t *testing.T) *tree.Tree {
	t.Helper()
	tr, err := tree.Build([]tree.Entry{
		{Path: "src", IsDir: true},
		{Path: "src/main.go", Size: 10},
		{Path: "src/util.go", Size: 5},
		{Path: "docs", IsDir: true},
		{Path: "docs/readme.md", Size: 3},
	})
	require.NoError(t, err)
	tr.Seed(tree.Excluded)
	return tr
}

func viewPaths(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path
	}
	return out
}

func TestRebuildEmptyQuery(t *testing.T) {
	tr := buildTree(t)

	view := Rebuild(tr, "")
	assert.Equal(t, []string{".", "src", "src/main.go", "src/util.go", "docs", "docs/readme.md"}, viewPaths(view))

	// Depth and dir flags come from the tree.
	assert.Equal(t, 0, view[0].Depth)
	assert.True(t, view[1].IsDir)
	assert.Equal(t, 2, view[2].Depth)
	assert.False(t, view[2].IsDir)
}

func TestRebuildFiltersAndRanks(t *testing.T) {
	tr := buildTree(t)

	view := Rebuild(tr, "main")
	require.Len(t, view, 1)
	assert.Equal(t, "src/main.go", view[0].Path)
	assert.NotEmpty(t, view[0].Spans)

	view = Rebuild(tr, "go")
	got := viewPaths(view)
	assert.Contains(t, got, "src/main.go")
	assert.Contains(t, got, "src/util.go")
	assert.NotContains(t, got, "docs/readme.md")
}

// Equal-score matches must come back in traversal order, not whatever
// order the scorer leaves them in.
func TestRebuildTiesKeepTraversalOrder(t *testing.T) {
	var entries []tree.Entry
	var want []string
	for i := 0; i < 20; i++ {
		dir := fmt.Sprintf("dir%02d", i)
		entries = append(entries,
			tree.Entry{Path: dir, IsDir: true},
			tree.Entry{Path: dir + "/file.go", Size: 1},
		)
		want = append(want, dir+"/file.go")
	}
	tr, err := tree.Build(entries)
	require.NoError(t, err)
	tr.Seed(tree.Excluded)

	view := Rebuild(tr, "file")
	require.Len(t, view, 20)

	for _, e := range view[1:] {
		assert.Equal(t, view[0].Score, e.Score, e.Path)
	}
	assert.Equal(t, want, viewPaths(view))
}

func TestRebuildDeterministic(t *testing.T) {
	tr := buildTree(t)

	first := viewPaths(Rebuild(tr, "sc"))
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, viewPaths(Rebuild(tr, "sc")))
	}
}

func TestRebuildNoMatches(t *testing.T) {
	tr := buildTree(t)
	assert.Empty(t, Rebuild(tr, "zzzzzz"))
}

// Selection changes must not affect membership or order, only the state
// carried by each entry.
func TestRebuildIndependentOfSelection(t *testing.T) {
	tr := buildTree(t)

	before := viewPaths(Rebuild(tr, "go"))
	require.NoError(t, tr.Toggle("src/main.go"))
	after := viewPaths(Rebuild(tr, "go"))

	assert.Equal(t, before, after)
}

func TestRefreshStates(t *testing.T) {
	tr := buildTree(t)

	view := Rebuild(tr, "")
	for _, e := range view {
		assert.Equal(t, tree.StateExcluded, e.State, e.Path)
	}

	require.NoError(t, tr.Toggle("src/main.go"))
	RefreshStates(tr, view)

	byPath := make(map[string]tree.State, len(view))
	for _, e := range view {
		byPath[e.Path] = e.State
	}
	assert.Equal(t, tree.StateIncluded, byPath["src/main.go"])
	assert.Equal(t, tree.StatePartial, byPath["src"])
	assert.Equal(t, tree.StateExcluded, byPath["src/util.go"])
	assert.Equal(t, tree.StatePartial, byPath["."])
}
