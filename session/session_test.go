package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctxtool/ctx/tree"
)

func newSession(t *testing.T) *Session {
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
	return New(tr)
}

func TestNewShowsFullView(t *testing.T) {
	s := newSession(t)

	snap := s.Snapshot()
	assert.Equal(t, Browsing, snap.Status)
	assert.Equal(t, "", snap.Query)
	assert.Equal(t, 0, snap.Cursor)
	assert.Equal(t, 6, snap.Stats.VisibleCount) // root + 5 entries
	assert.Equal(t, 3, snap.Stats.TotalFiles)
	assert.Equal(t, 0, snap.Stats.IncludedFiles)
}

func TestSaturatingNavigation(t *testing.T) {
	assert := assert.New(t)
	s := newSession(t)

	s.MoveUp()
	assert.Equal(0, s.Cursor())

	last := len(s.Snapshot().View) - 1
	for i := 0; i < last+10; i++ {
		s.MoveDown()
	}
	assert.Equal(last, s.Cursor())

	s.PageDown(100)
	assert.Equal(last, s.Cursor())

	s.PageUp(100)
	assert.Equal(0, s.Cursor())

	s.MoveBottom()
	assert.Equal(last, s.Cursor())
	s.MoveTop()
	assert.Equal(0, s.Cursor())
}

func TestSetQueryClampsCursor(t *testing.T) {
	s := newSession(t)

	s.MoveBottom()
	require.Greater(t, s.Cursor(), 0)

	// Narrowing the view must pull the cursor back in bounds.
	s.SetQuery("main")
	snap := s.Snapshot()
	require.Len(t, snap.View, 1)
	assert.Equal(t, 0, snap.Cursor)
	assert.Equal(t, "src/main.go", snap.View[0].Path)
}

func TestEscapeClearsThenCancels(t *testing.T) {
	s := newSession(t)

	s.SetQuery("main")
	s.Escape()
	assert.Equal(t, Browsing, s.Status())
	assert.Equal(t, "", s.Query())
	assert.Equal(t, 6, len(s.Snapshot().View))

	s.Escape()
	assert.Equal(t, Cancelled, s.Status())
}

func TestToggleCurrent(t *testing.T) {
	s := newSession(t)

	s.SetQuery("main")
	require.NoError(t, s.ToggleCurrent())

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, tree.StateIncluded, cur.State)
	assert.Equal(t, []string{"src/main.go"}, s.Included())

	// Toggling changes state in place, never membership.
	assert.Len(t, s.Snapshot().View, 1)
}

func TestToggleCurrentEmptyView(t *testing.T) {
	s := newSession(t)

	s.SetQuery("zzzzzz")
	require.Empty(t, s.Snapshot().View)

	assert.NoError(t, s.ToggleCurrent())
	assert.Equal(t, Browsing, s.Status())
	assert.Empty(t, s.Included())
}

func TestBulkVisibleOps(t *testing.T) {
	assert := assert.New(t)
	s := newSession(t)

	// Only the filtered rows are touched.
	s.SetQuery("go")
	require.NoError(t, s.SelectAllVisible())
	assert.Equal([]string{"src/main.go", "src/util.go"}, s.Included())

	require.NoError(t, s.DeselectAllVisible())
	assert.Empty(s.Included())

	require.NoError(t, s.InvertVisible())
	assert.Equal([]string{"src/main.go", "src/util.go"}, s.Included())
}

func TestBulkOnEmptyViewIsNoop(t *testing.T) {
	s := newSession(t)
	s.SetQuery("zzzzzz")

	assert.NoError(t, s.SelectAllVisible())
	assert.NoError(t, s.InvertVisible())
	assert.Empty(t, s.Included())
}

// Export resolves from the whole tree: an active filter that hides every
// included file must not narrow the result.
func TestExportIgnoresFilter(t *testing.T) {
	s := newSession(t)

	s.SetQuery("readme")
	require.NoError(t, s.ToggleCurrent())

	s.SetQuery("main")
	require.NoError(t, s.ToggleCurrent())

	s.SetQuery("zzzzzz")
	require.Empty(t, s.Snapshot().View)

	got := s.Export()
	assert.Equal(t, []string{"src/main.go", "docs/readme.md"}, got)
	assert.Equal(t, Exporting, s.Status())
}

func TestTerminalStatusFreezesSession(t *testing.T) {
	s := newSession(t)
	s.Export()

	s.SetQuery("main")
	assert.Equal(t, "", s.Query())
	assert.NoError(t, s.ToggleCurrent())
	assert.Empty(t, s.Included())
	assert.Nil(t, s.Export())

	s.Escape()
	assert.Equal(t, Exporting, s.Status())
}

func TestQuit(t *testing.T) {
	s := newSession(t)
	s.Quit()
	assert.Equal(t, Cancelled, s.Status())

	// Quit after a terminal status does not overwrite it.
	s2 := newSession(t)
	s2.Export()
	s2.Quit()
	assert.Equal(t, Exporting, s2.Status())
}

func TestSnapshotStats(t *testing.T) {
	s := newSession(t)

	s.SetQuery("main")
	require.NoError(t, s.ToggleCurrent())
	s.ClearQuery()

	snap := s.Snapshot()
	assert.Equal(t, 1, snap.Stats.IncludedFiles)
	assert.Equal(t, int64(10), snap.Stats.IncludedSize)
	assert.Equal(t, 3, snap.Stats.TotalFiles)
	assert.Equal(t, 6, snap.Stats.VisibleCount)
}
