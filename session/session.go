// Package session coordinates the selection engine and the search index
// in response to abstract picker commands. It owns the query, the cursor
// and the current filtered view, and knows nothing about terminals or
// key events: the input layer translates keys into method calls and the
// presentation layer renders Snapshot.
package session

import (
	"github.com/ctxtool/ctx/fzf"
	"github.com/ctxtool/ctx/tree"
)

// Status is the lifecycle of an interactive session. Exporting and
// Cancelled are terminal.
type Status int

const (
	Browsing Status = iota
	Exporting
	Cancelled
)

// Session is single-threaded: each command runs to completion before
// the next, and no command suspends mid-mutation.
type Session struct {
	tree   *tree.Tree
	query  string
	cursor int
	view   []fzf.Entry
	status Status
}

// Stats summarizes the selection for the status line.
type Stats struct {
	TotalFiles    int
	IncludedFiles int
	IncludedSize  int64
	VisibleCount  int
}

// Snapshot is the render-ready projection emitted after every command.
type Snapshot struct {
	View   []fzf.Entry
	Cursor int
	Query  string
	Status Status
	Stats  Stats
}

// New builds a session over a fully-constructed tree. The tree must be
// seeded before the session starts; partial trees are never exposed.
func New(t *tree.Tree) *Session {
	s := &Session{tree: t}
	s.view = fzf.Rebuild(t, "")
	return s
}

// Status returns the session lifecycle state.
func (s *Session) Status() Status { return s.status }

// Query returns the active search query.
func (s *Session) Query() string { return s.query }

// SetQuery replaces the query, rebuilds the filtered view and clamps
// the cursor into the new bounds. A no-change call is free.
func (s *Session) SetQuery(q string) {
	if s.status != Browsing || q == s.query {
		return
	}
	s.query = q
	s.view = fzf.Rebuild(s.tree, q)
	s.clampCursor()
}

// ClearQuery empties the query. It reports whether anything changed;
// Escape uses the false case to mean "quit instead".
func (s *Session) ClearQuery() bool {
	if s.query == "" {
		return false
	}
	s.SetQuery("")
	return true
}

// Escape clears a non-empty query, and cancels the session when the
// query is already empty.
func (s *Session) Escape() {
	if s.status != Browsing {
		return
	}
	if !s.ClearQuery() {
		s.status = Cancelled
	}
}

// Quit cancels the session unconditionally.
func (s *Session) Quit() {
	if s.status == Browsing {
		s.status = Cancelled
	}
}

// MoveUp moves the cursor one row up, saturating at the top.
func (s *Session) MoveUp() {
	if s.cursor > 0 {
		s.cursor--
	}
}

// MoveDown moves the cursor one row down, saturating at the bottom.
func (s *Session) MoveDown() {
	if s.cursor+1 < len(s.view) {
		s.cursor++
	}
}

// PageUp moves the cursor up by page rows, saturating.
func (s *Session) PageUp(page int) {
	s.cursor -= page
	if s.cursor < 0 {
		s.cursor = 0
	}
}

// PageDown moves the cursor down by page rows, saturating.
func (s *Session) PageDown(page int) {
	s.cursor += page
	s.clampCursor()
}

// MoveTop jumps to the first row.
func (s *Session) MoveTop() { s.cursor = 0 }

// MoveBottom jumps to the last row.
func (s *Session) MoveBottom() {
	if len(s.view) > 0 {
		s.cursor = len(s.view) - 1
	}
}

// Cursor returns the cursor index into the filtered view.
func (s *Session) Cursor() int { return s.cursor }

// Current returns the entry under the cursor, or false when the view is
// empty.
func (s *Session) Current() (fzf.Entry, bool) {
	if len(s.view) == 0 {
		return fzf.Entry{}, false
	}
	return s.view[s.cursor], true
}

// ToggleCurrent toggles the entry under the cursor. Membership and
// ordering of the view are unaffected; only state colors change. An
// empty view is a no-op, never an error.
func (s *Session) ToggleCurrent() error {
	if s.status != Browsing {
		return nil
	}
	cur, ok := s.Current()
	if !ok {
		return nil
	}
	if err := s.tree.Toggle(cur.Path); err != nil {
		return err
	}
	fzf.RefreshStates(s.tree, s.view)
	return nil
}

// SelectAllVisible marks every entry in the filtered view included.
func (s *Session) SelectAllVisible() error {
	return s.bulk(func(ids []string) error { return s.tree.SetAll(ids, tree.Included) })
}

// DeselectAllVisible marks every entry in the filtered view excluded.
func (s *Session) DeselectAllVisible() error {
	return s.bulk(func(ids []string) error { return s.tree.SetAll(ids, tree.Excluded) })
}

// InvertVisible toggles every entry in the filtered view, in view
// order.
func (s *Session) InvertVisible() error {
	return s.bulk(s.tree.ToggleAll)
}

func (s *Session) bulk(apply func([]string) error) error {
	if s.status != Browsing || len(s.view) == 0 {
		return nil
	}
	ids := make([]string, len(s.view))
	for i, e := range s.view {
		ids[i] = e.Path
	}
	if err := apply(ids); err != nil {
		return err
	}
	fzf.RefreshStates(s.tree, s.view)
	return nil
}

// Export resolves the final included file set from the whole tree — the
// active query never narrows an export — and moves the session to the
// terminal Exporting status.
func (s *Session) Export() []string {
	if s.status != Browsing {
		return nil
	}
	s.status = Exporting
	return s.tree.ResolveIncluded()
}

// Included returns the files currently resolved as included, without
// changing the session status. The status line uses it; Export is the
// terminal form.
func (s *Session) Included() []string {
	return s.tree.ResolveIncluded()
}

// Snapshot emits the render-ready state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		View:   s.view,
		Cursor: s.cursor,
		Query:  s.query,
		Status: s.status,
		Stats: Stats{
			TotalFiles:    s.tree.FileCount(),
			IncludedFiles: len(s.tree.ResolveIncluded()),
			IncludedSize:  s.tree.IncludedSize(),
			VisibleCount:  len(s.view),
		},
	}
}

func (s *Session) clampCursor() {
	if len(s.view) == 0 {
		s.cursor = 0
		return
	}
	if s.cursor >= len(s.view) {
		s.cursor = len(s.view) - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}
