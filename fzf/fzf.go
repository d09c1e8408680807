// Package fzf derives the filtered, ranked view of the directory tree
// that the picker displays. Rebuilding is pure with respect to the tree:
// it reads selection state for color-coding but never mutates anything,
// so it is safe to recompute on every keystroke.
package fzf

import (
	"sort"

	"github.com/sahilm/fuzzy"

	"github.com/ctxtool/ctx/tree"
)

// Entry is one visible row: a projection of a tree node plus the
// query-dependent match data.
type Entry struct {
	Path  string
	Depth int
	IsDir bool
	State tree.State

	// Score and Spans are only meaningful when the view was built from
	// a non-empty query. Spans holds the matched rune offsets within
	// Path, for highlight rendering.
	Score int
	Spans []int
}

// Rebuild computes the view for a query. An empty query yields every
// node in traversal order, unfiltered and unranked. A non-empty query
// yields only fuzzy matches, ordered by descending score with ties in
// traversal order, so output is deterministic.
func Rebuild(t *tree.Tree, query string) []Entry {
	paths := t.Paths()

	if query == "" {
		out := make([]Entry, 0, len(paths))
		for _, p := range paths {
			out = append(out, makeEntry(t, p, 0, nil))
		}
		return out
	}

	matches := fuzzy.Find(query, paths)
	// The scorer's own ordering leaves equal scores reversed; re-sort so
	// ties fall back to traversal order.
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Index < matches[j].Index
	})
	out := make([]Entry, 0, len(matches))
	for _, m := range matches {
		out = append(out, makeEntry(t, paths[m.Index], m.Score, m.MatchedIndexes))
	}
	return out
}

// RefreshStates re-reads effective selection states into an existing
// view. Toggling changes color, not membership or rank, so there is no
// need to re-run the matcher after a selection mutation.
func RefreshStates(t *tree.Tree, entries []Entry) {
	for i := range entries {
		if s, err := t.EffectiveState(entries[i].Path); err == nil {
			entries[i].State = s
		}
	}
}

func makeEntry(t *tree.Tree, p string, score int, spans []int) Entry {
	e := Entry{Path: p, Score: score, Spans: spans}
	if n, err := t.Get(p); err == nil {
		e.IsDir = n.IsDir
	}
	if d, err := t.Depth(p); err == nil {
		e.Depth = d
	}
	if s, err := t.EffectiveState(p); err == nil {
		e.State = s
	}
	return e
}
