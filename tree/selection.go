package tree

import (
	"fmt"
	"path"

	"github.com/bmatcuk/doublestar/v4"
)

// Polarity is an explicit include/exclude choice placed on a node by a
// toggle or a pattern.
type Polarity int

const (
	Excluded Polarity = iota
	Included
)

func (p Polarity) String() string {
	if p == Included {
		return "included"
	}
	return "excluded"
}

// State is the resolved selection status of a node. Partial only ever
// appears on directories whose descendant files are a mix of included
// and excluded.
type State int

const (
	StateExcluded State = iota
	StateIncluded
	StatePartial
)

func (s State) String() string {
	switch s {
	case StateIncluded:
		return "included"
	case StatePartial:
		return "partial"
	default:
		return "excluded"
	}
}

func polarityState(p Polarity) State {
	if p == Included {
		return StateIncluded
	}
	return StateExcluded
}

// Seed resets every explicit choice and makes the whole tree resolve to
// the given default polarity.
func (t *Tree) Seed(p Polarity) {
	t.defaultPolarity = p
	t.explicit = make(map[int]Polarity)
	t.agg = make(map[int]State)
}

// DefaultPolarity returns the polarity nodes inherit when no ancestor
// carries an explicit choice.
func (t *Tree) DefaultPolarity() Polarity { return t.defaultPolarity }

// Explicit reports the explicit choice on a node, if any.
func (t *Tree) Explicit(identity string) (Polarity, bool, error) {
	id, ok := t.index[identity]
	if !ok {
		return 0, false, &UnknownNodeError{Path: identity}
	}
	p, set := t.explicit[id]
	return p, set, nil
}

// EffectiveState resolves a node's selection status.
//
// A file, or a directory with no file descendants, resolves to its own
// explicit choice, else the nearest explicit ancestor, else the default
// polarity. A directory with file descendants aggregates them: Included
// iff all are included, Excluded iff all are excluded, Partial
// otherwise. Directory aggregates are cached and invalidated only on
// the subtree + ancestor chain a mutation touches.
func (t *Tree) EffectiveState(identity string) (State, error) {
	id, ok := t.index[identity]
	if !ok {
		return 0, &UnknownNodeError{Path: identity}
	}
	return t.effective(id), nil
}

func (t *Tree) effective(id int) State {
	n := &t.nodes[id]
	if n.IsDir && t.fileDesc[id] > 0 {
		if s, ok := t.agg[id]; ok {
			return s
		}
		s := t.aggregate(id)
		t.agg[id] = s
		return s
	}
	return polarityState(t.resolved(id))
}

// resolved walks self-then-ancestors for the nearest explicit choice.
func (t *Tree) resolved(id int) Polarity {
	for i := id; i >= 0; i = t.nodes[i].Parent {
		if p, ok := t.explicit[i]; ok {
			return p
		}
	}
	return t.defaultPolarity
}

func (t *Tree) aggregate(id int) State {
	var inc, exc bool
	for _, c := range t.nodes[id].Children {
		if t.nodes[c].IsDir && t.fileDesc[c] == 0 {
			continue // empty subtrees never force Partial
		}
		switch t.effective(c) {
		case StatePartial:
			return StatePartial
		case StateIncluded:
			inc = true
		case StateExcluded:
			exc = true
		}
		if inc && exc {
			return StatePartial
		}
	}
	if inc {
		return StateIncluded
	}
	return StateExcluded
}

// setExplicit places an explicit choice on a node. A directory choice
// clears every descendant explicit so the directory becomes the single
// source of truth for its subtree. Cached aggregates along the subtree
// and the ancestor chain are dropped.
func (t *Tree) setExplicit(id int, p Polarity) {
	t.walkSubtree(id, func(i int) {
		delete(t.explicit, i)
		delete(t.agg, i)
	})
	t.explicit[id] = p
	for a := t.nodes[id].Parent; a >= 0; a = t.nodes[a].Parent {
		delete(t.agg, a)
	}
}

// Toggle flips a node to the opposite of its current effective state.
// A Partial directory toggles to Included.
func (t *Tree) Toggle(identity string) error {
	id, ok := t.index[identity]
	if !ok {
		return &UnknownNodeError{Path: identity}
	}
	next := Included
	if t.effective(id) == StateIncluded {
		next = Excluded
	}
	t.setExplicit(id, next)
	return nil
}

// Set places an explicit polarity on a node regardless of its current
// state, with the same descendant-clearing semantics as Toggle.
func (t *Tree) Set(identity string, p Polarity) error {
	id, ok := t.index[identity]
	if !ok {
		return &UnknownNodeError{Path: identity}
	}
	t.setExplicit(id, p)
	return nil
}

// ApplyPattern sets explicit = p on every node whose path or base name
// matches the doublestar glob. Matching the base name lets `*.rs` reach
// nested files. Patterns are last-writer-wins in the order the caller
// applies them; a pattern with zero matches changes nothing.
func (t *Tree) ApplyPattern(p Polarity, glob string) error {
	if !doublestar.ValidatePattern(glob) {
		return fmt.Errorf("invalid glob pattern %q", glob)
	}
	for id, n := range t.nodes {
		if n.Path == Root {
			continue
		}
		ok, err := doublestar.Match(glob, n.Path)
		if err != nil {
			return fmt.Errorf("glob %q against %q: %w", glob, n.Path, err)
		}
		if !ok {
			ok, err = doublestar.Match(glob, path.Base(n.Path))
			if err != nil {
				return fmt.Errorf("glob %q against %q: %w", glob, n.Path, err)
			}
		}
		if ok {
			t.setExplicit(id, p)
		}
	}
	return nil
}

// SetAll applies Set to each identity in order.
func (t *Tree) SetAll(identities []string, p Polarity) error {
	for _, id := range identities {
		if err := t.Set(id, p); err != nil {
			return err
		}
	}
	return nil
}

// ToggleAll applies Toggle to each identity in order. Order matters: a
// directory toggle clears its descendants, and a later toggle of a
// descendant flips it relative to that new state.
func (t *Tree) ToggleAll(identities []string) error {
	for _, id := range identities {
		if err := t.Toggle(id); err != nil {
			return err
		}
	}
	return nil
}

// ResolveIncluded returns every file whose effective state is Included,
// in traversal order. It always reflects the whole tree, never a
// filtered view.
func (t *Tree) ResolveIncluded() []string {
	var out []string
	for id, n := range t.nodes {
		if !n.IsDir && t.effective(id) == StateIncluded {
			out = append(out, n.Path)
		}
	}
	return out
}

// IncludedSize sums the sizes of the currently included files.
func (t *Tree) IncludedSize() int64 {
	var total int64
	for id, n := range t.nodes {
		if !n.IsDir && t.effective(id) == StateIncluded {
			total += n.Size
		}
	}
	return total
}

// FileCount returns the number of file nodes in the tree.
func (t *Tree) FileCount() int {
	return t.fileDesc[0]
}
