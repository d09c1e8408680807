// Package tree holds the directory tree the picker operates on: an arena
// of nodes keyed by relative path, plus the include/exclude selection
// state layered on top (selection.go).
package tree

import (
	"fmt"
	"path"
	"strings"
)

// Root is the identity of the synthetic root node.
const Root = "."

// Entry is one row of a traversal result, in traversal order. Paths are
// relative to the scanned root and slash-separated.
type Entry struct {
	Path  string
	IsDir bool
	Size  int64
}

// Node is one filesystem entry in the arena. Children and Parent are
// arena indices; Parent is -1 for the root.
type Node struct {
	Path     string
	IsDir    bool
	Size     int64
	Parent   int
	Children []int
}

// MalformedTreeError reports a traversal result that does not form a
// single rooted tree. It signals a bug in the traversal collaborator,
// not a user error.
type MalformedTreeError struct {
	Path   string
	Reason string
}

func (e *MalformedTreeError) Error() string {
	return fmt.Sprintf("malformed tree at %q: %s", e.Path, e.Reason)
}

// UnknownNodeError reports an identity that is not in the tree. Callers
// only ever pass identities obtained from the tree itself, so this is a
// contract violation.
type UnknownNodeError struct {
	Path string
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("unknown node %q", e.Path)
}

// Tree is the arena. It is built once from a traversal result and is
// never restructured afterwards; only selection state mutates.
type Tree struct {
	nodes []Node
	index map[string]int

	// fileDesc[i] counts file nodes in the subtree rooted at i.
	// Directories with zero file descendants resolve like files.
	fileDesc []int

	defaultPolarity Polarity
	explicit        map[int]Polarity
	agg             map[int]State
}

// Build constructs a Tree from an ordered traversal result. The root
// entry "." is synthesized if the traversal did not emit it. Every
// non-root entry must have its parent directory appear earlier in the
// list; anything else is a MalformedTreeError.
func Build(entries []Entry) (*Tree, error) {
	t := &Tree{
		index:    make(map[string]int, len(entries)+1),
		explicit: make(map[int]Polarity),
		agg:      make(map[int]State),
	}

	t.nodes = append(t.nodes, Node{Path: Root, IsDir: true, Parent: -1})
	t.index[Root] = 0

	for _, e := range entries {
		p := strings.TrimPrefix(path.Clean(strings.ReplaceAll(e.Path, "\\", "/")), "./")
		if p == Root || p == "" {
			continue // root already present
		}
		if _, ok := t.index[p]; ok {
			return nil, &MalformedTreeError{Path: p, Reason: "duplicate identity"}
		}

		parent := path.Dir(p)
		pi, ok := t.index[parent]
		if !ok {
			return nil, &MalformedTreeError{Path: p, Reason: fmt.Sprintf("parent %q not seen before child", parent)}
		}
		if !t.nodes[pi].IsDir {
			return nil, &MalformedTreeError{Path: p, Reason: fmt.Sprintf("parent %q is not a directory", parent)}
		}

		id := len(t.nodes)
		t.nodes = append(t.nodes, Node{
			Path:   p,
			IsDir:  e.IsDir,
			Size:   e.Size,
			Parent: pi,
		})
		t.index[p] = id
		t.nodes[pi].Children = append(t.nodes[pi].Children, id)
	}

	t.fileDesc = make([]int, len(t.nodes))
	for i := len(t.nodes) - 1; i >= 0; i-- {
		n := &t.nodes[i]
		if !n.IsDir {
			t.fileDesc[i] = 1
		}
		if n.Parent >= 0 {
			t.fileDesc[n.Parent] += t.fileDesc[i]
		}
	}

	return t, nil
}

// Len returns the number of nodes, root included.
func (t *Tree) Len() int { return len(t.nodes) }

// Get returns the node for the given identity.
func (t *Tree) Get(identity string) (*Node, error) {
	id, ok := t.index[identity]
	if !ok {
		return nil, &UnknownNodeError{Path: identity}
	}
	return &t.nodes[id], nil
}

// Paths returns every identity in traversal order, root first.
func (t *Tree) Paths() []string {
	out := make([]string, len(t.nodes))
	for i, n := range t.nodes {
		out[i] = n.Path
	}
	return out
}

// ChildrenOf returns the identities of a node's children in traversal
// order.
func (t *Tree) ChildrenOf(identity string) ([]string, error) {
	id, ok := t.index[identity]
	if !ok {
		return nil, &UnknownNodeError{Path: identity}
	}
	kids := t.nodes[id].Children
	out := make([]string, len(kids))
	for i, c := range kids {
		out[i] = t.nodes[c].Path
	}
	return out, nil
}

// AncestorsOf returns the identities from the node's parent up to the
// root.
func (t *Tree) AncestorsOf(identity string) ([]string, error) {
	id, ok := t.index[identity]
	if !ok {
		return nil, &UnknownNodeError{Path: identity}
	}
	var out []string
	for p := t.nodes[id].Parent; p >= 0; p = t.nodes[p].Parent {
		out = append(out, t.nodes[p].Path)
	}
	return out, nil
}

// Depth returns the number of path segments below the root: the root is
// 0, a top-level entry is 1.
func (t *Tree) Depth(identity string) (int, error) {
	id, ok := t.index[identity]
	if !ok {
		return 0, &UnknownNodeError{Path: identity}
	}
	d := 0
	for p := t.nodes[id].Parent; p >= 0; p = t.nodes[p].Parent {
		d++
	}
	return d, nil
}

// walkSubtree calls fn for id and every descendant, pre-order.
func (t *Tree) walkSubtree(id int, fn func(int)) {
	fn(id)
	for _, c := range t.nodes[id].Children {
		t.walkSubtree(c, fn)
	}
}
