// Package rowstate tracks expand/collapse state for a segment hierarchy.
// The state tree mirrors a hierarchy.Forest node for node and is rebuilt
// whenever the forest is; toggles mutate it in place between rebuilds.
package rowstate

import (
	"fmt"
	"strings"

	"github.com/kraitsura/segment_viewer/pkg/hierarchy"
	"github.com/kraitsura/segment_viewer/pkg/segment"
)

// RowState is the UI state of one hierarchy node.
type RowState struct {
	Path          []string
	SerializedKey string
	Key           segment.Key
	Expanded      bool
	Children      map[string]*RowState

	order []string
}

// IsLeaf returns true if the row has no children.
func (r *RowState) IsLeaf() bool {
	return len(r.Children) == 0
}

// ChildList returns children in hierarchy order.
func (r *RowState) ChildList() []*RowState {
	out := make([]*RowState, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.Children[k])
	}
	return out
}

// ParentKey returns the key of the row's parent, or nil for a root.
func (r *RowState) ParentKey() segment.Key {
	if len(r.Path) < 2 {
		return nil
	}
	k, err := segment.Deserialize(r.Path[len(r.Path)-2])
	if err != nil {
		return nil
	}
	return k
}

// ShowsAffordance reports whether a renderer should offer an expand control:
// the row has children, or the backend says its subtree is incomplete.
func ShowsAffordance(r *RowState, hasMore bool) bool {
	return !r.IsLeaf() || hasMore
}

// PathNotFoundError is returned when a path does not resolve in the tree,
// typically a stale path kept across a rebuild.
type PathNotFoundError struct {
	Path    []string
	Missing string
}

func (e *PathNotFoundError) Error() string {
	if len(e.Path) == 0 {
		return "row path not found: empty path"
	}
	return fmt.Sprintf("row path not found: %s (missing %q)", strings.Join(e.Path, " > "), e.Missing)
}

// Tree is the state forest for one hierarchy.Forest.
type Tree struct {
	Name string

	roots map[string]*RowState
	order []string
}

// FromForest builds a collapsed state tree with the forest's shape.
func FromForest(f *hierarchy.Forest) *Tree {
	t := &Tree{
		Name:  f.Name,
		roots: make(map[string]*RowState),
	}
	for _, n := range f.Roots() {
		t.roots[n.SerializedKey] = fromNode(n)
		t.order = append(t.order, n.SerializedKey)
	}
	return t
}

func fromNode(n *hierarchy.Node) *RowState {
	path := make([]string, len(n.Path))
	copy(path, n.Path)
	r := &RowState{
		Path:          path,
		SerializedKey: n.SerializedKey,
		Key:           n.Key,
		Children:      make(map[string]*RowState, len(n.Children)),
	}
	for _, child := range n.ChildList() {
		r.Children[child.SerializedKey] = fromNode(child)
		r.order = append(r.order, child.SerializedKey)
	}
	return r
}

// Roots returns root rows in hierarchy order.
func (t *Tree) Roots() []*RowState {
	out := make([]*RowState, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, t.roots[k])
	}
	return out
}

// HasRoot reports whether a root with the given key exists.
func (t *Tree) HasRoot(serialized string) bool {
	_, ok := t.roots[serialized]
	return ok
}

// Find resolves a path to a row.
func (t *Tree) Find(path []string) (*RowState, error) {
	if len(path) == 0 {
		return nil, &PathNotFoundError{}
	}
	row, ok := t.roots[path[0]]
	if !ok {
		return nil, &PathNotFoundError{Path: path, Missing: path[0]}
	}
	for _, step := range path[1:] {
		row, ok = row.Children[step]
		if !ok {
			return nil, &PathNotFoundError{Path: path, Missing: step}
		}
	}
	return row, nil
}

// Toggle flips the expanded state of the row at path. When any step is
// missing it returns a PathNotFoundError and changes nothing.
func (t *Tree) Toggle(path []string) error {
	row, err := t.Find(path)
	if err != nil {
		return err
	}
	row.Expanded = !row.Expanded
	return nil
}

// SetExpanded sets the expanded state of the row at path.
func (t *Tree) SetExpanded(path []string, expanded bool) error {
	row, err := t.Find(path)
	if err != nil {
		return err
	}
	row.Expanded = expanded
	return nil
}

// SetAll expands or collapses every row.
func (t *Tree) SetAll(expanded bool) {
	t.Walk(func(r *RowState) bool {
		r.Expanded = expanded
		return true
	})
}

// Walk visits rows depth-first; returning false skips the subtree.
func (t *Tree) Walk(fn func(*RowState) bool) {
	var visit func(*RowState)
	visit = func(r *RowState) {
		if !fn(r) {
			return
		}
		for _, child := range r.ChildList() {
			visit(child)
		}
	}
	for _, root := range t.Roots() {
		visit(root)
	}
}

// ExpandedPaths returns the joined paths of every expanded row.
func (t *Tree) ExpandedPaths() []string {
	var out []string
	t.Walk(func(r *RowState) bool {
		if r.Expanded {
			out = append(out, hierarchy.JoinPath(r.Path))
		}
		return true
	})
	return out
}

// Len counts all rows.
func (t *Tree) Len() int {
	n := 0
	t.Walk(func(*RowState) bool {
		n++
		return true
	})
	return n
}
