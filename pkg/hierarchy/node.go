// Package hierarchy organizes segment keys into forests by containment:
// a segment is placed under the segments it specializes.
package hierarchy

import (
	"strings"

	"github.com/kraitsura/segment_viewer/pkg/segment"
)

// Node is one attachment point of a segment in a forest. The same segment
// may appear at several paths; nodes are identified by Path, not by key.
type Node struct {
	Key           segment.Key
	SerializedKey string
	Path          []string         // serialized keys from the root to this node
	Children      map[string]*Node // keyed by child SerializedKey

	order []string // child insertion order
}

func newNode(key segment.Key, serialized string, parentPath []string) *Node {
	path := make([]string, len(parentPath), len(parentPath)+1)
	copy(path, parentPath)
	path = append(path, serialized)
	return &Node{
		Key:           key,
		SerializedKey: serialized,
		Path:          path,
		Children:      make(map[string]*Node),
	}
}

// ChildList returns children in insertion order.
func (n *Node) ChildList() []*Node {
	out := make([]*Node, 0, len(n.order))
	for _, k := range n.order {
		out = append(out, n.Children[k])
	}
	return out
}

// IsLeaf returns true if the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Depth is the number of ancestors above the node.
func (n *Node) Depth() int {
	return len(n.Path) - 1
}

// addChild attaches a child unless one with the same key already exists,
// so re-insertion is idempotent.
func (n *Node) addChild(key segment.Key, serialized string) *Node {
	if existing, ok := n.Children[serialized]; ok {
		return existing
	}
	child := newNode(key, serialized, n.Path)
	n.Children[serialized] = child
	n.order = append(n.order, serialized)
	return child
}

// Forest is an ordered set of root nodes. Name is the dimension for
// per-dimension forests and empty for the combined forest.
type Forest struct {
	Name string

	roots map[string]*Node
	order []string
}

// NewForest returns an empty forest.
func NewForest(name string) *Forest {
	return &Forest{
		Name:  name,
		roots: make(map[string]*Node),
	}
}

func (f *Forest) addRoot(key segment.Key, serialized string) *Node {
	if existing, ok := f.roots[serialized]; ok {
		return existing
	}
	root := newNode(key, serialized, nil)
	f.roots[serialized] = root
	f.order = append(f.order, serialized)
	return root
}

// Roots returns root nodes in insertion order.
func (f *Forest) Roots() []*Node {
	out := make([]*Node, 0, len(f.order))
	for _, k := range f.order {
		out = append(out, f.roots[k])
	}
	return out
}

// Root returns the root with the given serialized key.
func (f *Forest) Root(serialized string) (*Node, bool) {
	n, ok := f.roots[serialized]
	return n, ok
}

// Find resolves a path of serialized keys to a node, or nil.
func (f *Forest) Find(path []string) *Node {
	if len(path) == 0 {
		return nil
	}
	node, ok := f.roots[path[0]]
	if !ok {
		return nil
	}
	for _, step := range path[1:] {
		node, ok = node.Children[step]
		if !ok {
			return nil
		}
	}
	return node
}

// Walk visits nodes depth-first in insertion order. Returning false from
// fn skips the node's subtree.
func (f *Forest) Walk(fn func(*Node) bool) {
	var visit func(*Node)
	visit = func(n *Node) {
		if !fn(n) {
			return
		}
		for _, child := range n.ChildList() {
			visit(child)
		}
	}
	for _, root := range f.Roots() {
		visit(root)
	}
}

// Len counts every node, including each replicated attachment.
func (f *Forest) Len() int {
	count := 0
	f.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}

// PathKey pairs a node path with its serialized key.
type PathKey struct {
	Path string // path joined with " > "
	Key  string
}

// Pairs returns the (path, key) pairs of all nodes in walk order.
func (f *Forest) Pairs() []PathKey {
	var pairs []PathKey
	f.Walk(func(n *Node) bool {
		pairs = append(pairs, PathKey{Path: JoinPath(n.Path), Key: n.SerializedKey})
		return true
	})
	return pairs
}

// JoinPath renders a path for display and map keys.
func JoinPath(path []string) string {
	return strings.Join(path, " > ")
}
