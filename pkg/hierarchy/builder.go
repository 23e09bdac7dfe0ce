package hierarchy

import (
	"github.com/kraitsura/segment_viewer/pkg/segment"
)

// candidate is a key with its canonical serialization computed once.
type candidate struct {
	key        segment.Key
	serialized string
}

func prepare(keys []segment.Key) ([]candidate, error) {
	out := make([]candidate, 0, len(keys))
	for _, k := range keys {
		if k.IsEmpty() {
			return nil, &segment.InvalidKeyError{Reason: "key has no components"}
		}
		out = append(out, candidate{key: k, serialized: k.Serialize()})
	}
	return out, nil
}

// BuildCombined places all keys in a single forest.
//
// Placement is greedy, depth-first, first-fit, in input order. Each key is
// offered to every existing root independently, so a compound key whose
// components match several roots is attached once under each of them. A
// key no root accepts becomes a new root.
func BuildCombined(keys []segment.Key) (*Forest, error) {
	cands, err := prepare(keys)
	if err != nil {
		return nil, err
	}

	forest := NewForest("")
	for _, c := range cands {
		if !forest.insert(c) {
			forest.addRoot(c.key, c.serialized)
		}
	}
	return forest, nil
}

// BuildPerDimension builds one forest per dimension that appears in a simple
// key, in order of first appearance. Roots of each forest are exactly the
// simple keys of that dimension. Every compound key is then offered to the
// forest of each of its dimensions, and is left out of a forest none of
// whose roots it specializes.
func BuildPerDimension(keys []segment.Key) ([]*Forest, error) {
	cands, err := prepare(keys)
	if err != nil {
		return nil, err
	}

	var forests []*Forest
	byDimension := make(map[string]*Forest)
	var compound []candidate

	for _, c := range cands {
		if !c.key.IsSimple() {
			compound = append(compound, c)
			continue
		}
		dim := c.key[0].Dimension
		forest, ok := byDimension[dim]
		if !ok {
			forest = NewForest(dim)
			byDimension[dim] = forest
			forests = append(forests, forest)
		}
		forest.addRoot(c.key, c.serialized)
	}

	for _, c := range compound {
		for _, dim := range c.key.Dimensions() {
			if forest, ok := byDimension[dim]; ok {
				forest.insert(c)
			}
		}
	}
	return forests, nil
}

// insert offers c to every root and reports whether any accepted it.
// A root whose key equals c counts as accepted so duplicates never become
// a second root.
func (f *Forest) insert(c candidate) bool {
	if _, ok := f.roots[c.serialized]; ok {
		return true
	}
	placed := false
	for _, root := range f.Roots() {
		if attach(root, c) {
			placed = true
		}
	}
	return placed
}

// attach places c under n if n's key is a strict subset of c. The first
// child (in insertion order) that also accepts c wins; otherwise c becomes
// a direct child of n.
func attach(n *Node, c candidate) bool {
	if !segment.IsStrictSubsetOf(n.Key, c.key) {
		return false
	}
	for _, child := range n.ChildList() {
		if attach(child, c) {
			return true
		}
	}
	n.addChild(c.key, c.serialized)
	return true
}
