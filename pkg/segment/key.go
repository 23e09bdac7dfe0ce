// Package segment models segment keys: sets of dimension=value constraints
// that identify a slice of the data.
package segment

import (
	"sort"
	"strings"
)

const (
	// ComponentSeparator joins components in a canonical key.
	ComponentSeparator = "|"
	// ValueSeparator splits a component into dimension and value.
	ValueSeparator = ":"
)

// Component is a single dimension=value constraint.
type Component struct {
	Dimension string `json:"dimension" yaml:"dimension"`
	Value     string `json:"value" yaml:"value"`
}

// String returns the serialized "dim:value" form.
func (c Component) String() string {
	return c.Dimension + ValueSeparator + c.Value
}

// Key is an unordered set of components with unique dimensions.
// A Key with one component is simple, with more it is compound.
type Key []Component

// NewKey builds a Key, rejecting duplicate dimensions.
func NewKey(components ...Component) (Key, error) {
	seen := make(map[string]bool, len(components))
	for _, c := range components {
		if seen[c.Dimension] {
			return nil, &InvalidKeyError{Reason: "duplicate dimension " + c.Dimension}
		}
		seen[c.Dimension] = true
	}
	k := make(Key, len(components))
	copy(k, components)
	return k, nil
}

// Canonical returns a copy of the key sorted in canonical order:
// dimension ascending, case-insensitive, ties broken by raw dimension.
func (k Key) Canonical() Key {
	sorted := make(Key, len(k))
	copy(sorted, k)
	sort.Slice(sorted, func(i, j int) bool {
		li, lj := strings.ToLower(sorted[i].Dimension), strings.ToLower(sorted[j].Dimension)
		if li != lj {
			return li < lj
		}
		return sorted[i].Dimension < sorted[j].Dimension
	})
	return sorted
}

// Serialize returns the canonical string identity of the key.
func (k Key) Serialize() string {
	canon := k.Canonical()
	parts := make([]string, len(canon))
	for i, c := range canon {
		parts[i] = c.String()
	}
	return strings.Join(parts, ComponentSeparator)
}

// String implements fmt.Stringer with the canonical form.
func (k Key) String() string {
	return k.Serialize()
}

// Deserialize parses a "dim:value|dim:value" string.
// The value is everything after the first ':' of each segment.
func Deserialize(s string) (Key, error) {
	parts := strings.Split(s, ComponentSeparator)
	k := make(Key, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, part := range parts {
		dim, value, ok := strings.Cut(part, ValueSeparator)
		if !ok {
			return nil, &MalformedKeyError{Input: s, Segment: part, Reason: "missing ':' separator"}
		}
		if dim == "" {
			return nil, &MalformedKeyError{Input: s, Segment: part, Reason: "empty dimension"}
		}
		if seen[dim] {
			return nil, &MalformedKeyError{Input: s, Segment: part, Reason: "duplicate dimension"}
		}
		seen[dim] = true
		k = append(k, Component{Dimension: dim, Value: value})
	}
	return k, nil
}

// Equal reports whether both keys have the same canonical form.
func (k Key) Equal(other Key) bool {
	return k.Serialize() == other.Serialize()
}

// IsSimple returns true for a single-component key.
func (k Key) IsSimple() bool {
	return len(k) == 1
}

// IsEmpty returns true for a key with no components.
func (k Key) IsEmpty() bool {
	return len(k) == 0
}

// Validate returns an InvalidKeyError for empty keys or duplicate dimensions.
func (k Key) Validate() error {
	if len(k) == 0 {
		return &InvalidKeyError{Reason: "key has no components"}
	}
	seen := make(map[string]bool, len(k))
	for _, c := range k {
		if seen[c.Dimension] {
			return &InvalidKeyError{Key: k.Serialize(), Reason: "duplicate dimension " + c.Dimension}
		}
		seen[c.Dimension] = true
	}
	return nil
}

// Dimensions returns the dimension names in canonical order.
func (k Key) Dimensions() []string {
	canon := k.Canonical()
	dims := make([]string, len(canon))
	for i, c := range canon {
		dims[i] = c.Dimension
	}
	return dims
}

// Value returns the value for a dimension and whether it is present.
func (k Key) Value(dimension string) (string, bool) {
	for _, c := range k {
		if c.Dimension == dimension {
			return c.Value, true
		}
	}
	return "", false
}
