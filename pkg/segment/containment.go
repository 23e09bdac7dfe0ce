package segment

// IsSubsetOf reports whether every component of a is also a component of b,
// matching both dimension and value. Equal keys are subsets of each other.
func IsSubsetOf(a, b Key) bool {
	if len(a) > len(b) {
		return false
	}
	values := make(map[string]string, len(b))
	for _, c := range b {
		values[c.Dimension] = c.Value
	}
	for _, c := range a {
		v, ok := values[c.Dimension]
		if !ok || v != c.Value {
			return false
		}
	}
	return true
}

// IsStrictSubsetOf reports whether b is a more specific version of a:
// a is a subset of b and the two are not equal. Since dimensions are unique
// within a key, this holds exactly when a is a subset with fewer components.
func IsStrictSubsetOf(a, b Key) bool {
	return len(a) < len(b) && IsSubsetOf(a, b)
}
