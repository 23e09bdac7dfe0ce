package hierarchy

import (
	"github.com/kraitsura/segment_viewer/pkg/segment"
)

// Sanitize drops keys the builders would reject or repeat: empty keys,
// keys with duplicate dimensions, and later duplicates of a key already
// seen. Order of the remaining keys is preserved. The returned errors
// describe each dropped invalid key; duplicates are dropped silently.
func Sanitize(keys []segment.Key) ([]segment.Key, []error) {
	valid := make([]segment.Key, 0, len(keys))
	var dropped []error
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if err := k.Validate(); err != nil {
			dropped = append(dropped, err)
			continue
		}
		s := k.Serialize()
		if seen[s] {
			continue
		}
		seen[s] = true
		valid = append(valid, k)
	}
	return valid, dropped
}
