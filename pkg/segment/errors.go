package segment

import "fmt"

// MalformedKeyError is returned when a serialized key cannot be parsed.
type MalformedKeyError struct {
	Input   string
	Segment string
	Reason  string
}

func (e *MalformedKeyError) Error() string {
	return fmt.Sprintf("malformed segment key %q: segment %q: %s", e.Input, e.Segment, e.Reason)
}

// InvalidKeyError reports a key that can never be placed in a hierarchy,
// such as one with no components.
type InvalidKeyError struct {
	Key    string
	Reason string
}

func (e *InvalidKeyError) Error() string {
	if e.Key == "" {
		return "invalid segment key: " + e.Reason
	}
	return fmt.Sprintf("invalid segment key %q: %s", e.Key, e.Reason)
}
