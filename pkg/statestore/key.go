package statestore

import "strings"

// Key identifies one stream's state snapshot.
type Key struct {
	// Source is the connector the stream belongs to.
	Source string

	// Stream is the stream name within the source.
	Stream string
}

// String generates the deterministic Redis key.
// Format: state:<source>:<stream>
func (k Key) String() string {
	parts := []string{"state"}
	if source := strings.TrimSpace(k.Source); source != "" {
		parts = append(parts, source)
	}
	if stream := strings.TrimSpace(k.Stream); stream != "" {
		parts = append(parts, stream)
	}
	return strings.Join(parts, ":")
}
