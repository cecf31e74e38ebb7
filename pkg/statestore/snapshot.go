package statestore

import (
	"time"

	"github.com/milind-kulkarni-velotio/airbyte/pkg/stream"
)

// Snapshot is one persisted state mapping with its write timestamp.
type Snapshot struct {
	// Data is the state mapping handed to the pagination core.
	Data stream.State `json:"data"`

	// SavedAt is when the snapshot was written.
	SavedAt time.Time `json:"saved_at"`
}

// Age returns how long ago the snapshot was written.
func (s *Snapshot) Age() time.Duration {
	return time.Since(s.SavedAt)
}

// IsStale reports whether the snapshot is older than maxAge.
func (s *Snapshot) IsStale(maxAge time.Duration) bool {
	return s.Age() > maxAge
}
