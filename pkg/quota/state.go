// Package quota implements shared API quota tracking and request gating.
// It monitors the X-RateLimit-Remaining and X-RateLimit-Reset response
// headers and stores the state in Redis so that every worker reading from
// the same API shares one view of the remaining budget.
package quota

import (
	"fmt"
	"time"
)

// Thresholds for quota decisions.
const (
	// RemainingCritical blocks all requests when the remaining budget falls
	// below this value, leaving headroom for in-flight requests.
	RemainingCritical = 5

	// RemainingWarning applies throttling when the remaining budget falls
	// below this value.
	RemainingWarning = 20

	// RemainingHealthy indicates normal operation.
	RemainingHealthy = 50
)

// redisKey builds the per-source Redis key for one state field.
func redisKey(source, field string) string {
	return fmt.Sprintf("quota:%s:%s", source, field)
}

// State is the current API quota state for one source, shared across all
// readers via Redis.
type State struct {
	// Remaining is the request budget left in the current window, from the
	// X-RateLimit-Remaining header.
	Remaining int `json:"remaining"`

	// ResetAt is when the quota window resets, from the X-RateLimit-Reset
	// header (seconds until reset).
	ResetAt time.Time `json:"reset_at"`

	// LastUpdate is when this state was last observed.
	LastUpdate time.Time `json:"last_update"`

	// IsHealthy is true when Remaining >= RemainingHealthy.
	IsHealthy bool `json:"is_healthy"`
}

// IsStale returns true if the state is older than maxAge.
func (s *State) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// NeedsCriticalBlock returns true if requests should be blocked.
func (s *State) NeedsCriticalBlock() bool {
	return s.Remaining < RemainingCritical
}

// NeedsThrottling returns true if requests should be slowed down.
func (s *State) NeedsThrottling() bool {
	return s.Remaining < RemainingWarning && !s.NeedsCriticalBlock()
}

// TimeUntilReset returns the duration until the quota window resets.
// Returns 0 if the reset time has already passed.
func (s *State) TimeUntilReset() time.Duration {
	duration := time.Until(s.ResetAt)
	if duration < 0 {
		return 0
	}
	return duration
}

// UpdateHealth updates IsHealthy from the current Remaining value.
func (s *State) UpdateHealth() {
	s.IsHealthy = s.Remaining >= RemainingHealthy
}
