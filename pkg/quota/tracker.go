package quota

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for quota tracking.
var (
	quotaRemaining = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "quota_remaining",
		Help: "Remaining API request budget in the current window by source",
	}, []string{"source"})

	quotaBlocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quota_blocks_total",
		Help: "Total requests blocked due to critical quota by source",
	}, []string{"source"})

	quotaThrottlesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quota_throttles_total",
		Help: "Total requests throttled due to low quota by source",
	}, []string{"source"})
)

// Headers observed by the tracker.
const (
	HeaderRemaining = "X-RateLimit-Remaining"
	HeaderReset     = "X-RateLimit-Reset"
)

// Tracker monitors API quota headers for one source and gates requests.
type Tracker struct {
	source string
	redis  *redis.Client
	logger zerolog.Logger

	// throttleWait is the pause applied in the warning band. Overridable
	// in tests.
	throttleWait time.Duration
}

// NewTracker creates a quota tracker for the named source.
func NewTracker(source string, redisClient *redis.Client, logger zerolog.Logger) *Tracker {
	return &Tracker{
		source:       source,
		redis:        redisClient,
		logger:       logger,
		throttleWait: 1 * time.Second,
	}
}

// GetState retrieves the current quota state from Redis.
// Returns a default healthy state if no data exists yet.
func (t *Tracker) GetState(ctx context.Context) (*State, error) {
	remaining, err := t.redis.Get(ctx, redisKey(t.source, "remaining")).Int()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get quota remaining: %w", err)
	}

	resetTimestamp, err := t.redis.Get(ctx, redisKey(t.source, "reset_timestamp")).Int64()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get quota reset timestamp: %w", err)
	}

	lastUpdateStr, err := t.redis.Get(ctx, redisKey(t.source, "last_update")).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get quota last update: %w", err)
	}

	// No state yet: assume healthy until the first response says otherwise.
	if err == redis.Nil {
		t.logger.Debug().Str("source", t.source).Msg("No quota state in Redis, assuming healthy")
		return &State{
			Remaining:  100,
			ResetAt:    time.Now().Add(60 * time.Second),
			LastUpdate: time.Now(),
			IsHealthy:  true,
		}, nil
	}

	var lastUpdate time.Time
	if lastUpdateStr != "" {
		if err := json.Unmarshal([]byte(lastUpdateStr), &lastUpdate); err != nil {
			return nil, fmt.Errorf("parse quota last update: %w", err)
		}
	}

	state := &State{
		Remaining:  remaining,
		ResetAt:    time.Unix(resetTimestamp, 0),
		LastUpdate: lastUpdate,
	}
	state.UpdateHealth()

	return state, nil
}

// UpdateFromHeaders parses quota headers and updates the Redis state.
// Responses without quota headers are ignored.
func (t *Tracker) UpdateFromHeaders(ctx context.Context, headers http.Header) error {
	remainStr := headers.Get(HeaderRemaining)
	if remainStr == "" {
		return nil
	}

	remaining, err := strconv.Atoi(remainStr)
	if err != nil {
		return fmt.Errorf("parse %s header: %w", HeaderRemaining, err)
	}

	resetSeconds := 60
	if resetStr := headers.Get(HeaderReset); resetStr != "" {
		resetSeconds, err = strconv.Atoi(resetStr)
		if err != nil {
			return fmt.Errorf("parse %s header: %w", HeaderReset, err)
		}
	}

	now := time.Now()
	state := &State{
		Remaining:  remaining,
		ResetAt:    now.Add(time.Duration(resetSeconds) * time.Second),
		LastUpdate: now,
	}
	state.UpdateHealth()

	pipe := t.redis.Pipeline()
	pipe.Set(ctx, redisKey(t.source, "remaining"), remaining, 0)
	pipe.Set(ctx, redisKey(t.source, "reset_timestamp"), state.ResetAt.Unix(), 0)

	lastUpdateJSON, err := json.Marshal(state.LastUpdate)
	if err != nil {
		return fmt.Errorf("marshal quota last update: %w", err)
	}
	pipe.Set(ctx, redisKey(t.source, "last_update"), lastUpdateJSON, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store quota state in redis: %w", err)
	}

	quotaRemaining.WithLabelValues(t.source).Set(float64(remaining))

	logEvent := t.logger.Debug().
		Str("source", t.source).
		Int("remaining", remaining).
		Time("reset_at", state.ResetAt)

	if state.NeedsCriticalBlock() {
		logEvent = t.logger.Error().Str("source", t.source).Int("remaining", remaining)
		logEvent.Msg("API quota critical - requests will be blocked")
	} else if state.NeedsThrottling() {
		logEvent = t.logger.Warn().Str("source", t.source).Int("remaining", remaining)
		logEvent.Msg("API quota low - requests will be throttled")
	} else {
		logEvent.Msg("API quota state updated")
	}

	return nil
}

// ShouldAllowRequest checks whether a request may go out under the current
// quota state. Returns false when the budget is critically low; in the
// warning band the request is allowed after a short throttle pause.
func (t *Tracker) ShouldAllowRequest(ctx context.Context) (bool, error) {
	state, err := t.GetState(ctx)
	if err != nil {
		return false, fmt.Errorf("get quota state: %w", err)
	}

	if state.NeedsCriticalBlock() {
		t.logger.Error().
			Str("source", t.source).
			Int("remaining", state.Remaining).
			Dur("wait", state.TimeUntilReset()).
			Msg("API quota critical - blocking request")

		quotaBlocksTotal.WithLabelValues(t.source).Inc()
		return false, nil
	}

	if state.NeedsThrottling() {
		t.logger.Warn().
			Str("source", t.source).
			Int("remaining", state.Remaining).
			Msg("API quota low - throttling request")

		quotaThrottlesTotal.WithLabelValues(t.source).Inc()
		time.Sleep(t.throttleWait)
	}

	return true, nil
}
