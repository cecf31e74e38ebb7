package stream

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for pagination runs.
var (
	streamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stream_requests_total",
		Help: "Total requests issued by source and status",
	}, []string{"source", "status"})

	streamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stream_request_duration_seconds",
		Help:    "Request duration in seconds by source",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"source"})

	streamPagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stream_pages_total",
		Help: "Total pages fetched by source",
	}, []string{"source"})

	streamRecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stream_records_total",
		Help: "Total records yielded by source",
	}, []string{"source"})

	streamRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stream_retries_total",
		Help: "Total retry attempts by source",
	}, []string{"source"})

	streamRetryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stream_retry_backoff_seconds",
		Help:    "Backoff duration for retries by source",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"source"})

	streamRetryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stream_retry_exhausted_total",
		Help: "Total pagination steps that exhausted the retry budget by source",
	}, []string{"source"})
)

// ReaderConfig configures a Reader. The zero value uses the default HTTP
// transport, the default retry schedule and the global logger.
type ReaderConfig struct {
	// Transport sends composed requests. Defaults to NewHTTPTransport(nil).
	Transport Transport

	// Retry is the default backoff schedule. The zero value means
	// DefaultRetryConfig().
	Retry RetryConfig

	// Logger overrides the global logger when non-nil.
	Logger *zerolog.Logger
}

// Reader drives the pagination loop for one source. Execution is strictly
// sequential: one in-flight request at a time, the backoff wait being the
// only suspension point.
type Reader struct {
	source    Source
	transport Transport
	retry     RetryConfig
	logger    zerolog.Logger

	// sleep is swapped out in tests to avoid real waits.
	sleep func(ctx context.Context, wait time.Duration) error
}

// NewReader creates a Reader for the given source.
func NewReader(source Source, cfg ReaderConfig) *Reader {
	transport := cfg.Transport
	if transport == nil {
		transport = NewHTTPTransport(nil)
	}

	retry := cfg.Retry
	if retry == (RetryConfig{}) {
		retry = DefaultRetryConfig()
	}

	var logger zerolog.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	} else {
		logger = log.With().Str("component", "stream-reader").Str("source", source.Name()).Logger()
	}

	return &Reader{
		source:    source,
		transport: transport,
		retry:     retry,
		logger:    logger,
		sleep:     sleepBackoff,
	}
}

// Read starts a pagination run. State and slice are read-only inputs held
// constant for the whole run; pass nil when the source needs neither.
// The returned iterator is single-consumer and not restartable.
func (r *Reader) Read(ctx context.Context, state State, slice Slice) *RecordIterator {
	return &RecordIterator{
		reader: r,
		ctx:    ctx,
		state:  state,
		slice:  slice,
	}
}

// fetch performs one pagination step: compose, send, classify, retrying
// retryable statuses with backoff. The request is recomposed fresh for each
// attempt since token, slice and state do not change within a step.
func (r *Reader) fetch(ctx context.Context, state State, slice Slice, token PageToken) (*Response, error) {
	name := r.source.Name()
	rs := retryState{}

	for {
		req, err := composeRequest(r.source, state, slice, token)
		if err != nil {
			return nil, err
		}

		start := time.Now()
		resp, err := r.transport.Send(ctx, req)
		streamRequestDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

		if err != nil {
			streamRequestsTotal.WithLabelValues(name, "transport_error").Inc()
			r.logger.Error().Err(err).Str("url", req.URL).Msg("Transport failure")
			return nil, err
		}

		streamRequestsTotal.WithLabelValues(name, strconv.Itoa(resp.StatusCode)).Inc()

		if !r.source.RetryableStatus(resp.StatusCode) {
			return resp, nil
		}

		rs.attempt++
		if rs.attempt > r.retry.MaxRetries {
			streamRetryExhaustedTotal.WithLabelValues(name).Inc()
			r.logger.Warn().
				Int("attempts", rs.attempt).
				Int("status", resp.StatusCode).
				Msg("Retry budget exhausted")
			return nil, &BackoffExhaustedError{Attempts: rs.attempt, Response: resp}
		}

		wait, ok := r.source.BackoffTime(resp)
		if !ok {
			wait = r.retry.waitFor(rs.attempt)
		}

		streamRetriesTotal.WithLabelValues(name).Inc()
		streamRetryBackoffSeconds.WithLabelValues(name).Observe(wait.Seconds())

		r.logger.Warn().
			Int("attempt", rs.attempt).
			Int("status", resp.StatusCode).
			Dur("backoff", wait).
			Msg("Retrying request after backoff")

		if err := r.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

// RecordIterator is the pull-based record sequence produced by a run.
// Records are yielded page by page; a page is fully decoded before its
// first record is returned, and abandoning the iterator issues no further
// requests.
type RecordIterator struct {
	reader *Reader
	ctx    context.Context
	state  State
	slice  Slice

	token   PageToken
	page    []Record
	idx     int
	current Record
	done    bool
	err     error
}

// Next advances to the next record, fetching further pages as needed.
// It returns false when the sequence is exhausted or a fatal error
// occurred; check Err after the loop.
func (it *RecordIterator) Next() bool {
	if it.err != nil {
		return false
	}

	for it.idx >= len(it.page) {
		if it.done {
			return false
		}
		if err := it.fetchPage(); err != nil {
			it.err = err
			return false
		}
	}

	it.current = it.page[it.idx]
	it.idx++
	return true
}

// Record returns the record produced by the last successful Next call.
func (it *RecordIterator) Record() Record {
	return it.current
}

// Err returns the error that terminated the run, if any. Records yielded
// before the failing step remain valid.
func (it *RecordIterator) Err() error {
	return it.err
}

// fetchPage runs one step of the pagination state machine: fetch the page
// for the current token, decode it in full, then compute the next token.
// A nil next token marks the run as done after the page drains.
func (it *RecordIterator) fetchPage() error {
	r := it.reader
	name := r.source.Name()

	resp, err := r.fetch(it.ctx, it.state, it.slice, it.token)
	if err != nil {
		return err
	}

	records, err := r.source.ParseResponse(resp, it.state, it.slice, it.token)
	if err != nil {
		return asDecodeError(name, err)
	}

	token, err := r.source.NextPageToken(resp)
	if err != nil {
		return asDecodeError(name, err)
	}

	streamPagesTotal.WithLabelValues(name).Inc()
	streamRecordsTotal.WithLabelValues(name).Add(float64(len(records)))

	r.logger.Debug().
		Int("records", len(records)).
		Bool("more_pages", token != nil).
		Msg("Page fetched")

	it.page = records
	it.idx = 0
	it.token = token
	if token == nil {
		it.done = true
	}
	return nil
}
