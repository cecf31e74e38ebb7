// Command source-runner reads a paginated REST resource and emits records as
// newline-delimited JSON on stdout. Configuration comes from the environment;
// when REDIS_URL is set the cursor state is checkpointed to Redis so an
// interrupted run resumes where it left off.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/milind-kulkarni-velotio/airbyte/pkg/logging"
	"github.com/milind-kulkarni-velotio/airbyte/pkg/rest"
	"github.com/milind-kulkarni-velotio/airbyte/pkg/statestore"
	"github.com/milind-kulkarni-velotio/airbyte/pkg/stream"
)

// checkpointEvery is the record interval between state checkpoints.
const checkpointEvery = 100

func main() {
	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Pretty: getEnv("LOG_PRETTY", "") != "",
		Output: os.Stderr,
	})

	cfg, err := configFromEnv()
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}

	source, err := rest.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build source")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional Redis-backed state checkpointing.
	var store *statestore.Store
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: redisURL})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Str("redis_url", redisURL).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
		store = statestore.NewStore(redisClient)
		logger.Info().Str("redis_url", redisURL).Msg("State checkpointing enabled")
	}

	go serveMetrics(getEnv("METRICS_PORT", "9090"), logger)

	if err := run(ctx, source, store, os.Stdout, logger); err != nil {
		logger.Fatal().Err(err).Msg("Read failed")
	}
}

// run drives one full read of the source, emitting NDJSON records to stdout
// and checkpointing cursor state as it goes.
func run(ctx context.Context, source *rest.Source, store *statestore.Store, output io.Writer, logger zerolog.Logger) error {
	key := statestore.Key{Source: source.Name(), Stream: source.Name()}

	var state stream.State
	if store != nil {
		stored, err := store.Get(ctx, key)
		switch {
		case err == nil:
			state = stored
			logger.Info().Interface("state", state).Msg("Resuming from stored state")
		case errors.Is(err, statestore.ErrNotFound):
			logger.Info().Msg("No stored state, starting from scratch")
		default:
			logger.Warn().Err(err).Msg("Failed to load state, starting from scratch")
		}
	}

	reader := stream.NewReader(source, stream.ReaderConfig{Logger: &logger})
	out := json.NewEncoder(output)

	records := 0
	it := reader.Read(ctx, state, nil)
	for it.Next() {
		record := it.Record()
		if err := out.Encode(record); err != nil {
			return err
		}

		state = source.UpdatedState(state, record)
		records++

		if store != nil && records%checkpointEvery == 0 {
			if err := store.Set(ctx, key, state); err != nil {
				logger.Warn().Err(err).Msg("Failed to checkpoint state")
			}
		}
	}
	if err := it.Err(); err != nil {
		// Persist what was read before the failure so the next run resumes.
		if store != nil && state != nil {
			if serr := store.Set(ctx, key, state); serr != nil {
				logger.Warn().Err(serr).Msg("Failed to checkpoint state after error")
			}
		}
		return err
	}

	if store != nil && state != nil {
		if err := store.Set(ctx, key, state); err != nil {
			logger.Warn().Err(err).Msg("Failed to persist final state")
		}
	}

	logger.Info().Int("records", records).Msg("Read complete")
	return nil
}

// serveMetrics exposes /metrics and /health on the given port.
func serveMetrics(port string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", healthHandler)

	addr := ":" + port
	logger.Info().Str("addr", addr).Msg("Serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("Metrics server failed")
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// configFromEnv builds the source configuration from environment variables.
func configFromEnv() (rest.Config, error) {
	cfg := rest.Config{
		Name:          os.Getenv("SOURCE_NAME"),
		BaseURL:       os.Getenv("BASE_URL"),
		Path:          os.Getenv("SOURCE_PATH"),
		DataField:     os.Getenv("DATA_FIELD"),
		NextPageField: os.Getenv("NEXT_PAGE_FIELD"),
		CursorField:   os.Getenv("CURSOR_FIELD"),
		CursorParam:   os.Getenv("CURSOR_PARAM"),
	}

	if sizeStr := os.Getenv("PAGE_SIZE"); sizeStr != "" {
		size, err := strconv.Atoi(sizeStr)
		if err != nil {
			return rest.Config{}, errors.New("PAGE_SIZE must be an integer")
		}
		cfg.PageSize = size
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
