package statestore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SnapshotReads tracks snapshot reads by result ("hit", "miss")
	SnapshotReads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statestore_reads_total",
			Help: "Total number of state snapshot reads",
		},
		[]string{"result"},
	)

	// SnapshotWrites tracks snapshot writes
	SnapshotWrites = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "statestore_writes_total",
			Help: "Total number of state snapshot writes",
		},
	)

	// StoreErrors tracks store operation errors
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statestore_errors_total",
			Help: "Total number of state store operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
