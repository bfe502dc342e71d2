// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for BookingOutcomes.
const (
	OutcomeOK                   = "ok"
	OutcomeListingUnavailable   = "listing_unavailable"
	OutcomeInvalidActor         = "invalid_actor"
	OutcomeStaleRequest         = "stale_request"
	OutcomeListingAlreadyLocked = "listing_already_locked"
	OutcomeError                = "error"
)

var (
	BookingOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "farmhub_booking_operations_total",
		Help: "Booking coordinator operations by outcome",
	}, []string{"operation", "outcome"})

	SweepTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "farmhub_sweep_transitions_total",
		Help: "Sibling requests moved to Item Unavailable, by result",
	}, []string{"result"})

	RepairRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "farmhub_repair_runs_total",
		Help: "Completed runs of the locked listing repair job",
	})

	ChannelRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "farmhub_channel_sequence_retries_total",
		Help: "Message appends retried after losing the sequence race",
	})

	RPCLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "farmhub_rpc_duration_seconds",
		Help:    "gRPC handler latency",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"method", "code"})
)
