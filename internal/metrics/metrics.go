// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

// Package metrics defines the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SourceFetchDuration tracks CSV feed fetch+parse latency.
	SourceFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "datapulse_source_fetch_duration_seconds",
			Help:    "Duration of CSV feed fetch and parse operations",
			Buckets: prometheus.DefBuckets,
		},
	)

	// SourceFetchErrors counts failed feed fetches by reason.
	SourceFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datapulse_source_fetch_errors_total",
			Help: "Total CSV feed fetch failures",
		},
		[]string{"reason"},
	)

	// SnapshotCacheHits counts snapshot cache hits.
	SnapshotCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "datapulse_snapshot_cache_hits_total",
			Help: "Snapshot requests served from the TTL cache",
		},
	)

	// SnapshotCacheMisses counts snapshot cache misses (absent, expired or
	// forced refresh).
	SnapshotCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "datapulse_snapshot_cache_misses_total",
			Help: "Snapshot requests that required recomputation",
		},
	)

	// RefreshRuns counts refresh controller outcomes.
	RefreshRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datapulse_refresh_runs_total",
			Help: "Refresh controller runs by result (fresh, cached, fallback, empty)",
		},
		[]string{"result"},
	)

	// AggregationDuration tracks the metrics aggregation pass.
	AggregationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "datapulse_aggregation_duration_seconds",
			Help:    "Duration of one snapshot aggregation pass",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
	)

	// AssistantRequests counts assistant webhook turns by outcome.
	AssistantRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datapulse_assistant_requests_total",
			Help: "Assistant webhook calls by outcome (success, transport_error, format_error)",
		},
		[]string{"outcome"},
	)

	// AssistantRequestDuration tracks assistant webhook latency.
	AssistantRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "datapulse_assistant_request_duration_seconds",
			Help:    "Duration of assistant webhook calls",
			Buckets: prometheus.DefBuckets,
		},
	)

	// DispatchedEffects counts update-instruction effects applied to UI state.
	DispatchedEffects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datapulse_dispatched_effects_total",
			Help: "Update instruction effects applied, by effect type",
		},
		[]string{"effect"},
	)

	// CircuitBreakerState reports breaker state per outbound dependency
	// (0=closed, 1=half-open, 2=open).
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "datapulse_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// APIRequestsTotal counts HTTP requests by route and status class.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datapulse_api_requests_total",
			Help: "Total HTTP API requests",
		},
		[]string{"route", "status"},
	)

	// APIRequestDuration tracks HTTP request latency by route.
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "datapulse_api_request_duration_seconds",
			Help:    "HTTP API request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// WebsocketClients gauges currently connected dashboard sockets.
	WebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "datapulse_websocket_clients",
			Help: "Currently connected websocket clients",
		},
	)
)
