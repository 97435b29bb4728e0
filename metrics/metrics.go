/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "redismodel"

// Metrics holds the collectors shared by backends and stores.
type Metrics struct {
	// BackendOpsTotal tracks backend commands by operation and status
	BackendOpsTotal *prometheus.CounterVec

	// BackendOpDuration tracks backend command latency in seconds
	BackendOpDuration *prometheus.HistogramVec

	// ConnectionErrors tracks failed dials to the backend
	ConnectionErrors prometheus.Counter

	// CircuitBreakerState tracks current breaker state (0=closed, 1=half-open, 2=open)
	CircuitBreakerState prometheus.Gauge

	// CircuitBreakerStateChanges tracks breaker transitions by new state
	CircuitBreakerStateChanges *prometheus.CounterVec

	// ScansTotal tracks full scans by model namespace and layout
	ScansTotal *prometheus.CounterVec

	// RecordsScanned tracks records decoded by full scans per namespace
	RecordsScanned *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
// A nil reg creates unregistered collectors.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		BackendOpsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "backend_operations_total",
				Help:      "Total backend operations by operation and status",
			},
			[]string{"operation", "status"},
		),
		BackendOpDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "backend_operation_duration_seconds",
				Help:      "Backend operation duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation"},
		),
		ConnectionErrors: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "backend_connection_errors_total",
				Help:      "Total backend connection errors",
			},
		),
		CircuitBreakerState: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_state",
				Help:      "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
			},
		),
		CircuitBreakerStateChanges: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_state_changes_total",
				Help:      "Circuit breaker state transitions by new state",
			},
			[]string{"state"},
		),
		ScansTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scans_total",
				Help:      "Full scans by model namespace and layout",
			},
			[]string{"model", "layout"},
		),
		RecordsScanned: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_scanned_total",
				Help:      "Records decoded by full scans by model namespace",
			},
			[]string{"model"},
		),
	}
}
