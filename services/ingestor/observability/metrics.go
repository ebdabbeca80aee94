// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the ingestor.
//
// Metrics are exposed via the /metrics endpoint. The diagnostics
// counters (dangling references, cycles) are the operational signal
// for malformed source hierarchies: the engine resolves them silently,
// so these counters are the only place they surface outside logs.
//
// All metric operations are thread-safe via Prometheus's internal
// locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/AleutianAI/AleutianStandards/pkg/standards"
)

const metricsNamespace = "aleutian"

const ingestorSubsystem = "standards"

// IngestorMetrics holds all Prometheus metrics for ingestion and
// search operations. Initialize once at startup via InitMetrics().
type IngestorMetrics struct {
	// SetsIngestedTotal counts processed standard sets by outcome.
	// Labels: status (success, malformed_input, store_error)
	SetsIngestedTotal *prometheus.CounterVec

	// RecordsProcessedTotal counts records produced by the engine.
	RecordsProcessedTotal prometheus.Counter

	// RecordsUpsertedTotal counts records the index accepted.
	RecordsUpsertedTotal prometheus.Counter

	// DanglingReferencesTotal counts parent chains truncated at a
	// pointer to a missing node.
	DanglingReferencesTotal prometheus.Counter

	// CyclesDetectedTotal counts parent chains truncated at a cycle.
	CyclesDetectedTotal prometheus.Counter

	// EmptySetsTotal counts structurally valid sets with no nodes.
	EmptySetsTotal prometheus.Counter

	// SearchesTotal counts search requests by outcome.
	// Labels: status (success, no_results, invalid_input, api_error)
	SearchesTotal *prometheus.CounterVec
}

// DefaultMetrics is the process-wide metrics instance, set by
// InitMetrics.
var DefaultMetrics *IngestorMetrics

// InitMetrics registers all ingestor metrics on the default registry.
// Panics if called twice (duplicate registration).
func InitMetrics() *IngestorMetrics {
	DefaultMetrics = &IngestorMetrics{
		SetsIngestedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: ingestorSubsystem,
				Name:      "sets_ingested_total",
				Help:      "Total standard sets processed by outcome",
			},
			[]string{"status"},
		),

		RecordsProcessedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: ingestorSubsystem,
				Name:      "records_processed_total",
				Help:      "Total records produced by hierarchy resolution",
			},
		),

		RecordsUpsertedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: ingestorSubsystem,
				Name:      "records_upserted_total",
				Help:      "Total records accepted by the vector index",
			},
		),

		DanglingReferencesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: ingestorSubsystem,
				Name:      "dangling_references_total",
				Help:      "Total parent chains truncated at a missing node",
			},
		),

		CyclesDetectedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: ingestorSubsystem,
				Name:      "cycles_detected_total",
				Help:      "Total parent chains truncated at a cycle",
			},
		),

		EmptySetsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: ingestorSubsystem,
				Name:      "empty_sets_total",
				Help:      "Total structurally valid sets with zero nodes",
			},
		),

		SearchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: ingestorSubsystem,
				Name:      "searches_total",
				Help:      "Total search requests by outcome",
			},
			[]string{"status"},
		),
	}

	return DefaultMetrics
}

// ObserveDiagnostics feeds one set's diagnostics into the counters.
func (m *IngestorMetrics) ObserveDiagnostics(diag standards.Diagnostics) {
	if m == nil {
		return
	}
	m.DanglingReferencesTotal.Add(float64(diag.DanglingReferences))
	m.CyclesDetectedTotal.Add(float64(diag.CyclesDetected))
	if diag.EmptySet {
		m.EmptySetsTotal.Inc()
	}
}
