// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics holds the Prometheus collectors for the questionnaire and
// compatibility services.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kindred_session_loads_total",
		Help: "Answer session loads by result (ready, failed)",
	}, []string{"result"})

	AnswersSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kindred_answers_saved_total",
		Help: "Answers accepted into an answer session",
	})

	AnswersIgnored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kindred_answers_ignored_total",
		Help: "Null answers dropped without persistence",
	})

	CascadeInvalidations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kindred_cascade_invalidations_total",
		Help: "Dependent answers removed because their condition stopped matching",
	})

	PersistenceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kindred_persistence_failures_total",
		Help: "Failed store calls by operation (upsert, delete, profile)",
	}, []string{"op"})

	PersistenceDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kindred_persistence_duration_seconds",
		Help:    "Store call latency by operation",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	}, []string{"op"})

	CompatibilityScores = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "kindred_compatibility_average_score",
		Help:    "Distribution of bidirectional average scores",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})
)
