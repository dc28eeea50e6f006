package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// importsTotal counts SQL and database imports by source and outcome
	importsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "erdsketch_imports_total",
		Help: "Total schema imports by source and outcome",
	}, []string{"source", "outcome"})

	// importDuration tracks how long parsing a SQL text takes
	importDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "erdsketch_import_duration_seconds",
		Help:    "SQL import duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	})

	// fallbackStatements counts statements only the fallback parser could read
	fallbackStatements = promauto.NewCounter(prometheus.CounterOpts{
		Name: "erdsketch_parse_fallback_statements_total",
		Help: "Total CREATE TABLE statements recovered by the fallback parser",
	})

	// exportsTotal counts SQL exports by outcome
	exportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "erdsketch_exports_total",
		Help: "Total SQL exports by outcome",
	}, []string{"outcome"})
)
