package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RowsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nodccalc_rows_processed_total",
			Help: "Total sample rows run through the derivation pipeline",
		},
	)

	DINRuleApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodccalc_din_rule_total",
			Help: "DIN rule that supplied the value, per row",
		},
		[]string{"rule"},
	)

	OxygenRuleApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodccalc_oxygen_rule_total",
			Help: "Oxygen reconciliation rule that supplied the value, per row",
		},
		[]string{"rule"},
	)

	UndefinedResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodccalc_undefined_results_total",
			Help: "Derived values left undefined for lack of usable data",
		},
		[]string{"column"},
	)

	BatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nodccalc_batch_duration_seconds",
			Help:    "Time to derive all columns for one frame",
			Buckets: prometheus.DefBuckets,
		},
	)
)
