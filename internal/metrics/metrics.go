package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PassesTotal counts reconciliation passes by outcome (ok or the failing stage).
	PassesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal_lens",
		Subsystem: "reconcile",
		Name:      "passes_total",
		Help:      "Reconciliation passes by outcome.",
	}, []string{"outcome"})

	// PassDuration tracks how long a full pass takes.
	PassDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "portal_lens",
		Subsystem: "reconcile",
		Name:      "pass_duration_seconds",
		Help:      "Reconciliation pass duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	})

	// CoalescedPasses counts pass requests served by an in-flight pass.
	CoalescedPasses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "portal_lens",
		Subsystem: "reconcile",
		Name:      "coalesced_total",
		Help:      "Pass requests that joined an in-flight pass.",
	})

	// FindingsStored is the number of findings held after the last pass.
	FindingsStored = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "portal_lens",
		Subsystem: "store",
		Name:      "findings",
		Help:      "Findings held in the store.",
	})

	// FindingsByStatus counts findings of the last classification by staleness.
	FindingsByStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "portal_lens",
		Subsystem: "store",
		Name:      "findings_by_status",
		Help:      "Findings of watched files by staleness.",
	}, []string{"status"})

	// PagesFetched counts finding pages requested from the portal.
	PagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "portal_lens",
		Subsystem: "portal",
		Name:      "finding_pages_total",
		Help:      "Finding pages fetched from the portal.",
	})

	// MutationsTotal counts reject and tag calls by kind and result.
	MutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal_lens",
		Subsystem: "portal",
		Name:      "mutations_total",
		Help:      "Finding mutations by kind and result.",
	}, []string{"kind", "result"})
)
