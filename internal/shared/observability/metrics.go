package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "semdiff_parsing_seconds",
		Help:    "Time spent parsing one file version.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language", "tier"})

	ParserTierFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "semdiff_parser_tier_fallbacks_total",
		Help: "Total number of parse attempts that fell through to a lower tier.",
	}, []string{"language", "tier"})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "semdiff_analysis_seconds",
		Help:    "Time spent diffing one file change, by layer.",
		Buckets: prometheus.DefBuckets,
	}, []string{"layer"})

	EventsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "semdiff_events_emitted_total",
		Help: "Total number of semantic events emitted, by layer.",
	}, []string{"layer"})

	LayerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "semdiff_layer_failures_total",
		Help: "Total number of isolated layer failures.",
	}, []string{"layer"})

	ProviderAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "semdiff_llm_provider_attempts_total",
		Help: "Total number of LLM provider queries attempted.",
	}, []string{"provider"})

	ProviderFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "semdiff_llm_provider_failures_total",
		Help: "Total number of failed LLM provider queries.",
	}, []string{"provider"})

	CostGateRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "semdiff_llm_cost_gate_rejections_total",
		Help: "Total number of diffs rejected by the LLM cost gate.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "semdiff_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
