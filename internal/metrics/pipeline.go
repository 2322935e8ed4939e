package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recommendation, tagging, and resolver pipeline metrics.
var (
	RecommendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "askdex",
			Name:      "recommend_requests_total",
			Help:      "Total number of recommendation queries",
		},
		[]string{"status"}, // "ok" / "empty" / "error"
	)

	RecommendDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "askdex",
			Name:      "recommend_duration_seconds",
			Help:      "Recommendation query duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	ResolverStrategyAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "askdex",
			Name:      "resolver_strategy_attempts_total",
			Help:      "Strategy executions by outcome",
		},
		[]string{"strategy", "outcome"}, // "accepted" / "rejected" / "failed"
	)

	ResolverResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "askdex",
			Name:      "resolver_resolutions_total",
			Help:      "Resolutions by winning strategy",
		},
		[]string{"strategy"},
	)

	TaggingStageHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "askdex",
			Name:      "tagging_stage_hits_total",
			Help:      "Tag extractions that produced tags, by stage",
		},
		[]string{"stage"}, // "exact" / "glossary" / "bucket" / "fuzzy" / "fallback"
	)

	IndexItems = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "askdex",
			Name:      "index_items",
			Help:      "Items currently held by the vector index",
		},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(RecommendRequestsTotal)
	prometheus.MustRegister(RecommendDuration)
	prometheus.MustRegister(ResolverStrategyAttemptsTotal)
	prometheus.MustRegister(ResolverResolutionsTotal)
	prometheus.MustRegister(TaggingStageHitsTotal)
	prometheus.MustRegister(IndexItems)
	pipelineMetricsRegistered = true
}
