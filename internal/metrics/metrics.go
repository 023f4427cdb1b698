package metrics

import "github.com/prometheus/client_golang/prometheus"

// Indexing, search, and AI Prometheus metrics.
var (
	IndexOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "unisearch",
			Name:      "index_ops_total",
			Help:      "Total index write operations",
		},
		[]string{"op", "status"}, // op: upsert/delete/import/delete_by_filter
	)

	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "unisearch",
			Name:      "search_requests_total",
			Help:      "Total search executions by source and status",
		},
		[]string{"source", "status"}, // source: index/fallback
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "unisearch",
			Name:      "search_duration_seconds",
			Help:      "Search execution duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"source"},
	)

	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "unisearch",
			Name:      "ai_requests_total",
			Help:      "Total AI collaborator requests",
		},
		[]string{"op", "status"}, // op: transcribe/extract_query/analyze_image
	)

	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "unisearch",
			Name:      "ai_request_duration_seconds",
			Help:      "AI collaborator request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"op"},
	)

	QueryCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "unisearch",
			Name:      "query_cache_total",
			Help:      "Query cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	ResyncRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "unisearch",
			Name:      "resync_runs_total",
			Help:      "Full resync passes by outcome",
		},
		[]string{"status"},
	)
)

var registered bool

// Register registers the domain metrics. Must be called once from main.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(IndexOpsTotal)
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(AIRequestsTotal)
	prometheus.MustRegister(AIRequestDuration)
	prometheus.MustRegister(QueryCacheTotal)
	prometheus.MustRegister(ResyncRunsTotal)
	registered = true
}
