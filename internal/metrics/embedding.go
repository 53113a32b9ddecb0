package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "gitaverse"

// Encoder metrics, labelled by provider and model. The local hashing
// encoder records none of these; only remote providers do.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "embedding",
		Name:      "requests_total",
		Help:      "Embedding API calls by status (success, error)",
	}, []string{"provider", "model", "status"})

	EmbeddingRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "embedding",
		Name:      "request_duration_seconds",
		Help:      "Latency of successful embedding API calls",
		// 10ms .. ~10s
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 11),
	}, []string{"provider", "model"})

	EmbeddingTokensTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "embedding",
		Name:      "tokens_total",
		Help:      "Tokens billed for embeddings, by type (prompt, total)",
	}, []string{"provider", "model", "type"})

	EmbeddingErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "embedding",
		Name:      "errors_total",
		Help:      "Failed embedding API calls by cause (api_error, count_mismatch)",
	}, []string{"provider", "model", "error_type"})

	// EmbeddingCacheTotal counts question-vector cache lookups: hit, miss,
	// or shared when a concurrent identical lookup supplied the vector.
	EmbeddingCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "embedding",
		Name:      "cache_total",
		Help:      "Query embedding cache lookups by result",
	}, []string{"result"})
)

func embeddingCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		EmbeddingRequestsTotal,
		EmbeddingRequestDuration,
		EmbeddingTokensTotal,
		EmbeddingErrorsTotal,
		EmbeddingCacheTotal,
	}
}
