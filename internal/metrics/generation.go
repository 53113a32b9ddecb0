package metrics

import "github.com/prometheus/client_golang/prometheus"

// Generation outcome label values.
const (
	OutcomeOK           = "ok"
	OutcomeNoCitation   = "no_citation"
	OutcomeUnknownVerse = "unknown_verse"
	OutcomeError        = "error"
)

// Generation Prometheus metrics.
var (
	GenerationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_requests_total",
			Help:      "Total number of generation requests",
		},
		[]string{"model", "status"},
	)

	GenerationRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_request_duration_seconds",
			Help:      "Generation request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		},
		[]string{"model"},
	)

	GenerationTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_tokens_total",
			Help:      "Total generation tokens consumed",
		},
		[]string{"model", "type"},
	)

	// GenerationOutcomesTotal counts grounded answers by validation result.
	GenerationOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_outcomes_total",
			Help:      "Grounded answers by outcome",
		},
		[]string{"outcome"},
	)

	GenerationBudgetTokensRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "generation_budget_tokens_remaining",
			Help:      "Remaining generation token budget (-1 = unlimited)",
		},
		[]string{"period"},
	)
)

func generationCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		GenerationRequestsTotal,
		GenerationRequestDuration,
		GenerationTokensTotal,
		GenerationOutcomesTotal,
		GenerationBudgetTokensRemaining,
	}
}
