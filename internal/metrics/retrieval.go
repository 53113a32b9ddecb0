package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Retrieval Prometheus metrics.
var (
	// RetrievalScore observes the cosine score of every top-1 match.
	RetrievalScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_score",
			Help:      "Cosine similarity of the selected verse",
			Buckets:   []float64{-0.5, 0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		},
	)

	RetrievalDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_duration_seconds",
			Help:      "Similarity retrieval duration (encode + scan) in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// CorpusVerses reports the number of embedded verses seen on the last scan.
	CorpusVerses = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_verses",
			Help:      "Embedded verses available for retrieval",
		},
	)

	AnswersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_total",
			Help:      "Answers served by mode and whether the similarity fallback was used",
		},
		[]string{"mode", "fallback"},
	)
)

var registerOnce sync.Once

// Register registers the domain metric families with the default registry.
// Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		cs := []prometheus.Collector{RetrievalScore, RetrievalDuration, CorpusVerses, AnswersTotal}
		cs = append(cs, embeddingCollectors()...)
		cs = append(cs, generationCollectors()...)
		cs = append(cs, httpCollectors()...)
		prometheus.MustRegister(cs...)
	})
}
