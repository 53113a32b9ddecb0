package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// Checker probes an upstream provider (embedding or generation API).
type Checker interface {
	HealthCheck(ctx context.Context) error
}

// CorpusCounter reports how many verses are stored and how many carry vectors.
type CorpusCounter interface {
	Count(ctx context.Context) (total, embedded int, err error)
}
