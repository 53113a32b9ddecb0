package gitaverse

import (
	"context"

	healthuc "github.com/kailas-cloud/gitaverse/internal/usecase/health"
)

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// HealthStatus is the outcome of Client.Health.
//
// Status is "ok" when every probe passed, "degraded" when the corpus is
// empty or a provider is unreachable, and "error" when the verse store is.
type HealthStatus struct {
	Status string
	// Checks maps a component (database, corpus, generation) to
	// "ok", "error" or "empty".
	Checks   map[string]string
	Verses   int
	Embedded int
}

// OK reports whether every probe passed.
func (h HealthStatus) OK() bool { return h.Status == string(healthuc.Healthy) }

// Health probes the verse store, the corpus and the generator when configured.
func (c *Client) Health(ctx context.Context) HealthStatus {
	r := c.healthSvc.Check(ctx)
	h := HealthStatus{
		Status:   string(r.Status),
		Checks:   make(map[string]string, len(r.Checks)),
		Verses:   r.Corpus.Total,
		Embedded: r.Corpus.Embedded,
	}
	for name, res := range r.Checks {
		h.Checks[name] = string(res)
	}
	return h
}
