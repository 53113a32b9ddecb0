package health

import (
	"context"

	"go.uber.org/zap"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates the verse store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckEmpty indicates the corpus has no embedded verses yet.
	CheckEmpty CheckResult = "empty"
)

// Corpus summarizes the stored verses.
type Corpus struct {
	Total    int
	Embedded int
}

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
	Corpus Corpus
}

// Components groups the optional probes. Nil fields are skipped.
type Components struct {
	Embedding  Checker
	Generation Checker
	Corpus     CorpusCounter
}

// Service coordinates health checks.
type Service struct {
	db     DBPinger
	comps  Components
	logger *zap.Logger
}

// New creates a Service.
func New(db DBPinger, comps Components, logger *zap.Logger) *Service {
	return &Service{db: db, comps: comps, logger: logger}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	var corpus Corpus

	checks["database"] = s.probe(ctx, "database", s.db.Ping)
	if s.comps.Embedding != nil {
		checks["embedding"] = s.probe(ctx, "embedding", s.comps.Embedding.HealthCheck)
	}
	if s.comps.Generation != nil {
		checks["generation"] = s.probe(ctx, "generation", s.comps.Generation.HealthCheck)
	}
	if s.comps.Corpus != nil && checks["database"] == CheckOK {
		total, embedded, err := s.comps.Corpus.Count(ctx)
		switch {
		case err != nil:
			s.logger.Warn("Health check failed", zap.String("component", "corpus"), zap.Error(err))
			checks["corpus"] = CheckError
		case embedded == 0:
			checks["corpus"] = CheckEmpty
		default:
			checks["corpus"] = CheckOK
		}
		corpus = Corpus{Total: total, Embedded: embedded}
	}

	status := Healthy
	for _, v := range checks {
		if v != CheckOK {
			status = Degraded
			break
		}
	}
	if checks["database"] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks, Corpus: corpus}
}

func (s *Service) probe(ctx context.Context, name string, fn func(context.Context) error) CheckResult {
	if err := fn(ctx); err != nil {
		s.logger.Warn("Health check failed", zap.String("component", name), zap.Error(err))
		return CheckError
	}
	return CheckOK
}
