// Package usage reports generation token consumption against the budget.
package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/gitaverse/internal/domain"
	"github.com/kailas-cloud/gitaverse/internal/metrics"
)

// Period is the aggregation granularity.
type Period string

// Aggregation period constants.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// ParsePeriod validates a period name. Empty selects PeriodDay.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "", PeriodDay:
		return PeriodDay, nil
	case PeriodMonth:
		return PeriodMonth, nil
	default:
		return "", fmt.Errorf("unknown period %q: %w", s, domain.ErrInvalidPeriod)
	}
}

// Report is a generation token usage report for one period.
type Report struct {
	Period      Period
	PeriodStart time.Time
	PeriodEnd   time.Time
	TokensUsed  int64
	TokensLimit int64
	// TokensRemaining is -1 when the period is unlimited.
	TokensRemaining int64
	Exhausted       bool
}

// Service handles usage reporting.
type Service struct {
	br  BudgetReader
	now func() time.Time
}

// New creates a Service. br can be nil (unlimited mode).
func New(br BudgetReader) *Service {
	return &Service{br: br, now: func() time.Time { return time.Now().UTC() }}
}

// GetReport builds a usage report for the given period.
func (s *Service) GetReport(_ context.Context, period Period) Report {
	now := s.now()
	r := Report{Period: period, TokensRemaining: -1}

	switch period {
	case PeriodMonth:
		r.PeriodStart = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		r.PeriodEnd = r.PeriodStart.AddDate(0, 1, 0)
	default:
		r.Period = PeriodDay
		r.PeriodStart = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		r.PeriodEnd = r.PeriodStart.AddDate(0, 0, 1)
	}

	if s.br == nil {
		metrics.GenerationBudgetTokensRemaining.WithLabelValues(string(r.Period)).Set(-1)
		return r
	}

	u := s.br.Usage()
	if r.Period == PeriodMonth {
		r.TokensUsed, r.TokensLimit, r.TokensRemaining = u.MonthlyUsed, u.MonthlyLimit, u.MonthlyRemaining
	} else {
		r.TokensUsed, r.TokensLimit, r.TokensRemaining = u.DailyUsed, u.DailyLimit, u.DailyRemaining
	}
	r.Exhausted = r.TokensLimit > 0 && r.TokensRemaining == 0

	metrics.GenerationBudgetTokensRemaining.WithLabelValues(string(r.Period)).Set(float64(r.TokensRemaining))
	return r
}
