package gitaverse

import (
	"context"
	"time"

	usageuc "github.com/kailas-cloud/gitaverse/internal/usecase/usage"
)

// UsagePeriod is the aggregation granularity for usage reports.
type UsagePeriod string

// UsagePeriod constants.
const (
	PeriodDay   UsagePeriod = "day"
	PeriodMonth UsagePeriod = "month"
)

// UsageReport contains generation token usage for a time period.
type UsageReport struct {
	Period      UsagePeriod
	PeriodStart time.Time
	PeriodEnd   time.Time
	TokensUsed  int64
	TokensLimit int64
	// TokensRemaining is -1 when the period is unlimited.
	TokensRemaining int64
	IsExhausted     bool
}

// Usage returns the generation token report for the given period.
// Counters live in memory and restart with the client.
func (c *Client) Usage(ctx context.Context, period UsagePeriod) (_ UsageReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("usage", start, err) }()

	p, err := usageuc.ParsePeriod(string(period))
	if err != nil {
		return UsageReport{}, err
	}
	r := c.usageSvc.GetReport(ctx, p)
	return UsageReport{
		Period:          UsagePeriod(r.Period),
		PeriodStart:     r.PeriodStart,
		PeriodEnd:       r.PeriodEnd,
		TokensUsed:      r.TokensUsed,
		TokensLimit:     r.TokensLimit,
		TokensRemaining: r.TokensRemaining,
		IsExhausted:     r.Exhausted,
	}, nil
}

// usageUseCase is the internal interface for usage reports.
type usageUseCase interface {
	GetReport(ctx context.Context, period usageuc.Period) usageuc.Report
}
