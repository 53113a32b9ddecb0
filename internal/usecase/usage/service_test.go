package usage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/gitaverse/internal/domain"
	"github.com/kailas-cloud/gitaverse/internal/metrics"
	"github.com/kailas-cloud/gitaverse/internal/usecase/budget"
)

// --- Mock ---

type mockBudgetReader struct {
	u budget.Usage
}

func (m *mockBudgetReader) Usage() budget.Usage { return m.u }

func newService(br BudgetReader, now time.Time) *Service {
	s := New(br)
	s.now = func() time.Time { return now }
	return s
}

var fixedNow = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

// --- Tests ---

func TestGetReport_DailyPeriod(t *testing.T) {
	br := &mockBudgetReader{u: budget.Usage{
		DailyLimit: 10000, DailyUsed: 3000, DailyRemaining: 7000,
		MonthlyLimit: 100000, MonthlyUsed: 50000, MonthlyRemaining: 50000,
	}}
	r := newService(br, fixedNow).GetReport(context.Background(), PeriodDay)

	if r.Period != PeriodDay {
		t.Errorf("expected period %q, got %q", PeriodDay, r.Period)
	}
	wantStart := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	if !r.PeriodStart.Equal(wantStart) {
		t.Errorf("expected period start %v, got %v", wantStart, r.PeriodStart)
	}
	if !r.PeriodEnd.Equal(wantStart.Add(24 * time.Hour)) {
		t.Errorf("expected period end %v, got %v", wantStart.Add(24*time.Hour), r.PeriodEnd)
	}
	if r.TokensLimit != 10000 || r.TokensRemaining != 7000 || r.TokensUsed != 3000 {
		t.Errorf("unexpected counters: %+v", r)
	}
	if r.Exhausted {
		t.Error("budget should not be exhausted")
	}
	if got := testutil.ToFloat64(metrics.GenerationBudgetTokensRemaining.WithLabelValues("day")); got != 7000 {
		t.Errorf("expected remaining gauge 7000, got %v", got)
	}
}

func TestGetReport_MonthlyPeriod(t *testing.T) {
	br := &mockBudgetReader{u: budget.Usage{
		MonthlyLimit: 100000, MonthlyUsed: 80000, MonthlyRemaining: 20000,
	}}
	r := newService(br, fixedNow).GetReport(context.Background(), PeriodMonth)

	if r.Period != PeriodMonth {
		t.Errorf("expected period %q, got %q", PeriodMonth, r.Period)
	}
	wantStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if !r.PeriodStart.Equal(wantStart) {
		t.Errorf("expected period start %v, got %v", wantStart, r.PeriodStart)
	}
	if !r.PeriodEnd.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected period end %v", r.PeriodEnd)
	}
	if r.TokensLimit != 100000 || r.TokensUsed != 80000 {
		t.Errorf("unexpected counters: %+v", r)
	}
}

func TestGetReport_NilBudgetReader(t *testing.T) {
	r := newService(nil, fixedNow).GetReport(context.Background(), PeriodDay)

	if r.TokensLimit != 0 {
		t.Errorf("expected limit 0, got %d", r.TokensLimit)
	}
	if r.TokensRemaining != -1 {
		t.Errorf("expected unlimited remaining -1, got %d", r.TokensRemaining)
	}
	if r.Exhausted {
		t.Error("nil budget reader should not be exhausted")
	}
}

func TestGetReport_Exhausted(t *testing.T) {
	br := &mockBudgetReader{u: budget.Usage{DailyLimit: 5000, DailyUsed: 5000, DailyRemaining: 0}}
	r := newService(br, fixedNow).GetReport(context.Background(), PeriodDay)

	if !r.Exhausted {
		t.Error("budget should be exhausted when remaining is 0")
	}
}

func TestGetReport_UnlimitedIsNeverExhausted(t *testing.T) {
	br := &mockBudgetReader{u: budget.Usage{DailyUsed: 999999, DailyRemaining: -1}}
	r := newService(br, fixedNow).GetReport(context.Background(), PeriodDay)

	if r.Exhausted {
		t.Error("unlimited budget should not be exhausted")
	}
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in      string
		want    Period
		wantErr bool
	}{
		{"", PeriodDay, false},
		{"day", PeriodDay, false},
		{"month", PeriodMonth, false},
		{"year", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePeriod(tt.in)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidPeriod) {
					t.Fatalf("expected ErrInvalidPeriod, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
