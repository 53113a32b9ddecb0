package budget

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/gitaverse/internal/domain"
)

type mockStore struct {
	mu      sync.Mutex
	data    map[domain.BudgetWindow]int64
	loadErr error
	addErr  error
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[domain.BudgetWindow]int64)}
}

func (m *mockStore) Add(_ context.Context, w domain.BudgetWindow, _ time.Time, tokens int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return m.addErr
	}
	m.data[w] += tokens
	return nil
}

func (m *mockStore) Load(_ context.Context, w domain.BudgetWindow, _ time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return 0, m.loadErr
	}
	return m.data[w], nil
}

func TestTracker_RejectWhenExceeded(t *testing.T) {
	tr := NewTracker(100, 0, ActionReject, zap.NewNop())
	tr.Record(100)

	if err := tr.Check(context.Background()); !errors.Is(err, domain.ErrGenerationQuotaExceeded) {
		t.Fatalf("expected ErrGenerationQuotaExceeded, got %v", err)
	}
}

func TestTracker_WarnWhenExceeded(t *testing.T) {
	tr := NewTracker(100, 0, ActionWarn, zap.NewNop())
	tr.Record(200)

	if err := tr.Check(context.Background()); err != nil {
		t.Fatalf("expected nil for warn action, got %v", err)
	}
}

func TestTracker_MonthlyReject(t *testing.T) {
	tr := NewTracker(0, 500, ActionReject, zap.NewNop())
	tr.Record(500)

	if err := tr.Check(context.Background()); !errors.Is(err, domain.ErrGenerationQuotaExceeded) {
		t.Fatalf("expected ErrGenerationQuotaExceeded for monthly limit, got %v", err)
	}
}

func TestTracker_UnlimitedWhenZero(t *testing.T) {
	tr := NewTracker(0, 0, ActionReject, zap.NewNop())
	tr.Record(999999999)

	if err := tr.Check(context.Background()); err != nil {
		t.Fatalf("expected nil for unlimited budget, got %v", err)
	}
	u := tr.Usage()
	if u.DailyRemaining != -1 || u.MonthlyRemaining != -1 {
		t.Errorf("expected -1 remaining, got %d/%d", u.DailyRemaining, u.MonthlyRemaining)
	}
}

func TestTracker_Usage(t *testing.T) {
	tr := NewTracker(1000, 10000, ActionWarn, zap.NewNop())
	tr.Record(300)
	tr.Record(-5)

	u := tr.Usage()
	if u.DailyUsed != 300 || u.DailyRemaining != 700 {
		t.Errorf("daily: used=%d remaining=%d", u.DailyUsed, u.DailyRemaining)
	}
	if u.MonthlyRemaining != 9700 {
		t.Errorf("monthly remaining: %d", u.MonthlyRemaining)
	}
	if !u.ResetsAt.After(time.Now()) {
		t.Errorf("reset time should be in the future: %v", u.ResetsAt)
	}
}

func TestTracker_DayRollover(t *testing.T) {
	now := time.Date(2026, 10, 19, 23, 59, 0, 0, time.UTC)
	tr := NewTracker(100, 1000, ActionReject, zap.NewNop())
	tr.now = func() time.Time { return now }
	tr.lastDayReset = truncateToDay(now)
	tr.lastMonthReset = truncateToMonth(now)

	tr.Record(100)
	if err := tr.Check(context.Background()); err == nil {
		t.Fatal("expected daily limit reached")
	}

	now = now.Add(2 * time.Minute)
	if err := tr.Check(context.Background()); err != nil {
		t.Fatalf("expected reset on new day, got %v", err)
	}
	if u := tr.Usage(); u.DailyUsed != 0 || u.MonthlyUsed != 100 {
		t.Errorf("unexpected usage after rollover: %+v", u)
	}
}

func TestTracker_WithStore_LoadsValues(t *testing.T) {
	store := newMockStore()
	store.data[domain.BudgetDaily] = 300
	store.data[domain.BudgetMonthly] = 5000

	tr := NewTracker(1000, 10000, ActionReject, zap.NewNop()).WithStore(context.Background(), store)

	u := tr.Usage()
	if u.DailyUsed != 300 || u.MonthlyUsed != 5000 {
		t.Errorf("expected 300/5000, got %d/%d", u.DailyUsed, u.MonthlyUsed)
	}
}

func TestTracker_Record_PersistsToStore(t *testing.T) {
	store := newMockStore()
	tr := NewTracker(10000, 100000, ActionWarn, zap.NewNop()).WithStore(context.Background(), store)

	tr.Record(100)
	tr.Record(200)

	store.mu.Lock()
	defer store.mu.Unlock()
	if store.data[domain.BudgetDaily] != 300 || store.data[domain.BudgetMonthly] != 300 {
		t.Errorf("unexpected stored counters: %v", store.data)
	}
}

func TestTracker_StoreErrorsAreNotFatal(t *testing.T) {
	store := newMockStore()
	store.loadErr = errors.New("connection refused")
	store.addErr = errors.New("write timeout")

	tr := NewTracker(1000, 10000, ActionWarn, zap.NewNop()).WithStore(context.Background(), store)
	tr.Record(50)

	if u := tr.Usage(); u.DailyUsed != 50 {
		t.Errorf("expected in-memory count 50, got %d", u.DailyUsed)
	}
}
