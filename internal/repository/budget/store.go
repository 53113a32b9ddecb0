// Package budget persists generation token counters so limits survive restarts
// and are shared by every replica pointing at the same backend.
package budget

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/gitaverse/internal/db"
	"github.com/kailas-cloud/gitaverse/internal/domain"
)

type counters interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Retention is how long each window's counter outlives its period.
type Retention struct {
	Daily   time.Duration
	Monthly time.Duration
}

// DefaultRetention keeps yesterday's and last month's totals readable.
var DefaultRetention = Retention{Daily: 48 * time.Hour, Monthly: 62 * 24 * time.Hour}

// Store keeps one counter per provider, window and period.
type Store struct {
	kv        counters
	provider  string
	retention Retention
}

// New creates a budget store for provider.
func New(kv counters, provider string, r Retention) *Store {
	return &Store{kv: kv, provider: provider, retention: r}
}

// Add increments the counter of the period containing at. The first write of
// a period fixes its expiry (EXPIRE NX), later writes leave it alone.
func (s *Store) Add(ctx context.Context, w domain.BudgetWindow, at time.Time, tokens int64) error {
	key := s.Key(w, at)
	if err := s.kv.IncrBy(ctx, key, tokens); err != nil {
		return fmt.Errorf("add %d tokens to %s: %w", tokens, key, err)
	}
	ttl := s.retention.Monthly
	if w == domain.BudgetDaily {
		ttl = s.retention.Daily
	}
	if err := s.kv.Expire(ctx, key, ttl, true); err != nil {
		return fmt.Errorf("expire %s: %w", key, err)
	}
	return nil
}

// Load reads the counter of the period containing at. A missing key is 0.
func (s *Store) Load(ctx context.Context, w domain.BudgetWindow, at time.Time) (int64, error) {
	key := s.Key(w, at)
	raw, err := s.kv.Get(ctx, key)
	switch {
	case errors.Is(err, db.ErrKeyNotFound):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("read %s: %w", key, err)
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("counter %s holds %q: %w", key, raw, err)
	}
	return n, nil
}

// Key renders gitaverse:budget:{provider}:{window}:{period} with the period
// in UTC, e.g. 2026-10-19 for daily and 2026-10 for monthly windows.
func (s *Store) Key(w domain.BudgetWindow, at time.Time) string {
	period := at.UTC().Format(time.DateOnly)
	if w == domain.BudgetMonthly {
		period = period[:len("2006-01")]
	}
	return domain.KeyPrefix + "budget:" + s.provider + ":" + string(w) + ":" + period
}
