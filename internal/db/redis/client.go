// Package redis backs the shared query-embedding cache and the generation
// budget counters with Redis or Valkey through rueidis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/gitaverse/internal/db"
)

var (
	_ db.KVStore      = (*Store)(nil)
	_ db.CounterStore = (*Store)(nil)
	_ db.Pinger       = (*Store)(nil)
)

const readinessPollInterval = 100 * time.Millisecond

// Config describes the Redis deployment.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
	// EntryTTL expires keys written with Set. Zero keeps them forever.
	EntryTTL time.Duration
}

// Store implements the db key-value and counter contracts.
type Store struct {
	client   rueidis.Client
	entryTTL time.Duration
}

// NewStore dials the configured addresses. Client-side caching stays off:
// counters are read right after increments from other replicas.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("redis: at least one address is required")
	}
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("redis: connect %v: %w", cfg.Addrs, err)
	}
	return &Store{client: client, entryTTL: cfg.EntryTTL}, nil
}

// Ping round-trips a PING.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Do(ctx, s.client.B().Ping().Build()).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady blocks until Ping succeeds, ctx ends or timeout passes.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		err := s.Ping(ctx)
		if err == nil {
			return nil
		}
		if time.Now().Add(readinessPollInterval).After(deadline) {
			return fmt.Errorf("redis not ready after %s: %w", timeout, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(readinessPollInterval):
		}
	}
}
