// Package memory provides an in-process LRU key-value store used when no
// shared cache backend is configured.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kailas-cloud/gitaverse/internal/db"
)

var (
	_ db.KVStore      = (*Store)(nil)
	_ db.CounterStore = (*Store)(nil)
)

// DefaultSize is the entry capacity used when size <= 0.
const DefaultSize = 4096

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Store is a bounded key-value store. Counters live in the same LRU and
// honour expiry lazily on read.
type Store struct {
	mu    sync.Mutex
	cache *lru.Cache[string, entry]
	now   func() time.Time
}

// NewStore creates a store holding at most size entries.
func NewStore(size int) (*Store, error) {
	if size <= 0 {
		size = DefaultSize
	}
	cache, err := lru.New[string, entry](size)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	return &Store{cache: cache, now: time.Now}, nil
}

// Get returns a copy of the stored value or db.ErrKeyNotFound.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(key)
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return append([]byte(nil), e.value...), nil
}

// Set stores a copy of value without expiry.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Add(key, entry{value: append([]byte(nil), value...)})
	return nil
}

// IncrBy adds val to the decimal counter at key, creating it at zero.
func (s *Store) IncrBy(_ context.Context, key string, val int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cur int64
	e, ok := s.lookup(key)
	if ok {
		if _, err := fmt.Sscan(string(e.value), &cur); err != nil {
			return &db.Error{Op: db.OpIncrBy, Err: fmt.Errorf("value is not an integer: %w", err)}
		}
	}
	e.value = []byte(fmt.Sprintf("%d", cur+val))
	s.cache.Add(key, e)
	return nil
}

// Expire sets the key's TTL. With nx the TTL is only set when none exists.
// Missing keys are ignored.
func (s *Store) Expire(_ context.Context, key string, ttl time.Duration, nx bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(key)
	if !ok {
		return nil
	}
	if nx && !e.expiresAt.IsZero() {
		return nil
	}
	e.expiresAt = s.now().Add(ttl)
	s.cache.Add(key, e)
	return nil
}

// Len reports the number of live and not-yet-evicted entries.
func (s *Store) Len() int {
	return s.cache.Len()
}

func (s *Store) lookup(key string) (entry, bool) {
	e, ok := s.cache.Get(key)
	if !ok {
		return entry{}, false
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		s.cache.Remove(key)
		return entry{}, false
	}
	return e, true
}
