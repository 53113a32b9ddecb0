package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/gitaverse/internal/db"
)

func newMockStore(t *testing.T, ttl time.Duration) (*Store, *mock.Client) {
	t.Helper()
	c := mock.NewClient(gomock.NewController(t))
	return &Store{client: c, entryTTL: ttl}, c
}

func TestNewStore_RequiresAddrs(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error without addrs")
	}
}

// Every command surfaces transport failures as *db.Error tagged with its op.
func TestCommands_WrapErrors(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name  string
		match []string
		op    string
		call  func(s *Store) error
	}{
		{"ping", []string{"PING"}, db.OpPing, func(s *Store) error { return s.Ping(ctx) }},
		{"get", []string{"GET", "gitaverse:emb_cache:k"}, db.OpGet, func(s *Store) error {
			_, err := s.Get(ctx, "gitaverse:emb_cache:k")
			return err
		}},
		{"set", []string{"SET", "k", "v"}, db.OpSet, func(s *Store) error { return s.Set(ctx, "k", []byte("v")) }},
		{"incrby", []string{"INCRBY", "gitaverse:budget:daily", "120"}, db.OpIncrBy, func(s *Store) error {
			return s.IncrBy(ctx, "gitaverse:budget:daily", 120)
		}},
		{"expire", []string{"EXPIRE", "k", "300"}, db.OpExpire, func(s *Store) error {
			return s.Expire(ctx, "k", 300*time.Second, false)
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, c := newMockStore(t, 0)
			c.EXPECT().Do(gomock.Any(), mock.Match(tc.match...)).
				Return(mock.ErrorResult(errors.New("READONLY")))

			err := tc.call(s)
			var dbErr *db.Error
			if !errors.As(err, &dbErr) || dbErr.Op != tc.op {
				t.Fatalf("expected db.Error with op %s, got %v", tc.op, err)
			}
		})
	}
}

func TestPing(t *testing.T) {
	s, c := newMockStore(t, 0)
	c.EXPECT().Do(gomock.Any(), mock.Match("PING")).Return(mock.Result(mock.RedisString("PONG")))

	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGet(t *testing.T) {
	s, c := newMockStore(t, 0)
	vec := db.EncodeVector([]float32{0.5, -1})
	c.EXPECT().Do(gomock.Any(), mock.Match("GET", "gitaverse:emb_cache:abc")).
		Return(mock.Result(mock.RedisBlobString(string(vec))))

	data, err := s.Get(context.Background(), "gitaverse:emb_cache:abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := db.DecodeVector(data)
	if err != nil || len(got) != 2 || got[1] != -1 {
		t.Errorf("binary value not preserved: %v %v", got, err)
	}
}

func TestGet_NilIsNotFound(t *testing.T) {
	s, c := newMockStore(t, 0)
	c.EXPECT().Do(gomock.Any(), mock.Match("GET", "missing")).Return(mock.Result(mock.RedisNil()))

	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestSet_EntryTTL(t *testing.T) {
	tests := []struct {
		name  string
		ttl   time.Duration
		match []string
	}{
		{"no expiry", 0, []string{"SET", "k", "v"}},
		{"cache ttl", 72 * time.Hour, []string{"SET", "k", "v", "EX", "259200"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, c := newMockStore(t, tc.ttl)
			c.EXPECT().Do(gomock.Any(), mock.Match(tc.match...)).Return(mock.Result(mock.RedisString("OK")))

			if err := s.Set(context.Background(), "k", []byte("v")); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestIncrBy(t *testing.T) {
	s, c := newMockStore(t, 0)
	c.EXPECT().Do(gomock.Any(), mock.Match("INCRBY", "gitaverse:budget:monthly", "300")).
		Return(mock.Result(mock.RedisInt64(900)))

	if err := s.IncrBy(context.Background(), "gitaverse:budget:monthly", 300); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExpire_NX(t *testing.T) {
	s, c := newMockStore(t, 0)
	c.EXPECT().Do(gomock.Any(), mock.Match("EXPIRE", "k", "172800", "NX")).Return(mock.Result(mock.RedisInt64(1)))

	if err := s.Expire(context.Background(), "k", 48*time.Hour, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWaitForReady_Timeout(t *testing.T) {
	s, c := newMockStore(t, 0)
	c.EXPECT().Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(rueidis.ErrClosing)).AnyTimes()

	if err := s.WaitForReady(context.Background(), 250*time.Millisecond); err == nil {
		t.Fatal("expected timeout")
	}
}
