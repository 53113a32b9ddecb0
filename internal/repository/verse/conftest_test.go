package verse

import (
	"context"
	"strconv"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/gitaverse/internal/db/sqlite"
	domverse "github.com/kailas-cloud/gitaverse/internal/domain/verse"
)

func newTestRepo(t *testing.T) (*Repo, *sqlite.Store) {
	t.Helper()
	s, err := sqlite.Open(context.Background(), sqlite.MemoryPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return New(s.DB(), zap.NewNop()), s
}

func mustVerse(t *testing.T, chapter, number int, text string, emb []float32) domverse.Verse {
	t.Helper()
	v, err := domverse.New("chapter_"+strconv.Itoa(chapter), chapter, number, text, "Krishna",
		"commentary "+text, []string{"duty", "action"})
	if err != nil {
		t.Fatalf("new verse: %v", err)
	}
	if emb != nil {
		v = v.WithEmbedding(emb)
	}
	return v
}
