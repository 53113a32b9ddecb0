package gitaverse

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

const testCorpus = `{
  "chapters": {
    "chapter_2": {
      "chapter_number": 2,
      "verses": {
        "47": {
          "original_verse": "karmany evadhikaras te ma phaleshu kadachana",
          "speaker": "Krishna",
          "commentary": {"shankaracharya": "Your right is to action alone."},
          "tags": ["duty"]
        },
        "14": {
          "original_verse": "matra sparshas tu kaunteya shitoshna sukha duhkha dah",
          "speaker": "Krishna",
          "commentary": {"shankaracharya": "Heat and cold come and go."}
        }
      }
    }
  }
}`

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{
		WithDatabase(filepath.Join(t.TempDir(), "gita.db")),
		WithVectorDimensions(256),
	}, opts...)
	c, err := New(context.Background(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func ingestCorpus(t *testing.T, c *Client) {
	t.Helper()
	rep, err := c.Ingest(context.Background(), strings.NewReader(testCorpus))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if rep.Parsed != 2 || rep.Embedded != 2 {
		t.Fatalf("unexpected ingest report: %+v", rep)
	}
}

func TestEndToEnd_Similarity(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	if _, err := c.Ask(ctx, "anything", ""); !errors.Is(err, ErrEmptyCorpus) {
		t.Fatalf("expected ErrEmptyCorpus before ingestion, got %v", err)
	}
	if h := c.Health(ctx); h.Status != "degraded" || h.Checks["corpus"] != "empty" {
		t.Errorf("expected degraded health on empty corpus, got %+v", h)
	}

	ingestCorpus(t, c)

	r, err := c.Ask(ctx, "karmany evadhikaras te ma phaleshu kadachana", "")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if r.Verse.Number != 47 || r.Score < 0.99 {
		t.Errorf("expected exact match on 2:47, got %d with %.3f", r.Verse.Number, r.Score)
	}

	if h := c.Health(ctx); h.Status != "ok" || h.Verses != 2 || h.Embedded != 2 {
		t.Errorf("unexpected health: %+v", h)
	}

	rep, err := c.Ingest(ctx, strings.NewReader(testCorpus))
	if err != nil {
		t.Fatalf("re-ingest: %v", err)
	}
	if rep.Embedded != 0 || rep.Unchanged != 2 {
		t.Errorf("re-ingest must reuse vectors: %+v", rep)
	}
}

func TestEndToEnd_GroundedNotConfigured(t *testing.T) {
	c := newTestClient(t)
	ingestCorpus(t, c)

	if _, err := c.Ask(context.Background(), "why act?", ModeGrounded); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestEndToEnd_GroundedWithBudget(t *testing.T) {
	gen := &mockGenerator{text: "Do your duty without craving results. (Chapter 2, Verse 47)", tokens: 150}
	c := newTestClient(t,
		WithGenerator(gen, "test-model", 200),
		WithTokenBudget(100, 0, true),
	)
	ingestCorpus(t, c)
	ctx := context.Background()

	r, err := c.Ask(ctx, "I am anxious about results", ModeGrounded)
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if r.Mode != ModeGrounded || r.Verse.Number != 47 {
		t.Errorf("unexpected reply: %+v", r)
	}
	if r.Response != "Do your duty without craving results." {
		t.Errorf("citation must be stripped from the response: %q", r.Response)
	}
	if gen.requests[0].Model != "test-model" || gen.requests[0].MaxTokens != 200 {
		t.Errorf("unexpected request: %+v", gen.requests[0])
	}

	u, err := c.Usage(ctx, PeriodDay)
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if u.TokensUsed != 150 || !u.IsExhausted {
		t.Errorf("unexpected usage: %+v", u)
	}

	if _, err := c.Ask(ctx, "and now?", ModeGrounded); !errors.Is(err, ErrGenerationQuotaExceeded) {
		t.Fatalf("expected ErrGenerationQuotaExceeded, got %v", err)
	}
}

func TestEndToEnd_UnknownVerseFallsBack(t *testing.T) {
	gen := &mockGenerator{text: "Endure. (Chapter 18, Verse 99)"}
	c := newTestClient(t, WithGenerator(gen, "", 0), WithSimilarityFallback())
	ingestCorpus(t, c)

	r, err := c.Ask(context.Background(), "shitoshna sukha duhkha", ModeGrounded)
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if r.Mode != ModeSimilarity || r.FallbackReason == "" || r.Verse.Number != 14 {
		t.Errorf("expected similarity fallback to 2:14, got %+v", r)
	}
}

func TestEndToEnd_UnknownVerseWithoutFallback(t *testing.T) {
	gen := &mockGenerator{text: "Endure. (Chapter 18, Verse 99)"}
	c := newTestClient(t, WithGenerator(gen, "", 0))
	ingestCorpus(t, c)

	_, err := c.Ask(context.Background(), "shitoshna", ModeGrounded)
	if !errors.Is(err, ErrUnknownVerseCited) {
		t.Fatalf("expected ErrUnknownVerseCited, got %v", err)
	}
}

func TestEndToEnd_Verse(t *testing.T) {
	c := newTestClient(t)
	ingestCorpus(t, c)

	v, err := c.Verse(context.Background(), 2, 14)
	if err != nil {
		t.Fatalf("verse: %v", err)
	}
	if v.Commentary != "Heat and cold come and go." {
		t.Errorf("unexpected verse: %+v", v)
	}
	if _, err := c.Verse(context.Background(), 3, 1); !errors.Is(err, ErrVerseNotFound) {
		t.Errorf("expected ErrVerseNotFound, got %v", err)
	}
}
