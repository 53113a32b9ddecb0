package embedding

import (
	"context"
	"errors"
	"slices"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/gitaverse/internal/domain"
)

func TestInstrumentedEmbedder_Embed(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}, TotalTokens: 7}}
	p := NewInstrumentedEmbedder(inner, "local", "hashing-v1", zap.New(core))

	res, err := p.Embed(context.Background(), "what is dharma")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embedding) != 3 || res.TotalTokens != 7 {
		t.Errorf("unexpected result: %+v", res)
	}

	entries := logs.FilterMessage("Embedded text").All()
	if len(entries) != 1 {
		t.Fatalf("expected one debug line, got %d", logs.Len())
	}
	ctx := entries[0].ContextMap()
	if ctx["provider"] != "local" || ctx["model"] != "hashing-v1" || ctx["dimensions"] != int64(3) {
		t.Errorf("unexpected log fields: %v", ctx)
	}
}

func TestInstrumentedEmbedder_EmbedError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	p := NewInstrumentedEmbedder(&mockEmbedder{err: domain.ErrEmbeddingProviderError}, "openai", "m", zap.New(core))

	if _, err := p.Embed(context.Background(), "fear"); !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
	if logs.FilterLevelExact(zapcore.ErrorLevel).Len() != 1 {
		t.Error("expected one error line")
	}
}

func TestInstrumentedEmbedder_BatchEmbed(t *testing.T) {
	tests := []struct {
		name      string
		chunk     int
		texts     int
		wantSizes []int
	}{
		{"empty", 2, 0, nil},
		{"single chunk", 4, 3, []int{3}},
		{"exact multiple", 2, 4, []int{2, 2}},
		{"remainder", 2, 5, []int{2, 2, 1}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}, TotalTokens: 2}}
			p := NewInstrumentedEmbedder(inner, "local", "m", zap.NewNop())
			p.chunkSize = tc.chunk

			texts := make([]string, tc.texts)
			res, err := p.BatchEmbed(context.Background(), texts)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(res.Embeddings) != tc.texts || res.TotalTokens != 2*tc.texts {
				t.Errorf("got %d vectors, %d tokens", len(res.Embeddings), res.TotalTokens)
			}
			if !slices.Equal(inner.batchSizes, tc.wantSizes) {
				t.Errorf("chunk sizes: got %v, want %v", inner.batchSizes, tc.wantSizes)
			}
		})
	}
}

func TestInstrumentedEmbedder_BatchEmbedError(t *testing.T) {
	apiErr := errors.New("api down")
	p := NewInstrumentedEmbedder(&mockEmbedder{batchErr: apiErr}, "openai", "m", zap.NewNop())

	if _, err := p.BatchEmbed(context.Background(), []string{"a"}); !errors.Is(err, apiErr) {
		t.Fatalf("expected inner error, got %v", err)
	}
}

func TestInstrumentedEmbedder_BatchWithoutBatchSupport(t *testing.T) {
	inner := &singleEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.5}, TotalTokens: 1}}
	p := NewInstrumentedEmbedder(inner, "sdk", "custom", zap.NewNop())

	res, err := p.BatchEmbed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 3 || len(res.Embeddings) != 3 {
		t.Errorf("expected 3 single calls, got %d", inner.calls)
	}
}
