package embedding

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/kailas-cloud/gitaverse/internal/domain"
)

// DefaultMaxInputChars bounds the input length, in runes, accepted by the encoder.
const DefaultMaxInputChars = 2048

// GuardedEmbedder rejects input the encoder should never see and results that
// cannot be compared with the corpus. Every rejection is domain.ErrEncoding.
type GuardedEmbedder struct {
	inner      domain.Embedder
	maxChars   int
	dimensions int
}

// NewGuardedEmbedder wraps inner. dimensions <= 0 accepts any non-empty vector.
func NewGuardedEmbedder(inner domain.Embedder, maxChars, dimensions int) *GuardedEmbedder {
	if maxChars <= 0 {
		maxChars = DefaultMaxInputChars
	}
	return &GuardedEmbedder{inner: inner, maxChars: maxChars, dimensions: dimensions}
}

// Embed validates text, delegates and validates the vector.
func (g *GuardedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := g.checkInput(text); err != nil {
		return domain.EmbeddingResult{}, err
	}
	res, err := g.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	if err := g.checkVector(res.Embedding); err != nil {
		return domain.EmbeddingResult{}, err
	}
	return res, nil
}

// BatchEmbed validates every text before a single delegated call.
func (g *GuardedEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	for i, t := range texts {
		if err := g.checkInput(t); err != nil {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("text %d: %w", i, err)
		}
	}

	var (
		res domain.BatchEmbeddingResult
		err error
	)
	if be, ok := g.inner.(domain.BatchEmbedder); ok {
		res, err = be.BatchEmbed(ctx, texts)
	} else {
		res, err = domain.BatchFallback(ctx, g.inner, texts)
	}
	if err != nil {
		return domain.BatchEmbeddingResult{}, err
	}

	if len(res.Embeddings) != len(texts) {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("got %d vectors for %d texts: %w",
			len(res.Embeddings), len(texts), domain.ErrEncoding)
	}
	for i, v := range res.Embeddings {
		if err := g.checkVector(v); err != nil {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("text %d: %w", i, err)
		}
	}
	return res, nil
}

// HealthCheck delegates to the inner embedder when it can be probed.
func (g *GuardedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := g.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

func (g *GuardedEmbedder) checkInput(text string) error {
	if !utf8.ValidString(text) {
		return fmt.Errorf("input is not valid UTF-8: %w", domain.ErrEncoding)
	}
	if n := utf8.RuneCountInString(text); n > g.maxChars {
		return fmt.Errorf("input has %d characters, limit is %d: %w", n, g.maxChars, domain.ErrEncoding)
	}
	return nil
}

func (g *GuardedEmbedder) checkVector(v []float32) error {
	if len(v) == 0 {
		return fmt.Errorf("encoder returned an empty vector: %w", domain.ErrEncoding)
	}
	if g.dimensions > 0 && len(v) != g.dimensions {
		return fmt.Errorf("encoder returned %d dimensions, expected %d: %w", len(v), g.dimensions, domain.ErrEncoding)
	}
	return nil
}
