package embedding

import (
	"context"

	"github.com/kailas-cloud/gitaverse/internal/domain"
)

// mockEmbedder returns vec for every text and supports batching.
// A non-nil batch overrides the generated batch result.
type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error

	batch    *domain.BatchEmbeddingResult
	batchErr error

	embedCalls int
	batchSizes []int
}

func (m *mockEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	m.embedCalls++
	return m.result, m.err
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchSizes = append(m.batchSizes, len(texts))
	switch {
	case m.batchErr != nil:
		return domain.BatchEmbeddingResult{}, m.batchErr
	case m.batch != nil:
		return *m.batch, nil
	}
	out := domain.BatchEmbeddingResult{}
	for range texts {
		out.Embeddings = append(out.Embeddings, m.result.Embedding)
		out.PromptTokens += m.result.PromptTokens
		out.TotalTokens += m.result.TotalTokens
	}
	return out, nil
}

// singleEmbedder only implements domain.Embedder.
type singleEmbedder struct {
	result domain.EmbeddingResult
	calls  int
}

func (s *singleEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	s.calls++
	return s.result, nil
}
