package retrieval

import (
	"context"

	"github.com/kailas-cloud/gitaverse/internal/domain"
	domverse "github.com/kailas-cloud/gitaverse/internal/domain/verse"
)

// Repository supplies the embedded corpus.
type Repository interface {
	LoadAll(ctx context.Context) ([]domverse.Verse, error)
}

// Embedder vectorizes the normalized question.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
