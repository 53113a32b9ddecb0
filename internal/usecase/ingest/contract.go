package ingest

import (
	"context"

	"github.com/kailas-cloud/gitaverse/internal/domain"
	domverse "github.com/kailas-cloud/gitaverse/internal/domain/verse"
)

// Repository reads and writes stored verses.
type Repository interface {
	Get(ctx context.Context, id string) (domverse.Verse, error)
	Upsert(ctx context.Context, v domverse.Verse) error
}

// Embedder vectorizes verse texts in batches.
type Embedder interface {
	domain.BatchEmbedder
}
