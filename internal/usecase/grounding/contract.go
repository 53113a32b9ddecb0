package grounding

import (
	"context"

	"github.com/kailas-cloud/gitaverse/internal/domain"
	domverse "github.com/kailas-cloud/gitaverse/internal/domain/verse"
)

// Generator produces the free-text answer.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (domain.Completion, error)
}

// VerseLookup resolves a numeric reference against the store.
type VerseLookup interface {
	GetByChapterAndVerse(ctx context.Context, chapter, verseNumber int) (domverse.Verse, error)
}

// Budget gates generation calls on consumed tokens.
type Budget interface {
	Check(ctx context.Context) error
	Record(tokens int64)
}
