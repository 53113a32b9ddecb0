package chat

import (
	"context"

	"github.com/kailas-cloud/gitaverse/internal/usecase/grounding"
	"github.com/kailas-cloud/gitaverse/internal/usecase/retrieval"
)

// Retriever finds the most similar verse.
type Retriever interface {
	Find(ctx context.Context, question string) (retrieval.Match, error)
}

// Grounder produces a generated answer with a validated citation.
type Grounder interface {
	Answer(ctx context.Context, question string) (grounding.Answer, error)
}
