// Package retrieval answers a question with the single most similar verse.
package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/gitaverse/internal/domain"
	"github.com/kailas-cloud/gitaverse/internal/domain/similarity"
	"github.com/kailas-cloud/gitaverse/internal/domain/text"
	"github.com/kailas-cloud/gitaverse/internal/metrics"
)

// Match is the top-1 verse for a question.
type Match struct {
	Question string
	similarity.Match
}

// Format renders the plain-text reply shown to the asker.
func (m Match) Format() string {
	var b strings.Builder
	b.WriteString("Bhagavad Gita\n\n")
	fmt.Fprintf(&b, "Question: %s\n", m.Question)
	fmt.Fprintf(&b, "Similarity Score: %.2f\n\n", m.Score)
	fmt.Fprintf(&b, "Verse: %s\n\n", m.Verse.OriginalVerse())
	fmt.Fprintf(&b, "Commentary (Shankaracharya): %s\n", m.Verse.Commentary())
	fmt.Fprintf(&b, "Chapter: %d, Verse: %d", m.Verse.Chapter(), m.Verse.Number())
	return b.String()
}

// Service ranks the stored corpus against a question.
type Service struct {
	repo   Repository
	embed  Embedder
	logger *zap.Logger
}

// New creates a retrieval service.
func New(repo Repository, embed Embedder, logger *zap.Logger) *Service {
	return &Service{repo: repo, embed: embed, logger: logger}
}

// Find normalizes and encodes the question, then scans the whole corpus.
func (s *Service) Find(ctx context.Context, question string) (Match, error) {
	if strings.TrimSpace(question) == "" {
		return Match{}, fmt.Errorf("question is empty: %w", domain.ErrInvalidQuestion)
	}
	start := time.Now()

	normalized := text.Normalize(question)
	emb, err := s.embed.Embed(ctx, normalized)
	if err != nil {
		return Match{}, fmt.Errorf("embed question: %w", err)
	}

	corpus, err := s.repo.LoadAll(ctx)
	if err != nil {
		return Match{}, fmt.Errorf("load corpus: %w", err)
	}
	metrics.CorpusVerses.Set(float64(len(corpus)))

	best, err := similarity.Best(emb.Embedding, corpus)
	if err != nil {
		return Match{}, fmt.Errorf("rank corpus: %w", err)
	}

	metrics.RetrievalScore.Observe(best.Score)
	metrics.RetrievalDuration.Observe(time.Since(start).Seconds())
	s.logger.Debug("Verse retrieved",
		zap.String("verse", best.Verse.ID()),
		zap.Float64("score", best.Score),
		zap.Int("corpus", len(corpus)),
	)

	return Match{Question: question, Match: best}, nil
}
