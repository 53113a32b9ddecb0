// Package grounding produces a generated answer and validates that the verse
// it cites exists in the corpus.
package grounding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/gitaverse/internal/domain"
	"github.com/kailas-cloud/gitaverse/internal/domain/citation"
	domverse "github.com/kailas-cloud/gitaverse/internal/domain/verse"
	"github.com/kailas-cloud/gitaverse/internal/metrics"
)

// Config holds the generation request parameters.
type Config struct {
	Model     string
	MaxTokens int
}

// Answer is a validated generated answer.
type Answer struct {
	Question  string
	Condition string
	// Response is the generated text with the citation removed.
	Response string
	Citation citation.Citation
	Verse    domverse.Verse
}

// Service runs question -> prompt -> generation -> parse -> cross-reference.
type Service struct {
	gen    Generator
	xref   *CrossReferencer
	budget Budget
	cfg    Config
	logger *zap.Logger
}

// New creates a grounding service. budget may be nil.
func New(gen Generator, xref *CrossReferencer, budget Budget, cfg Config, logger *zap.Logger) *Service {
	return &Service{gen: gen, xref: xref, budget: budget, cfg: cfg, logger: logger}
}

// Answer generates and validates an answer for question.
func (s *Service) Answer(ctx context.Context, question string) (Answer, error) {
	if strings.TrimSpace(question) == "" {
		return Answer{}, fmt.Errorf("question is empty: %w", domain.ErrInvalidQuestion)
	}

	if s.budget != nil {
		if err := s.budget.Check(ctx); err != nil {
			return Answer{}, fmt.Errorf("budget check: %w", err)
		}
	}

	prompt, label := BuildPrompt(question)
	completion, err := s.gen.Generate(ctx, domain.GenerationRequest{
		Model:     s.cfg.Model,
		MaxTokens: s.cfg.MaxTokens,
		Prompt:    prompt,
	})
	if err != nil {
		metrics.GenerationOutcomesTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return Answer{}, fmt.Errorf("generate: %w", err)
	}
	if s.budget != nil {
		s.budget.Record(int64(completion.TotalTokens))
	}

	cit, err := citation.Parse(strings.TrimSpace(completion.Text))
	if err != nil {
		metrics.GenerationOutcomesTotal.WithLabelValues(metrics.OutcomeNoCitation).Inc()
		s.logger.Info("Generated answer has no citation",
			zap.String("condition", label),
			zap.Int("length", len(completion.Text)),
		)
		return Answer{}, fmt.Errorf("parse answer: %w", err)
	}

	v, err := s.xref.Resolve(ctx, cit)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownVerseCited) {
			metrics.GenerationOutcomesTotal.WithLabelValues(metrics.OutcomeUnknownVerse).Inc()
			s.logger.Info("Generated answer cites an unknown verse",
				zap.String("citation", cit.Reference()),
				zap.String("condition", label),
			)
		} else {
			metrics.GenerationOutcomesTotal.WithLabelValues(metrics.OutcomeError).Inc()
		}
		return Answer{}, err
	}

	metrics.GenerationOutcomesTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	return Answer{
		Question:  question,
		Condition: label,
		Response:  cit.Body,
		Citation:  cit,
		Verse:     v,
	}, nil
}
