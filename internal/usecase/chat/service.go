// Package chat answers a question in one of two modes and owns the policy for
// falling back from a failed grounded answer to similarity retrieval.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/gitaverse/internal/domain"
	"github.com/kailas-cloud/gitaverse/internal/metrics"
	"github.com/kailas-cloud/gitaverse/internal/usecase/grounding"
	"github.com/kailas-cloud/gitaverse/internal/usecase/retrieval"
)

// Mode selects the retrieval strategy.
type Mode string

const (
	ModeSimilarity Mode = "similarity"
	ModeGrounded   Mode = "grounded"
)

// Fallback selects what happens when a grounded answer cannot be validated.
type Fallback string

const (
	// FallbackNone surfaces the validation error to the caller.
	FallbackNone Fallback = "none"
	// FallbackSimilarity answers with similarity retrieval instead.
	FallbackSimilarity Fallback = "similarity"
)

// ParseMode validates a mode name. Empty yields "".
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", ModeSimilarity, ModeGrounded:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q (want similarity or grounded)", domain.ErrInvalidMode, s)
	}
}

// ParseFallback validates a fallback policy name. Empty yields FallbackNone.
func ParseFallback(s string) (Fallback, error) {
	switch f := Fallback(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FallbackNone:
		return FallbackNone, nil
	case FallbackSimilarity:
		return f, nil
	default:
		return "", fmt.Errorf("%w: fallback %q (want none or similarity)", domain.ErrInvalidMode, s)
	}
}

// Config holds the answering defaults.
type Config struct {
	DefaultMode Mode
	Fallback    Fallback
}

// Reply is the result of Ask. Exactly one of Match and Answer is set.
type Reply struct {
	Mode     Mode
	Question string
	Match    *retrieval.Match
	Answer   *grounding.Answer
	// FallbackReason is the grounded failure that triggered similarity mode.
	FallbackReason string
}

// Format renders the reply as plain text.
func (r Reply) Format() string {
	if r.Match != nil {
		return r.Match.Format()
	}
	if r.Answer == nil {
		return ""
	}
	a := r.Answer
	var b strings.Builder
	b.WriteString(a.Response)
	fmt.Fprintf(&b, "\n\nChapter %d, Verse %d\n", a.Verse.Chapter(), a.Verse.Number())
	b.WriteString(a.Verse.OriginalVerse())
	b.WriteString("\n\nCommentary (Shankaracharya): ")
	b.WriteString(a.Verse.Commentary())
	return b.String()
}

// Service dispatches questions to the configured strategy.
type Service struct {
	retriever Retriever
	grounder  Grounder
	cfg       Config
	logger    *zap.Logger
}

// New creates a chat service. grounder may be nil when no generator is configured.
func New(retriever Retriever, grounder Grounder, cfg Config, logger *zap.Logger) *Service {
	if cfg.DefaultMode == "" {
		cfg.DefaultMode = ModeSimilarity
	}
	if cfg.Fallback == "" {
		cfg.Fallback = FallbackNone
	}
	return &Service{retriever: retriever, grounder: grounder, cfg: cfg, logger: logger}
}

// DefaultMode returns the mode used when Ask receives "".
func (s *Service) DefaultMode() Mode { return s.cfg.DefaultMode }

// Ask answers question in mode ("" uses the default).
func (s *Service) Ask(ctx context.Context, question string, mode Mode) (Reply, error) {
	if mode == "" {
		mode = s.cfg.DefaultMode
	}

	switch mode {
	case ModeSimilarity:
		return s.similarity(ctx, question, "")
	case ModeGrounded:
		return s.grounded(ctx, question)
	default:
		return Reply{}, fmt.Errorf("%w: %q", domain.ErrInvalidMode, mode)
	}
}

func (s *Service) similarity(ctx context.Context, question, reason string) (Reply, error) {
	m, err := s.retriever.Find(ctx, question)
	if err != nil {
		return Reply{}, err
	}
	metrics.AnswersTotal.WithLabelValues(string(ModeSimilarity), boolLabel(reason != "")).Inc()
	return Reply{Mode: ModeSimilarity, Question: question, Match: &m, FallbackReason: reason}, nil
}

func (s *Service) grounded(ctx context.Context, question string) (Reply, error) {
	if s.grounder == nil {
		return Reply{}, fmt.Errorf("grounded mode needs a generation provider: %w", domain.ErrNotConfigured)
	}

	a, err := s.grounder.Answer(ctx, question)
	if err == nil {
		metrics.AnswersTotal.WithLabelValues(string(ModeGrounded), "false").Inc()
		return Reply{Mode: ModeGrounded, Question: question, Answer: &a}, nil
	}

	if s.cfg.Fallback == FallbackSimilarity &&
		(errors.Is(err, domain.ErrNoCitationFound) || errors.Is(err, domain.ErrUnknownVerseCited)) {
		s.logger.Info("Grounded answer rejected, falling back to similarity", zap.Error(err))
		return s.similarity(ctx, question, err.Error())
	}
	return Reply{}, err
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
