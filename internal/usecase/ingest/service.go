// Package ingest loads a corpus document into the verse store, embedding
// each verse whose stored vector is missing or stale.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/gitaverse/internal/domain"
	domverse "github.com/kailas-cloud/gitaverse/internal/domain/verse"
)

const (
	// DefaultBatchSize is the number of verse texts sent per encoder call.
	DefaultBatchSize = 64
	// DefaultConcurrency bounds parallel encoder calls.
	DefaultConcurrency = 4
)

// Report summarizes one ingestion run.
type Report struct {
	Parsed    int
	Embedded  int
	Unchanged int
	// Updated counts verses whose metadata changed but whose vector was reused.
	Updated  int
	Problems []Problem
}

// Service runs ingestion.
type Service struct {
	repo        Repository
	embed       Embedder
	batchSize   int
	concurrency int
	dimensions  int
	logger      *zap.Logger
}

// New creates an ingestion service.
func New(repo Repository, embed Embedder, logger *zap.Logger) *Service {
	return &Service{
		repo:        repo,
		embed:       embed,
		batchSize:   DefaultBatchSize,
		concurrency: DefaultConcurrency,
		logger:      logger,
	}
}

// WithBatchSize overrides the encoder batch size.
func (s *Service) WithBatchSize(n int) *Service {
	if n > 0 {
		s.batchSize = n
	}
	return s
}

// WithDimensions sets the vector size the encoder produces. Stored vectors of
// any other size are re-encoded. Zero accepts any stored size.
func (s *Service) WithDimensions(n int) *Service {
	if n > 0 {
		s.dimensions = n
	}
	return s
}

// Run parses r and stores its verses. Verses whose text matches the stored
// copy and that already carry a vector of the current size are not re-encoded.
func (s *Service) Run(ctx context.Context, r io.Reader) (Report, error) {
	verses, problems, err := ParseCorpus(r)
	if err != nil {
		return Report{}, err
	}
	rep := Report{Parsed: len(verses), Problems: problems}
	for _, p := range problems {
		s.logger.Warn("Skipping invalid corpus entry", zap.String("id", p.ID), zap.Error(p.Err))
	}

	var stale []domverse.Verse
	for _, v := range verses {
		existing, err := s.repo.Get(ctx, v.ID())
		switch {
		case errors.Is(err, domain.ErrVerseNotFound):
			stale = append(stale, v)
		case err != nil:
			return rep, fmt.Errorf("check %s: %w", v.ID(), err)
		case s.reusable(&existing) && existing.SameText(&v):
			if sameMetadata(&existing, &v) {
				rep.Unchanged++
				continue
			}
			if err := s.repo.Upsert(ctx, v.WithEmbedding(existing.Embedding())); err != nil {
				return rep, fmt.Errorf("update %s: %w", v.ID(), err)
			}
			rep.Updated++
		default:
			stale = append(stale, v)
		}
	}

	embedded, err := s.embedAll(ctx, stale)
	if err != nil {
		return rep, err
	}
	for _, v := range embedded {
		if err := s.repo.Upsert(ctx, v); err != nil {
			return rep, fmt.Errorf("store %s: %w", v.ID(), err)
		}
		rep.Embedded++
	}

	s.logger.Info("Corpus ingested",
		zap.Int("parsed", rep.Parsed),
		zap.Int("embedded", rep.Embedded),
		zap.Int("updated", rep.Updated),
		zap.Int("unchanged", rep.Unchanged),
		zap.Int("problems", len(rep.Problems)),
	)
	return rep, nil
}

// embedAll encodes verses in batches, running up to s.concurrency batches at once.
func (s *Service) embedAll(ctx context.Context, verses []domverse.Verse) ([]domverse.Verse, error) {
	out := make([]domverse.Verse, len(verses))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for start := 0; start < len(verses); start += s.batchSize {
		end := min(start+s.batchSize, len(verses))
		g.Go(func() error {
			texts := make([]string, end-start)
			for i := start; i < end; i++ {
				texts[i-start] = verses[i].OriginalVerse()
			}
			res, err := s.embed.BatchEmbed(gctx, texts)
			if err != nil {
				return fmt.Errorf("embed verses %d-%d: %w", start, end-1, err)
			}
			if len(res.Embeddings) != len(texts) {
				return fmt.Errorf("embed verses %d-%d: got %d vectors: %w",
					start, end-1, len(res.Embeddings), domain.ErrEncoding)
			}
			for i := start; i < end; i++ {
				out[i] = verses[i].WithEmbedding(res.Embeddings[i-start])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// reusable reports whether the stored vector came from an encoder of the current size.
func (s *Service) reusable(v *domverse.Verse) bool {
	if !v.HasEmbedding() {
		return false
	}
	return s.dimensions == 0 || len(v.Embedding()) == s.dimensions
}

func sameMetadata(a, b *domverse.Verse) bool {
	return a.Chapter() == b.Chapter() &&
		a.Speaker() == b.Speaker() &&
		a.Commentary() == b.Commentary() &&
		domverse.JoinTags(a.Tags()) == domverse.JoinTags(b.Tags())
}
