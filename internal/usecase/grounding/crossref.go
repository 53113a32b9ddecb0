package grounding

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/gitaverse/internal/domain"
	"github.com/kailas-cloud/gitaverse/internal/domain/citation"
	domverse "github.com/kailas-cloud/gitaverse/internal/domain/verse"
)

// CrossReferencer checks a parsed citation against the stored corpus.
type CrossReferencer struct {
	verses VerseLookup
}

// NewCrossReferencer creates a cross-referencer over the verse store.
func NewCrossReferencer(verses VerseLookup) *CrossReferencer {
	return &CrossReferencer{verses: verses}
}

// Resolve returns the cited verse. A reference that is not stored is reported
// as domain.ErrUnknownVerseCited; it is never replaced by a nearby verse.
func (c *CrossReferencer) Resolve(ctx context.Context, cit citation.Citation) (domverse.Verse, error) {
	v, err := c.verses.GetByChapterAndVerse(ctx, cit.Chapter, cit.VerseNumber)
	if err != nil {
		if errors.Is(err, domain.ErrVerseNotFound) {
			return domverse.Verse{}, domain.NewUnknownVerse(cit.Chapter, cit.VerseNumber)
		}
		return domverse.Verse{}, fmt.Errorf("resolve %s: %w", cit.Reference(), err)
	}
	return v, nil
}
