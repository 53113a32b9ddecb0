package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEncoding signals input the encoder cannot turn into a vector
	// (oversized, not valid text) or an encoder result that is unusable.
	ErrEncoding = errors.New("encoding error")
	// ErrEmptyCorpus signals that no embedded verses are available for ranking.
	ErrEmptyCorpus = errors.New("empty corpus")
	// ErrNoCitationFound signals generated text without a (Chapter X, Verse Y) reference.
	ErrNoCitationFound = errors.New("no citation found")
	// ErrUnknownVerseCited signals a citation that does not exist in the corpus.
	ErrUnknownVerseCited = errors.New("unknown verse cited")
	// ErrStoreUnavailable signals that the verse store could not be reached.
	ErrStoreUnavailable = errors.New("verse store unavailable")

	// ErrVerseNotFound signals a missing verse on direct lookup.
	ErrVerseNotFound = errors.New("verse not found")
	// ErrInvalidQuestion signals an empty or malformed question.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrInvalidMode signals an unknown answer mode or fallback policy.
	ErrInvalidMode = errors.New("invalid mode")
	// ErrInvalidPeriod signals an unknown usage report period.
	ErrInvalidPeriod = errors.New("invalid period")
	// ErrInvalidCorpus signals a corpus document that is not well-formed.
	ErrInvalidCorpus = errors.New("invalid corpus")
	// ErrInvalidVerse signals a verse that fails validation.
	ErrInvalidVerse = errors.New("invalid verse")
	// ErrEmbeddingProviderError signals a remote embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationFailed signals a failed or malformed generation call.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrGenerationQuotaExceeded signals an exhausted generation token budget.
	ErrGenerationQuotaExceeded = errors.New("generation quota exceeded")
	// ErrNotConfigured signals a capability that was not wired at startup.
	ErrNotConfigured = errors.New("not configured")
)

// UnknownVerseError carries the dangling reference alongside ErrUnknownVerseCited.
type UnknownVerseError struct {
	Chapter     int
	VerseNumber int
}

func (e *UnknownVerseError) Error() string {
	return fmt.Sprintf("%s: chapter %d, verse %d", ErrUnknownVerseCited.Error(), e.Chapter, e.VerseNumber)
}

func (e *UnknownVerseError) Unwrap() error { return ErrUnknownVerseCited }

// NewUnknownVerse creates an unknown verse error for the given reference.
func NewUnknownVerse(chapter, verseNumber int) error {
	return &UnknownVerseError{Chapter: chapter, VerseNumber: verseNumber}
}
