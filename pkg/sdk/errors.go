package gitaverse

import "github.com/kailas-cloud/gitaverse/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrEncoding                = domain.ErrEncoding
	ErrEmptyCorpus             = domain.ErrEmptyCorpus
	ErrNoCitationFound         = domain.ErrNoCitationFound
	ErrUnknownVerseCited       = domain.ErrUnknownVerseCited
	ErrStoreUnavailable        = domain.ErrStoreUnavailable
	ErrVerseNotFound           = domain.ErrVerseNotFound
	ErrInvalidQuestion         = domain.ErrInvalidQuestion
	ErrInvalidMode             = domain.ErrInvalidMode
	ErrInvalidPeriod           = domain.ErrInvalidPeriod
	ErrInvalidCorpus           = domain.ErrInvalidCorpus
	ErrEmbeddingProviderError  = domain.ErrEmbeddingProviderError
	ErrGenerationFailed        = domain.ErrGenerationFailed
	ErrGenerationQuotaExceeded = domain.ErrGenerationQuotaExceeded
	ErrNotConfigured           = domain.ErrNotConfigured
)
