package chi

import (
	"time"

	domverse "github.com/kailas-cloud/gitaverse/internal/domain/verse"
)

// ErrorCode is the machine-readable error discriminator in API responses.
type ErrorCode string

// Error codes returned by the API.
const (
	CodeBadRequest              ErrorCode = "bad_request"
	CodeUnauthorized            ErrorCode = "unauthorized"
	CodeNotFound                ErrorCode = "not_found"
	CodeInvalidQuestion         ErrorCode = "invalid_question"
	CodeInvalidMode             ErrorCode = "invalid_mode"
	CodeInvalidPeriod           ErrorCode = "invalid_period"
	CodeEncodingFailed          ErrorCode = "encoding_failed"
	CodeEmptyCorpus             ErrorCode = "empty_corpus"
	CodeNoCitationFound         ErrorCode = "no_citation_found"
	CodeUnknownVerseCited       ErrorCode = "unknown_verse_cited"
	CodeVerseNotFound           ErrorCode = "verse_not_found"
	CodeStoreUnavailable        ErrorCode = "store_unavailable"
	CodeEmbeddingProviderError  ErrorCode = "embedding_provider_error"
	CodeGenerationFailed        ErrorCode = "generation_failed"
	CodeGenerationQuotaExceeded ErrorCode = "generation_quota_exceeded"
	CodeNotConfigured           ErrorCode = "not_configured"
	CodeInternalError           ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// AskRequest is the body of POST /v1/ask.
type AskRequest struct {
	Question string `json:"question"`
	Mode     string `json:"mode,omitempty"`
}

// AskResponse is the JSON reply of POST /v1/ask.
type AskResponse struct {
	Mode     string `json:"mode"`
	Question string `json:"question"`
	// Score is set in similarity mode.
	Score *float64 `json:"similarity_score,omitempty"`
	// Condition and Response are set in grounded mode.
	Condition      string        `json:"condition,omitempty"`
	Response       string        `json:"response,omitempty"`
	Verse          VerseResponse `json:"verse"`
	FallbackReason string        `json:"fallback_reason,omitempty"`
	Text           string        `json:"text"`
}

// VerseResponse is the API view of a stored verse.
type VerseResponse struct {
	ID            string   `json:"id"`
	ChapterKey    string   `json:"chapter_key"`
	Chapter       int      `json:"chapter"`
	Verse         int      `json:"verse"`
	Reference     string   `json:"reference"`
	OriginalVerse string   `json:"original_verse"`
	Speaker       string   `json:"speaker,omitempty"`
	Commentary    string   `json:"commentary"`
	Tags          []string `json:"tags,omitempty"`
}

// UsageResponse is the body of GET /v1/usage.
type UsageResponse struct {
	Period          string    `json:"period"`
	PeriodStartAt   time.Time `json:"period_start_at"`
	PeriodEndAt     time.Time `json:"period_end_at"`
	TokensUsed      int64     `json:"tokens_used"`
	TokensLimit     int64     `json:"tokens_limit"`
	TokensRemaining int64     `json:"tokens_remaining"`
	IsExhausted     bool      `json:"is_exhausted"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Corpus *CorpusStats      `json:"corpus,omitempty"`
}

// CorpusStats reports stored and embedded verse counts.
type CorpusStats struct {
	Total    int `json:"total"`
	Embedded int `json:"embedded"`
}

func verseToResponse(v *domverse.Verse) VerseResponse {
	return VerseResponse{
		ID:            v.ID(),
		ChapterKey:    v.ChapterKey(),
		Chapter:       v.Chapter(),
		Verse:         v.Number(),
		Reference:     v.Reference(),
		OriginalVerse: v.OriginalVerse(),
		Speaker:       v.Speaker(),
		Commentary:    v.Commentary(),
		Tags:          v.Tags(),
	}
}
