package chi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/gitaverse/internal/domain"
	domverse "github.com/kailas-cloud/gitaverse/internal/domain/verse"
	"github.com/kailas-cloud/gitaverse/internal/logger"
	chatuc "github.com/kailas-cloud/gitaverse/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/gitaverse/internal/usecase/health"
	usageuc "github.com/kailas-cloud/gitaverse/internal/usecase/usage"
)

// maxAskBody caps the POST /v1/ask payload.
const maxAskBody = 64 << 10

// Asker answers questions.
type Asker interface {
	Ask(ctx context.Context, question string, mode chatuc.Mode) (chatuc.Reply, error)
}

// VerseLookup fetches a verse by its reference.
type VerseLookup interface {
	GetByChapterAndVerse(ctx context.Context, chapter, verseNumber int) (domverse.Verse, error)
}

// UsageReporter builds generation usage reports.
type UsageReporter interface {
	GetReport(ctx context.Context, period usageuc.Period) usageuc.Report
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers.
type Server struct {
	chat          Asker
	verses        VerseLookup
	usage         UsageReporter
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(chat Asker, verses VerseLookup, usage UsageReporter, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		chat:   chat,
		verses: verses,
		usage:  usage,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuestion, http.StatusBadRequest, CodeInvalidQuestion),
		sentinelHandler(domain.ErrInvalidMode, http.StatusBadRequest, CodeInvalidMode),
		sentinelHandler(domain.ErrInvalidPeriod, http.StatusBadRequest, CodeInvalidPeriod),
		sentinelHandler(domain.ErrEncoding, http.StatusUnprocessableEntity, CodeEncodingFailed),
		sentinelHandler(domain.ErrVerseNotFound, http.StatusNotFound, CodeVerseNotFound),
		sentinelHandler(domain.ErrNoCitationFound, http.StatusBadGateway, CodeNoCitationFound),
		sentinelHandler(domain.ErrUnknownVerseCited, http.StatusBadGateway, CodeUnknownVerseCited),
		sentinelHandler(domain.ErrEmptyCorpus, http.StatusServiceUnavailable, CodeEmptyCorpus),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, CodeStoreUnavailable),
		sentinelHandler(domain.ErrGenerationQuotaExceeded,
			http.StatusPaymentRequired, CodeGenerationQuotaExceeded),
		sentinelHandler(domain.ErrEmbeddingProviderError,
			http.StatusBadGateway, CodeEmbeddingProviderError),
		sentinelHandler(domain.ErrGenerationFailed, http.StatusBadGateway, CodeGenerationFailed),
		sentinelHandler(domain.ErrNotConfigured, http.StatusNotImplemented, CodeNotConfigured),
	}
	return s
}

// Ask handles POST /v1/ask. ?format=text returns the plain-text rendering.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxAskBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	mode, err := chatuc.ParseMode(req.Mode)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	reply, err := s.chat.Ask(r.Context(), req.Question, mode)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}
	annotateReply(r.Context(), &reply)

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, reply.Format())
		return
	}

	writeJSON(w, http.StatusOK, replyToResponse(&reply))
}

// GetVerse handles GET /v1/verses/{chapter}/{verse}.
func (s *Server) GetVerse(w http.ResponseWriter, r *http.Request) {
	chapter, err1 := strconv.Atoi(chi.URLParam(r, "chapter"))
	number, err2 := strconv.Atoi(chi.URLParam(r, "verse"))
	if err1 != nil || err2 != nil || chapter <= 0 || number <= 0 {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "chapter and verse must be positive integers")
		return
	}

	v, err := s.verses.GetByChapterAndVerse(r.Context(), chapter, number)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, verseToResponse(&v))
}

// GetUsage handles GET /v1/usage?period=day|month.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	period, err := usageuc.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	report := s.usage.GetReport(r.Context(), period)
	writeJSON(w, http.StatusOK, UsageResponse{
		Period:          string(report.Period),
		PeriodStartAt:   report.PeriodStart,
		PeriodEndAt:     report.PeriodEnd,
		TokensUsed:      report.TokensUsed,
		TokensLimit:     report.TokensLimit,
		TokensRemaining: report.TokensRemaining,
		IsExhausted:     report.Exhausted,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	resp := HealthResponse{Status: string(report.Status), Checks: checks}
	if _, ok := report.Checks["corpus"]; ok {
		resp.Corpus = &CorpusStats{Total: report.Corpus.Total, Embedded: report.Corpus.Embedded}
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, resp)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func replyToResponse(reply *chatuc.Reply) AskResponse {
	resp := AskResponse{
		Mode:           string(reply.Mode),
		Question:       reply.Question,
		FallbackReason: reply.FallbackReason,
		Text:           reply.Format(),
	}
	switch {
	case reply.Match != nil:
		score := reply.Match.Score
		resp.Score = &score
		resp.Verse = verseToResponse(&reply.Match.Verse)
	case reply.Answer != nil:
		resp.Condition = reply.Answer.Condition
		resp.Response = reply.Answer.Response
		resp.Verse = verseToResponse(&reply.Answer.Verse)
	}
	return resp
}

// annotateReply tags the canonical request log line with the answer outcome.
func annotateReply(ctx context.Context, reply *chatuc.Reply) {
	fields := []zap.Field{zap.String("answer_mode", string(reply.Mode))}
	switch {
	case reply.Match != nil:
		fields = append(fields,
			zap.String("verse_id", reply.Match.Verse.ID()),
			zap.Float64("similarity_score", reply.Match.Score),
		)
	case reply.Answer != nil:
		fields = append(fields,
			zap.String("verse_id", reply.Answer.Verse.ID()),
			zap.String("condition", reply.Answer.Condition),
		)
	}
	if reply.FallbackReason != "" {
		fields = append(fields, zap.Bool("fallback", true))
	}
	logger.Annotate(ctx, fields...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-facing message without exposing internals.
// Input-side errors keep their detail; upstream failures collapse to the sentinel text.
func safeDomainMessage(err error) string {
	detailed := []error{
		domain.ErrInvalidQuestion,
		domain.ErrInvalidMode,
		domain.ErrInvalidPeriod,
		domain.ErrUnknownVerseCited,
	}
	for _, s := range detailed {
		if errors.Is(err, s) {
			return err.Error()
		}
	}

	sentinels := []error{
		domain.ErrEncoding,
		domain.ErrVerseNotFound,
		domain.ErrNoCitationFound,
		domain.ErrEmptyCorpus,
		domain.ErrStoreUnavailable,
		domain.ErrGenerationQuotaExceeded,
		domain.ErrEmbeddingProviderError,
		domain.ErrGenerationFailed,
		domain.ErrNotConfigured,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	log := logger.FromContext(ctx)
	log.Warn("domain error", zap.Error(err))
	logger.Annotate(ctx, zap.NamedError("domain_error", err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
