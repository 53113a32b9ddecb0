package gitaverse

import (
	"context"
	"io"
	"strconv"

	domverse "github.com/kailas-cloud/gitaverse/internal/domain/verse"
	chatuc "github.com/kailas-cloud/gitaverse/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/gitaverse/internal/usecase/health"
	"github.com/kailas-cloud/gitaverse/internal/usecase/ingest"
	usageuc "github.com/kailas-cloud/gitaverse/internal/usecase/usage"
)

type mockChatUC struct {
	askFn func(ctx context.Context, question string, mode chatuc.Mode) (chatuc.Reply, error)
}

func (m *mockChatUC) Ask(ctx context.Context, question string, mode chatuc.Mode) (chatuc.Reply, error) {
	return m.askFn(ctx, question, mode)
}

type mockIngestUC struct {
	runFn func(ctx context.Context, r io.Reader) (ingest.Report, error)
}

func (m *mockIngestUC) Run(ctx context.Context, r io.Reader) (ingest.Report, error) {
	return m.runFn(ctx, r)
}

type mockVerseLookup struct {
	getFn func(ctx context.Context, chapter, verseNumber int) (domverse.Verse, error)
}

func (m *mockVerseLookup) GetByChapterAndVerse(ctx context.Context, chapter, verseNumber int) (domverse.Verse, error) {
	return m.getFn(ctx, chapter, verseNumber)
}

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report { return m.report }

type mockUsageUC struct {
	getFn func(ctx context.Context, period usageuc.Period) usageuc.Report
}

func (m *mockUsageUC) GetReport(ctx context.Context, period usageuc.Period) usageuc.Report {
	return m.getFn(ctx, period)
}

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

type mockGenerator struct {
	text     string
	tokens   int
	err      error
	requests []GenerationRequest
}

func (m *mockGenerator) Generate(_ context.Context, req GenerationRequest) (Completion, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return Completion{}, m.err
	}
	return Completion{Text: m.text, TotalTokens: m.tokens}, nil
}

func stored(chapter, number int) domverse.Verse {
	v, err := domverse.New("chapter_"+strconv.Itoa(chapter), chapter, number,
		"karmany evadhikaras te", "Krishna", "Your right is to action alone.", []string{"duty"})
	if err != nil {
		panic(err)
	}
	return v
}
