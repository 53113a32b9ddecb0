package grounding

import (
	"context"

	"github.com/kailas-cloud/gitaverse/internal/domain"
	domverse "github.com/kailas-cloud/gitaverse/internal/domain/verse"
)

type mockGenerator struct {
	text     string
	tokens   int
	err      error
	requests []domain.GenerationRequest
}

func (m *mockGenerator) Generate(_ context.Context, req domain.GenerationRequest) (domain.Completion, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return domain.Completion{}, m.err
	}
	return domain.Completion{Text: m.text, TotalTokens: m.tokens}, nil
}

type mockLookup struct {
	verses map[[2]int]domverse.Verse
	err    error
}

func (m *mockLookup) GetByChapterAndVerse(_ context.Context, chapter, verseNumber int) (domverse.Verse, error) {
	if m.err != nil {
		return domverse.Verse{}, m.err
	}
	v, ok := m.verses[[2]int{chapter, verseNumber}]
	if !ok {
		return domverse.Verse{}, domain.ErrVerseNotFound
	}
	return v, nil
}

type mockBudget struct {
	checkErr error
	recorded int64
}

func (m *mockBudget) Check(context.Context) error { return m.checkErr }
func (m *mockBudget) Record(tokens int64) { m.recorded += tokens }

func lookupWith(vs ...domverse.Verse) *mockLookup {
	m := &mockLookup{verses: make(map[[2]int]domverse.Verse)}
	for _, v := range vs {
		m.verses[[2]int{v.Chapter(), v.Number()}] = v
	}
	return m
}

func stored(chapter, number int) domverse.Verse {
	return domverse.Reconstruct(
		domverse.Key("chapter_2", number), "chapter_2", chapter, number,
		"krodhad bhavati sammohah", "Krishna", "From anger arises delusion.", nil, []float32{1},
	)
}
