package gitaverse

import (
	domverse "github.com/kailas-cloud/gitaverse/internal/domain/verse"
	chatuc "github.com/kailas-cloud/gitaverse/internal/usecase/chat"
	"github.com/kailas-cloud/gitaverse/internal/usecase/ingest"
)

// Mode selects how a question is answered.
type Mode string

// Answer modes.
const (
	ModeSimilarity Mode = "similarity"
	ModeGrounded   Mode = "grounded"
)

// Verse is one corpus entry.
type Verse struct {
	ID         string
	Chapter    int
	Number     int
	Reference  string
	Text       string
	Speaker    string
	Commentary string
	Tags       []string
}

// Reply is the answer to a question.
type Reply struct {
	Mode     Mode
	Question string
	// Score is the cosine similarity; zero for grounded replies.
	Score float64
	// Condition and Response are set for grounded replies only.
	Condition string
	Response  string
	Verse     Verse
	// FallbackReason is set when a grounded attempt fell back to similarity.
	FallbackReason string
	// Text is the reply rendered for display.
	Text string
}

// IngestReport summarizes a corpus load.
type IngestReport struct {
	Parsed    int
	Embedded  int
	Updated   int
	Unchanged int
	Problems  []IngestProblem
}

// IngestProblem is a verse skipped during ingestion.
type IngestProblem struct {
	ID     string
	Reason string
}

func verseFromDomain(v domverse.Verse) Verse {
	return Verse{
		ID:         v.ID(),
		Chapter:    v.Chapter(),
		Number:     v.Number(),
		Reference:  v.Reference(),
		Text:       v.OriginalVerse(),
		Speaker:    v.Speaker(),
		Commentary: v.Commentary(),
		Tags:       append([]string(nil), v.Tags()...),
	}
}

func replyFromDomain(r chatuc.Reply) Reply {
	out := Reply{
		Mode:           Mode(r.Mode),
		Question:       r.Question,
		FallbackReason: r.FallbackReason,
		Text:           r.Format(),
	}
	switch {
	case r.Match != nil:
		out.Score = r.Match.Score
		out.Verse = verseFromDomain(r.Match.Verse)
	case r.Answer != nil:
		out.Condition = r.Answer.Condition
		out.Response = r.Answer.Response
		out.Verse = verseFromDomain(r.Answer.Verse)
	}
	return out
}

func reportFromDomain(r ingest.Report) IngestReport {
	out := IngestReport{
		Parsed:    r.Parsed,
		Embedded:  r.Embedded,
		Updated:   r.Updated,
		Unchanged: r.Unchanged,
	}
	for _, p := range r.Problems {
		out.Problems = append(out.Problems, IngestProblem{ID: p.ID, Reason: p.Err.Error()})
	}
	return out
}
