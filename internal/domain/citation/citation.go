// Package citation extracts a (Chapter X, Verse Y) reference from generated text.
//
// Grammar: the answer must contain at least one token matching
//
//	"(" "Chapter " DIGITS ", Verse " DIGITS ")"
//
// Only the first token is honored. Text without one is rejected with
// domain.ErrNoCitationFound; no fallback verse is guessed.
package citation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kailas-cloud/gitaverse/internal/domain"
)

var pattern = regexp.MustCompile(`\(Chapter (\d+), Verse (\d+)\)`)

// Citation is a parsed chapter/verse reference plus the answer body with the
// citation text removed.
type Citation struct {
	Chapter     int
	VerseNumber int
	Body        string
}

// Reference renders the canonical citation token.
func (c Citation) Reference() string {
	return Format(c.Chapter, c.VerseNumber)
}

// Format renders "(Chapter X, Verse Y)".
func Format(chapter, verseNumber int) string {
	return fmt.Sprintf("(Chapter %d, Verse %d)", chapter, verseNumber)
}

// Parse extracts the first citation token from raw. Every occurrence of that
// exact token is removed from the text and the trimmed remainder becomes Body.
func Parse(raw string) (Citation, error) {
	m := pattern.FindStringSubmatch(raw)
	if m == nil {
		return Citation{}, domain.ErrNoCitationFound
	}

	chapter, err := strconv.Atoi(m[1])
	if err != nil {
		return Citation{}, fmt.Errorf("%w: chapter %q: %w", domain.ErrNoCitationFound, m[1], err)
	}
	verseNumber, err := strconv.Atoi(m[2])
	if err != nil {
		return Citation{}, fmt.Errorf("%w: verse %q: %w", domain.ErrNoCitationFound, m[2], err)
	}

	return Citation{
		Chapter:     chapter,
		VerseNumber: verseNumber,
		Body:        strings.TrimSpace(strings.ReplaceAll(raw, m[0], "")),
	}, nil
}
