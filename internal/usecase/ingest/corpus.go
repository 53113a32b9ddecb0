package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/kailas-cloud/gitaverse/internal/domain"
	domverse "github.com/kailas-cloud/gitaverse/internal/domain/verse"
)

// corpusDoc is the on-disk corpus layout.
type corpusDoc struct {
	Chapters map[string]chapterDoc `json:"chapters"`
}

type chapterDoc struct {
	ChapterNumber json.RawMessage     `json:"chapter_number"`
	Verses        map[string]verseDoc `json:"verses"`
}

type verseDoc struct {
	OriginalVerse string   `json:"original_verse"`
	Speaker       string   `json:"speaker"`
	Commentary    struct {
		Shankaracharya string `json:"shankaracharya"`
	} `json:"commentary"`
	Tags []string `json:"tags"`
}

// Problem describes one verse that could not be taken from the corpus.
type Problem struct {
	ID  string
	Err error
}

// ParseCorpus decodes and validates a corpus document. Structural errors fail
// the whole document; an individual invalid verse is reported as a Problem
// and skipped. Verses come back ordered by chapter then verse number.
func ParseCorpus(r io.Reader) ([]domverse.Verse, []Problem, error) {
	var doc corpusDoc
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrInvalidCorpus, describeJSONError(err))
	}
	if len(doc.Chapters) == 0 {
		return nil, nil, fmt.Errorf("%w: no chapters", domain.ErrInvalidCorpus)
	}

	var (
		verses   []domverse.Verse
		problems []Problem
	)
	for key, ch := range doc.Chapters {
		chapter, err := chapterNumber(key, ch.ChapterNumber)
		if err != nil {
			problems = append(problems, Problem{ID: key, Err: err})
			continue
		}
		for num, vd := range ch.Verses {
			id := key + "_" + num
			n, err := strconv.Atoi(strings.TrimSpace(num))
			if err != nil {
				problems = append(problems, Problem{ID: id, Err: fmt.Errorf("%w: verse number %q", domain.ErrInvalidVerse, num)})
				continue
			}
			v, err := domverse.New(key, chapter, n, vd.OriginalVerse, vd.Speaker, vd.Commentary.Shankaracharya, vd.Tags)
			if err != nil {
				problems = append(problems, Problem{ID: id, Err: fmt.Errorf("%w: %w", domain.ErrInvalidVerse, err)})
				continue
			}
			verses = append(verses, v)
		}
	}

	sort.Slice(verses, func(i, j int) bool {
		if verses[i].Chapter() != verses[j].Chapter() {
			return verses[i].Chapter() < verses[j].Chapter()
		}
		if verses[i].Number() != verses[j].Number() {
			return verses[i].Number() < verses[j].Number()
		}
		return verses[i].ID() < verses[j].ID()
	})
	sort.Slice(problems, func(i, j int) bool { return problems[i].ID < problems[j].ID })

	return verses, problems, nil
}

// chapterNumber reads chapter_number as a JSON number or numeric string,
// falling back to the digits in the chapter key ("chapter_2" -> 2).
func chapterNumber(key string, raw json.RawMessage) (int, error) {
	if len(raw) > 0 && string(raw) != "null" {
		var n int
		if err := json.Unmarshal(raw, &n); err == nil && n > 0 {
			return n, nil
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && n > 0 {
				return n, nil
			}
		}
	}

	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, key)
	if n, err := strconv.Atoi(digits); err == nil && n > 0 {
		return n, nil
	}
	return 0, fmt.Errorf("%w: chapter %q has no usable chapter number", domain.ErrInvalidVerse, key)
}

func describeJSONError(err error) string {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Sprintf("%v at offset %d", syntaxErr, syntaxErr.Offset)
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("field %q: expected %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value)
	}
	return err.Error()
}
