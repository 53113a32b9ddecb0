package verse

import (
	"fmt"
	"strconv"
	"strings"
)

// Verse is a single corpus entry (immutable value object).
// The embedding is derived from the original text; a copy with a new
// vector is only produced through WithEmbedding.
type Verse struct {
	id            string
	chapterKey    string
	chapter       int
	number        int
	originalVerse string
	speaker       string
	commentary    string
	tags          []string
	embedding     []float32
}

// Key forms the composite identifier "{chapterKey}_{verseNumber}".
func Key(chapterKey string, verseNumber int) string {
	return chapterKey + "_" + strconv.Itoa(verseNumber)
}

// New validates and creates a Verse without an embedding.
// chapterKey is the ingestion-time chapter identifier; chapter is the numeric
// chapter used for citation lookups.
func New(
	chapterKey string, chapter, number int,
	originalVerse, speaker, commentary string, tags []string,
) (Verse, error) {
	if strings.TrimSpace(chapterKey) == "" {
		return Verse{}, fmt.Errorf("chapter key is required")
	}
	if chapter <= 0 {
		return Verse{}, fmt.Errorf("chapter must be positive, got %d", chapter)
	}
	if number <= 0 {
		return Verse{}, fmt.Errorf("verse number must be positive, got %d", number)
	}
	if strings.TrimSpace(originalVerse) == "" {
		return Verse{}, fmt.Errorf("original verse text is required")
	}
	for _, t := range tags {
		if strings.Contains(t, tagSeparator) {
			return Verse{}, fmt.Errorf("tag %q must not contain %q", t, tagSeparator)
		}
	}
	return Verse{
		id:            Key(chapterKey, number),
		chapterKey:    chapterKey,
		chapter:       chapter,
		number:        number,
		originalVerse: originalVerse,
		speaker:       speaker,
		commentary:    commentary,
		tags:          normalizeTags(tags),
	}, nil
}

// Reconstruct creates a Verse without validation (storage hydration).
func Reconstruct(
	id, chapterKey string, chapter, number int,
	originalVerse, speaker, commentary string, tags []string,
	embedding []float32,
) Verse {
	return Verse{
		id: id, chapterKey: chapterKey, chapter: chapter, number: number,
		originalVerse: originalVerse, speaker: speaker, commentary: commentary,
		tags: tags, embedding: embedding,
	}
}

// ID returns the composite key.
func (v *Verse) ID() string { return v.id }

// ChapterKey returns the ingestion-time chapter identifier.
func (v *Verse) ChapterKey() string { return v.chapterKey }

// Chapter returns the numeric chapter.
func (v *Verse) Chapter() int { return v.chapter }

// Number returns the verse number within the chapter.
func (v *Verse) Number() int { return v.number }

// OriginalVerse returns the source text.
func (v *Verse) OriginalVerse() string { return v.originalVerse }

// Speaker returns the optional attribution.
func (v *Verse) Speaker() string { return v.speaker }

// Commentary returns the canonical commentary.
func (v *Verse) Commentary() string { return v.commentary }

// Tags returns the topical labels in order.
func (v *Verse) Tags() []string { return v.tags }

// Embedding returns the pre-computed vector (nil until ingested).
func (v *Verse) Embedding() []float32 { return v.embedding }

// HasEmbedding reports whether the verse is eligible for retrieval.
func (v *Verse) HasEmbedding() bool { return len(v.embedding) > 0 }

// Reference renders the citation form "Chapter X, Verse Y".
func (v *Verse) Reference() string {
	return fmt.Sprintf("Chapter %d, Verse %d", v.chapter, v.number)
}

// SameText reports whether other carries identical source text, which means
// an existing embedding is still valid for it.
func (v *Verse) SameText(other *Verse) bool {
	return v.originalVerse == other.originalVerse
}

// WithEmbedding returns a copy with the given vector set.
func (v *Verse) WithEmbedding(e []float32) Verse {
	c := *v
	c.embedding = e
	return c
}

// tagSeparator delimits tags in the storage form, so it cannot appear inside one.
const tagSeparator = ","

// JoinTags renders tags in the comma-joined storage form.
func JoinTags(tags []string) string {
	return strings.Join(tags, tagSeparator+" ")
}

// SplitTags parses the comma-joined storage form back into ordered tags.
func SplitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, tagSeparator)
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// normalizeTags copies tags in the form SplitTags yields: trimmed, blanks dropped.
func normalizeTags(tags []string) []string {
	var c []string
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			c = append(c, t)
		}
	}
	return c
}
