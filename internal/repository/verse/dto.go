package verse

import (
	"database/sql"
	"fmt"

	"github.com/kailas-cloud/gitaverse/internal/db"
	domverse "github.com/kailas-cloud/gitaverse/internal/domain/verse"
)

type scanner interface {
	Scan(dest ...any) error
}

// record mirrors one row of the verses table.
type record struct {
	id            string
	chapterKey    string
	chapter       int
	verseNumber   int
	originalVerse string
	speaker       sql.NullString
	commentary    sql.NullString
	tags          sql.NullString
	embedding     []byte
}

func scanRecord(s scanner) (record, error) {
	var rec record
	err := s.Scan(
		&rec.id, &rec.chapterKey, &rec.chapter, &rec.verseNumber,
		&rec.originalVerse, &rec.speaker, &rec.commentary, &rec.tags, &rec.embedding,
	)
	return rec, err
}

func (rec record) toDomain() (domverse.Verse, error) {
	var vec []float32
	if len(rec.embedding) > 0 {
		var err error
		vec, err = db.DecodeVector(rec.embedding)
		if err != nil {
			return domverse.Verse{}, fmt.Errorf("decode embedding: %w", err)
		}
	}
	return domverse.Reconstruct(
		rec.id, rec.chapterKey, rec.chapter, rec.verseNumber,
		rec.originalVerse, rec.speaker.String, rec.commentary.String,
		domverse.SplitTags(rec.tags.String), vec,
	), nil
}
