package verse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/gitaverse/internal/db"
	"github.com/kailas-cloud/gitaverse/internal/domain"
	domverse "github.com/kailas-cloud/gitaverse/internal/domain/verse"
)

// store is the consumer interface for the verses table (ISP).
type store interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const selectColumns = `id, chapter_key, chapter, verse_number, original_verse, speaker, commentary, tags, embedding`

const upsertSQL = `
INSERT INTO verses (id, chapter_key, chapter, verse_number, original_verse, speaker, commentary, tags, embedding)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	chapter_key    = excluded.chapter_key,
	chapter        = excluded.chapter,
	verse_number   = excluded.verse_number,
	original_verse = excluded.original_verse,
	speaker        = excluded.speaker,
	commentary     = excluded.commentary,
	tags           = excluded.tags,
	embedding      = excluded.embedding`

// Repo reads and writes verses in SQLite.
type Repo struct {
	store  store
	logger *zap.Logger
}

// New creates a verse repository.
func New(s store, logger *zap.Logger) *Repo {
	return &Repo{store: s, logger: logger}
}

// LoadAll returns every verse that carries a usable embedding, in insertion order.
func (r *Repo) LoadAll(ctx context.Context) ([]domverse.Verse, error) {
	rows, err := r.store.QueryContext(ctx, `SELECT `+selectColumns+` FROM verses ORDER BY rowid`)
	if err != nil {
		return nil, unavailable(db.OpQuery, err)
	}
	defer rows.Close()

	var (
		out     []domverse.Verse
		skipped int
	)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, unavailable(db.OpScan, err)
		}
		if len(rec.embedding) == 0 {
			skipped++
			continue
		}
		v, err := rec.toDomain()
		if err != nil {
			skipped++
			r.logger.Warn("Skipping verse with malformed embedding",
				zap.String("id", rec.id), zap.Error(err))
			continue
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(db.OpScan, err)
	}

	if skipped > 0 {
		r.logger.Info("Verses without usable embeddings skipped",
			zap.Int("skipped", skipped), zap.Int("loaded", len(out)))
	}
	return out, nil
}

// GetByChapterAndVerse looks a verse up by its numeric reference.
func (r *Repo) GetByChapterAndVerse(ctx context.Context, chapter, verseNumber int) (domverse.Verse, error) {
	row := r.store.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM verses WHERE chapter = ? AND verse_number = ? ORDER BY rowid LIMIT 1`,
		chapter, verseNumber)
	return r.scanOne(row, fmt.Sprintf("chapter %d verse %d", chapter, verseNumber))
}

// Get returns a verse by its composite id.
func (r *Repo) Get(ctx context.Context, id string) (domverse.Verse, error) {
	row := r.store.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM verses WHERE id = ?`, id)
	return r.scanOne(row, id)
}

// Upsert inserts or replaces a verse by id.
func (r *Repo) Upsert(ctx context.Context, v domverse.Verse) error {
	var blob []byte
	if v.HasEmbedding() {
		blob = db.EncodeVector(v.Embedding())
	}
	_, err := r.store.ExecContext(ctx, upsertSQL,
		v.ID(), v.ChapterKey(), v.Chapter(), v.Number(),
		v.OriginalVerse(), v.Speaker(), v.Commentary(),
		domverse.JoinTags(v.Tags()), blob)
	if err != nil {
		return unavailable(db.OpUpsert, fmt.Errorf("upsert %s: %w", v.ID(), err))
	}
	return nil
}

// Count returns the number of stored verses and how many carry an embedding.
func (r *Repo) Count(ctx context.Context) (total, embedded int, err error) {
	row := r.store.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN length(embedding) > 0 THEN 1 ELSE 0 END), 0) FROM verses`)
	if err := row.Scan(&total, &embedded); err != nil {
		return 0, 0, unavailable(db.OpQuery, err)
	}
	return total, embedded, nil
}

func (r *Repo) scanOne(row *sql.Row, ref string) (domverse.Verse, error) {
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domverse.Verse{}, fmt.Errorf("%s: %w", ref, domain.ErrVerseNotFound)
		}
		return domverse.Verse{}, unavailable(db.OpScan, err)
	}
	v, err := rec.toDomain()
	if err != nil {
		// The text is still valid; only the vector is dropped.
		r.logger.Warn("Verse has malformed embedding", zap.String("id", rec.id), zap.Error(err))
		rec.embedding = nil
		v, _ = rec.toDomain()
	}
	return v, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, &db.Error{Op: op, Err: err})
}
