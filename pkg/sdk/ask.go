package gitaverse

import (
	"context"
	"fmt"
	"io"
	"time"

	chatuc "github.com/kailas-cloud/gitaverse/internal/usecase/chat"
)

// Ask answers a question. An empty mode selects the client default.
func (c *Client) Ask(ctx context.Context, question string, mode Mode) (_ Reply, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ask", start, err) }()

	r, err := c.chatSvc.Ask(ctx, question, chatuc.Mode(mode))
	if err != nil {
		return Reply{}, fmt.Errorf("ask: %w", err)
	}
	return replyFromDomain(r), nil
}

// Verse looks up a verse by its numeric reference.
func (c *Client) Verse(ctx context.Context, chapter, verse int) (_ Verse, err error) {
	start := time.Now()
	defer func() { c.obs.observe("verse.get", start, err) }()

	if chapter <= 0 || verse <= 0 {
		return Verse{}, fmt.Errorf("verse %d:%d: %w", chapter, verse, ErrVerseNotFound)
	}
	v, err := c.verses.GetByChapterAndVerse(ctx, chapter, verse)
	if err != nil {
		return Verse{}, fmt.Errorf("get verse: %w", err)
	}
	return verseFromDomain(v), nil
}

// Ingest loads a corpus document into the verse store. Verses whose text is
// unchanged keep their stored vectors. Invalid verses are reported, not fatal.
func (c *Client) Ingest(ctx context.Context, r io.Reader) (_ IngestReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ingest", start, err) }()

	rep, err := c.ingestSvc.Run(ctx, r)
	if err != nil {
		return IngestReport{}, fmt.Errorf("ingest: %w", err)
	}
	return reportFromDomain(rep), nil
}
