package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/gitaverse/internal/domain"
	chatuc "github.com/kailas-cloud/gitaverse/internal/usecase/chat"
)

func newAskCmd(opts *rootOptions) *cobra.Command {
	var (
		modeName string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a question from the command line",
		Long: `Answers one question given as arguments. With no arguments, reads one
question per line from stdin until EOF.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := chatuc.ParseMode(modeName)
			if err != nil {
				return err
			}

			cfg, logger, err := opts.load("cli")
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if len(args) > 0 {
				return askOne(cmd.Context(), a.chat, out, strings.Join(args, " "), mode, asJSON)
			}
			return askLoop(cmd.Context(), a.chat, cmd.InOrStdin(), out, mode, asJSON)
		},
	}

	cmd.Flags().StringVar(&modeName, "mode", "", "Answer mode: similarity or grounded (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the reply as JSON")
	return cmd
}

// asker is the subset of the chat service used by the CLI.
type asker interface {
	Ask(ctx context.Context, question string, mode chatuc.Mode) (chatuc.Reply, error)
}

func askOne(ctx context.Context, c asker, out io.Writer, question string, mode chatuc.Mode, asJSON bool) error {
	reply, err := c.Ask(ctx, question, mode)
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(replyView(&reply))
	}
	if reply.FallbackReason != "" {
		fmt.Fprintf(out, "(grounded answer rejected: %s)\n\n", reply.FallbackReason)
	}
	fmt.Fprintln(out, reply.Format())
	return nil
}

// askLoop answers each non-empty stdin line. Per-question input errors are
// printed and the loop continues; anything else stops it.
func askLoop(ctx context.Context, c asker, in io.Reader, out io.Writer, mode chatuc.Mode, asJSON bool) error {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		q := strings.TrimSpace(sc.Text())
		if q == "" {
			continue
		}
		err := askOne(ctx, c, out, q, mode, asJSON)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrInvalidQuestion),
			errors.Is(err, domain.ErrEncoding),
			errors.Is(err, domain.ErrNoCitationFound),
			errors.Is(err, domain.ErrUnknownVerseCited):
			fmt.Fprintf(out, "error: %v\n", err)
		default:
			return err
		}
		fmt.Fprintln(out)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	return nil
}

// replyJSON is the --json rendering of a reply.
type replyJSON struct {
	Mode           string   `json:"mode"`
	Question       string   `json:"question"`
	Score          *float64 `json:"similarity_score,omitempty"`
	Condition      string   `json:"condition,omitempty"`
	Response       string   `json:"response,omitempty"`
	Chapter        int      `json:"chapter"`
	Verse          int      `json:"verse"`
	OriginalVerse  string   `json:"original_verse"`
	Commentary     string   `json:"commentary"`
	FallbackReason string   `json:"fallback_reason,omitempty"`
}

func replyView(r *chatuc.Reply) replyJSON {
	v := replyJSON{Mode: string(r.Mode), Question: r.Question, FallbackReason: r.FallbackReason}
	switch {
	case r.Match != nil:
		score := r.Match.Score
		v.Score = &score
		v.Chapter, v.Verse = r.Match.Verse.Chapter(), r.Match.Verse.Number()
		v.OriginalVerse, v.Commentary = r.Match.Verse.OriginalVerse(), r.Match.Verse.Commentary()
	case r.Answer != nil:
		v.Condition, v.Response = r.Answer.Condition, r.Answer.Response
		v.Chapter, v.Verse = r.Answer.Verse.Chapter(), r.Answer.Verse.Number()
		v.OriginalVerse, v.Commentary = r.Answer.Verse.OriginalVerse(), r.Answer.Verse.Commentary()
	}
	return v
}
