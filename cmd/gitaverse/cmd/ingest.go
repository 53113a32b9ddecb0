package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newIngestCmd(opts *rootOptions) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "ingest <corpus.json>",
		Short: "Validate, embed and store a verse corpus",
		Long: `Reads a corpus JSON document, reports verses that fail validation, embeds
new or changed verses and upserts them into the verse store. Verses whose
text is unchanged keep their stored vector.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load("cli")
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			f, err := os.Open(filepath.Clean(args[0]))
			if err != nil {
				return fmt.Errorf("open corpus: %w", err)
			}
			defer f.Close()

			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.ingest.Run(cmd.Context(), f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, p := range report.Problems {
				fmt.Fprintf(out, "skip %s: %v\n", p.ID, p.Err)
			}
			fmt.Fprintf(out, "parsed %d verses: %d embedded, %d metadata updated, %d unchanged, %d invalid\n",
				report.Parsed, report.Embedded, report.Updated, report.Unchanged, len(report.Problems))
			logger.Info("Ingest finished", zap.Int("parsed", report.Parsed), zap.Int("embedded", report.Embedded))

			if strict && len(report.Problems) > 0 {
				return fmt.Errorf("%d invalid verses", len(report.Problems))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any verse fails validation")
	return cmd
}
