package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newVerseCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verse <chapter> <verse>",
		Short: "Print a stored verse by reference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			chapter, err := strconv.Atoi(args[0])
			if err != nil || chapter <= 0 {
				return fmt.Errorf("chapter must be a positive integer, got %q", args[0])
			}
			number, err := strconv.Atoi(args[1])
			if err != nil || number <= 0 {
				return fmt.Errorf("verse must be a positive integer, got %q", args[1])
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

			v, err := a.verses.GetByChapterAndVerse(cmd.Context(), chapter, number)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, v.Reference())
			if v.Speaker() != "" {
				fmt.Fprintf(out, "Speaker: %s\n", v.Speaker())
			}
			fmt.Fprintf(out, "\n%s\n\nCommentary (Shankaracharya): %s\n", v.OriginalVerse(), v.Commentary())
			if len(v.Tags()) > 0 {
				fmt.Fprintf(out, "\nTags: %s\n", strings.Join(v.Tags(), ", "))
			}
			return nil
		},
	}
}
