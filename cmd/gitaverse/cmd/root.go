// Package cmd provides the CLI commands for gitaverse.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/gitaverse/internal/config"
	logpkg "github.com/kailas-cloud/gitaverse/internal/logger"
	"github.com/kailas-cloud/gitaverse/internal/version"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	env        string
	logLevel   string
	dbPath     string
}

// load resolves the configuration and a logger for loggerEnv ("" = config env).
func (o *rootOptions) load(loggerEnv string) (config.Config, *zap.Logger, error) {
	var (
		cfg config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
	} else {
		cfg, err = config.Load(o.env)
	}
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	if o.dbPath != "" {
		cfg.Database.Path = o.dbPath
	}

	if loggerEnv == "" {
		loggerEnv = o.env
	}
	level := cfg.Logging.Level
	if o.logLevel != "" {
		level = o.logLevel
	}
	if loggerEnv == "cli" && o.logLevel == "" {
		level = ""
	}
	logger, err := logpkg.NewLogger(loggerEnv, level)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}

// NewRootCmd creates the root command for the gitaverse CLI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "gitaverse",
		Short: "Answer questions with verses from the Bhagavad Gita",
		Long: `gitaverse finds the Bhagavad Gita verse closest to a question, or asks a
language model for guidance that must cite a verse which is then verified
against the local corpus.

Load the corpus once with 'gitaverse ingest', then 'gitaverse serve' or
'gitaverse ask'.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.SetVersionTemplate(version.String() + "\n")

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file (overrides --env)")
	cmd.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(), "Config environment: local, dev, prod")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level override: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Verse store path (overrides database.path)")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newIngestCmd(opts))
	cmd.AddCommand(newAskCmd(opts))
	cmd.AddCommand(newVerseCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
