// Package logger builds the process zap logger and carries per-request
// loggers and canonical log line fields through context.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// configs maps an environment name to its zap configuration.
var configs = map[string]func() zap.Config{
	"prod":   zap.NewProductionConfig,
	"local":  zap.NewDevelopmentConfig,
	"dev":    zap.NewDevelopmentConfig,
	"docker": zap.NewDevelopmentConfig,
	// cli keeps stdout for answers: warnings and up, compact, on stderr.
	"cli": func() zap.Config {
		c := zap.NewDevelopmentConfig()
		c.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		c.DisableCaller = true
		c.DisableStacktrace = true
		c.OutputPaths = []string{"stderr"}
		c.EncoderConfig.TimeKey = ""
		return c
	},
}

// NewLogger builds the logger for env (prod, local, dev, docker or cli).
// A non-empty level (debug, info, warn, error) replaces the env default.
func NewLogger(env string, level ...string) (*zap.Logger, error) {
	build, ok := configs[env]
	if !ok {
		return nil, fmt.Errorf("unknown environment %q for logger", env)
	}
	cfg := build()

	if len(level) > 0 && level[0] != "" {
		lvl, err := zapcore.ParseLevel(level[0])
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		cfg.Level.SetLevel(lvl)
	}

	l, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l.Named("gitaverse"), nil
}
