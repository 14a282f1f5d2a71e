package otel

import (
	"fmt"

	"go.uber.org/zap/zapcore"

	"github.com/bravo68web/confdash/internal/config"
	"github.com/bravo68web/confdash/pkg/logger"
)

// NewLogger builds the process logger from the logging section. With the
// otel output, entries go to the collector and to stderr.
func NewLogger(cfg *config.LoggingConfig, development bool) (*logger.Logger, error) {
	output := logger.OutputType(cfg.Output)
	lcfg := &logger.Config{
		Level:       cfg.Level,
		Output:      output,
		Format:      cfg.Format,
		FilePath:    cfg.FilePath,
		Development: development,
		AddCaller:   true,
	}
	if output != logger.OutputOTEL {
		return logger.New(lcfg)
	}

	environment := "production"
	if development {
		environment = "development"
	}
	provider, err := NewProvider(FromLogging(cfg, environment))
	if err != nil {
		return nil, fmt.Errorf("failed to start OTEL provider: %w", err)
	}

	local, err := logger.New(&logger.Config{
		Level:       cfg.Level,
		Output:      logger.OutputConsole,
		Format:      cfg.Format,
		Development: development,
	})
	if err != nil {
		_ = provider.Close()
		return nil, err
	}

	level, err := logger.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	core := NewCombinedCore(local.Core(), provider, level)
	return logger.NewWithCore(lcfg, core, provider), nil
}
