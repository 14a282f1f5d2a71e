package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// OutputType selects where entries go
type OutputType string

const (
	OutputConsole OutputType = "console"
	OutputFile    OutputType = "file"
	OutputOTEL    OutputType = "otel"
	// OutputDiscard is used while the TUI owns the terminal
	OutputDiscard OutputType = "discard"
)

// Config describes one logger
type Config struct {
	Level  string
	Output OutputType
	// Format is json or console; development loggers always use console
	Format      string
	FilePath    string
	Development bool
	AddCaller   bool
}

// Logger is a zap logger that also owns the sinks it writes to
type Logger struct {
	*zap.Logger
	core    zapcore.Core
	closers []io.Closer
	once    *sync.Once
}

var (
	globalMu sync.RWMutex
	global   *Logger
)

// New builds a logger writing to stderr, a file or nowhere
func New(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = &Config{Level: "info", Output: OutputConsole, Format: "json", AddCaller: true}
	}
	if cfg.Output == OutputDiscard {
		return NewWithCore(cfg, zapcore.NewNopCore()), nil
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	sink := zapcore.Lock(os.Stderr)
	var closers []io.Closer
	if cfg.Output == OutputFile {
		f, err := openLogFile(cfg.FilePath)
		if err != nil {
			return nil, err
		}
		sink, closers = zapcore.AddSync(f), []io.Closer{f}
	}

	return NewWithCore(cfg, zapcore.NewCore(encoder(cfg), sink, level), closers...), nil
}

// NewWithCore wraps an existing core, closing closers on Close
func NewWithCore(cfg *Config, core zapcore.Core, closers ...io.Closer) *Logger {
	opts := []zap.Option{zap.AddStacktrace(zapcore.ErrorLevel)}
	if cfg != nil && cfg.AddCaller {
		opts = append(opts, zap.AddCaller(), zap.AddCallerSkip(1))
	}
	if cfg != nil && cfg.Development {
		opts = append(opts, zap.Development(), zap.AddStacktrace(zapcore.WarnLevel))
	}
	return &Logger{
		Logger:  zap.New(core, opts...),
		core:    core,
		closers: closers,
		once:    new(sync.Once),
	}
}

// SetGlobal replaces the process logger returned by Get
func SetGlobal(l *Logger) {
	globalMu.Lock()
	global = l
	globalMu.Unlock()
}

// Get returns the process logger. Until SetGlobal is called it is a json
// logger on stderr.
func Get() *Logger {
	globalMu.RLock()
	l := global
	globalMu.RUnlock()
	if l != nil {
		return l
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		global, _ = New(nil)
	}
	return global
}

// Warn logs on the process logger
func Warn(msg string, fields ...Field) {
	Get().Warn(msg, fields...)
}

// Core returns the core the logger was built on
func (l *Logger) Core() zapcore.Core {
	return l.core
}

// WithFields returns a child logger sharing the parent's sinks
func (l *Logger) WithFields(fields ...Field) *Logger {
	child := *l
	child.Logger = l.With(fields...)
	return &child
}

// Close flushes and releases the sinks. Children share the sinks, so only
// the first Close in a family does any work.
func (l *Logger) Close() error {
	var err error
	l.once.Do(func() {
		_ = l.Sync()
		for _, c := range l.closers {
			if cerr := c.Close(); cerr != nil {
				err = cerr
			}
		}
	})
	return err
}

// ParseLevel converts debug, info, warn or error to a zap level
func ParseLevel(level string) (zapcore.Level, error) {
	return zapcore.ParseLevel(level)
}

func encoder(cfg *Config) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey, ec.MessageKey = "timestamp", "message"
	if cfg.Development {
		ec = zap.NewDevelopmentEncoderConfig()
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	ec.EncodeTime = zapcore.ISO8601TimeEncoder

	if cfg.Development || cfg.Format == "console" {
		return zapcore.NewConsoleEncoder(ec)
	}
	return zapcore.NewJSONEncoder(ec)
}

func openLogFile(path string) (*os.File, error) {
	if path == "" {
		return nil, fmt.Errorf("logger: file output requires a file path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logger: create log directory: %w", err)
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}
