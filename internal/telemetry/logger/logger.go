package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger is the application logger interface.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	WithContext(ctx context.Context) Logger
	// Slog returns the underlying *slog.Logger for components that take one.
	Slog() *slog.Logger
	// Close releases the log file, if any. Derived loggers share it.
	Close() error
}

// Config holds logger configuration.
type Config struct {
	Level     string    // debug, info, warn, error
	Format    string    // json (default) or text
	Output    io.Writer // defaults to os.Stderr; ignored when File is set
	AddSource bool

	// File switches output to a size-rotated log file.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "json",
		Output:     os.Stderr,
		MaxSizeMB:  100,
		MaxBackups: 5,
		MaxAgeDays: 30,
	}
}

type slogLogger struct {
	logger *slog.Logger
	ctx    context.Context
	closer io.Closer
}

// New creates a logger and sets the shared level to cfg.Level.
func New(cfg Config) (Logger, error) {
	SetLevel(cfg.Level)

	w, closer := openOutput(cfg)
	return &slogLogger{
		logger: slog.New(newHandler(w, cfg)),
		ctx:    context.Background(),
		closer: closer,
	}, nil
}

func (l *slogLogger) Debug(msg string, args ...any) {
	l.logger.DebugContext(l.ctx, msg, args...)
}

func (l *slogLogger) Info(msg string, args ...any) {
	l.logger.InfoContext(l.ctx, msg, args...)
}

func (l *slogLogger) Warn(msg string, args ...any) {
	l.logger.WarnContext(l.ctx, msg, args...)
}

func (l *slogLogger) Error(msg string, args ...any) {
	l.logger.ErrorContext(l.ctx, msg, args...)
}

func (l *slogLogger) With(args ...any) Logger {
	derived := *l
	derived.logger = l.logger.With(args...)
	return &derived
}

func (l *slogLogger) WithContext(ctx context.Context) Logger {
	derived := *l
	derived.ctx = ctx
	return &derived
}

func (l *slogLogger) Slog() *slog.Logger {
	return l.logger
}

func (l *slogLogger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
