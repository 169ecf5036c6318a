package log

import (
	"context"
	"log/slog"
)

// SlogLogger adapts a *slog.Logger to the Logger interface.
type SlogLogger struct {
	inner *slog.Logger
}

// NewSlogLogger wraps an existing slog logger.
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	return &SlogLogger{inner: l}
}

// Default returns a Logger backed by slog.Default. Combined with
// SetupLogger this yields JSON records on stderr.
func Default() Logger {
	return &SlogLogger{inner: slog.Default()}
}

func (s *SlogLogger) Debug(msg string, fields ...any) {
	s.inner.Debug(msg, fields...)
}

func (s *SlogLogger) Info(msg string, fields ...any) {
	s.inner.Info(msg, fields...)
}

func (s *SlogLogger) Warn(msg string, fields ...any) {
	s.inner.Warn(msg, fields...)
}

func (s *SlogLogger) Error(msg string, fields ...any) {
	s.inner.Error(msg, fields...)
}

func (s *SlogLogger) With(fields ...any) Logger {
	return &SlogLogger{inner: s.inner.With(fields...)}
}

func (s *SlogLogger) Enabled(ctx context.Context, level Level) bool {
	return s.inner.Enabled(ctx, slog.Level(level))
}
