package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

type SlogLogger struct {
	l *slog.Logger
}

func NewSlogLogger(l *slog.Logger) *SlogLogger {
	return &SlogLogger{l: l}
}

// New builds the process logger for environment. Production logs JSON at
// info level; everything else logs text at debug level.
func New(environment string) *SlogLogger {
	return newForWriter(os.Stdout, environment)
}

// Discard returns a logger that drops everything.
func Discard() *SlogLogger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newForWriter(w io.Writer, environment string) *SlogLogger {
	if environment == "production" {
		return NewSlogLogger(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})))
	}
	return NewSlogLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

func (s *SlogLogger) Debug(ctx context.Context, msg string, args ...any) {
	s.l.DebugContext(ctx, msg, withRequestID(ctx, args)...)
}

func (s *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	s.l.InfoContext(ctx, msg, withRequestID(ctx, args)...)
}

func (s *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	s.l.WarnContext(ctx, msg, withRequestID(ctx, args)...)
}

func (s *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	s.l.ErrorContext(ctx, msg, withRequestID(ctx, args)...)
}

func (s *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{l: s.l.With(args...)}
}

// Slog exposes the underlying logger for libraries that take one.
func (s *SlogLogger) Slog() *slog.Logger {
	return s.l
}

// withRequestID appends the chi request id when ctx carries one.
func withRequestID(ctx context.Context, args []any) []any {
	if ctx == nil {
		return args
	}
	if id := chiMiddleware.GetReqID(ctx); id != "" {
		return append(args, "request_id", id)
	}
	return args
}
