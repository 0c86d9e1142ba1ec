// Package logging configures log/slog for the converter and carries request
// and session identifiers through contexts.
//
// Every entry logged through FromContext picks up chi's request_id and, once
// a handler or the service has attached one, the conversion session_id. A
// failed download can therefore be traced back to the upload that created
// its session.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// Setup installs a logger writing to stdout as the slog default.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
func Setup(level, format string) {
	slog.SetDefault(New(os.Stdout, level, format))
}

// SetupWriter is Setup for an arbitrary writer. The command-line converter
// logs to stderr so its report on stdout stays clean.
func SetupWriter(w io.Writer, level, format string) {
	slog.SetDefault(New(w, level, format))
}

// New builds a text or JSON logger at the given level.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel converts a level name to slog.Level; unknown names are info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type sessionKey struct{}

// WithSession attaches a conversion session id to ctx.
func WithSession(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, id)
}

// SessionFromContext returns the session id attached by WithSession.
func SessionFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

// FromContext returns the default logger enriched with the request_id set
// by chi's RequestID middleware and the session_id set by WithSession.
//
//	func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
//	    ctx := logging.WithSession(r.Context(), chi.URLParam(r, "sessionID"))
//	    logging.FromContext(ctx).Info("conversion downloaded", "format", "xlsx")
//	}
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	if id := SessionFromContext(ctx); id != "" {
		logger = logger.With("session_id", id)
	}
	return logger
}

// WithFields returns FromContext(ctx) with additional fields, for loggers
// that follow one conversion through several steps.
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
