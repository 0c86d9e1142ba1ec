package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/catalogconv/internal/core"
	"github.com/JonMunkholm/catalogconv/internal/logging"
)

// WithRequestMetadata adds the client IP and, on session routes, the session
// id to ctx so service and error logs can be correlated.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithClientIP(ctx, clientIP(r))
	return logging.WithSession(ctx, chi.URLParam(r, "sessionID"))
}
