package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sellorama/sellorama/internal/domain"
)

type contextKey string

const loggerKey contextKey = "logger"

// WithRequestLogger attaches a request-scoped logger to the context.
// The logger carries the method, path, request ID and, when the request
// is authenticated, the user ID.
func WithRequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			attrs := []any{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			}
			if requestID := domain.RequestIDFromContext(ctx); requestID != "" {
				attrs = append(attrs, slog.String("request_id", requestID))
			}
			if identity := domain.IdentityFromContext(ctx); identity != nil {
				attrs = append(attrs, slog.String("user_id", identity.UserID.String()))
			}

			logger := base.With(attrs...)
			ctx = context.WithValue(ctx, loggerKey, logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetLogger returns the request-scoped logger from the context, falling
// back to the provided logger or slog.Default when none is attached.
func GetLogger(ctx context.Context, fallback ...*slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	if len(fallback) > 0 && fallback[0] != nil {
		return fallback[0]
	}
	return slog.Default()
}
