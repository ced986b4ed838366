package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/FExEVIL/tradeautopsy-sub003/src/logger"
)

type contextKey string

const requestIDContextKey = contextKey("requestID")

// ContextualLoggerMiddleware attaches a request-scoped logger carrying a
// fresh request ID to every request's context.
func ContextualLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()

		ctxLogger := logger.L.With(slog.String("requestID", requestID))

		ctx := logger.ToContext(r.Context(), ctxLogger)
		ctx = context.WithValue(ctx, requestIDContextKey, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AccountIDFromRequest resolves the account an API call operates on. There is
// no session handling here; account identity comes from the caller.
func AccountIDFromRequest(r *http.Request) string {
	if id := r.URL.Query().Get("account_id"); id != "" {
		return id
	}
	if id := r.FormValue("account_id"); id != "" {
		return id
	}
	return "default"
}
