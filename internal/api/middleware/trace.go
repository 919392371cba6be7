package middleware

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/wordloom/wordloom-api/internal/api/shared"
	"github.com/wordloom/wordloom-api/internal/platform/logger"
)

// TraceHeader is the response header that carries the request's trace ID.
const TraceHeader = "X-Trace-ID"

// NewTraceMiddleware returns middleware that assigns every request a trace ID
// and stores a logger carrying that ID in the request context.
// It should run before any handler that logs.
//
// When chi's RequestID middleware ran first its ID is reused as the trace ID.
func NewTraceMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if requestID := middleware.GetReqID(ctx); requestID != "" {
				ctx = shared.WithTraceID(ctx, requestID)
			} else {
				ctx = shared.SetTraceID(ctx)
			}
			traceID := shared.GetTraceID(ctx)

			log := base.With(slog.String("trace_id", traceID))
			ctx = logger.WithLogger(ctx, log)

			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			w.Header().Set(TraceHeader, traceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TraceMiddleware is NewTraceMiddleware using slog.Default().
func TraceMiddleware(next http.Handler) http.Handler {
	return NewTraceMiddleware(nil)(next)
}
