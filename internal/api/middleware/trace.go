package middleware

import (
	"log/slog"
	"net/http"

	"github.com/Saurabhkg03/saraavdata-backend/internal/api/shared"
)

// NewTraceMiddleware returns middleware that adds a trace ID to the
// request context and logs request starts against it. Apply it early in
// the middleware chain so every subsequent handler sees the ID.
func NewTraceMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.SetTraceID(r.Context())
			traceID := shared.GetTraceID(ctx)

			log := logger.With(slog.String("trace_id", traceID))
			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
