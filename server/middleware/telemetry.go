package middleware

import (
	"net/http"
	"time"

	"github.com/vidscribe/vidscribe/logger"
	"github.com/vidscribe/vidscribe/observability"
)

// Telemetry opens a request span and records request metrics. metrics may be nil.
func Telemetry(metrics *observability.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := observability.StartSpan(r.Context(), r.Method+" "+r.URL.Path)
			observability.SetSpanAttribute(ctx, observability.AttrRequestID, logger.RequestIDFromContext(ctx))

			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r.WithContext(ctx))

			observability.SetSpanAttribute(ctx, "http.status_code", sw.status)
			span.End()
			metrics.RecordRequest(ctx, r.URL.Path, sw.status, time.Since(start))
		})
	}
}
