package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// AccessLog logs one line per request, with the trace id when the request
// carries a sampled span.
func AccessLog(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"type", "access",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"user_agent", c.Request.UserAgent(),
			"latency", time.Since(start),
		}
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.IsValid() {
			attrs = append(attrs, "trace_id", sc.TraceID().String())
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}

		if c.Writer.Status() >= 500 {
			log.ErrorContext(c.Request.Context(), "request", attrs...)
			return
		}
		log.InfoContext(c.Request.Context(), "request", attrs...)
	}
}
