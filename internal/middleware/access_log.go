package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"herd-weight-tracker/internal/platform/logger"
)

// AccessLog registra una línea por request con status, bytes y duración.
func AccessLog(log logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			fields := map[string]any{
				"request_id":  chimw.GetReqID(r.Context()),
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
			}
			if ww.Status() >= http.StatusInternalServerError {
				log.Error("http request", fields)
				return
			}
			log.Debug("http request", fields)
		})
	}
}
