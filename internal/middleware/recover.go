package middleware

import (
	"fmt"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"herd-weight-tracker/internal/platform/logger"
)

// Recover reemplaza a chimw.Recoverer para que el panic salga por el logger estructurado.
func Recover(log logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("panic recovered", map[string]any{
					"request_id": chimw.GetReqID(r.Context()),
					"path":       r.URL.Path,
					"panic":      fmt.Sprint(rec),
				})
				http.Error(w, "internal error", http.StatusInternalServerError)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
