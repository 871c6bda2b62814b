package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestIDHeader devuelve al cliente el id asignado por chimw.RequestID.
// Tiene que ir después de chimw.RequestID.
func RequestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimw.GetReqID(r.Context()); id != "" {
			w.Header().Set(chimw.RequestIDHeader, id)
		}
		next.ServeHTTP(w, r)
	})
}
