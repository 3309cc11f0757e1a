package api

import (
	"log"
	"net/http"

	"github.com/google/uuid"
)

// requestLogMiddleware tags every request with an id and logs method and
// path on the way in.
func (a *API) requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		log.Printf("[%s] %s %s", requestID, r.Method, r.URL.Path)

		next.ServeHTTP(w, r)
	})
}
