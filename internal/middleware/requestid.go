package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/pawws/pawws/internal/ctxkeys"
)

// RequestID propagates X-Request-ID, generating one when the client sent none.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get("X-Request-ID")
		if rid == "" || len(rid) > 128 {
			rid = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", rid)
		next.ServeHTTP(w, r.WithContext(ctxkeys.WithRequestID(r.Context(), rid)))
	})
}
