package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pawws/pawws/internal/ctxkeys"
	"github.com/pawws/pawws/internal/model"
	"github.com/pawws/pawws/internal/service"
)

const authCookie = "auth_token"

// AuthMiddleware resolves the bearer token (or the auth_token cookie) and
// adds the user to the context. Requests without a valid token continue anonymously.
func AuthMiddleware(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := authService.UserFromToken(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			// Security: Remove password hash from context
			user.PasswordHash = ""

			ctx := ctxkeys.WithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}

	cookie, err := r.Cookie(authCookie)
	if err == nil {
		return cookie.Value
	}
	return ""
}

// RequireAuth rejects anonymous and inactive users with 401.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxkeys.User(r.Context())
		if user == nil || !user.IsActive {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next(w, r)
	}
}

// RequireRole allows authenticated users holding role; others get 403.
func RequireRole(role model.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return RequireAuth(func(w http.ResponseWriter, r *http.Request) {
			err := service.Authorize(ctxkeys.User(r.Context()), role)
			if err != nil {
				writeDetail(w, http.StatusForbidden, "Not enough permissions")
				return
			}
			next(w, r)
		})
	}
}

// writeDetail writes the JSON error body used throughout the API.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
