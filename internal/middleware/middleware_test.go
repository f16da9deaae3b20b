package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pawws/pawws/internal/ctxkeys"
	"github.com/pawws/pawws/internal/db/dbtest"
	"github.com/pawws/pawws/internal/model"
	"github.com/pawws/pawws/internal/repository"
	"github.com/pawws/pawws/internal/service"
)

func ok(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func withUser(r *http.Request, user *model.User) *http.Request {
	return r.WithContext(ctxkeys.WithUser(r.Context(), user))
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(model.RoleAdmin)(ok)

	tests := []struct {
		name string
		user *model.User
		want int
	}{
		{name: "anonymous", user: nil, want: http.StatusUnauthorized},
		{name: "inactive", user: &model.User{Role: model.RoleAdmin}, want: http.StatusUnauthorized},
		{name: "donor", user: &model.User{Role: model.RoleDonor, IsActive: true}, want: http.StatusForbidden},
		{name: "admin", user: &model.User{Role: model.RoleAdmin, IsActive: true}, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.user != nil {
				req = withUser(req, tt.user)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestAuthMiddlewareResolvesBearerToken(t *testing.T) {
	database := dbtest.Open(t)
	users := repository.NewUserRepository(database)
	auth := service.NewAuthService(users, nil, "test-secret", time.Hour)

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        "donor@example.com",
		PasswordHash: "hash",
		Role:         model.RoleDonor,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	token, err := auth.GenerateJWT(user)
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	var seen *model.User
	handler := AuthMiddleware(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ctxkeys.User(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen == nil || seen.ID != user.ID {
		t.Fatalf("user in context = %+v", seen)
	}
	if seen.PasswordHash != "" {
		t.Fatal("password hash leaked into the request context")
	}

	seen = nil
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen != nil {
		t.Fatal("invalid token must continue anonymously")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: authCookie, Value: token})
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen == nil {
		t.Fatal("cookie token was not resolved")
	}
}

func TestRateLimiter(t *testing.T) {
	handler := RateLimit(NewRateLimiter(2, time.Minute), ByIP)(ok)

	codes := []int{}
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		last = httptest.NewRecorder()
		handler(last, req)
		codes = append(codes, last.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}
	if last.Header().Get("Retry-After") == "" {
		t.Fatal("429 without Retry-After")
	}
}

func TestRateLimiterWindowSlides(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if allowed, _ := rl.Allow("ip:1"); !allowed {
		t.Fatal("first hit refused")
	}

	now = now.Add(20 * time.Second)
	allowed, retryAfter := rl.Allow("ip:1")
	if allowed || retryAfter != 40*time.Second {
		t.Fatalf("second hit = %v, retry after %v; want refused for 40s", allowed, retryAfter)
	}

	now = now.Add(41 * time.Second)
	if allowed, _ := rl.Allow("ip:1"); !allowed {
		t.Fatal("hit refused after the window passed")
	}

	now = now.Add(2 * time.Minute)
	rl.sweep()
	if len(rl.hits) != 0 {
		t.Fatalf("sweep kept %d idle keys", len(rl.hits))
	}
}

func TestUploadBudgetPerDonor(t *testing.T) {
	handler := RateLimit(NewRateLimiter(1, time.Hour), ByDonorOrIP)(ok)
	alice := &model.User{ID: "alice", Role: model.RoleDonor, IsActive: true}
	bob := &model.User{ID: "bob", Role: model.RoleDonor, IsActive: true}

	submit := func(user *model.User) int {
		req := httptest.NewRequest(http.MethodPost, "/api/donations", nil)
		req.Header.Set("X-Forwarded-For", "198.51.100.4") // Same NAT for everyone
		if user != nil {
			req = withUser(req, user)
		}
		rec := httptest.NewRecorder()
		handler(rec, req)
		return rec.Code
	}

	if code := submit(alice); code != http.StatusOK {
		t.Fatalf("alice first = %d", code)
	}
	if code := submit(bob); code != http.StatusOK {
		t.Fatalf("bob behind the same address = %d, want his own budget", code)
	}
	if code := submit(alice); code != http.StatusTooManyRequests {
		t.Fatalf("alice second = %d, want 429", code)
	}
	if code := submit(nil); code != http.StatusOK {
		t.Fatalf("anonymous = %d, want the address budget", code)
	}
	if code := submit(nil); code != http.StatusTooManyRequests {
		t.Fatalf("anonymous second = %d, want 429", code)
	}
}

func TestCORS(t *testing.T) {
	handler := CORS([]string{"https://pawws.org"})(http.HandlerFunc(ok))

	req := httptest.NewRequest(http.MethodOptions, "/api/animals", nil)
	req.Header.Set("Origin", "https://pawws.org")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "https://pawws.org" {
		t.Fatalf("preflight = %d %v", rec.Code, rec.Header())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/animals", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("unknown origin was allowed")
	}
}

func TestRequestIDAndChain(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	var rid string
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid = ctxkeys.RequestID(r.Context())
	})
	handler := Chain(final, mark("first"), RequestID, mark("second"), RequestLogging)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/animals", nil))

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("order = %v", order)
	}
	if rid == "" || rec.Header().Get("X-Request-ID") != rid {
		t.Fatalf("request id = %q, header = %q", rid, rec.Header().Get("X-Request-ID"))
	}
}
