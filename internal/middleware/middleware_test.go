package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cottonwood-backend/internal/auth"
	"cottonwood-backend/internal/config"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	email, _ := GetEmailFromContext(r.Context())
	w.Write([]byte(email))
}

func TestAuthenticate(t *testing.T) {
	manager := auth.NewJWTManager("secret", "")
	staff, _ := manager.GenerateToken("staff@example.com", auth.RoleStaff, time.Hour)
	h := NewAuthMiddleware(manager).Authenticate(http.HandlerFunc(okHandler))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"bad format", "Token abc", http.StatusUnauthorized},
		{"bad token", "Bearer abc", http.StatusUnauthorized},
		{"valid", "Bearer " + staff, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/club-cottonwood/stats", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusOK && rec.Body.String() != "staff@example.com" {
				t.Errorf("context email = %q", rec.Body.String())
			}
		})
	}
}

func TestAuthDisabled(t *testing.T) {
	h := NewAuthMiddleware(nil).RequireAdmin(http.HandlerFunc(okHandler))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/backup", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	manager := auth.NewJWTManager("secret", "")
	staff, _ := manager.GenerateToken("staff@example.com", auth.RoleStaff, time.Hour)
	admin, _ := manager.GenerateToken("boss@example.com", auth.RoleAdmin, time.Hour)
	m := NewAuthMiddleware(manager)
	h := m.Authenticate(m.RequireAdmin(http.HandlerFunc(okHandler)))

	for token, want := range map[string]int{staff: http.StatusForbidden, admin: http.StatusOK} {
		req := httptest.NewRequest(http.MethodPost, "/backup", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Errorf("status = %d, want %d", rec.Code, want)
		}
	}
}

func TestPanicRecovery(t *testing.T) {
	h := PanicRecovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), "Internal server error") {
		t.Errorf("got %d %s", rec.Code, rec.Body.String())
	}
}

func TestPanicRecoveryReraisesAbort(t *testing.T) {
	h := PanicRecovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Errorf("recovered %v, want ErrAbortHandler", rec)
		}
	}()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	t.Error("abort panic was swallowed")
}

func TestRequestLoggerPassesThrough(t *testing.T) {
	h := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/club-cottonwood/stats", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		origins     []string
		origin      string
		credentials string
	}{
		{"listed origin", []string{"https://admin.example.com"}, "https://admin.example.com", "true"},
		{"wildcard", []string{"*"}, "https://anywhere.example.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.Server.CorsAllowedOrigins = tt.origins
			cfg.Server.CorsAllowedMethods = []string{"GET"}

			h := NewCORS(cfg)(http.HandlerFunc(okHandler))
			req := httptest.NewRequest("GET", "/members/export.csv", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Header().Get("Access-Control-Allow-Origin") == "" {
				t.Fatal("origin not allowed")
			}
			if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != tt.credentials {
				t.Errorf("allow-credentials = %q, want %q", got, tt.credentials)
			}
			if got := rec.Header().Get("Access-Control-Expose-Headers"); got != "Content-Disposition" {
				t.Errorf("expose-headers = %q", got)
			}
		})
	}
}
