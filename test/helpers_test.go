//go:build integration
// +build integration

package test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	authsess "github.com/opencampus/authsess"
	"github.com/opencampus/authsess/vault"
)

func newIntegrationVault(t *testing.T) (*vault.RedisVault, *redis.Client, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	v := vault.NewRedisVault(rdb, "as")

	return v, rdb, func() {
		_ = rdb.Close()
		mr.Close()
	}
}

func schoolUser() authsess.User {
	return authsess.User{
		ID:         "u-100",
		Email:      "teacher@school.example",
		Role:       authsess.RoleTeacher,
		FirstName:  "Toni",
		IsVerified: true,
	}
}

// backend is an in-memory stand-in for the school platform auth API. It
// tracks issued tokens so verify and refresh behave like the real thing.
type backend struct {
	mu       sync.Mutex
	user     authsess.User
	password string
	access   map[string]bool
	refresh  map[string]bool
	seq      int
}

func newBackend(user authsess.User, password string) *backend {
	return &backend{
		user:     user,
		password: password,
		access:   map[string]bool{},
		refresh:  map[string]bool{},
	}
}

func (b *backend) issue() (string, string) {
	b.seq++
	access := "AT-" + strconv.Itoa(b.seq)
	refresh := "RT-" + strconv.Itoa(b.seq)
	b.access[access] = true
	b.refresh[refresh] = true
	return access, refresh
}

func bearer(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func (b *backend) server(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&creds)

		b.mu.Lock()
		defer b.mu.Unlock()
		if creds.Email != b.user.Email || creds.Password != b.password {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "error", "message": "invalid credentials"})
			return
		}
		access, refresh := b.issue()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"data": map[string]any{
				"user":         b.user,
				"accessToken":  access,
				"refreshToken": refresh,
				"expiresIn":    3600,
			},
		})
	})

	mux.HandleFunc("GET /api/v1/auth/verify-auth", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if !b.access[bearer(r)] {
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "success", "authenticated": false})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":        "success",
			"authenticated": true,
			"user":          b.user,
		})
	})

	mux.HandleFunc("POST /api/v1/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		b.mu.Lock()
		defer b.mu.Unlock()
		if !b.refresh[body.RefreshToken] {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "error", "message": "refresh token revoked"})
			return
		}
		delete(b.refresh, body.RefreshToken)
		access, refresh := b.issue()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"data": map[string]any{
				"accessToken":  access,
				"refreshToken": refresh,
				"expiresIn":    3600,
			},
		})
	})

	mux.HandleFunc("POST /api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.access, bearer(r))
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "success"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func (b *backend) revokeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.access = map[string]bool{}
	b.refresh = map[string]bool{}
}

func newIntegrationController(t *testing.T, baseURL string, v authsess.Vault, startupCheck bool) *authsess.Controller {
	t.Helper()

	c, err := authsess.New().
		WithBaseURL(baseURL).
		WithVault(v).
		WithStartupCheck(startupCheck).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}
