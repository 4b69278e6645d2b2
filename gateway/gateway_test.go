package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/opencampus/authsess/session"
)

func newGateway(t *testing.T, handler http.Handler) *HTTPGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPGateway(Config{BaseURL: srv.URL}, srv.Client())
}

func kindOf(t *testing.T, err error) ErrorKind {
	t.Helper()
	var ae *AuthError
	if !errors.As(err, &ae) {
		t.Fatalf("expected *AuthError, got %T: %v", err, err)
	}
	return ae.Kind
}

func TestLoginSuccess(t *testing.T) {
	g := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/auth/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing request id header")
		}
		var creds session.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Email != "a@b.com" || creds.Password != "x" {
			t.Errorf("credentials not forwarded: %+v", creds)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "success",
			"data": map[string]interface{}{
				"user":         map[string]interface{}{"id": "1", "email": "a@b.com", "role": "parent"},
				"accessToken":  "AT1",
				"refreshToken": "RT1",
				"expiresIn":    3600,
			},
		})
	}))

	got, err := g.Login(context.Background(), session.Credentials{Email: "a@b.com", Password: "x"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if got.User.Role != session.RoleParent || got.Tokens.AccessToken != "AT1" || got.Tokens.RefreshToken != "RT1" {
		t.Fatalf("payload not normalized: %+v", got)
	}
}

func TestLoginClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   ErrorKind
	}{
		{name: "bad credentials", status: 401, body: `{"status":"error","message":"Invalid credentials"}`, want: KindInvalidCredentials},
		{name: "unverified email", status: 403, body: `{"status":"error","code":"EMAIL_NOT_VERIFIED"}`, want: KindEmailNotVerified},
		{name: "locked account", status: 403, body: `{"status":"error","code":"ACCOUNT_LOCKED"}`, want: KindAccountLocked},
		{name: "rate limited", status: 429, body: `{"status":"error"}`, want: KindRateLimited},
		{name: "server fault", status: 500, body: `{"status":"error","message":"db down"}`, want: KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))

			_, err := g.Login(context.Background(), session.Credentials{Email: "a@b.com", Password: "x"})
			if got := kindOf(t, err); got != tt.want {
				t.Fatalf("kind = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoginNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	g := NewHTTPGateway(Config{BaseURL: url}, nil)
	_, err := g.Login(context.Background(), session.Credentials{Email: "a@b.com", Password: "x"})
	if got := kindOf(t, err); got != KindNetwork {
		t.Fatalf("kind = %v, want %v", got, KindNetwork)
	}
}

func TestVerifyBearerAndUnauthorized(t *testing.T) {
	g := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/auth/verify-auth" || r.Method != http.MethodGet {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer AT1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status":"error"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":        "success",
			"authenticated": true,
			"user":          map[string]interface{}{"id": "1", "email": "a@b.com", "role": "student"},
		})
	}))

	user, err := g.Verify(context.Background(), "AT1")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if user.Role != session.RoleStudent {
		t.Fatalf("user not decoded: %+v", user)
	}

	_, err = g.Verify(context.Background(), "bogus")
	if got := kindOf(t, err); got != KindUnauthorized {
		t.Fatalf("kind = %v, want %v", got, KindUnauthorized)
	}
}

func TestVerifyAuthenticatedFalseIsUnauthorized(t *testing.T) {
	g := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":        "success",
			"authenticated": false,
		})
	}))

	_, err := g.Verify(context.Background(), "AT1")
	if got := kindOf(t, err); got != KindUnauthorized {
		t.Fatalf("kind = %v, want %v", got, KindUnauthorized)
	}
}

func TestRefreshRotation(t *testing.T) {
	g := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.RefreshToken != "RT1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status":"error"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "success",
			"data":   map[string]interface{}{"accessToken": "AT2", "refreshToken": "RT2"},
		})
	}))

	pair, err := g.Refresh(context.Background(), "RT1")
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if pair.AccessToken != "AT2" || pair.RefreshToken != "RT2" {
		t.Fatalf("rotation payload wrong: %+v", pair)
	}

	_, err = g.Refresh(context.Background(), "RT0")
	if got := kindOf(t, err); got != KindUnauthorized {
		t.Fatalf("kind = %v, want %v", got, KindUnauthorized)
	}
}

func TestMalformedSuccessBody(t *testing.T) {
	g := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))

	_, err := g.Login(context.Background(), session.Credentials{Email: "a@b.com", Password: "x"})
	if got := kindOf(t, err); got != KindUnknown {
		t.Fatalf("kind = %v, want %v", got, KindUnknown)
	}
}
