package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/opencampus/authsess/session"
)

const (
	pathLogin   = "/api/v1/auth/login"
	pathLogout  = "/api/v1/auth/logout"
	pathVerify  = "/api/v1/auth/verify-auth"
	pathRefresh = "/api/v1/auth/refresh-token"

	statusSuccess = "success"

	headerRequestID = "X-Request-ID"

	maxBodyBytes = 1 << 20
)

type requestIDContextKey struct{}

// WithRequestID attaches a correlation ID to ctx. When absent, the gateway
// generates a fresh UUID per request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, id)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}

// LoginPayload is the normalized result of a successful login call.
type LoginPayload struct {
	User   session.User
	Tokens session.TokenPair
}

// Config defines a public type used by authsess APIs.
//
// Config instances are intended to be configured during initialization and
// then treated as immutable.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// HTTPGateway issues the four auth operations over JSON/HTTPS.
type HTTPGateway struct {
	cfg    Config
	client *http.Client
}

// NewHTTPGateway creates a gateway against cfg.BaseURL. A nil client gets a
// dedicated http.Client with cfg.Timeout applied; transport-level timeouts
// are this gateway's concern and surface as KindNetwork.
func NewHTTPGateway(cfg Config, client *http.Client) *HTTPGateway {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTPGateway{
		cfg:    cfg,
		client: client,
	}
}

// Login exchanges credentials for a user and a token pair.
func (g *HTTPGateway) Login(ctx context.Context, creds session.Credentials) (LoginPayload, error) {
	var env struct {
		Status string `json:"status"`
		Data   struct {
			User         session.User `json:"user"`
			AccessToken  string       `json:"accessToken"`
			RefreshToken string       `json:"refreshToken"`
			ExpiresIn    int64        `json:"expiresIn"`
		} `json:"data"`
	}

	if err := g.call(ctx, http.MethodPost, pathLogin, creds, "", true, &env); err != nil {
		return LoginPayload{}, err
	}
	if env.Status != statusSuccess {
		return LoginPayload{}, NewAuthError(KindUnknown, "")
	}

	return LoginPayload{
		User: env.Data.User,
		Tokens: session.TokenPair{
			AccessToken:  env.Data.AccessToken,
			RefreshToken: env.Data.RefreshToken,
			ExpiresIn:    env.Data.ExpiresIn,
		},
	}, nil
}

// Logout invalidates the server-side session for the given access token.
// Best-effort by contract; callers ignore the outcome.
func (g *HTTPGateway) Logout(ctx context.Context, accessToken string) error {
	var env struct {
		Status string `json:"status"`
	}
	return g.call(ctx, http.MethodPost, pathLogout, nil, accessToken, false, &env)
}

// Verify asks the backend whether the access token still identifies a user.
func (g *HTTPGateway) Verify(ctx context.Context, accessToken string) (*session.User, error) {
	var env struct {
		Status        string       `json:"status"`
		Authenticated bool         `json:"authenticated"`
		User          session.User `json:"user"`
	}

	if err := g.call(ctx, http.MethodGet, pathVerify, nil, accessToken, false, &env); err != nil {
		return nil, err
	}
	if env.Status != statusSuccess || !env.Authenticated {
		return nil, NewAuthError(KindUnauthorized, "")
	}

	user := env.User
	return &user, nil
}

// Refresh exchanges a refresh token for a new access token and, when the
// backend rotates, a new refresh token.
func (g *HTTPGateway) Refresh(ctx context.Context, refreshToken string) (session.TokenPair, error) {
	body := struct {
		RefreshToken string `json:"refreshToken"`
	}{RefreshToken: refreshToken}

	var env struct {
		Status string `json:"status"`
		Data   struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
			ExpiresIn    int64  `json:"expiresIn"`
		} `json:"data"`
	}

	if err := g.call(ctx, http.MethodPost, pathRefresh, body, "", false, &env); err != nil {
		return session.TokenPair{}, err
	}
	if env.Status != statusSuccess || env.Data.AccessToken == "" {
		return session.TokenPair{}, NewAuthError(KindUnauthorized, "")
	}

	return session.TokenPair{
		AccessToken:  env.Data.AccessToken,
		RefreshToken: env.Data.RefreshToken,
		ExpiresIn:    env.Data.ExpiresIn,
	}, nil
}

func (g *HTTPGateway) call(ctx context.Context, method, path string, body interface{}, bearer string, loginOp bool, out interface{}) error {
	var reader io.Reader
	if body != nil {
		blob, err := json.Marshal(body)
		if err != nil {
			return NewAuthError(KindUnknown, "")
		}
		reader = bytes.NewReader(blob)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.cfg.BaseURL+path, reader)
	if err != nil {
		return NewAuthError(KindUnknown, "")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if g.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", g.cfg.UserAgent)
	}
	rid := requestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.NewString()
	}
	req.Header.Set(headerRequestID, rid)

	resp, err := g.client.Do(req)
	if err != nil {
		return NewAuthError(KindNetwork, "")
	}
	defer func() { _ = resp.Body.Close() }()

	blob, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return NewAuthError(KindNetwork, "")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env errorEnvelope
		_ = json.Unmarshal(blob, &env)
		return classifyStatus(resp.StatusCode, env, loginOp)
	}

	if err := json.Unmarshal(blob, out); err != nil {
		return NewAuthError(KindUnknown, "malformed server response")
	}
	return nil
}
