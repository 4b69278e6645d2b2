package test

import (
	"context"
	"testing"
	"time"

	authsess "github.com/opencampus/authsess"
)

// This test intentionally guards public API compile-compat for consumers.
func TestPublicAPISurfaceCompile(t *testing.T) {
	_ = authsess.New

	var _ *authsess.Builder
	var _ *authsess.Controller
	var _ authsess.Config
	var _ authsess.Credentials
	var _ authsess.User
	var _ authsess.Role
	var _ authsess.TokenPair
	var _ authsess.Snapshot
	var _ authsess.Vault
	var _ authsess.Gateway
	var _ authsess.Event
	var _ authsess.EventSink
	var _ authsess.MetricsSnapshot

	var _ authsess.Role = authsess.RoleAdmin
	var _ authsess.Role = authsess.RoleTeacher
	var _ authsess.Role = authsess.RoleStudent
	var _ authsess.Role = authsess.RoleParent

	var _ error = authsess.ErrValidation
	var _ error = authsess.ErrInvalidCredentials
	var _ error = authsess.ErrEmailNotVerified
	var _ error = authsess.ErrRateLimited
	var _ error = authsess.ErrAccountLocked
	var _ error = authsess.ErrNetwork
	var _ error = authsess.ErrUnauthorized
	var _ error = authsess.ErrBackend
	var _ error = authsess.ErrNoRefreshToken
	var _ error = authsess.ErrControllerNotReady
	var _ error = authsess.ErrControllerClosed

	var _ func(*authsess.Controller, context.Context, authsess.Credentials) (*authsess.User, error) = (*authsess.Controller).Login
	var _ func(*authsess.Controller, context.Context) *authsess.User = (*authsess.Controller).CheckAuth
	var _ func(*authsess.Controller, context.Context) (string, error) = (*authsess.Controller).RefreshToken
	var _ func(*authsess.Controller, context.Context) = (*authsess.Controller).Logout
	var _ func(*authsess.Controller, context.Context) (string, error) = (*authsess.Controller).AccessToken
	var _ func(*authsess.Controller, context.Context) (time.Time, error) = (*authsess.Controller).AccessTokenExpiry
	var _ func(*authsess.Controller) (<-chan authsess.Snapshot, func()) = (*authsess.Controller).Watch
	var _ func(*authsess.Controller) authsess.MetricsSnapshot = (*authsess.Controller).MetricsSnapshot
	var _ func(context.Context, string) context.Context = authsess.WithRequestID
}
