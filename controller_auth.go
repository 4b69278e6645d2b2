package authsess

import (
	"context"
	"time"

	"github.com/opencampus/authsess/internal/flows"
	"github.com/opencampus/authsess/session"
	"github.com/opencampus/authsess/tokens"
)

// Login exchanges credentials for a session. On success the token pair is
// persisted and the user is published atomically; on failure the classified
// error is both recorded in the snapshot and returned.
func (c *Controller) Login(ctx context.Context, creds Credentials) (*User, error) {
	if c == nil || c.store == nil {
		return nil, ErrControllerNotReady
	}
	if c.closed.Load() {
		return nil, ErrControllerClosed
	}
	if c.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() { c.metrics.Observe(MetricLoginLatency, time.Since(start)) }()
	}

	return flows.RunLogin(ctx, creds, flows.LoginDeps{
		Commits: c.commitFuncs(),
		Login: func(ctx context.Context, creds session.Credentials) (session.TokenPair, *session.User, error) {
			payload, err := c.gateway.Login(ctx, creds)
			if err != nil {
				return session.TokenPair{}, nil, translateError(err)
			}
			user := payload.User
			return payload.Tokens, &user, nil
		},
		MetricInc: c.metricInc,
		Emit:      c.emit,
		Metrics: flows.LoginMetrics{
			Success:       int(MetricLoginSuccess),
			Failure:       int(MetricLoginFailure),
			Rejected:      int(MetricLoginRejected),
			CommitDropped: int(MetricCommitDropped),
		},
		Errors: flows.LoginErrors{
			NotReady:   ErrControllerNotReady,
			Validation: ErrValidation,
		},
	})
}

// CheckAuth reconciles the persisted session with the backend: verify the
// stored access token, fall back to the cached snapshot when the backend
// cannot answer, clear everything when the token is rejected with nothing
// cached. Returns the committed user, or nil when unauthenticated. Never
// fails; transient trouble leaves the best available state behind.
func (c *Controller) CheckAuth(ctx context.Context) *User {
	if c == nil || c.store == nil || c.closed.Load() {
		return nil
	}

	res := flows.RunCheckAuth(ctx, flows.CheckDeps{
		Commits: c.commitFuncs(),
		Vault:   c.vaultFuncs(),
		Verify: func(ctx context.Context, accessToken string) (*session.User, error) {
			user, err := c.gateway.Verify(ctx, accessToken)
			if err != nil {
				return nil, translateError(err)
			}
			return user, nil
		},
		MetricInc: c.metricInc,
		Emit:      c.emit,
		Metrics: flows.CheckMetrics{
			NoToken:       int(MetricVerifyNoToken),
			Verified:      int(MetricVerifySuccess),
			Fallback:      int(MetricVerifyFallback),
			Cleared:       int(MetricVerifyCleared),
			CommitDropped: int(MetricCommitDropped),
		},
		Errors: flows.LoginErrors{NotReady: ErrControllerNotReady},
	})
	return res.User
}

// RefreshToken exchanges the stored refresh token for a fresh access token
// and persists the rotated pair. A rejected or unpersistable rotation
// forces a full logout: continuing on a token the backend or the vault no
// longer honors only defers the failure.
func (c *Controller) RefreshToken(ctx context.Context) (string, error) {
	if c == nil || c.store == nil {
		return "", ErrControllerNotReady
	}
	if c.closed.Load() {
		return "", ErrControllerClosed
	}

	res := flows.RunRefresh(ctx, flows.RefreshDeps{
		Commits: c.commitFuncs(),
		Vault:   c.vaultFuncs(),
		Refresh: func(ctx context.Context, refreshToken string) (session.TokenPair, error) {
			pair, err := c.gateway.Refresh(ctx, refreshToken)
			if err != nil {
				return session.TokenPair{}, translateError(err)
			}
			return pair, nil
		},
		MetricInc: c.metricInc,
		Emit:      c.emit,
		Metrics: flows.RefreshMetrics{
			Success:       int(MetricRefreshSuccess),
			NoToken:       int(MetricRefreshNoToken),
			Failure:       int(MetricRefreshFailure),
			CommitDropped: int(MetricCommitDropped),
		},
		Errors: flows.LoginErrors{NotReady: ErrControllerNotReady},
	})

	switch res.Failure {
	case flows.RefreshFailureNone:
		return res.AccessToken, nil
	case flows.RefreshFailureNoToken:
		return "", ErrNoRefreshToken
	case flows.RefreshFailureDropped:
		return "", ErrUnauthorized
	default:
		c.runLogout(ctx, true)
		if res.Err != nil {
			return "", res.Err
		}
		return "", ErrUnauthorized
	}
}

// Logout tears the session down. The backend call is best-effort; local
// state is cleared regardless, and calling Logout without a session is a
// no-op beyond a redundant clear.
func (c *Controller) Logout(ctx context.Context) {
	if c == nil || c.store == nil || c.closed.Load() {
		return
	}
	c.runLogout(ctx, false)
}

func (c *Controller) runLogout(ctx context.Context, forced bool) {
	flows.RunLogout(ctx, forced, flows.LogoutDeps{
		Commits: c.commitFuncs(),
		Vault:   c.vaultFuncs(),
		Logout: func(ctx context.Context, accessToken string) error {
			return c.gateway.Logout(ctx, accessToken)
		},
		MetricInc: c.metricInc,
		Emit:      c.emit,
		Metrics: flows.LogoutMetrics{
			Logout: int(MetricLogout),
			Forced: int(MetricForcedLogout),
		},
	})
}

// AccessToken returns the persisted access token for attaching to API
// calls, or ErrUnauthorized when none is stored.
func (c *Controller) AccessToken(ctx context.Context) (string, error) {
	if c == nil || c.vault == nil {
		return "", ErrControllerNotReady
	}
	stored, err := c.vault.Load(ctx)
	if err != nil {
		return "", err
	}
	if stored.AccessToken == "" {
		return "", ErrUnauthorized
	}
	return stored.AccessToken, nil
}

// AccessTokenExpiry peeks at the stored access token's expiry claim
// without verifying it. Advisory only; use it to schedule RefreshToken,
// never to gate access.
func (c *Controller) AccessTokenExpiry(ctx context.Context) (time.Time, error) {
	access, err := c.AccessToken(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return tokens.PeekExpiry(access)
}
