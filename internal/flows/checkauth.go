package flows

import (
	"context"

	"github.com/opencampus/authsess/internal/events"
	"github.com/opencampus/authsess/session"
)

// CheckOutcome classifies how the reconciliation resolved.
type CheckOutcome int

const (
	// CheckOutcomeNoToken: nothing usable persisted; no network call made.
	CheckOutcomeNoToken CheckOutcome = iota
	// CheckOutcomeVerified: the backend confirmed the token and returned a
	// fresh user record.
	CheckOutcomeVerified
	// CheckOutcomeFallback: verify failed but a cached snapshot exists;
	// the session continues on the stale identity, storage untouched.
	CheckOutcomeFallback
	// CheckOutcomeCleared: verify failed with no cached snapshot; vault
	// and store were cleared together.
	CheckOutcomeCleared
	// CheckOutcomeDropped: the generation advanced while in flight; every
	// commit was discarded.
	CheckOutcomeDropped
)

// CheckResult carries the reconciliation outcome and, when one survives,
// the committed user.
type CheckResult struct {
	Outcome CheckOutcome
	User    *session.User
	Err     error
}

// CheckMetrics carries metric IDs needed by the checkAuth flow.
type CheckMetrics struct {
	NoToken       int
	Verified      int
	Fallback      int
	Cleared       int
	CommitDropped int
}

// CheckDeps captures checkAuth flow dependencies.
type CheckDeps struct {
	Commits CommitFuncs
	Vault   VaultFuncs
	Verify  func(ctx context.Context, accessToken string) (*session.User, error)

	MetricInc func(int)
	Emit      EmitFunc

	Metrics CheckMetrics
	Errors  LoginErrors
}

// RunCheckAuth executes the startup reconciliation: read the vault, verify
// the access token against the backend, and fall back to the cached
// snapshot when the backend cannot be trusted to answer.
//
// The fallback is a deliberate availability-over-consistency trade: a
// revoked session can keep presenting a stale identity until the next
// explicit action fails. Failures never propagate to the caller.
func RunCheckAuth(ctx context.Context, deps CheckDeps) CheckResult {
	fillCommitDefaults(&deps.Commits)
	fillEmitDefault(&deps.Emit)
	fillMetricDefault(&deps.MetricInc)
	if deps.Commits.Begin == nil || deps.Commits.Commit == nil || deps.Commits.ClearCommit == nil ||
		deps.Vault.Load == nil || deps.Verify == nil {
		return CheckResult{Outcome: CheckOutcomeDropped, Err: deps.Errors.NotReady}
	}

	gen := deps.Commits.Begin()
	deps.Commits.SetLoading(gen, true)

	stored, err := deps.Vault.Load(ctx)
	if err != nil {
		// Storage-layer failure reads as "nothing present".
		stored.AccessToken = ""
		stored.RefreshToken = ""
		stored.CachedUser = nil
	}

	if stored.AccessToken == "" {
		// Nothing persisted: publish the unauthenticated state store-only.
		// A full ClearCommit would advance the generation and drop a login
		// that is legitimately in flight.
		if !deps.Commits.CommitCached(gen, nil) {
			deps.MetricInc(deps.Metrics.CommitDropped)
			return CheckResult{Outcome: CheckOutcomeDropped}
		}
		deps.MetricInc(deps.Metrics.NoToken)
		return CheckResult{Outcome: CheckOutcomeNoToken}
	}

	user, verifyErr := deps.Verify(ctx, stored.AccessToken)
	if verifyErr == nil {
		tokens := session.TokenPair{
			AccessToken:  stored.AccessToken,
			RefreshToken: stored.RefreshToken,
		}
		applied, commitErr := deps.Commits.Commit(ctx, gen, tokens, user)
		if commitErr != nil || !applied {
			deps.MetricInc(deps.Metrics.CommitDropped)
			deps.Emit(ctx, events.TypeCommitDropped, false, user, commitErr, nil)
			return CheckResult{Outcome: CheckOutcomeDropped, Err: commitErr}
		}
		deps.MetricInc(deps.Metrics.Verified)
		deps.Emit(ctx, events.TypeVerifySuccess, true, user, nil, nil)
		return CheckResult{Outcome: CheckOutcomeVerified, User: user}
	}

	if stored.CachedUser != nil {
		if !deps.Commits.CommitCached(gen, stored.CachedUser) {
			deps.MetricInc(deps.Metrics.CommitDropped)
			return CheckResult{Outcome: CheckOutcomeDropped, Err: verifyErr}
		}
		deps.MetricInc(deps.Metrics.Fallback)
		deps.Emit(ctx, events.TypeVerifyFallback, true, stored.CachedUser, verifyErr, func() map[string]string {
			return map[string]string{
				"reason": "verify_failed_cached_snapshot",
			}
		})
		return CheckResult{Outcome: CheckOutcomeFallback, User: stored.CachedUser, Err: verifyErr}
	}

	if !deps.Commits.ClearCommit(ctx, gen) {
		deps.MetricInc(deps.Metrics.CommitDropped)
		return CheckResult{Outcome: CheckOutcomeDropped, Err: verifyErr}
	}
	deps.MetricInc(deps.Metrics.Cleared)
	deps.Emit(ctx, events.TypeVerifyCleared, false, nil, verifyErr, nil)
	return CheckResult{Outcome: CheckOutcomeCleared, Err: verifyErr}
}
