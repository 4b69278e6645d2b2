package flows

import (
	"context"
	"strings"

	"github.com/opencampus/authsess/internal/events"
	"github.com/opencampus/authsess/session"
)

// LoginMetrics carries metric IDs needed by the login flow.
type LoginMetrics struct {
	Success       int
	Failure       int
	Rejected      int
	CommitDropped int
}

// LoginErrors carries host-level sentinel errors used by the login flow.
type LoginErrors struct {
	NotReady   error
	Validation error
}

// LoginDeps captures login flow dependencies.
type LoginDeps struct {
	Commits CommitFuncs
	Login   func(ctx context.Context, creds session.Credentials) (session.TokenPair, *session.User, error)

	MetricInc func(int)
	Emit      EmitFunc

	Metrics LoginMetrics
	Errors  LoginErrors
}

// RunLogin executes the login flow: credential guard, gateway exchange,
// atomic commit. A failure clears the vault and records the error in the
// store in one step, so a failed re-login cannot leave the previous
// session's tokens behind a cleared user. The error is also returned so a
// login form can render the classified message.
func RunLogin(ctx context.Context, creds session.Credentials, deps LoginDeps) (*session.User, error) {
	fillCommitDefaults(&deps.Commits)
	fillEmitDefault(&deps.Emit)
	fillMetricDefault(&deps.MetricInc)
	if deps.Commits.Begin == nil || deps.Commits.Commit == nil || deps.Login == nil {
		return nil, deps.Errors.NotReady
	}

	gen := deps.Commits.Begin()
	deps.Commits.SetLoading(gen, true)

	// Guard before any network call.
	if strings.TrimSpace(creds.Email) == "" || creds.Password == "" {
		deps.MetricInc(deps.Metrics.Rejected)
		deps.Emit(ctx, events.TypeLoginRejected, false, nil, deps.Errors.Validation, func() map[string]string {
			return map[string]string{
				"reason": "missing_credentials",
			}
		})
		deps.Commits.RecordError(ctx, gen, deps.Errors.Validation)
		return nil, deps.Errors.Validation
	}

	tokens, user, err := deps.Login(ctx, creds)
	if err != nil {
		deps.MetricInc(deps.Metrics.Failure)
		deps.Emit(ctx, events.TypeLoginFailure, false, nil, err, func() map[string]string {
			return map[string]string{
				"email": creds.Email,
			}
		})
		deps.Commits.RecordError(ctx, gen, err)
		return nil, err
	}
	creds.Password = ""

	applied, err := deps.Commits.Commit(ctx, gen, tokens, user)
	if err != nil {
		deps.MetricInc(deps.Metrics.Failure)
		deps.Emit(ctx, events.TypeLoginFailure, false, user, err, func() map[string]string {
			return map[string]string{
				"reason": "commit_failed",
			}
		})
		deps.Commits.RecordError(ctx, gen, err)
		return nil, err
	}
	if !applied {
		// Controller was torn down or logged out while we were in flight.
		// The generation guard discards the result; not an error.
		deps.MetricInc(deps.Metrics.CommitDropped)
		deps.Emit(ctx, events.TypeCommitDropped, false, user, nil, nil)
		return user, nil
	}

	deps.MetricInc(deps.Metrics.Success)
	deps.Emit(ctx, events.TypeLoginSuccess, true, user, nil, nil)
	return user, nil
}
