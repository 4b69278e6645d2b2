package flows

import (
	"context"

	"github.com/opencampus/authsess/internal/events"
)

// LogoutMetrics carries metric IDs needed by the logout flow.
type LogoutMetrics struct {
	Logout int
	Forced int
}

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	Commits CommitFuncs
	Vault   VaultFuncs
	Logout  func(ctx context.Context, accessToken string) error

	MetricInc func(int)
	Emit      EmitFunc

	Metrics LogoutMetrics
}

// RunLogout tears the session down. The remote call is best-effort; local
// cleanup runs unconditionally afterwards and the flow never reports
// failure. forced marks teardowns triggered by the controller itself
// (refresh failure) rather than user action.
func RunLogout(ctx context.Context, forced bool, deps LogoutDeps) {
	fillCommitDefaults(&deps.Commits)
	fillEmitDefault(&deps.Emit)
	fillMetricDefault(&deps.MetricInc)
	if deps.Commits.Advance == nil || deps.Commits.ClearCommit == nil {
		return
	}

	var access string
	if deps.Vault.Load != nil {
		if stored, err := deps.Vault.Load(ctx); err == nil {
			access = stored.AccessToken
		}
	}

	// Invalidate in-flight operations before anything observable changes:
	// a slow checkAuth resolving after this point must not resurrect the
	// session.
	gen := deps.Commits.Advance()

	if deps.Logout != nil && access != "" {
		_ = deps.Logout(ctx, access)
	}

	deps.Commits.ClearCommit(ctx, gen)

	eventType := events.TypeLogout
	metric := deps.Metrics.Logout
	if forced {
		eventType = events.TypeForcedLogout
		metric = deps.Metrics.Forced
	}
	deps.MetricInc(metric)
	deps.Emit(ctx, eventType, true, nil, nil, nil)
}
