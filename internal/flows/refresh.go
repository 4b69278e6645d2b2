package flows

import (
	"context"

	"github.com/opencampus/authsess/internal/events"
	"github.com/opencampus/authsess/session"
)

// RefreshFailureKind classifies refresh flow failures for root-level
// mapping.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	// RefreshFailureNoToken: the vault holds no refresh token; the caller
	// treats the session as logged out.
	RefreshFailureNoToken
	// RefreshFailureGateway: the backend rejected the exchange; the root
	// forces a logout.
	RefreshFailureGateway
	// RefreshFailurePersist: rotation succeeded remotely but the new pair
	// could not be persisted; the root forces a logout rather than keep a
	// token the vault does not hold.
	RefreshFailurePersist
	// RefreshFailureDropped: the generation advanced while in flight; the
	// rotation result was discarded.
	RefreshFailureDropped
)

// RefreshResult carries either the rotated access token or failure
// metadata.
type RefreshResult struct {
	Failure     RefreshFailureKind
	Err         error
	AccessToken string
	Rotated     bool
}

// RefreshMetrics carries metric IDs needed by the refresh flow.
type RefreshMetrics struct {
	Success       int
	NoToken       int
	Failure       int
	CommitDropped int
}

// RefreshDeps captures refresh flow dependencies.
type RefreshDeps struct {
	Commits CommitFuncs
	Vault   VaultFuncs
	Refresh func(ctx context.Context, refreshToken string) (session.TokenPair, error)

	MetricInc func(int)
	Emit      EmitFunc

	Metrics RefreshMetrics
	Errors  LoginErrors
}

// RunRefresh executes reactive token rotation. It never touches the store
// user; only the vault's token pair changes. The generation is re-checked
// before persisting so a rotation racing a logout cannot resurrect
// credentials into a cleared vault.
func RunRefresh(ctx context.Context, deps RefreshDeps) RefreshResult {
	fillCommitDefaults(&deps.Commits)
	fillEmitDefault(&deps.Emit)
	fillMetricDefault(&deps.MetricInc)
	if deps.Commits.Begin == nil || deps.Vault.Load == nil || deps.Vault.Rotate == nil || deps.Refresh == nil {
		return RefreshResult{Failure: RefreshFailureNoToken, Err: deps.Errors.NotReady}
	}

	gen := deps.Commits.Begin()

	stored, err := deps.Vault.Load(ctx)
	if err != nil || stored.RefreshToken == "" {
		deps.MetricInc(deps.Metrics.NoToken)
		return RefreshResult{Failure: RefreshFailureNoToken, Err: err}
	}

	pair, err := deps.Refresh(ctx, stored.RefreshToken)
	if err != nil {
		deps.MetricInc(deps.Metrics.Failure)
		return RefreshResult{Failure: RefreshFailureGateway, Err: err}
	}

	applied, err := deps.Vault.Rotate(ctx, gen, pair.AccessToken, pair.RefreshToken)
	if err != nil {
		deps.MetricInc(deps.Metrics.Failure)
		return RefreshResult{Failure: RefreshFailurePersist, Err: err}
	}
	if !applied {
		deps.MetricInc(deps.Metrics.CommitDropped)
		deps.Emit(ctx, events.TypeCommitDropped, false, nil, nil, func() map[string]string {
			return map[string]string{
				"reason": "refresh_after_generation_advance",
			}
		})
		return RefreshResult{Failure: RefreshFailureDropped}
	}

	deps.MetricInc(deps.Metrics.Success)
	deps.Emit(ctx, events.TypeRefreshSuccess, true, nil, nil, func() map[string]string {
		meta := map[string]string{}
		if pair.RefreshToken != "" {
			meta["rotated_refresh_token"] = "true"
		}
		return meta
	})
	return RefreshResult{
		Failure:     RefreshFailureNone,
		AccessToken: pair.AccessToken,
		Rotated:     pair.RefreshToken != "",
	}
}
