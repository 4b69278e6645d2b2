package flows

import (
	"context"

	"github.com/opencampus/authsess/session"
	"github.com/opencampus/authsess/vault"
)

// CommitFuncs are the generation-guarded mutations every flow shares. The
// root controller implements them so that vault and store always change
// together under one lock; a stale generation makes them no-ops returning
// false.
type CommitFuncs struct {
	// Begin samples the current generation.
	Begin func() uint64
	// Advance invalidates in-flight commits and returns the new generation.
	Advance func() uint64
	// Valid reports whether gen is still current.
	Valid func(gen uint64) bool
	// SetLoading flips the loading flag.
	SetLoading func(gen uint64, loading bool) bool
	// Commit persists tokens+user to the vault and publishes the user to
	// the store in one step.
	Commit func(ctx context.Context, gen uint64, tokens session.TokenPair, user *session.User) (bool, error)
	// CommitCached publishes a user to the store without touching the
	// vault (verify-failure fallback keeps storage intact).
	CommitCached func(gen uint64, user *session.User) bool
	// ClearCommit clears the vault and drops the store user in one step.
	ClearCommit func(ctx context.Context, gen uint64) bool
	// RecordError clears the vault and records err in the store in one
	// step, dropping to unauthenticated. A user cleared from the store
	// never leaves the previous session's tokens behind.
	RecordError func(ctx context.Context, gen uint64, err error) bool
}

// EmitFunc reports a lifecycle event. meta is evaluated lazily so disabled
// dispatchers pay nothing.
type EmitFunc func(ctx context.Context, eventType string, success bool, user *session.User, err error, meta func() map[string]string)

// VaultFuncs are the persistence operations flows may issue outside of the
// shared commit helpers. Rotate is generation-guarded like the commit
// helpers: a stale gen makes it a no-op returning false.
type VaultFuncs struct {
	Load   func(ctx context.Context) (vault.Stored, error)
	Rotate func(ctx context.Context, gen uint64, access, next string) (bool, error)
}

func fillCommitDefaults(c *CommitFuncs) {
	if c.SetLoading == nil {
		c.SetLoading = func(uint64, bool) bool { return false }
	}
	if c.Valid == nil {
		c.Valid = func(uint64) bool { return true }
	}
	if c.CommitCached == nil {
		c.CommitCached = func(uint64, *session.User) bool { return false }
	}
	if c.RecordError == nil {
		c.RecordError = func(context.Context, uint64, error) bool { return false }
	}
}

func fillEmitDefault(emit *EmitFunc) {
	if *emit == nil {
		*emit = func(context.Context, string, bool, *session.User, error, func() map[string]string) {}
	}
}

func fillMetricDefault(inc *func(int)) {
	if *inc == nil {
		*inc = func(int) {}
	}
}
