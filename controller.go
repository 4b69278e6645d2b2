package authsess

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/opencampus/authsess/internal/events"
	"github.com/opencampus/authsess/internal/flows"
	"github.com/opencampus/authsess/session"
)

// Controller defines a public type used by authsess APIs.
//
// Controller instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Controller struct {
	config  Config
	store   *session.Store
	vault   Vault
	gateway Gateway
	events  *events.Dispatcher
	metrics *Metrics

	// commitMu serializes generation advances and vault+store commits so
	// the two layers can never be observed half-changed.
	commitMu sync.Mutex
	closed   atomic.Bool
	startup  sync.WaitGroup
}

// Close tears the controller down. In-flight operations are discarded by
// the generation guard; the event dispatcher drains before returning. The
// vault is left untouched so the session survives the process.
func (c *Controller) Close() {
	if c == nil {
		return
	}
	if c.closed.Swap(true) {
		return
	}
	c.advanceGen()
	c.startup.Wait()
	c.events.Close()
}

// WaitReady blocks until the startup reconciliation has finished. Returns
// immediately when the startup check is disabled.
func (c *Controller) WaitReady() {
	if c == nil {
		return
	}
	c.startup.Wait()
}

// Snapshot returns a copy of the current session state.
func (c *Controller) Snapshot() Snapshot {
	if c == nil || c.store == nil {
		return Snapshot{}
	}
	return c.store.Snapshot()
}

// User returns a copy of the current user, or nil when unauthenticated.
func (c *Controller) User() *User {
	if c == nil || c.store == nil {
		return nil
	}
	return c.store.User()
}

// IsAuthenticated reports whether a user is currently committed.
func (c *Controller) IsAuthenticated() bool {
	return c != nil && c.store != nil && c.store.Authenticated()
}

// IsLoading reports whether an operation is in flight.
func (c *Controller) IsLoading() bool {
	return c != nil && c.store != nil && c.store.Loading()
}

// Err returns the last recorded operation error, or nil.
func (c *Controller) Err() error {
	if c == nil || c.store == nil {
		return nil
	}
	return c.store.Err()
}

// ClearError dismisses the recorded error without touching the rest of the
// state.
func (c *Controller) ClearError() {
	if c == nil || c.store == nil {
		return
	}
	c.store.ClearError()
}

// Watch subscribes to session state changes. Slow receivers miss
// intermediate snapshots rather than blocking commits.
func (c *Controller) Watch() (<-chan Snapshot, func()) {
	if c == nil || c.store == nil {
		ch := make(chan Snapshot)
		close(ch)
		return ch, func() {}
	}
	return c.store.Watch()
}

// MetricsSnapshot returns a point-in-time copy of all metrics.
func (c *Controller) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return c.metrics.Snapshot()
}

// EventsDropped reports how many events the dispatcher discarded under
// backpressure.
func (c *Controller) EventsDropped() uint64 {
	if c == nil {
		return 0
	}
	return c.events.Dropped()
}

/*
====================================
COMMIT SURFACE
====================================
*/

func (c *Controller) advanceGen() uint64 {
	c.commitMu.Lock()
	defer c.commitMu.Unlock()
	return c.store.Advance()
}

// commit persists tokens+user to the vault and publishes the user to the
// store in one step. Advances are serialized behind commitMu, so a gen
// valid at entry stays valid through both layers.
func (c *Controller) commit(ctx context.Context, gen uint64, tokens session.TokenPair, user *session.User) (bool, error) {
	c.commitMu.Lock()
	defer c.commitMu.Unlock()
	if c.closed.Load() || !c.store.Valid(gen) {
		return false, nil
	}
	if err := c.vault.Save(ctx, tokens, user); err != nil {
		return false, err
	}
	c.store.SetUser(gen, user)
	return true, nil
}

// commitCached publishes a user to the store without touching the vault.
func (c *Controller) commitCached(gen uint64, user *session.User) bool {
	c.commitMu.Lock()
	defer c.commitMu.Unlock()
	if c.closed.Load() {
		return false
	}
	return c.store.SetUser(gen, user)
}

// clearCommit clears the vault and drops the store user in one step, then
// advances the generation. The advance invalidates any operation that read
// its generation before the clear finished but will load the vault only
// afterwards; without it such an operation could commit a resurrected
// session on top of the cleared state.
func (c *Controller) clearCommit(ctx context.Context, gen uint64) bool {
	c.commitMu.Lock()
	defer c.commitMu.Unlock()
	if !c.store.Valid(gen) {
		return false
	}
	_ = c.vault.Clear(ctx)
	c.store.SetUser(gen, nil)
	c.store.Advance()
	return true
}

// failCommit clears the vault and records err in the store in one step,
// then advances the generation. Recording a failure drops the store user;
// tokens left behind would let the next reconciliation resurrect the
// session the caller just failed to replace.
func (c *Controller) failCommit(ctx context.Context, gen uint64, err error) bool {
	c.commitMu.Lock()
	defer c.commitMu.Unlock()
	if !c.store.Valid(gen) {
		return false
	}
	_ = c.vault.Clear(ctx)
	c.store.SetError(gen, err)
	c.store.Advance()
	return true
}

// rotate swaps the persisted token pair, honoring the generation guard.
func (c *Controller) rotate(ctx context.Context, gen uint64, access, next string) (bool, error) {
	c.commitMu.Lock()
	defer c.commitMu.Unlock()
	if c.closed.Load() || !c.store.Valid(gen) {
		return false, nil
	}
	if err := c.vault.Rotate(ctx, access, next); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Controller) commitFuncs() flows.CommitFuncs {
	return flows.CommitFuncs{
		Begin:        c.store.Begin,
		Advance:      c.advanceGen,
		Valid:        c.store.Valid,
		SetLoading:   c.store.SetLoading,
		Commit:       c.commit,
		CommitCached: c.commitCached,
		ClearCommit:  c.clearCommit,
		RecordError:  c.failCommit,
	}
}

func (c *Controller) vaultFuncs() flows.VaultFuncs {
	return flows.VaultFuncs{
		Load:   c.vault.Load,
		Rotate: c.rotate,
	}
}

func (c *Controller) metricInc(id int) {
	c.metrics.Inc(MetricID(id))
}

func (c *Controller) emit(ctx context.Context, eventType string, success bool, user *session.User, err error, meta func() map[string]string) {
	if c.events == nil {
		return
	}

	event := events.Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Success:   success,
	}
	if user != nil {
		event.UserID = user.ID
		event.Email = user.Email
	}
	if err != nil {
		event.Error = err.Error()
	}
	if meta != nil {
		event.Metadata = meta()
	}

	c.events.Emit(ctx, event)
}
