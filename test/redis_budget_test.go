//go:build integration
// +build integration

package test

import (
	"context"
	"net"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	authsess "github.com/opencampus/authsess"
	"github.com/opencampus/authsess/vault"
)

// cmdCounter is a go-redis Hook that counts the number of Redis round-trips
// (individual commands and pipeline calls).
type cmdCounter struct {
	commands  atomic.Int64
	pipelines atomic.Int64
}

func (h *cmdCounter) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (h *cmdCounter) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		h.commands.Add(1)
		return next(ctx, cmd)
	}
}

func (h *cmdCounter) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		// Each pipeline call is one network round-trip regardless of command count.
		h.pipelines.Add(1)
		h.commands.Add(int64(len(cmds)))
		return next(ctx, cmds)
	}
}

func (h *cmdCounter) Reset() {
	h.commands.Store(0)
	h.pipelines.Store(0)
}

func (h *cmdCounter) Commands() int64 { return h.commands.Load() }

// newCountedVault creates a RedisVault backed by miniredis with a cmdCounter
// hook installed. Reset the counter before each measured operation.
func newCountedVault(t *testing.T) (*vault.RedisVault, *cmdCounter, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	counter := &cmdCounter{}
	rdb.AddHook(counter)

	// Warm the connection so handshake commands are not counted against
	// the operation budgets.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("warmup ping: %v", err)
	}
	counter.Reset()

	return vault.NewRedisVault(rdb, "as"), counter, func() {
		_ = rdb.Close()
		mr.Close()
	}
}

// Every vault operation must stay a single Redis round-trip. A login on a
// slow mobile connection pays this cost on the critical path.
func TestRedisBudgetVaultOperations(t *testing.T) {
	ctx := context.Background()
	v, counter, cleanup := newCountedVault(t)
	defer cleanup()

	user := schoolUser()
	budgets := []struct {
		name string
		op   func() error
		max  int64
	}{
		{"Save", func() error {
			return v.Save(ctx, authsess.TokenPair{AccessToken: "AT1", RefreshToken: "RT1"}, &user)
		}, 1},
		{"Load", func() error {
			_, err := v.Load(ctx)
			return err
		}, 1},
		{"Rotate", func() error {
			return v.Rotate(ctx, "AT2", "RT2")
		}, 1},
		{"Clear", func() error {
			return v.Clear(ctx)
		}, 1},
	}

	for _, b := range budgets {
		counter.Reset()
		if err := b.op(); err != nil {
			t.Fatalf("%s failed: %v", b.name, err)
		}
		if got := counter.Commands(); got > b.max {
			t.Fatalf("%s used %d Redis commands, budget is %d", b.name, got, b.max)
		}
	}
}
