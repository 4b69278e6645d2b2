package vault

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/opencampus/authsess/session"
)

func newRedisVault(t *testing.T) (*RedisVault, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewRedisVault(rdb, "av"), mr
}

func TestRedisVaultRoundTrip(t *testing.T) {
	ctx := context.Background()
	v, _ := newRedisVault(t)

	user := &session.User{ID: "9", Email: "p@school.example", Role: session.RoleTeacher, IsVerified: true}
	if err := v.Save(ctx, session.TokenPair{AccessToken: "AT1", RefreshToken: "RT1"}, user); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := v.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.AccessToken != "AT1" || got.RefreshToken != "RT1" {
		t.Fatalf("tokens not persisted: %+v", got)
	}
	if got.CachedUser == nil || got.CachedUser.Email != "p@school.example" || !got.CachedUser.IsVerified {
		t.Fatalf("user snapshot not persisted: %+v", got.CachedUser)
	}
}

func TestRedisVaultSaveWithoutRefreshTokenDropsPrevious(t *testing.T) {
	ctx := context.Background()
	v, _ := newRedisVault(t)

	_ = v.Save(ctx, session.TokenPair{AccessToken: "AT1", RefreshToken: "RT1"}, &session.User{ID: "1", Role: session.RoleParent})

	// A fresh session without a refresh token must not inherit RT1.
	if err := v.Save(ctx, session.TokenPair{AccessToken: "AT2"}, &session.User{ID: "2", Role: session.RoleStudent}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, _ := v.Load(ctx)
	if got.RefreshToken != "" {
		t.Fatalf("previous session's refresh token survived Save: %+v", got)
	}
	if got.AccessToken != "AT2" || got.CachedUser == nil || got.CachedUser.ID != "2" {
		t.Fatalf("new session not persisted: %+v", got)
	}
}

func TestRedisVaultClearRemovesLegacyAliases(t *testing.T) {
	ctx := context.Background()
	v, mr := newRedisVault(t)

	_ = v.Save(ctx, session.TokenPair{AccessToken: "AT"}, &session.User{ID: "1", Role: session.RoleAdmin})
	// Keys an older client left behind.
	mr.Set("av:token", "AT")
	mr.Set("av:rememberedEmail", "old@school.example")
	mr.Set("av:rememberedUsername", "old")

	if err := v.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	for _, k := range []string{"av:accessToken", "av:refreshToken", "av:user", "av:token", "av:rememberedEmail", "av:rememberedUsername"} {
		if mr.Exists(k) {
			t.Fatalf("key %q survived Clear", k)
		}
	}

	// Idempotent with nothing stored.
	if err := v.Clear(ctx); err != nil {
		t.Fatalf("second Clear failed: %v", err)
	}
}

func TestRedisVaultLoadEmpty(t *testing.T) {
	ctx := context.Background()
	v, _ := newRedisVault(t)

	got, err := v.Load(ctx)
	if err != nil {
		t.Fatalf("Load on empty vault: %v", err)
	}
	if !got.Empty() {
		t.Fatalf("expected empty vault, got %+v", got)
	}
}

func TestRedisVaultCorruptUserSnapshotIgnored(t *testing.T) {
	ctx := context.Background()
	v, mr := newRedisVault(t)

	mr.Set("av:accessToken", "AT1")
	mr.Set("av:user", "{not json")

	got, err := v.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.AccessToken != "AT1" {
		t.Fatalf("access token lost: %+v", got)
	}
	if got.CachedUser != nil {
		t.Fatal("corrupt snapshot must read as absent")
	}
}
