package vault

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/opencampus/authsess/session"
)

const defaultRedisPrefix = "authsess"

// RedisVault defines a public type used by authsess APIs.
//
// RedisVault persists the credential key set in Redis under a common
// prefix. A multi-key MSET makes Save atomic; a single multi-key DEL makes
// Clear atomic and idempotent.
type RedisVault struct {
	client *redis.Client
	prefix string
}

// NewRedisVault creates a vault backed by the given client. An empty prefix
// falls back to "authsess".
func NewRedisVault(client *redis.Client, prefix string) *RedisVault {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisVault{
		client: client,
		prefix: prefix,
	}
}

func (v *RedisVault) key(name string) string {
	return v.prefix + ":" + name
}

// Save persists tokens and the user snapshot in a single MSET. The refresh
// key is always written: an empty value overwrites a previous session's
// refresh token, and Load reads it as absent.
func (v *RedisVault) Save(ctx context.Context, tokens session.TokenPair, user *session.User) error {
	blob, err := json.Marshal(user)
	if err != nil {
		return err
	}

	pairs := []interface{}{
		v.key(KeyAccessToken), tokens.AccessToken,
		v.key(KeyRefreshToken), tokens.RefreshToken,
		v.key(KeyUser), string(blob),
	}
	return v.client.MSet(ctx, pairs...).Err()
}

// Load returns whatever subset is present. Missing keys are not errors; a
// corrupt user snapshot is treated as absent.
func (v *RedisVault) Load(ctx context.Context) (Stored, error) {
	vals, err := v.client.MGet(ctx,
		v.key(KeyAccessToken),
		v.key(KeyRefreshToken),
		v.key(KeyUser),
	).Result()
	if err != nil {
		return Stored{}, err
	}

	out := Stored{
		AccessToken:  stringAt(vals, 0),
		RefreshToken: stringAt(vals, 1),
	}
	if blob := stringAt(vals, 2); blob != "" {
		var u session.User
		if err := json.Unmarshal([]byte(blob), &u); err == nil && u.ID != "" {
			out.CachedUser = &u
		}
	}
	return out, nil
}

// Rotate replaces the access token and, when next is non-empty, the refresh
// token, in a single MSET.
func (v *RedisVault) Rotate(ctx context.Context, access, next string) error {
	pairs := []interface{}{v.key(KeyAccessToken), access}
	if next != "" {
		pairs = append(pairs, v.key(KeyRefreshToken), next)
	}
	return v.client.MSet(ctx, pairs...).Err()
}

// Clear removes every persisted key, legacy aliases included.
func (v *RedisVault) Clear(ctx context.Context) error {
	keys := []string{
		v.key(KeyAccessToken),
		v.key(KeyRefreshToken),
		v.key(KeyUser),
	}
	for _, k := range legacyKeys() {
		keys = append(keys, v.key(k))
	}
	return v.client.Del(ctx, keys...).Err()
}

func stringAt(vals []interface{}, i int) string {
	if i >= len(vals) || vals[i] == nil {
		return ""
	}
	s, _ := vals[i].(string)
	return s
}
