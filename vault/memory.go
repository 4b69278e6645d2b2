package vault

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/opencampus/authsess/session"
)

// MemoryVault defines a public type used by authsess APIs.
//
// MemoryVault keeps the persisted key set in process memory. It is the
// browser-storage analog used by tests and single-process embedding.
type MemoryVault struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemoryVault creates an empty in-memory vault.
func NewMemoryVault() *MemoryVault {
	return &MemoryVault{
		data: make(map[string]string),
	}
}

// Save persists tokens and the user snapshot in one step. Save establishes
// a fresh session: a pair without a refresh token removes any previously
// stored one rather than extending it.
func (v *MemoryVault) Save(_ context.Context, tokens session.TokenPair, user *session.User) error {
	blob, err := json.Marshal(user)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.data[KeyAccessToken] = tokens.AccessToken
	if tokens.RefreshToken != "" {
		v.data[KeyRefreshToken] = tokens.RefreshToken
	} else {
		delete(v.data, KeyRefreshToken)
	}
	v.data[KeyUser] = string(blob)
	return nil
}

// Load returns whatever subset is present. A user snapshot that fails to
// decode is treated as absent.
func (v *MemoryVault) Load(_ context.Context) (Stored, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := Stored{
		AccessToken:  v.data[KeyAccessToken],
		RefreshToken: v.data[KeyRefreshToken],
	}
	if blob, ok := v.data[KeyUser]; ok && blob != "" {
		var u session.User
		if err := json.Unmarshal([]byte(blob), &u); err == nil && u.ID != "" {
			out.CachedUser = &u
		}
	}
	return out, nil
}

// Clear removes every persisted key, legacy aliases included. Safe to call
// with nothing stored.
func (v *MemoryVault) Clear(_ context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.data, KeyAccessToken)
	delete(v.data, KeyRefreshToken)
	delete(v.data, KeyUser)
	for _, k := range legacyKeys() {
		delete(v.data, k)
	}
	return nil
}

// Rotate replaces the stored access token and, when next is non-empty, the
// refresh token as well.
func (v *MemoryVault) Rotate(_ context.Context, access, next string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.data[KeyAccessToken] = access
	if next != "" {
		v.data[KeyRefreshToken] = next
	}
	return nil
}
