package vault

import (
	"context"

	"github.com/opencampus/authsess/session"
)

// Storage key names. KeyAccessToken, KeyRefreshToken, and KeyUser are the
// live key set; the legacy aliases were written by earlier clients and are
// removed on Clear so upgrading installations converge.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"

	legacyKeyToken              = "token"
	legacyKeyRememberedEmail    = "rememberedEmail"
	legacyKeyRememberedUsername = "rememberedUsername"
)

func legacyKeys() []string {
	return []string{legacyKeyToken, legacyKeyRememberedEmail, legacyKeyRememberedUsername}
}

// Stored is the subset of persisted state present in the vault. Every field
// is independently optional.
type Stored struct {
	AccessToken  string
	RefreshToken string
	CachedUser   *session.User
}

// Empty reports whether nothing usable is persisted.
func (s Stored) Empty() bool {
	return s.AccessToken == "" && s.RefreshToken == "" && s.CachedUser == nil
}

// Vault is the persistence boundary of the session manager.
//
// Save persists tokens and the user snapshot together. Load returns
// whatever subset is present; a missing key is not an error. Rotate
// replaces the access token and, when next is non-empty, the refresh token,
// leaving the user snapshot untouched. Clear removes every persisted key
// and is idempotent.
type Vault interface {
	Save(ctx context.Context, tokens session.TokenPair, user *session.User) error
	Load(ctx context.Context) (Stored, error)
	Rotate(ctx context.Context, access, next string) error
	Clear(ctx context.Context) error
}
