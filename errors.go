package authsess

import (
	"errors"
	"fmt"

	"github.com/opencampus/authsess/gateway"
)

var (
	// ErrValidation is an exported constant or variable used by the session controller.
	ErrValidation = errors.New("email and password required")
	// ErrInvalidCredentials is an exported constant or variable used by the session controller.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailNotVerified is an exported constant or variable used by the session controller.
	ErrEmailNotVerified = errors.New("email not verified")
	// ErrRateLimited is an exported constant or variable used by the session controller.
	ErrRateLimited = errors.New("too many attempts")
	// ErrAccountLocked is an exported constant or variable used by the session controller.
	ErrAccountLocked = errors.New("account locked")
	// ErrNetwork is an exported constant or variable used by the session controller.
	ErrNetwork = errors.New("server unreachable")
	// ErrUnauthorized is an exported constant or variable used by the session controller.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrBackend is an exported constant or variable used by the session controller.
	ErrBackend = errors.New("unexpected server response")
	// ErrNoRefreshToken is an exported constant or variable used by the session controller.
	ErrNoRefreshToken = errors.New("no refresh token stored")
	// ErrControllerNotReady is an exported constant or variable used by the session controller.
	ErrControllerNotReady = errors.New("controller not initialized")
	// ErrControllerClosed is an exported constant or variable used by the session controller.
	ErrControllerClosed = errors.New("controller closed")
)

// translateError maps a gateway failure onto the package sentinels so
// callers can branch with errors.Is. The gateway's user-facing message is
// preserved in the wrapped text.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var ae *gateway.AuthError
	if !errors.As(err, &ae) {
		return err
	}

	sentinel := ErrBackend
	switch ae.Kind {
	case gateway.KindValidation:
		sentinel = ErrValidation
	case gateway.KindInvalidCredentials:
		sentinel = ErrInvalidCredentials
	case gateway.KindEmailNotVerified:
		sentinel = ErrEmailNotVerified
	case gateway.KindRateLimited:
		sentinel = ErrRateLimited
	case gateway.KindAccountLocked:
		sentinel = ErrAccountLocked
	case gateway.KindNetwork:
		sentinel = ErrNetwork
	case gateway.KindUnauthorized:
		sentinel = ErrUnauthorized
	}

	if ae.Message != "" {
		return fmt.Errorf("%w: %s", sentinel, ae.Message)
	}
	return sentinel
}
