// Package tokens provides advisory inspection of backend-issued JWTs.
//
// # Design
//
// Tokens are opaque to the session layer; the backend is the only
// authority on their validity. This package only peeks at standard
// claims without signature verification, for scheduling hints such as
// "refresh soon". Nothing here may be used to make an authorization
// decision.
package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoExpiry reports a structurally valid token without an exp claim.
var ErrNoExpiry = errors.New("tokens: no expiry claim")

var parser = jwt.NewParser(jwt.WithoutClaimsValidation())

// PeekExpiry extracts the exp claim from a JWT without verifying its
// signature. The result is advisory only.
func PeekExpiry(raw string) (time.Time, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(raw, &claims); err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}

// ExpiresWithin reports whether the token expires within d of now. A
// token that cannot be parsed or carries no expiry reports true so
// callers err on the side of refreshing.
func ExpiresWithin(raw string, d time.Duration) bool {
	exp, err := PeekExpiry(raw)
	if err != nil {
		return true
	}
	return time.Until(exp) < d
}
