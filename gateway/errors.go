package gateway

import (
	"fmt"
	"net/http"
)

// ErrorKind classifies gateway failures for the controller and the UI.
type ErrorKind int

const (
	// KindUnknown is an exported constant used by the session manager.
	KindUnknown ErrorKind = iota
	// KindValidation is an exported constant used by the session manager.
	KindValidation
	// KindInvalidCredentials is an exported constant used by the session manager.
	KindInvalidCredentials
	// KindEmailNotVerified is an exported constant used by the session manager.
	KindEmailNotVerified
	// KindRateLimited is an exported constant used by the session manager.
	KindRateLimited
	// KindAccountLocked is an exported constant used by the session manager.
	KindAccountLocked
	// KindNetwork is an exported constant used by the session manager.
	KindNetwork
	// KindUnauthorized is an exported constant used by the session manager.
	KindUnauthorized
)

// String returns the stable name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindEmailNotVerified:
		return "email_not_verified"
	case KindRateLimited:
		return "rate_limited"
	case KindAccountLocked:
		return "account_locked"
	case KindNetwork:
		return "network"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

func defaultMessage(k ErrorKind) string {
	switch k {
	case KindValidation:
		return "Email and password are required."
	case KindInvalidCredentials:
		return "Invalid email or password."
	case KindEmailNotVerified:
		return "Your email address has not been verified yet."
	case KindRateLimited:
		return "Too many attempts. Please try again later."
	case KindAccountLocked:
		return "This account is temporarily locked."
	case KindNetwork:
		return "Could not reach the server. Check your connection."
	case KindUnauthorized:
		return "Your session has expired. Please sign in again."
	default:
		return "Something went wrong. Please try again."
	}
}

// AuthError is the structured failure every gateway operation returns. The
// message is safe to render to a user.
type AuthError struct {
	Kind    ErrorKind
	Message string
	Status  int
}

// NewAuthError creates an AuthError, filling in the per-kind default
// message when none is given.
func NewAuthError(kind ErrorKind, message string) *AuthError {
	if message == "" {
		message = defaultMessage(kind)
	}
	return &AuthError{
		Kind:    kind,
		Message: message,
	}
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Backend error body shape. Code discriminates 403-class failures.
type errorEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

const (
	codeEmailNotVerified = "EMAIL_NOT_VERIFIED"
	codeAccountLocked    = "ACCOUNT_LOCKED"
)

// classifyStatus maps an HTTP failure to an AuthError. loginOp selects the
// 401 interpretation: bad credentials on login, rejected token elsewhere.
func classifyStatus(status int, env errorEnvelope, loginOp bool) *AuthError {
	var kind ErrorKind
	switch {
	case status == http.StatusUnauthorized && loginOp:
		kind = KindInvalidCredentials
	case status == http.StatusUnauthorized:
		kind = KindUnauthorized
	case status == http.StatusForbidden && env.Code == codeAccountLocked:
		kind = KindAccountLocked
	case status == http.StatusForbidden:
		kind = KindEmailNotVerified
	case status == http.StatusLocked:
		kind = KindAccountLocked
	case status == http.StatusTooManyRequests:
		kind = KindRateLimited
	default:
		kind = KindUnknown
	}

	err := NewAuthError(kind, safeMessage(kind, env.Message))
	err.Status = status
	return err
}

// safeMessage passes backend text through only where it adds information a
// user may see; classified kinds keep their canonical wording.
func safeMessage(kind ErrorKind, backend string) string {
	if kind == KindUnknown && backend != "" {
		return backend
	}
	return ""
}
