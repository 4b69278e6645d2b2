// Package gateway is the stateless network boundary of the session manager.
//
// # Design
//
// HTTPGateway issues the four remote operations (login, logout, verify,
// refresh) against the school-platform backend and normalizes every failure
// into a structured *AuthError carrying an ErrorKind. Classification is
// driven by HTTP status and response body fields at this boundary; nothing
// downstream inspects message substrings.
//
// # Architecture boundaries
//
// The gateway holds no session state and never touches the vault or the
// store. Logout is best-effort by contract: callers tear down local state
// regardless of its outcome.
//
// # What this package must NOT do
//
//   - Retry, queue, or schedule requests.
//   - Leak *http.Response or raw transport errors past NewAuthError mapping.
//   - Import the root package or session storage packages.
package gateway
