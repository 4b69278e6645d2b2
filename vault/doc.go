// Package vault persists the access token, refresh token, and last-known
// user snapshot between application runs.
//
// # Design
//
// A Vault is a thin key/value abstraction: Save writes the whole credential
// set in one step, Load returns whatever subset is present, Clear removes
// every key (including legacy aliases written by older clients). Save and
// Clear are atomic from the caller's perspective; there is no observable
// state holding a token without its companion keys.
//
// Two implementations ship: MemoryVault for tests and single-process
// embedding, and RedisVault for durable deployments.
//
// # What this package must NOT do
//
//   - Perform network calls other than to its own storage backend.
//   - Apply business logic; reconciliation belongs to the controller.
//   - Expose tokens to UI layers.
package vault
