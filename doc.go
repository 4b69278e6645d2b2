// Package authsess manages the client side of an authenticated session
// against the school platform backend: credential login, token persistence,
// startup reconciliation, reactive session state, and token rotation.
//
// The package is designed for concurrent client workloads: Controller
// methods are safe to call from multiple goroutines after initialization
// through [Builder.Build].
//
// # Architecture boundaries
//
// authsess is the public surface. It exposes [Controller], [Builder],
// [Config], and value types (Snapshot, MetricsSnapshot, Event). All internal
// coordination (flow orchestration and event dispatch) lives under
// internal/ and is never exported. Transport and persistence live in the
// gateway and vault sub-packages.
//
// # What this package must NOT do
//
//   - Validate token signatures or make authorization decisions locally; the
//     backend is the only authority on token validity.
//   - Expose vault key layouts or wire envelopes in its public API.
//   - Import any sub-package that re-imports authsess (no import cycles).
//
// # Consistency contract
//
// The vault and the in-memory store change together under one lock. An
// operation resolving after Logout or Close is discarded whole, never
// merged: either both layers reflect it or neither does.
package authsess
