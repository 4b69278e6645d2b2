// Package session holds the value model of an authenticated session and the
// in-memory reactive store that the rest of the application observes.
//
// # Design
//
// Store is the single source of truth for "who is signed in right now".
// Writes go through generation-guarded commit methods: every operation that
// intends to commit samples the store generation when it starts, and the
// commit is silently discarded if the generation has advanced in the
// meantime (logout or controller teardown). Within one generation, commits
// are last-write-wins.
//
// # Architecture boundaries
//
// This package owns state and notification only. Orchestration lives in the
// root package; persistence in vault; networking in gateway.
//
// # What this package must NOT do
//
//   - Perform I/O or network calls.
//   - Import the root package or any sibling package.
//   - Block a committer on a slow watcher.
package session
