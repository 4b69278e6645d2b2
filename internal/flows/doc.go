// Package flows contains the session orchestration logic, decoupled from
// the root package through Deps structs.
//
// Each flow is a Run function taking everything it needs as injected
// functions: gateway calls, vault access, generation-guarded commits,
// metric and event emitters. The root controller builds the Deps once and
// delegates; tests drive flows with plain fakes and no I/O.
//
// Flows never import the root package (no import cycles) and never touch
// process-global state.
package flows
