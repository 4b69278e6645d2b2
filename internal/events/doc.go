// Package events delivers session lifecycle events to a pluggable sink
// without blocking the auth path.
//
// # Design
//
// The Dispatcher owns a buffered channel and a single drain goroutine.
// Emit never blocks the caller beyond the channel send; with DropIfFull the
// send itself is non-blocking and a drop counter records backpressure.
//
// # What this package must NOT do
//
//   - Perform network I/O itself; that is the sink's business.
//   - Import the root package or any sibling package.
package events
