// Package hooks dispatches build-system events to registered handlers.
//
// The build system raises three kinds of events: one per candidate source
// file before it is compiled, one after each link output is produced, and
// one before the firmware is uploaded. Handlers register for a phase with a
// predicate; Dispatch runs every matching handler in registration order and
// stops at the first error.
package hooks
