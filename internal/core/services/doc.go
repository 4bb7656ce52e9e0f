// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The listing service is the only writer of listing projections. It holds a
// per-listing write lock around each change so the change log and the cached
// projection are updated in a single total order. Every other operation is a
// read or an append-only insert and takes no service-level locks.
package services
