// Package store is the Persistence Engine: a single SQLite database
// file carrying the device tree across restarts.
//
// The schema evolves through a linear chain (v0 -> v1 -> v3 -> v4 ->
// v5 -> v6 -> v7 -> v8 -> v10 -> v11; v2 and v9 are intentionally
// absent) of suffixed tables, so that two adjacent schema versions can
// coexist on disk during a migration without a name collision. Every
// mutation the controller makes to a device, endpoint, cluster
// attribute, group membership, neighbor, route, or relay list is
// queued to this package in the same critical section as the
// in-memory update, then coalesced and committed in a single
// transaction after a short quiet window.
//
// Store implements controller.Persister without importing the
// controller package, keeping the two sides of the write-through seam
// independently testable.
package store
