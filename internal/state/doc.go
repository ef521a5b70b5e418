// Package state provides the thread-safe application state shared by folio's
// loaders and its presentation layer.
//
// # Overview
//
// The Store holds three independent slices, one per kind of operation:
//
//   - Search: the latest search or subject browse and its results
//   - Detail: the book shown on the detail page
//   - Recent: the recent changes feed
//
// Each slice carries a Busy flag, the last error and an UpdatedAt timestamp.
// No operation writes to a slice it does not own.
//
// # Request Tickets
//
// Loads run concurrently with user input, so a slow response may arrive after
// a newer one. Every load is bracketed by a Begin/Finish pair:
//
//	ticket := store.BeginSearch("dune", false)   // Busy = true
//	results, err := client.Search(ctx, q)
//	store.FinishSearch(ticket, results, err)     // applied only if latest
//
// Tickets increase monotonically per slice. Finish compares its ticket with the
// slice's latest one and drops the result when they differ, leaving Busy set
// for the newer load that is still in flight.
//
// # Error Semantics
//
// A failed load clears the slice's data and records the error. Presentation
// shows the message in place of results and never mixes data from a failed
// attempt with data from an earlier success. The Recent slice also counts
// consecutive failures; Stale reports two or more.
//
// A load abandoned by its caller is released with Cancel* instead. It clears
// Busy and leaves the data, the error and the failure count untouched.
//
// # Snapshots and Subscriptions
//
// Snapshot returns a copy with cloned slices, a cloned detail book and wrapped
// errors, so callers
// can hold it without locking. Subscribe hands out a buffered channel that
// receives a coalesced signal after every change:
//
//	Loaders:                      UI:
//	┌──────────────────┐         ┌──────────────────┐
//	│ Begin*/Finish*   │──signal→│ <-store.Subscribe│
//	│   (write lock)   │         │ store.Snapshot() │
//	└──────────────────┘         │ render           │
//	                             └──────────────────┘
//
// The lock is held only while copying, never across network I/O.
package state
