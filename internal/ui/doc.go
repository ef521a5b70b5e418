// Package ui provides the terminal user interface for folio.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model holds presentation state only; every
// load goes through the Actions interface, and results come back through the
// state.Store subscription as snapshots. The UI never applies a result
// itself, so a slow response can never overwrite a newer one.
//
// # View Types
//
// Four views are available:
//
//   - Search View: Query box, filter summary and the current results, with a
//     preview pane on wide terminals
//   - Detail View: The assembled record for the opened book, including the
//     encyclopedia summary when one was found
//   - Recent View: The recent changes feed. It refreshes on a timer only while
//     this view is shown
//   - Logs View: Tail of folio's own log file with search and a level filter
//
// # Event Flow
//
//  1. Run() builds the Model and subscribes it to the store
//  2. Keys trigger Actions inside tea.Cmd goroutines
//  3. The service records the outcome in the store, which signals subscribers
//  4. The Model receives a snapshotMsg and re-renders
//  5. Quitting or leaving the Recent view stops the feed poller
//
// # Key Bindings
//
//   - tab/shift+tab or 1-4: Switch views
//   - /: Edit the query (Search) or search the log (Logs)
//   - enter: Run the query, or open the selected result
//   - s: Browse the query text as a subject
//   - F: Search filters (Search) or cycle the minimum log level (Logs)
//   - r: Refresh the feed (Recent) or reload the record (Detail)
//   - n/N: Next/previous log match
//   - Space: Toggle log auto-tail
//   - T: Cycle theme
//   - ?: Help
//   - q or Ctrl+C: Exit
package ui
