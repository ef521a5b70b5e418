// Package app is folio's composition root and operation layer.
//
// # Overview
//
// This package wires configuration, logging, the catalog clients, the shared
// state store and the presentation layer together. It also hosts the
// Service that every entry point goes through, so the TUI and the headless
// commands load data the same way.
//
// # Components
//
//   - app.go: Run (TUI) and NewService, which builds the clients from config
//   - service.go: Search, BrowseSubject, LoadDetails, RefreshRecent, WatchRecent
//   - poller.go: StartPoller, the cancellable refresh loop
//   - headless.go: RunSearch, RunSubject, RunShow, RunRecent
//   - errors.go: Message, the user-facing rendering of errors
//   - logging.go: humanlog-backed slog setup
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()          TOML config + --log-level
//	       ├─────> NewLogger()            <log_dir>/folio.log
//	       ├─────> NewService()           clients, assembler, state.Store
//	       ├─────> prefs.Load()           theme and default filters
//	       └─────> ui.Run()               TUI (blocks)
//
//	Service call:
//	┌───────────────────────────────────────────────┐
//	│ ticket := store.Begin*()        Busy = true   │
//	│ result, err := client call                    │
//	│ store.Finish*(ticket, result, err)            │
//	│   latest ticket: apply, Busy = false          │
//	│   older ticket:  dropped                      │
//	└───────────────────────────────────────────────┘
//
// # Recent Changes Refresh
//
// WatchRecent starts a poller that refreshes the feed immediately and then
// every recent_interval. The Recent view calls it when it mounts and calls
// the returned stop when it unmounts. stop cancels an in-flight request and
// waits for the goroutine to exit, so no refresh outlives the view.
//
// # Error Handling
//
// Service methods return the client error unchanged and record it in the
// store. Message maps errors to what the user sees:
//
//   - openlibrary.ErrNoResults: "No books found"
//   - openlibrary.ErrNotFound: "Book not found"
//   - other *openlibrary.StatusError: "Open Library returned status N"
//   - anything else: the error text
//
// Headless commands return errors whose text is Message(err) and which still
// unwrap to the original error.
//
// # Logging
//
// The TUI logs to a file because the alternate screen owns stdout. Headless
// commands log to stderr. Both use the humanlog handler at the configured
// level.
package app
