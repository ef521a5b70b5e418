// Package logtail reads folio's own log file for the Logs view.
//
// # Reading
//
// Read returns the last maxLines of a file using a ring buffer, so memory
// stays at O(maxLines) regardless of file size. A non-positive maxLines
// returns every line. A missing file yields nil, nil because the TUI may be
// showing the view before anything was logged.
//
//	lines, err := logtail.Read(cfg.LogPath(), 400)
//
// Lines come back with ANSI color sequences stripped; presentation applies
// its own theme colors.
//
// # Line Format
//
// folio logs through the humanlog slog handler, which writes:
//
//	[2026-01-02 10:00:00] INFO  search finished [query=dune results=20]
//
// ParseLevel extracts the level token. Lines without one (wrapped output,
// stack traces) report LevelNone and FilterLevel keeps them with the line
// above.
//
// # Searching
//
// Match returns the indices of lines containing a case-insensitive query so
// the view can jump between hits.
package logtail
