// Package cli provides the interactive Chronos terminal client.
//
// It wires configuration, the local preferences database, the persistence
// API, the realtime subscription and an interactive REPL. Typical flow:
// restore preferences, prompt for credentials, then execute user commands
// while realtime changes are merged into the journal list in the background.
//
// Commands:
//   - login / logout
//   - list, show, add, edit, delete, refresh
//   - calendar [YYYY-MM]
//   - locale, theme, prefs [reset]
//   - export <json|csv> <path>, backup
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
