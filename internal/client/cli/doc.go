// Package cli provides the interactive devsync command-line client.
//
// It wires configuration, the local sqlite cache, the REST client, the
// notification WebSocket and the reconciliation engine behind a small REPL
// that keeps working while the backend is unreachable. Typical flow: prompt
// for credentials, start the background sync loops and the connectivity
// watcher, then execute user commands.
//
// Key features:
//   - Login / Logout (online with offline fallback)
//   - Paged list with name search and employment filter
//   - Add / Edit / Delete developers, avatar upload
//   - Offline creates queued and replayed on reconnect
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
