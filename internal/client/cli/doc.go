// Package cli provides the interactive passkeeper command-line client.
//
// It wires configuration, the HTTP API client and an interactive REPL.
// Typical flow: register or log in, then list, add, edit and delete stored
// credentials, view the dashboard or download an encrypted vault export.
// A background watcher pings the server and shows online/offline status in
// the prompt.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits
// or ctx is canceled.
package cli
