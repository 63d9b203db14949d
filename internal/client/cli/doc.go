// Package cli provides the babylog command-line client.
//
// It wires configuration, the SQLite-backed data layer, the sync client and
// a cobra command tree. Every command runs against the same App, which is
// opened lazily from configuration on first use. The shell command starts
// an interactive loop that dispatches each line through a fresh command
// tree, so the REPL and one-shot invocations behave identically.
package cli
