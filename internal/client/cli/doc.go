// Package cli is the one-shot wlog command-line client.
//
// An invocation optionally syncs the local log with remote peers (line
// protocol, HTTP, gRPC, in that order), optionally logs a message, optionally
// uploads a backup, and finally prints the entries of one day or of a search
// as "<date> - <message>" lines.
//
// Sync failures are reported and do not stop the invocation, so the CLI
// stays usable offline.
package cli
