// Package history persists terminal export outcomes to a local SQLite
// database so past renders can be inspected from the CLI.
package history
