// Package staging manages per-job scratch directories for downloaded and
// trimmed assets. Each job works inside its own directory guarded by a flock
// lockfile so concurrent exports never share or prune each other's files.
package staging
