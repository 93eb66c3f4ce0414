// Package config loads, defaults, normalizes, and validates the TOML
// configuration for the reelpress export pipeline.
//
// All tool paths, timeouts, and directories are explicit configuration values
// handed to the orchestrator at construction; nothing reads ambient process
// state at run time.
package config
