// Package render drives the external frame-rendering engine.
//
// The engine is a separate binary invoked once per export with a composition
// identifier, a JSON file of input properties, an output path, and a worker
// concurrency. It reports frame and chunk progress on stdout; the client
// parses those lines into callbacks and enforces the configured render
// timeout.
package render
