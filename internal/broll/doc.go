// Package broll resolves heterogeneous b-roll references into files under a
// job's staging directory and rewrites each entry's address to a served URL.
//
// Sources may be bare local paths, file:// URIs, or remote http(s) URLs.
// Video b-roll with a requested slot duration is trimmed without altering its
// play rate. Failures are contained per entry: a failed acquisition forwards
// the original reference and the render proceeds with best-effort assets.
package broll
