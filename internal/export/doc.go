// Package export orchestrates one end-to-end captioned-video export: it
// serves the primary video over loopback HTTP, stages and trims b-roll,
// resolves render engine inputs, runs the engine under a time budget, and
// tears everything down when the run ends.
//
// A run moves through fixed states:
//
//	idle -> server started -> assets staged -> params resolved -> rendering
//	     -> completed | failed
//
// The loopback server and the staging directory are released exactly once no
// matter where the run stops.
package export
