// Package services defines the shared error taxonomy and context annotation
// helpers used by every stage of the export pipeline.
//
// Errors are classified by wrapping them with one of the exported sentinel
// markers so the orchestrator and CLI can distinguish caller mistakes from
// external tool failures without string matching.
package services
