package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks missing or malformed caller input. Nothing has been
	// opened when it fires.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a local source file that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDownload marks a failed remote asset fetch.
	ErrDownload = errors.New("download failed")
	// ErrTrim marks a b-roll trim where both the stream-copy and re-encode
	// tiers failed; the untrimmed asset is used instead.
	ErrTrim = errors.New("trim failed")
	// ErrExternalTool marks a failure reported by an external binary.
	ErrExternalTool = errors.New("external tool error")
	// ErrTimeout marks an operation that exceeded its bounded time budget.
	ErrTimeout = errors.New("timeout")
	// ErrOutputMissing marks a render that reported success but produced no
	// usable output file.
	ErrOutputMissing = errors.New("output missing")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Fatal reports whether an error must terminate the whole export job.
// Entry-level acquisition and trim failures degrade gracefully; everything
// else is terminal.
func Fatal(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, ErrDownload), errors.Is(err, ErrTrim):
		return false
	case errors.Is(err, ErrNotFound):
		return false
	default:
		return true
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
