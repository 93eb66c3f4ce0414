package compose

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Caption is one timed text segment overlaid on the primary video.
type Caption struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// BRollRef is a manifest b-roll entry before staging. Src points at the raw
// source (local path, file:// URI, or remote URL) and is never rewritten;
// staging produces a separate resolved URL.
type BRollRef struct {
	ID              string  `json:"id"`
	Src             string  `json:"src"`
	Thumb           string  `json:"thumb,omitempty"`
	Type            string  `json:"type"`
	StartSeconds    float64 `json:"startSeconds"`
	DurationSeconds float64 `json:"durationSeconds"`
}

// Manifest is the parsed caption/b-roll document.
type Manifest struct {
	Captions []Caption
	BRolls   []BRollRef
}

// envelope mirrors the object manifest shape. Fields are raw so a non-array
// value can fall back to empty instead of failing the whole parse.
type envelope struct {
	Captions json.RawMessage `json:"captions"`
	BRolls   json.RawMessage `json:"bRolls"`
}

// ParseManifest decodes a manifest document. A top-level array is treated as
// captions only; an object may carry captions and bRolls, each defaulting to
// empty when absent or not an array.
func ParseManifest(data []byte) (Manifest, error) {
	trimmed := strings.TrimLeftFunc(string(data), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if trimmed == "" {
		return Manifest{}, fmt.Errorf("parse manifest: empty document")
	}

	if strings.HasPrefix(trimmed, "[") {
		var captions []Caption
		if err := json.Unmarshal(data, &captions); err != nil {
			return Manifest{}, fmt.Errorf("parse manifest: caption array: %w", err)
		}
		return Manifest{Captions: captions, BRolls: []BRollRef{}}, nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}

	manifest := Manifest{Captions: []Caption{}, BRolls: []BRollRef{}}
	if len(env.Captions) > 0 {
		var captions []Caption
		if err := json.Unmarshal(env.Captions, &captions); err == nil {
			manifest.Captions = captions
		}
	}
	if len(env.BRolls) > 0 {
		var brolls []BRollRef
		if err := json.Unmarshal(env.BRolls, &brolls); err == nil {
			manifest.BRolls = brolls
		}
	}
	return manifest, nil
}

// LoadManifest reads and parses a manifest file.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(data)
}
