package compose

import (
	"fmt"
	"strings"
)

// Style names a caption layout preset. It is opaque to the pipeline beyond
// validation and forwarding.
type Style string

const (
	StyleBottom  Style = "bottom"
	StyleTop     Style = "top"
	StyleKaraoke Style = "karaoke"
)

// ParseStyle validates a caller-supplied style preset.
func ParseStyle(value string) (Style, error) {
	switch Style(strings.ToLower(strings.TrimSpace(value))) {
	case StyleBottom:
		return StyleBottom, nil
	case StyleTop:
		return StyleTop, nil
	case StyleKaraoke:
		return StyleKaraoke, nil
	default:
		return "", fmt.Errorf("unknown style preset %q (want bottom, top, or karaoke)", value)
	}
}

// BRollProp is a b-roll entry as the render engine consumes it: src is the
// served URL for staged assets, or the original reference when staging failed
// and the render proceeds best-effort.
type BRollProp struct {
	ID              string  `json:"id"`
	Src             string  `json:"src"`
	Thumb           string  `json:"thumb,omitempty"`
	Type            string  `json:"type"`
	StartSeconds    float64 `json:"startSeconds"`
	DurationSeconds float64 `json:"durationSeconds"`
}

// InputProps is the property bag handed to the render engine.
type InputProps struct {
	VideoSrc          string      `json:"videoSrc"`
	Captions          []Caption   `json:"captions"`
	Style             Style       `json:"stylePreset"`
	DurationInSeconds *float64    `json:"durationInSeconds,omitempty"`
	BRolls            []BRollProp `json:"bRolls"`
}

// BuildProps assembles the final render inputs. durationSeconds is a hint:
// zero or negative means the engine's own composition metadata governs output
// length, so the field is omitted.
func BuildProps(baseURL string, manifest Manifest, style Style, durationSeconds float64, brolls []BRollProp) InputProps {
	props := InputProps{
		VideoSrc: strings.TrimRight(baseURL, "/") + "/video",
		Captions: manifest.Captions,
		Style:    style,
		BRolls:   brolls,
	}
	if props.Captions == nil {
		props.Captions = []Caption{}
	}
	if props.BRolls == nil {
		props.BRolls = []BRollProp{}
	}
	if durationSeconds > 0 {
		d := durationSeconds
		props.DurationInSeconds = &d
	}
	return props
}
