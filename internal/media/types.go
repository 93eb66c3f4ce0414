// Package media classifies staged assets by file extension and maps image
// extensions to MIME types for serving.
package media

import "strings"

// videoExtensions is the set of extensions treated as seekable video. Anything
// else staged for b-roll is served whole as an image.
var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".mkv":  {},
	".webm": {},
	".ogg":  {},
	".ogv":  {},
	".m4v":  {},
}

// IsVideoExt reports whether ext (with or without leading dot) names a video
// container format.
func IsVideoExt(ext string) bool {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return false
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	_, ok := videoExtensions[ext]
	return ok
}

// ImageMIME maps an image extension to its MIME type, defaulting to JPEG for
// anything unrecognized.
func ImageMIME(ext string) string {
	switch strings.ToLower(strings.TrimSpace(ext)) {
	case ".png":
		return "image/png"
	case ".svg":
		return "image/svg+xml"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
