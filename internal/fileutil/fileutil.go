// Package fileutil provides small filesystem helpers shared by the staging
// pipeline: streamed copies and collision-free staged file naming.
package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CopyFile streams src to dst using io.Copy with default permissions (0o644).
func CopyFile(src, dst string) error {
	return CopyFileMode(src, dst, 0o644)
}

// CopyFileMode streams src to dst, setting the given file mode on dst.
func CopyFileMode(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// UniqueName builds a staged file name from a caller-supplied hint, a
// timestamp, and a short random suffix, preserving ext. The hint is sanitized
// so arbitrary user text (b-roll titles, search queries) cannot escape the
// staging directory or produce awkward filenames.
func UniqueName(hint, ext string) string {
	base := SanitizeBaseName(hint)
	if base == "" {
		base = "asset"
	}
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	ext = strings.TrimSpace(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return fmt.Sprintf("%s-%d-%s%s", base, time.Now().UnixMilli(), suffix, strings.ToLower(ext))
}

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// SanitizeBaseName reduces an arbitrary string to a safe filename fragment:
// diacritics stripped, anything outside [a-z0-9-] collapsed to single dashes,
// length capped.
func SanitizeBaseName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if stripped, _, err := transform.String(diacriticStripper, name); err == nil {
		name = stripped
	}
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	if len(out) > 48 {
		out = strings.Trim(out[:48], "-")
	}
	return out
}

// ExtOf returns the lowercase extension of a path or URL, without the query
// string a remote URL may carry.
func ExtOf(ref string) string {
	if idx := strings.IndexAny(ref, "?#"); idx >= 0 {
		ref = ref[:idx]
	}
	return strings.ToLower(filepath.Ext(ref))
}
