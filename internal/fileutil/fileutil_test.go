package fileutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	payload := []byte("0123456789abcdef")
	if err := os.WriteFile(src, payload, 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("copy: %v", err)
	}
	copied, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read copy: %v", err)
	}
	if string(copied) != string(payload) {
		t.Fatalf("copy mismatch: got %q", copied)
	}
}

func TestCopyFileMissingSource(t *testing.T) {
	dir := t.TempDir()
	if err := CopyFile(filepath.Join(dir, "absent"), filepath.Join(dir, "out")); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestSanitizeBaseName(t *testing.T) {
	cases := map[string]string{
		"Café Scene 01!":  "cafe-scene-01",
		"  spaced   out  ":      "spaced-out",
		"___":                   "",
		"Ünïcode Ümlauts":       "unicode-umlauts",
		"already-clean":         "already-clean",
		"slash/../../traversal": "slash-traversal",
	}
	for input, want := range cases {
		if got := SanitizeBaseName(input); got != want {
			t.Errorf("SanitizeBaseName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestUniqueNameKeepsExtensionAndHint(t *testing.T) {
	name := UniqueName("B-Roll Clip", ".MP4")
	if !strings.HasPrefix(name, "b-roll-clip-") {
		t.Fatalf("unexpected prefix: %q", name)
	}
	if !strings.HasSuffix(name, ".mp4") {
		t.Fatalf("expected lowercase extension, got %q", name)
	}
	if name == UniqueName("B-Roll Clip", ".MP4") {
		t.Fatal("expected unique names on repeated calls")
	}
}

func TestExtOf(t *testing.T) {
	if got := ExtOf("https://example.com/clip.MOV?token=abc"); got != ".mov" {
		t.Fatalf("ExtOf url = %q", got)
	}
	if got := ExtOf("/tmp/image.PNG"); got != ".png" {
		t.Fatalf("ExtOf path = %q", got)
	}
	if got := ExtOf("noext"); got != "" {
		t.Fatalf("ExtOf noext = %q", got)
	}
}
