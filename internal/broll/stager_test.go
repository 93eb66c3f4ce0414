package broll

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"reelpress/internal/compose"
	"reelpress/internal/logging"
	"reelpress/internal/services"
)

const testBaseURL = "http://127.0.0.1:4321"

type fakeTrimmer struct {
	err   error
	calls int
}

func (f *fakeTrimmer) Trim(_ context.Context, source, dest string, _ float64) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return err
	}
	return os.WriteFile(dest, data[:len(data)/2], 0o644)
}

func newTestStager(trimmer Trimmer) *Stager {
	return NewStager(DownloadSettings{Timeout: 5 * time.Second}, trimmer, logging.NewNop())
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestStageLocalImage(t *testing.T) {
	dir := t.TempDir()
	staging := filepath.Join(dir, "staging")
	if err := os.MkdirAll(staging, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	src := writeSource(t, dir, "photo.png", "png-data")

	stager := newTestStager(nil)
	entries := stager.Stage(context.Background(), []compose.BRollRef{
		{ID: "b1", Src: src, Type: "image"},
	}, staging, testBaseURL)

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Err != nil {
		t.Fatalf("unexpected error: %v", entry.Err)
	}
	if !strings.HasPrefix(entry.ResolvedURL, testBaseURL+"/broll/") {
		t.Fatalf("resolved URL = %q", entry.ResolvedURL)
	}
	if entry.Ref.Src != src {
		t.Fatal("original src must not be rewritten")
	}
	staged, err := os.ReadFile(entry.LocalPath)
	if err != nil || string(staged) != "png-data" {
		t.Fatalf("staged file wrong: %q err=%v", staged, err)
	}
	if filepath.Dir(entry.LocalPath) != staging {
		t.Fatalf("staged outside staging dir: %q", entry.LocalPath)
	}
}

func TestStageFileURI(t *testing.T) {
	dir := t.TempDir()
	staging := t.TempDir()
	src := writeSource(t, dir, "clip.jpg", "jpg-data")

	stager := newTestStager(nil)
	entries := stager.Stage(context.Background(), []compose.BRollRef{
		{ID: "b1", Src: "file://" + src, Type: "image"},
	}, staging, testBaseURL)

	if entries[0].Err != nil {
		t.Fatalf("unexpected error: %v", entries[0].Err)
	}
}

func TestStageMissingLocalSource(t *testing.T) {
	stager := newTestStager(nil)
	entries := stager.Stage(context.Background(), []compose.BRollRef{
		{ID: "b1", Src: "/nonexistent/clip.mp4", Type: "video"},
	}, t.TempDir(), testBaseURL)

	entry := entries[0]
	if entry.Err == nil {
		t.Fatal("expected error for missing source")
	}
	if !errors.Is(entry.Err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", entry.Err)
	}
	if entry.EffectiveSrc() != "/nonexistent/clip.mp4" {
		t.Fatalf("degraded entry must keep original src, got %q", entry.EffectiveSrc())
	}
}

func TestStageRemoteDownload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("remote-image-bytes"))
	}))
	defer server.Close()

	staging := t.TempDir()
	stager := newTestStager(nil)
	entries := stager.Stage(context.Background(), []compose.BRollRef{
		{ID: "stock-1", Src: server.URL + "/photo.webp", Type: "image"},
	}, staging, testBaseURL)

	entry := entries[0]
	if entry.Err != nil {
		t.Fatalf("unexpected error: %v", entry.Err)
	}
	data, err := os.ReadFile(entry.LocalPath)
	if err != nil || string(data) != "remote-image-bytes" {
		t.Fatalf("downloaded file wrong: %q err=%v", data, err)
	}
	if !strings.HasSuffix(entry.LocalPath, ".webp") {
		t.Fatalf("extension lost: %q", entry.LocalPath)
	}
}

func TestStageRemoteFailureDoesNotAbortBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	dir := t.TempDir()
	good := writeSource(t, dir, "ok.png", "ok")

	stager := newTestStager(nil)
	entries := stager.Stage(context.Background(), []compose.BRollRef{
		{ID: "bad", Src: server.URL + "/gone.jpg", Type: "image"},
		{ID: "good", Src: good, Type: "image"},
	}, t.TempDir(), testBaseURL)

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if !errors.Is(entries[0].Err, services.ErrDownload) {
		t.Fatalf("expected ErrDownload, got %v", entries[0].Err)
	}
	if !strings.Contains(entries[0].Err.Error(), "404") {
		t.Fatalf("download error should carry status: %v", entries[0].Err)
	}
	if entries[1].Err != nil {
		t.Fatalf("second entry should succeed: %v", entries[1].Err)
	}
}

func TestStageVideoTrimmed(t *testing.T) {
	dir := t.TempDir()
	staging := t.TempDir()
	src := writeSource(t, dir, "clip.mp4", "0123456789")

	trimmer := &fakeTrimmer{}
	stager := newTestStager(trimmer)
	entries := stager.Stage(context.Background(), []compose.BRollRef{
		{ID: "v1", Src: src, Type: "video", DurationSeconds: 3},
	}, staging, testBaseURL)

	entry := entries[0]
	if entry.Err != nil {
		t.Fatalf("unexpected error: %v", entry.Err)
	}
	if trimmer.calls != 1 {
		t.Fatalf("expected 1 trim call, got %d", trimmer.calls)
	}
	if !entry.Trimmed {
		t.Fatal("entry should be marked trimmed")
	}
	data, err := os.ReadFile(entry.LocalPath)
	if err != nil || string(data) != "01234" {
		t.Fatalf("trimmed file wrong: %q err=%v", data, err)
	}

	// The pre-trim intermediate is removed.
	files, err := os.ReadDir(staging)
	if err != nil {
		t.Fatalf("read staging: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected only trimmed file in staging, found %d files", len(files))
	}
}

func TestStageVideoTrimFailureFallsBackUntrimmed(t *testing.T) {
	dir := t.TempDir()
	staging := t.TempDir()
	src := writeSource(t, dir, "clip.mp4", "full-length-bytes")

	trimmer := &fakeTrimmer{err: errors.New("ffmpeg exploded")}
	stager := newTestStager(trimmer)
	entries := stager.Stage(context.Background(), []compose.BRollRef{
		{ID: "v1", Src: src, Type: "video", DurationSeconds: 3},
	}, staging, testBaseURL)

	entry := entries[0]
	if !errors.Is(entry.Err, services.ErrTrim) {
		t.Fatalf("expected ErrTrim, got %v", entry.Err)
	}
	if entry.ResolvedURL == "" {
		t.Fatal("untrimmed asset must still be served")
	}
	data, err := os.ReadFile(entry.LocalPath)
	if err != nil || string(data) != "full-length-bytes" {
		t.Fatalf("expected untrimmed original, got %q err=%v", data, err)
	}
}

func TestStageImageNeverTrimmed(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "photo.jpg", "jpg")

	trimmer := &fakeTrimmer{}
	stager := newTestStager(trimmer)
	stager.Stage(context.Background(), []compose.BRollRef{
		{ID: "i1", Src: src, Type: "image", DurationSeconds: 5},
	}, t.TempDir(), testBaseURL)

	if trimmer.calls != 0 {
		t.Fatalf("image entries must not be trimmed, got %d calls", trimmer.calls)
	}
}

func TestServedURLEscapesFilename(t *testing.T) {
	got := ServedURL("http://127.0.0.1:9000/", "my clip.mp4")
	want := "http://127.0.0.1:9000/broll/my%20clip.mp4"
	if got != want {
		t.Fatalf("ServedURL = %q, want %q", got, want)
	}
}

func TestPropUsesEffectiveSrc(t *testing.T) {
	staged := StagedEntry{
		Ref:         compose.BRollRef{ID: "x", Src: "/orig.mp4", Type: "video"},
		ResolvedURL: "http://127.0.0.1:9000/broll/x.mp4",
	}
	if staged.Prop().Src != staged.ResolvedURL {
		t.Fatal("prop should use resolved URL")
	}

	degraded := StagedEntry{Ref: compose.BRollRef{ID: "y", Src: "/orig.mp4"}}
	if degraded.Prop().Src != "/orig.mp4" {
		t.Fatal("degraded prop should fall back to original src")
	}
}
