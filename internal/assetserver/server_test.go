package assetserver

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"reelpress/internal/logging"
	"reelpress/internal/services"
)

func startTestServer(t *testing.T, videoBytes []byte) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	videoPath := filepath.Join(dir, "source.mp4")
	if err := os.WriteFile(videoPath, videoBytes, 0o644); err != nil {
		t.Fatalf("write video: %v", err)
	}
	stagingDir := filepath.Join(dir, "staging")
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		t.Fatalf("create staging: %v", err)
	}
	srv, err := Start(videoPath, stagingDir, logging.NewNop())
	if err != nil {
		t.Fatalf("start server: %v", err)
	}
	t.Cleanup(func() { _ = srv.Close() })
	return srv, stagingDir
}

func TestStartMissingVideo(t *testing.T) {
	_, err := Start(filepath.Join(t.TempDir(), "absent.mp4"), t.TempDir(), logging.NewNop())
	if err == nil {
		t.Fatal("expected error for missing video")
	}
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFullVideoResponse(t *testing.T) {
	payload := []byte("the quick brown fox jumps over the lazy dog")
	srv, _ := startTestServer(t, payload)

	resp, err := http.Get(srv.BaseURL() + "/video")
	if err != nil {
		t.Fatalf("get video: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != "video/mp4" {
		t.Fatalf("content type = %q", got)
	}
	if got := resp.Header.Get("Accept-Ranges"); got != "bytes" {
		t.Fatalf("accept ranges = %q", got)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("cors origin = %q", got)
	}
	if got := resp.ContentLength; got != int64(len(payload)) {
		t.Fatalf("content length = %d, want %d", got, len(payload))
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != string(payload) {
		t.Fatalf("body mismatch: %q", body)
	}
}

func TestRangeRequests(t *testing.T) {
	payload := []byte("0123456789abcdefghij")
	srv, _ := startTestServer(t, payload)
	size := len(payload)

	cases := []struct {
		header string
		start  int
		end    int
	}{
		{"bytes=0-4", 0, 4},
		{"bytes=5-", 5, size - 1},
		{"bytes=0-", 0, size - 1},
		{fmt.Sprintf("bytes=%d-%d", size-3, size+50), size - 3, size - 1},
		{"bytes=19-19", 19, 19},
	}
	for _, tc := range cases {
		req, _ := http.NewRequest(http.MethodGet, srv.BaseURL()+"/video", nil)
		req.Header.Set("Range", tc.header)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("range %q: %v", tc.header, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusPartialContent {
			t.Fatalf("range %q: status = %d", tc.header, resp.StatusCode)
		}
		wantLen := tc.end - tc.start + 1
		if len(body) != wantLen {
			t.Fatalf("range %q: body length = %d, want %d", tc.header, len(body), wantLen)
		}
		if string(body) != string(payload[tc.start:tc.end+1]) {
			t.Fatalf("range %q: body mismatch %q", tc.header, body)
		}
		wantContentRange := fmt.Sprintf("bytes %d-%d/%d", tc.start, tc.end, size)
		if got := resp.Header.Get("Content-Range"); got != wantContentRange {
			t.Fatalf("range %q: Content-Range = %q, want %q", tc.header, got, wantContentRange)
		}
	}
}

func TestUnsatisfiableRange(t *testing.T) {
	srv, _ := startTestServer(t, []byte("short"))

	req, _ := http.NewRequest(http.MethodGet, srv.BaseURL()+"/video", nil)
	req.Header.Set("Range", "bytes=100-")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusRequestedRangeNotSatisfiable {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestBRollServing(t *testing.T) {
	srv, stagingDir := startTestServer(t, []byte("video"))

	if err := os.WriteFile(filepath.Join(stagingDir, "clip.mp4"), []byte("clip-bytes"), 0o644); err != nil {
		t.Fatalf("write clip: %v", err)
	}
	if err := os.WriteFile(filepath.Join(stagingDir, "photo.png"), []byte("png-bytes"), 0o644); err != nil {
		t.Fatalf("write photo: %v", err)
	}

	// Video b-roll honors ranges.
	req, _ := http.NewRequest(http.MethodGet, srv.BaseURL()+"/broll/clip.mp4", nil)
	req.Header.Set("Range", "bytes=0-3")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("clip request: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusPartialContent || string(body) != "clip" {
		t.Fatalf("clip range: status=%d body=%q", resp.StatusCode, body)
	}

	// Image b-roll is served whole with its MIME.
	resp, err = http.Get(srv.BaseURL() + "/broll/photo.png")
	if err != nil {
		t.Fatalf("photo request: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("photo status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != "image/png" {
		t.Fatalf("photo mime = %q", got)
	}
	if string(body) != "png-bytes" {
		t.Fatalf("photo body = %q", body)
	}
}

func TestUnknownPathsReturn404(t *testing.T) {
	srv, _ := startTestServer(t, []byte("video"))

	for _, path := range []string{"/broll/absent.mp4", "/other", "/video/extra", "/broll/..%2fsource.mp4"} {
		resp, err := http.Get(srv.BaseURL() + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", path, resp.StatusCode)
		}
	}
}

func TestCloseIsIdempotentAndStopsListening(t *testing.T) {
	srv, _ := startTestServer(t, []byte("video"))
	addr := fmt.Sprintf("127.0.0.1:%d", srv.Port())

	if err := srv.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := srv.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		conn, err := net.DialTimeout("tcp", addr, 200*time.Millisecond)
		if err != nil {
			break
		}
		conn.Close()
		if time.Now().After(deadline) {
			t.Fatal("port still accepting connections after close")
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func TestParseRange(t *testing.T) {
	cases := []struct {
		header string
		size   int64
		ok     bool
		start  int64
		end    int64
	}{
		{"bytes=0-9", 100, true, 0, 9},
		{"bytes=10-", 100, true, 10, 99},
		{"bytes=90-200", 100, true, 90, 99},
		{"bytes=100-", 100, false, 0, 0},
		{"bytes=-5", 100, false, 0, 0},
		{"bytes=9-3", 100, false, 0, 0},
		{"chunks=0-4", 100, false, 0, 0},
		{"bytes=abc-", 100, false, 0, 0},
	}
	for _, tc := range cases {
		span, ok := parseRange(tc.header, tc.size)
		if ok != tc.ok {
			t.Errorf("parseRange(%q): ok = %v, want %v", tc.header, ok, tc.ok)
			continue
		}
		if ok && (span.start != tc.start || span.end != tc.end) {
			t.Errorf("parseRange(%q) = [%d,%d], want [%d,%d]", tc.header, span.start, span.end, tc.start, tc.end)
		}
	}
}

func TestLoopbackOnly(t *testing.T) {
	srv, _ := startTestServer(t, []byte("video"))
	if !strings.HasPrefix(srv.BaseURL(), "http://127.0.0.1:") {
		t.Fatalf("base URL not loopback: %q", srv.BaseURL())
	}
}
