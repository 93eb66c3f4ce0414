package assetserver

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"reelpress/internal/logging"
	"reelpress/internal/media"
)

func isVideo(ext string) bool { return media.IsVideoExt(ext) }

func imageMIME(ext string) string { return media.ImageMIME(ext) }

// byteRange is a parsed, clamped request range.
type byteRange struct {
	start int64
	end   int64
}

func (b byteRange) length() int64 { return b.end - b.start + 1 }

// parseRange interprets "bytes=start-end" with an optional open end. The end
// is clamped to size-1. A missing or unparsable start, or a start beyond the
// file, is reported as unsatisfiable.
func parseRange(header string, size int64) (byteRange, bool) {
	header = strings.TrimSpace(header)
	spec, found := strings.CutPrefix(header, "bytes=")
	if !found {
		return byteRange{}, false
	}
	// A single span only; the render engine never requests multipart ranges.
	startText, endText, found := strings.Cut(spec, "-")
	if !found {
		return byteRange{}, false
	}
	start, err := strconv.ParseInt(strings.TrimSpace(startText), 10, 64)
	if err != nil || start < 0 || start >= size {
		return byteRange{}, false
	}
	end := size - 1
	if trimmed := strings.TrimSpace(endText); trimmed != "" {
		parsed, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil || parsed < start {
			return byteRange{}, false
		}
		if parsed < end {
			end = parsed
		}
	}
	return byteRange{start: start, end: end}, true
}

// serveRanged answers a request for path with full-body 200 or partial 206
// semantics depending on the Range header.
func (s *Server) serveRanged(w http.ResponseWriter, r *http.Request, path, mime string) {
	info, err := os.Stat(path)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	size := info.Size()

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Accept-Ranges", "bytes")

	rangeHeader := r.Header.Get("Range")
	if rangeHeader == "" {
		file, err := os.Open(path)
		if err != nil {
			http.Error(w, "unreadable asset", http.StatusInternalServerError)
			return
		}
		defer file.Close()
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusOK)
		if _, err := copyBody(w, file, size); err != nil {
			s.logger.Debug("response aborted", logging.String("path", path), logging.Error(err))
		}
		return
	}

	span, ok := parseRange(rangeHeader, size)
	if !ok {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
		return
	}

	file, err := os.Open(path)
	if err != nil {
		http.Error(w, "unreadable asset", http.StatusInternalServerError)
		return
	}
	defer file.Close()
	if _, err := file.Seek(span.start, io.SeekStart); err != nil {
		http.Error(w, "seek failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", span.start, span.end, size))
	w.Header().Set("Content-Length", strconv.FormatInt(span.length(), 10))
	w.WriteHeader(http.StatusPartialContent)
	if _, err := copyBody(w, file, span.length()); err != nil {
		s.logger.Debug("response aborted",
			logging.String("path", path),
			logging.Int64("start", span.start),
			logging.Int64("end", span.end),
			logging.Error(err),
		)
	}
}

func copyBody(w io.Writer, r io.Reader, n int64) (int64, error) {
	return io.CopyN(w, r, n)
}

// permissiveCORS marks every response as cross-origin readable. The render
// engine fetches assets from headless browser contexts that enforce CORS even
// against loopback origins.
func permissiveCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Range, Content-Type")
		h.Set("Access-Control-Expose-Headers", "Content-Range, Content-Length, Accept-Ranges")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
