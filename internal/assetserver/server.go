package assetserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"reelpress/internal/logging"
	"reelpress/internal/services"
)

// Server serves one primary video and a staging directory of b-roll files.
type Server struct {
	videoPath  string
	stagingDir string
	fileSize   int64
	baseURL    string
	port       int

	listener net.Listener
	httpSrv  *http.Server
	logger   *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

// Start stats the video, binds a free loopback port, and begins serving.
func Start(videoPath, stagingDir string, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	info, err := os.Stat(videoPath)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "serve", "stat video", videoPath, err)
	}
	if info.IsDir() {
		return nil, services.Wrap(services.ErrNotFound, "serve", "stat video", "path is a directory", nil)
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("bind loopback port: %w", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port

	srv := &Server{
		videoPath:  videoPath,
		stagingDir: stagingDir,
		fileSize:   info.Size(),
		baseURL:    fmt.Sprintf("http://127.0.0.1:%d", port),
		port:       port,
		listener:   listener,
		logger:     logger.With(logging.String(logging.FieldComponent, "assetserver")),
	}

	router := chi.NewRouter()
	router.Use(permissiveCORS)
	router.Get("/video", srv.handleVideo)
	router.Get("/broll/{name}", srv.handleBRoll)

	srv.httpSrv = &http.Server{Handler: router}
	go func() {
		if serveErr := srv.httpSrv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			srv.logger.Warn("asset server stopped", logging.Error(serveErr))
		}
	}()

	srv.logger.Debug("asset server listening",
		logging.String("base_url", srv.baseURL),
		logging.Int64("video_bytes", srv.fileSize),
	)
	return srv, nil
}

// BaseURL returns the loopback URL the render engine should fetch from.
func (s *Server) BaseURL() string { return s.baseURL }

// Port returns the bound port.
func (s *Server) Port() int { return s.port }

// FileSize returns the primary video size in bytes.
func (s *Server) FileSize() int64 { return s.fileSize }

// Close stops accepting connections. Safe to call multiple times.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.httpSrv.Close()
		s.logger.Debug("asset server closed")
	})
	return s.closeErr
}

// Shutdown drains in-flight responses before closing, bounded by ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.closeOnce.Do(func() {
		err = s.httpSrv.Shutdown(ctx)
		s.closeErr = err
		s.logger.Debug("asset server closed")
	})
	return err
}

func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	s.serveRanged(w, r, s.videoPath, "video/mp4")
}

func (s *Server) handleBRoll(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	// Staged names are flat; anything path-like is rejected before touching
	// the filesystem.
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		http.NotFound(w, r)
		return
	}
	path := filepath.Join(s.stagingDir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	ext := strings.ToLower(filepath.Ext(name))
	if isVideo(ext) {
		s.serveRanged(w, r, path, "video/mp4")
		return
	}
	s.serveWhole(w, path, info.Size(), imageMIME(ext))
}

func (s *Server) serveWhole(w http.ResponseWriter, path string, size int64, mime string) {
	file, err := os.Open(path)
	if err != nil {
		http.Error(w, "unreadable asset", http.StatusInternalServerError)
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
	w.WriteHeader(http.StatusOK)
	if _, err := copyBody(w, file, size); err != nil {
		s.logger.Debug("response aborted", logging.String("path", path), logging.Error(err))
	}
}
