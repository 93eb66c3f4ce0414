package broll

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"reelpress/internal/compose"
	"reelpress/internal/fileutil"
	"reelpress/internal/logging"
	"reelpress/internal/media"
	"reelpress/internal/services"
)

// Trimmer cuts a video file to a target duration.
type Trimmer interface {
	Trim(ctx context.Context, source, dest string, durationSeconds float64) error
}

// DownloadSettings controls remote asset fetches.
type DownloadSettings struct {
	Timeout    time.Duration
	RetryCount int
	UserAgent  string
}

// StagedEntry pairs a manifest reference with its staging outcome. Ref.Src is
// never mutated; the served address lives in ResolvedURL so a retried
// pipeline can never double-process a rewritten source.
type StagedEntry struct {
	Ref         compose.BRollRef
	LocalPath   string
	ResolvedURL string
	Trimmed     bool
	// Err records a non-fatal acquisition or trim problem for this entry.
	Err error
}

// EffectiveSrc returns the address the render engine should use: the served
// URL when staging succeeded, the original reference otherwise.
func (e StagedEntry) EffectiveSrc() string {
	if e.ResolvedURL != "" {
		return e.ResolvedURL
	}
	return e.Ref.Src
}

// Prop converts the entry into render engine input form.
func (e StagedEntry) Prop() compose.BRollProp {
	return compose.BRollProp{
		ID:              e.Ref.ID,
		Src:             e.EffectiveSrc(),
		Thumb:           e.Ref.Thumb,
		Type:            e.Ref.Type,
		StartSeconds:    e.Ref.StartSeconds,
		DurationSeconds: e.Ref.DurationSeconds,
	}
}

// Stager acquires b-roll assets into a staging directory.
type Stager struct {
	http    *resty.Client
	trimmer Trimmer
	logger  *slog.Logger
}

// NewStager constructs a stager. trimmer may be nil, in which case video
// entries are staged untrimmed.
func NewStager(settings DownloadSettings, trimmer Trimmer, logger *slog.Logger) *Stager {
	if logger == nil {
		logger = logging.NewNop()
	}
	client := resty.New()
	client.SetDisableWarn(true)
	if settings.Timeout > 0 {
		client.SetTimeout(settings.Timeout)
	}
	if settings.RetryCount > 0 {
		client.SetRetryCount(settings.RetryCount)
	}
	if settings.UserAgent != "" {
		client.SetHeader("User-Agent", settings.UserAgent)
	}
	return &Stager{
		http:    client,
		trimmer: trimmer,
		logger:  logger.With(logging.String(logging.FieldComponent, "stager")),
	}
}

// Stage resolves every reference into stagingDir and computes served URLs
// against baseURL. Entries are independent: a failure is recorded on its
// entry and the batch continues.
func (s *Stager) Stage(ctx context.Context, refs []compose.BRollRef, stagingDir, baseURL string) []StagedEntry {
	entries := make([]StagedEntry, 0, len(refs))
	for _, ref := range refs {
		entry := s.stageOne(ctx, ref, stagingDir, baseURL)
		if entry.Err != nil {
			s.logger.Warn("b-roll entry degraded",
				logging.String(logging.FieldEntryID, ref.ID),
				logging.String("src", ref.Src),
				logging.Error(entry.Err),
			)
		} else {
			s.logger.Debug("b-roll entry staged",
				logging.String(logging.FieldEntryID, ref.ID),
				logging.String("url", entry.ResolvedURL),
				logging.Bool("trimmed", entry.Trimmed),
			)
		}
		entries = append(entries, entry)
	}
	return entries
}

func (s *Stager) stageOne(ctx context.Context, ref compose.BRollRef, stagingDir, baseURL string) StagedEntry {
	entry := StagedEntry{Ref: ref}

	localPath, err := s.acquire(ctx, ref, stagingDir)
	if err != nil {
		entry.Err = err
		return entry
	}
	entry.LocalPath = localPath

	ext := fileutil.ExtOf(localPath)
	if media.IsVideoExt(ext) && ref.DurationSeconds > 0 && s.trimmer != nil {
		trimmedPath := filepath.Join(stagingDir, fileutil.UniqueName(namingHint(ref)+"-cut", ext))
		if trimErr := s.trimmer.Trim(ctx, localPath, trimmedPath, ref.DurationSeconds); trimErr != nil {
			// Untrimmed asset still serves; the slot may run long.
			entry.Err = services.Wrap(services.ErrTrim, "staging", "trim", ref.Src, trimErr)
		} else {
			_ = os.Remove(localPath)
			entry.LocalPath = trimmedPath
			entry.Trimmed = true
		}
	}

	entry.ResolvedURL = ServedURL(baseURL, filepath.Base(entry.LocalPath))
	return entry
}

// acquire classifies the source and materializes it into stagingDir.
func (s *Stager) acquire(ctx context.Context, ref compose.BRollRef, stagingDir string) (string, error) {
	src := strings.TrimSpace(ref.Src)
	switch {
	case src == "":
		return "", services.Wrap(services.ErrValidation, "staging", "acquire", "empty src", nil)
	case strings.HasPrefix(src, "file://"):
		return s.copyLocal(strings.TrimPrefix(src, "file://"), ref, stagingDir)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return s.download(ctx, src, ref, stagingDir)
	default:
		return s.copyLocal(src, ref, stagingDir)
	}
}

func (s *Stager) copyLocal(src string, ref compose.BRollRef, stagingDir string) (string, error) {
	if _, err := os.Stat(src); err != nil {
		return "", services.Wrap(services.ErrNotFound, "staging", "copy", src, err)
	}
	dest := filepath.Join(stagingDir, fileutil.UniqueName(namingHint(ref), fileutil.ExtOf(src)))
	if err := fileutil.CopyFile(src, dest); err != nil {
		return "", services.Wrap(services.ErrNotFound, "staging", "copy", src, err)
	}
	return dest, nil
}

func (s *Stager) download(ctx context.Context, src string, ref compose.BRollRef, stagingDir string) (string, error) {
	dest := filepath.Join(stagingDir, fileutil.UniqueName(namingHint(ref), fileutil.ExtOf(src)))
	resp, err := s.http.R().SetContext(ctx).SetOutput(dest).Get(src)
	if err != nil {
		_ = os.Remove(dest)
		return "", services.Wrap(services.ErrDownload, "staging", "fetch", src, err)
	}
	if resp.IsError() {
		_ = os.Remove(dest)
		return "", services.Wrap(services.ErrDownload, "staging", "fetch",
			fmt.Sprintf("%s: status %d", src, resp.StatusCode()), nil)
	}
	return dest, nil
}

// ServedURL computes the public address for a staged file name.
func ServedURL(baseURL, filename string) string {
	return strings.TrimRight(baseURL, "/") + "/broll/" + url.PathEscape(filename)
}

func namingHint(ref compose.BRollRef) string {
	if hint := strings.TrimSpace(ref.ID); hint != "" {
		return hint
	}
	base := filepath.Base(strings.TrimSpace(ref.Src))
	return strings.TrimSuffix(base, filepath.Ext(base))
}
