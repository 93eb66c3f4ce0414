package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"reelpress/internal/assetserver"
	"reelpress/internal/broll"
	"reelpress/internal/compose"
	"reelpress/internal/config"
	"reelpress/internal/history"
	"reelpress/internal/logging"
	"reelpress/internal/media/trim"
	"reelpress/internal/render"
	"reelpress/internal/services"
	"reelpress/internal/staging"
)

// State names a point in the export lifecycle.
type State string

const (
	StateIdle           State = "idle"
	StateServerStarted  State = "server_started"
	StateAssetsStaged   State = "assets_staged"
	StateParamsResolved State = "params_resolved"
	StateRendering      State = "rendering"
	StateCompleted      State = "completed"
	StateFailed         State = "failed"
)

// Request describes one export job.
type Request struct {
	VideoPath    string
	ManifestPath string
	OutputPath   string
	Style        string
	// DurationSeconds overrides the composition's own output length when
	// positive.
	DurationSeconds float64
}

// Outcome summarizes a finished run.
type Outcome struct {
	JobID       string
	OutputPath  string
	BRollTotal  int
	BRollFailed int
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Runner executes export jobs built from a loaded config.
type Runner struct {
	cfg      *config.Config
	logger   *slog.Logger
	stager   *broll.Stager
	renderer *render.Client
	store    *history.Store

	// Progress receives render engine updates when set.
	Progress func(render.ProgressUpdate)
}

// Option adjusts runner construction.
type Option func(*options)

type options struct {
	trimOpts   []trim.Option
	renderOpts []render.Option
}

// WithTrimExecutor injects a custom ffmpeg executor (primarily for tests).
func WithTrimExecutor(exec trim.Executor) Option {
	return func(o *options) {
		o.trimOpts = append(o.trimOpts, trim.WithExecutor(exec))
	}
}

// WithRenderExecutor injects a custom render engine executor (primarily for tests).
func WithRenderExecutor(exec render.Executor) Option {
	return func(o *options) {
		o.renderOpts = append(o.renderOpts, render.WithExecutor(exec))
	}
}

// NewRunner wires the trim, staging, and render clients from config. store may
// be nil when history is disabled.
func NewRunner(cfg *config.Config, logger *slog.Logger, store *history.Store, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("export runner requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	var resolved options
	for _, opt := range opts {
		opt(&resolved)
	}

	trimmer, err := trim.New(cfg.Tools.FFmpeg, trim.Settings{
		CopyTimeout:   time.Duration(cfg.Trim.CopyTimeout) * time.Second,
		EncodeTimeout: time.Duration(cfg.Trim.EncodeTimeout) * time.Second,
		CRF:           cfg.Trim.CRF,
		Preset:        cfg.Trim.Preset,
		PixelFormat:   cfg.Trim.PixelFormat,
	}, resolved.trimOpts...)
	if err != nil {
		return nil, fmt.Errorf("build trim client: %w", err)
	}

	renderer, err := render.New(cfg.Renderer.Binary, render.Settings{
		Composition: cfg.Renderer.Composition,
		Timeout:     time.Duration(cfg.Renderer.Timeout) * time.Second,
		Concurrency: cfg.Renderer.Concurrency,
	}, resolved.renderOpts...)
	if err != nil {
		return nil, fmt.Errorf("build render client: %w", err)
	}

	stager := broll.NewStager(broll.DownloadSettings{
		Timeout:    time.Duration(cfg.Download.TimeoutSeconds) * time.Second,
		RetryCount: cfg.Download.RetryCount,
		UserAgent:  cfg.Download.UserAgent,
	}, trimmer, logger)

	return &Runner{
		cfg:      cfg,
		logger:   logger.With(logging.String(logging.FieldComponent, "export")),
		stager:   stager,
		renderer: renderer,
		store:    store,
	}, nil
}

// Run executes one export job to completion. It validates the request before
// binding any resource, then guarantees the loopback server and staging
// directory are released on every path out.
func (r *Runner) Run(ctx context.Context, req Request) (Outcome, error) {
	outcome := Outcome{
		JobID:      "job-" + shortID(),
		OutputPath: req.OutputPath,
		StartedAt:  time.Now(),
	}
	ctx = services.WithJobID(ctx, outcome.JobID)
	logger := logging.WithContext(ctx, r.logger)

	style, manifest, err := r.validate(req)
	if err != nil {
		return r.finish(ctx, logger, outcome, req, err)
	}
	outcome.BRollTotal = len(manifest.BRolls)

	area, err := staging.Create(r.cfg.Paths.StagingDir)
	if err != nil {
		return r.finish(ctx, logger, outcome, req, services.Wrap(services.ErrExternalTool, "staging", "create area", "", err))
	}
	defer func() {
		if removeErr := area.Remove(); removeErr != nil {
			logger.Warn("staging cleanup failed", logging.Error(removeErr))
		}
	}()

	server, err := assetserver.Start(req.VideoPath, area.Dir(), r.logger)
	if err != nil {
		return r.finish(ctx, logger, outcome, req, err)
	}
	// Close is idempotent; this covers every exit while the explicit close
	// below keeps teardown ordered on the happy path.
	defer func() { _ = server.Close() }()
	r.transition(logger, StateServerStarted, logging.String("base_url", server.BaseURL()))

	entries := r.stager.Stage(services.WithStage(ctx, "staging"), manifest.BRolls, area.Dir(), server.BaseURL())
	brolls := make([]compose.BRollProp, 0, len(entries))
	for _, entry := range entries {
		if entry.Err != nil {
			outcome.BRollFailed++
		}
		brolls = append(brolls, entry.Prop())
	}
	r.transition(logger, StateAssetsStaged,
		logging.Int("total", outcome.BRollTotal),
		logging.Int("degraded", outcome.BRollFailed),
	)

	props := compose.BuildProps(server.BaseURL(), manifest, style, req.DurationSeconds, brolls)
	r.transition(logger, StateParamsResolved, logging.Int("captions", len(props.Captions)))

	r.transition(logger, StateRendering, logging.String("output", req.OutputPath))
	renderErr := r.renderer.Render(services.WithStage(ctx, "render"), props, area.Dir(), req.OutputPath, r.Progress)

	if closeErr := server.Close(); closeErr != nil {
		logger.Warn("asset server close failed", logging.Error(closeErr))
	}

	if renderErr != nil {
		return r.finish(ctx, logger, outcome, req, renderErr)
	}
	if err := verifyOutput(req.OutputPath); err != nil {
		return r.finish(ctx, logger, outcome, req, err)
	}

	return r.finish(ctx, logger, outcome, req, nil)
}

// validate checks request fields without touching the filesystem beyond the
// manifest read. Argument problems surface before any port or directory is
// bound.
func (r *Runner) validate(req Request) (compose.Style, compose.Manifest, error) {
	if strings.TrimSpace(req.VideoPath) == "" {
		return "", compose.Manifest{}, services.Wrap(services.ErrValidation, "validate", "video", "path required", nil)
	}
	if strings.TrimSpace(req.ManifestPath) == "" {
		return "", compose.Manifest{}, services.Wrap(services.ErrValidation, "validate", "manifest", "path required", nil)
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return "", compose.Manifest{}, services.Wrap(services.ErrValidation, "validate", "output", "path required", nil)
	}

	style, err := compose.ParseStyle(req.Style)
	if err != nil {
		return "", compose.Manifest{}, services.Wrap(services.ErrValidation, "validate", "style", "", err)
	}

	manifest, err := compose.LoadManifest(req.ManifestPath)
	if err != nil {
		return "", compose.Manifest{}, services.Wrap(services.ErrValidation, "validate", "manifest", req.ManifestPath, err)
	}

	if dir := filepath.Dir(req.OutputPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", compose.Manifest{}, services.Wrap(services.ErrValidation, "validate", "output", dir, err)
		}
	}

	return style, manifest, nil
}

// finish logs the terminal state, records history, and returns the outcome.
func (r *Runner) finish(ctx context.Context, logger *slog.Logger, outcome Outcome, req Request, runErr error) (Outcome, error) {
	outcome.FinishedAt = time.Now()

	if runErr != nil {
		r.transition(logger, StateFailed,
			logging.Error(runErr),
			logging.Duration("elapsed", outcome.FinishedAt.Sub(outcome.StartedAt)),
		)
	} else {
		r.transition(logger, StateCompleted,
			logging.String("output", outcome.OutputPath),
			logging.Duration("elapsed", outcome.FinishedAt.Sub(outcome.StartedAt)),
		)
	}

	r.record(ctx, logger, outcome, req, runErr)
	return outcome, runErr
}

func (r *Runner) record(ctx context.Context, logger *slog.Logger, outcome Outcome, req Request, runErr error) {
	if r.store == nil {
		return
	}
	entry := history.Entry{
		JobID:       outcome.JobID,
		VideoPath:   req.VideoPath,
		OutputPath:  req.OutputPath,
		Composition: r.cfg.Renderer.Composition,
		Style:       req.Style,
		Outcome:     history.OutcomeCompleted,
		BRollTotal:  outcome.BRollTotal,
		BRollFailed: outcome.BRollFailed,
		StartedAt:   outcome.StartedAt,
		FinishedAt:  outcome.FinishedAt,
	}
	if runErr != nil {
		entry.Outcome = history.OutcomeFailed
		entry.ErrorKind = ErrorKind(runErr)
		entry.ErrorDetail = runErr.Error()
	}
	if _, err := r.store.Record(ctx, entry); err != nil {
		logger.Warn("history record failed", logging.Error(err))
	}
}

func (r *Runner) transition(logger *slog.Logger, state State, attrs ...slog.Attr) {
	args := append([]slog.Attr{logging.String("state", string(state))}, attrs...)
	logger.Info("export state", logging.Args(args...)...)
}

// verifyOutput confirms the engine actually produced a usable file.
func verifyOutput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return services.Wrap(services.ErrOutputMissing, "render", "verify output", path, err)
	}
	if info.Size() == 0 {
		return services.Wrap(services.ErrOutputMissing, "render", "verify output", path+" is empty", nil)
	}
	return nil
}

// ErrorKind maps an error to its stable history label.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, services.ErrValidation):
		return "validation"
	case errors.Is(err, services.ErrNotFound):
		return "source_not_found"
	case errors.Is(err, services.ErrDownload):
		return "download_failed"
	case errors.Is(err, services.ErrTrim):
		return "trim_failed"
	case errors.Is(err, services.ErrTimeout):
		return "render_timeout"
	case errors.Is(err, services.ErrOutputMissing):
		return "output_missing"
	case errors.Is(err, services.ErrExternalTool):
		return "external_tool"
	default:
		return "internal"
	}
}

func shortID() string {
	id := uuid.NewString()
	if idx := strings.IndexByte(id, '-'); idx > 0 {
		return id[:idx]
	}
	return id
}
