package trim

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Executor abstracts ffmpeg invocation for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) error
}

// Settings controls the trim tiers.
type Settings struct {
	// CopyTimeout bounds the stream-copy tier.
	CopyTimeout time.Duration
	// EncodeTimeout bounds the re-encode fallback tier.
	EncodeTimeout time.Duration
	CRF           int
	Preset        string
	PixelFormat   string
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps ffmpeg trim invocations.
type Client struct {
	binary   string
	settings Settings
	exec     Executor
}

// New constructs a trim client.
func New(binary string, settings Settings, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	if settings.CopyTimeout <= 0 {
		settings.CopyTimeout = 2 * time.Minute
	}
	if settings.EncodeTimeout <= 0 {
		settings.EncodeTimeout = 4 * time.Minute
	}
	client := &Client{binary: binary, settings: settings, exec: commandExecutor{}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Trim cuts source to durationSeconds from its start, writing dest. The
// stream-copy tier runs first; when it fails or times out the re-encode tier
// takes over. Both failing returns an error describing both attempts and dest
// is removed.
func (c *Client) Trim(ctx context.Context, source, dest string, durationSeconds float64) error {
	if strings.TrimSpace(source) == "" {
		return errors.New("trim: source path required")
	}
	if strings.TrimSpace(dest) == "" {
		return errors.New("trim: destination path required")
	}
	if durationSeconds <= 0 {
		return fmt.Errorf("trim: invalid duration %v", durationSeconds)
	}

	copyErr := c.run(ctx, c.settings.CopyTimeout, c.copyArgs(source, dest, durationSeconds))
	if copyErr == nil {
		return nil
	}
	_ = os.Remove(dest)

	encodeErr := c.run(ctx, c.settings.EncodeTimeout, c.encodeArgs(source, dest, durationSeconds))
	if encodeErr == nil {
		return nil
	}
	_ = os.Remove(dest)

	return fmt.Errorf("trim: stream copy failed (%v); re-encode failed: %w", copyErr, encodeErr)
}

func (c *Client) run(ctx context.Context, timeout time.Duration, args []string) error {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.exec.Run(runCtx, c.binary, args)
}

func (c *Client) copyArgs(source, dest string, durationSeconds float64) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-t", formatSeconds(durationSeconds),
		"-c", "copy",
		dest,
	}
}

// encodeArgs intentionally carries no -r flag: the output keeps the source
// frame rate and only the cut point changes.
func (c *Client) encodeArgs(source, dest string, durationSeconds float64) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-t", formatSeconds(durationSeconds),
		"-c:v", "libx264",
		"-preset", c.settings.Preset,
		"-crf", strconv.Itoa(c.settings.CRF),
		"-pix_fmt", c.settings.PixelFormat,
		"-c:a", "aac",
		dest,
	}
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', 3, 64)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		detail := strings.TrimSpace(string(output))
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", binary, ctx.Err())
		}
		if detail != "" {
			return fmt.Errorf("%s: %w: %s", binary, err, detail)
		}
		return fmt.Errorf("%s: %w", binary, err)
	}
	return nil
}
