package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"reelpress/internal/compose"
	"reelpress/internal/services"
)

// ProgressUpdate captures engine progress output.
type ProgressUpdate struct {
	FramesRendered int
	TotalFrames    int
	Chunk          int
	TotalChunks    int
	Message        string
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout func(string)) error
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

// Settings configures one engine invocation.
type Settings struct {
	Composition string
	Timeout     time.Duration
	Concurrency int
}

// Client wraps render engine CLI interactions.
type Client struct {
	binary   string
	settings Settings
	exec     Executor
}

// New constructs a render engine client.
func New(binary string, settings Settings, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("render engine binary required")
	}
	if settings.Composition == "" {
		return nil, errors.New("composition identifier required")
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 2 * time.Minute
	}
	if settings.Concurrency <= 0 {
		settings.Concurrency = 1
	}
	client := &Client{binary: binary, settings: settings, exec: commandExecutor{}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Render writes props beside the output-to-be and runs the engine to
// completion. The timeout is a hard bound: an overrun is reported as
// ErrTimeout and never retried here.
func (c *Client) Render(ctx context.Context, props compose.InputProps, workDir, outputPath string, progress func(ProgressUpdate)) error {
	propsPath := filepath.Join(workDir, "input-props.json")
	encoded, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("encode input props: %w", err)
	}
	if err := os.WriteFile(propsPath, encoded, 0o644); err != nil {
		return fmt.Errorf("write input props: %w", err)
	}

	args := []string{
		"render",
		"--composition", c.settings.Composition,
		"--props", propsPath,
		"--output", outputPath,
		"--concurrency", strconv.Itoa(c.settings.Concurrency),
	}

	renderCtx, cancel := context.WithTimeout(ctx, c.settings.Timeout)
	defer cancel()

	runErr := c.exec.Run(renderCtx, c.binary, args, func(line string) {
		if progress == nil {
			return
		}
		if update, ok := parseProgress(line); ok {
			progress(update)
		}
	})
	if runErr != nil {
		if renderCtx.Err() != nil {
			return services.Wrap(services.ErrTimeout, "render", "engine",
				fmt.Sprintf("exceeded %s budget", c.settings.Timeout), runErr)
		}
		return services.Wrap(services.ErrExternalTool, "render", "engine", "", runErr)
	}
	return nil
}

// parseProgress interprets engine progress lines:
//
//	frame 120/600
//	chunk 2/4 encoding
func parseProgress(line string) (ProgressUpdate, bool) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) < 2 {
		return ProgressUpdate{}, false
	}
	kind := strings.ToLower(fields[0])
	if kind != "frame" && kind != "chunk" {
		return ProgressUpdate{}, false
	}
	current, total, ok := parseFraction(fields[1])
	if !ok {
		return ProgressUpdate{}, false
	}
	update := ProgressUpdate{}
	if kind == "frame" {
		update.FramesRendered = current
		update.TotalFrames = total
	} else {
		update.Chunk = current
		update.TotalChunks = total
	}
	if len(fields) > 2 {
		update.Message = strings.Join(fields[2:], " ")
	}
	return update, true
}

func parseFraction(value string) (int, int, bool) {
	currentText, totalText, found := strings.Cut(value, "/")
	if !found {
		return 0, 0, false
	}
	current, errCurrent := strconv.Atoi(currentText)
	total, errTotal := strconv.Atoi(totalText)
	if errCurrent != nil || errTotal != nil || total <= 0 || current < 0 {
		return 0, 0, false
	}
	return current, total, true
}
