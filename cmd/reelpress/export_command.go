package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"reelpress/internal/export"
	"reelpress/internal/history"
	"reelpress/internal/logging"
	"reelpress/internal/preflight"
	"reelpress/internal/render"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var (
		videoPath    string
		manifestPath string
		outputPath   string
		style        string
		duration     float64
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a captioned video with staged b-roll",
		Long: `Run one export end to end: serve the primary video over loopback HTTP,
stage and trim the manifest's b-roll, then invoke the render engine and wait
for the output file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}

			checks := preflight.RunAll(cfg)
			if !preflight.AllPassed(checks) {
				for _, check := range checks {
					if !check.Passed {
						fmt.Fprintf(cmd.ErrOrStderr(), "preflight: %s: %s\n", check.Name, check.Detail)
					}
				}
				return errors.New("environment not ready; run `reelpress probe` for details")
			}

			var store *history.Store
			if cfg.History.Enabled {
				store, err = history.Open(cfg.History.Path)
				if err != nil {
					return fmt.Errorf("open history: %w", err)
				}
				defer func() { _ = store.Close() }()
			}

			runner, err := export.NewRunner(cfg, logger, store)
			if err != nil {
				return err
			}
			if isatty.IsTerminal(os.Stderr.Fd()) {
				runner.Progress = newRenderProgress()
			}

			outcome, err := runner.Run(cmd.Context(), export.Request{
				VideoPath:       videoPath,
				ManifestPath:    manifestPath,
				OutputPath:      outputPath,
				Style:           style,
				DurationSeconds: duration,
			})
			if err != nil {
				return err
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{
					"job_id":       outcome.JobID,
					"output":       outcome.OutputPath,
					"broll_total":  outcome.BRollTotal,
					"broll_failed": outcome.BRollFailed,
					"elapsed_ms":   outcome.FinishedAt.Sub(outcome.StartedAt).Milliseconds(),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Export complete: %s\n", outcome.OutputPath)
			if outcome.BRollFailed > 0 {
				fmt.Fprintf(out, "Warning: %d of %d b-roll entries degraded; see log for details\n",
					outcome.BRollFailed, outcome.BRollTotal)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&videoPath, "video", "", "Primary video file")
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "Caption/b-roll manifest JSON")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output video file")
	cmd.Flags().StringVar(&style, "style", "bottom", "Caption style preset (bottom, top, karaoke)")
	cmd.Flags().Float64Var(&duration, "duration", 0, "Override output duration in seconds (0 = composition default)")
	_ = cmd.MarkFlagRequired("video")
	_ = cmd.MarkFlagRequired("manifest")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// newRenderProgress adapts engine frame updates onto a terminal progress bar.
func newRenderProgress() func(render.ProgressUpdate) {
	bar := progressbar.NewOptions(1,
		progressbar.OptionSetDescription("rendering"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	return func(update render.ProgressUpdate) {
		if update.TotalFrames > 0 {
			bar.ChangeMax(update.TotalFrames)
			_ = bar.Set(update.FramesRendered)
		}
	}
}
