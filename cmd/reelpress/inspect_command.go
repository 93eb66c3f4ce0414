package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"reelpress/internal/media/ffprobe"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show container and stream details for a media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			result, err := ffprobe.Inspect(cmd.Context(), cfg.Tools.FFprobe, args[0])
			if err != nil {
				return err
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{
					"format":           result.Format.FormatName,
					"duration_seconds": result.DurationSeconds(),
					"video_streams":    result.VideoStreamCount(),
					"frame_rate":       result.FrameRate(),
					"streams":          result.Streams,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "File:      %s\n", result.Format.Filename)
			fmt.Fprintf(out, "Container: %s\n", result.Format.FormatName)
			fmt.Fprintf(out, "Duration:  %s\n", time.Duration(result.DurationSeconds()*float64(time.Second)).Round(time.Millisecond))
			if rate := result.FrameRate(); rate > 0 {
				fmt.Fprintf(out, "Framerate: %.3f fps\n", rate)
			}

			rows := make([][]string, 0, len(result.Streams))
			for _, stream := range result.Streams {
				size := ""
				if stream.Width > 0 {
					size = fmt.Sprintf("%dx%d", stream.Width, stream.Height)
				}
				rows = append(rows, []string{
					fmt.Sprintf("%d", stream.Index),
					stream.CodecType,
					stream.CodecName,
					size,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Type", "Codec", "Size"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
