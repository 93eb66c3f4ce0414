package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"reelpress/internal/preflight"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check binaries, directories, and disk space before exporting",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := preflight.RunAll(cfg)

			if ctx.JSONMode() {
				payload := make([]map[string]any, 0, len(results))
				for _, result := range results {
					payload = append(payload, map[string]any{
						"name":   result.Name,
						"passed": result.Passed,
						"detail": result.Detail,
					})
				}
				if err := writeJSON(cmd, map[string]any{
					"checks": payload,
					"ok":     preflight.AllPassed(results),
				}); err != nil {
					return err
				}
			} else {
				rows := make([][]string, 0, len(results))
				for _, result := range results {
					status := "FAIL"
					if result.Passed {
						status = "OK"
					}
					rows = append(rows, []string{result.Name, status, result.Detail})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(
					[]string{"Check", "Status", "Detail"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft},
				))
			}

			if !preflight.AllPassed(results) {
				return errors.New("environment not ready")
			}
			return nil
		},
	}
}
