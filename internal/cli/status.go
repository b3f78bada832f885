package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/terraops-io/terraops/internal/status"
)

var (
	statusBuildID string
	statusCheck   string
	statusLogs    int
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report on a build, the deployed state, or both",
	Long: `Reports the status of an asynchronous operation and the deployed
infrastructure. With --build-id the build's phases are included; without
one, recent builds for the project are listed instead. --check narrows
the report to build_status, infrastructure_state, or outputs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		check, err := status.ParseCheckType(statusCheck)
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		report, err := a.tracker.Status(cmd.Context(), statusBuildID, check)
		if err != nil {
			return err
		}
		if err := printJSON(report); err != nil {
			return err
		}
		if statusLogs > 0 && report.Build != nil && report.Build.LogStream != "" {
			lines, err := a.logs.Tail(cmd.Context(), report.Build.LogGroup, report.Build.LogStream, statusLogs)
			if err != nil {
				return fmt.Errorf("tailing build log: %w", err)
			}
			for _, line := range lines {
				fmt.Println(line)
			}
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusBuildID, "build-id", "", "CodeBuild build id to inspect")
	statusCmd.Flags().StringVar(&statusCheck, "check", "", "check type: build_status, infrastructure_state, outputs or all")
	statusCmd.Flags().IntVar(&statusLogs, "logs", 0, "tail the last N build log lines")
}
