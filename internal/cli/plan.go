package cli

import (
	"github.com/spf13/cobra"
	"github.com/terraops-io/terraops/internal/ops"
)

var (
	planVars   []string
	planSource string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Start a terraform plan in the execution environment",
	Long: `Starts an asynchronous terraform plan against the source tree in S3.
The build writes a machine-readable diff artifact alongside the human
output; poll "terraops status" with the returned build id for the result.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		vars, err := parseVars(planVars)
		if err != nil {
			return err
		}
		return dispatch(cmd.Context(), ops.Request{
			Operation:      ops.OpPlan,
			SourceLocation: planSource,
			Variables:      vars,
		})
	},
}

func init() {
	planCmd.Flags().StringArrayVar(&planVars, "var", nil, "terraform variable as key=value (repeatable)")
	planCmd.Flags().StringVar(&planSource, "source", "", "source location override (s3://bucket/prefix/)")
}
